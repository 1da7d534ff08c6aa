package model

import "fmt"

// ParticipantID identifies a general within one trial. IDs are dense in [0, n).
type ParticipantID int

// Role of a general, fixed for the whole trial.
type Role uint8

const (
	// Loyal generals relay exactly what they received.
	Loyal Role = iota + 1
	// Traitor generals may send an arbitrary value to each recipient.
	Traitor
)

func (r Role) String() string {
	switch r {
	case Loyal:
		return "loyal"
	case Traitor:
		return "traitor"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Roles maps every ParticipantID to its Role.
type Roles []Role

// Len returns the number of generals.
func (r Roles) Len() int {
	return len(r)
}

// Contains returns true if id is a valid index into r.
func (r Roles) Contains(id ParticipantID) bool {
	return id >= 0 && int(id) < len(r)
}

// IsLoyal returns true if the general with the given id is loyal.
func (r Roles) IsLoyal(id ParticipantID) bool {
	return r[id] == Loyal
}

// Traitors returns the ids of all traitors in increasing order.
func (r Roles) Traitors() []ParticipantID {
	var traitors []ParticipantID
	for i, role := range r {
		if role == Traitor {
			traitors = append(traitors, ParticipantID(i))
		}
	}
	return traitors
}

// CountTraitors returns the number of traitors.
func (r Roles) CountTraitors() int {
	return len(r.Traitors())
}

// Assignment is the outcome of role assignment for one trial.
type Assignment struct {
	Commander ParticipantID
	Roles     Roles
}

// CommanderRole returns the role of the root commander.
func (a Assignment) CommanderRole() Role {
	return a.Roles[a.Commander]
}

// Validate checks that the assignment is structurally sound: a non-empty role list
// containing only Loyal/Traitor entries and a commander within range.
func (a Assignment) Validate() error {
	if len(a.Roles) == 0 {
		return fmt.Errorf("assignment has no generals")
	}
	if !a.Roles.Contains(a.Commander) {
		return fmt.Errorf("commander %d outside of [0,%d)", a.Commander, len(a.Roles))
	}
	for i, role := range a.Roles {
		if role != Loyal && role != Traitor {
			return fmt.Errorf("general %d has undefined %v", i, role)
		}
	}
	return nil
}

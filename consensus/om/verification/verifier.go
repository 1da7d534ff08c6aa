package verification

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/byzantine-generals/omsim/consensus/om"
	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// Verifier checks the interactive consistency conditions of a finished trial:
// Agreement (IC1) among all loyal lieutenants and, for a loyal commander, Validity (IC2).
type Verifier struct{}

var _ om.Verifier = Verifier{}

func New() Verifier {
	return Verifier{}
}

// Verify never fails itself; all findings are reported in the result.
//   - AgreementViolation: two loyal lieutenants decided differently. Err holds an
//     AgreementViolationError naming the first mismatching pair in identity order.
//     If the commander is loyal and Validity fails as well, Err also holds the
//     ValidityViolationError.
//   - ValidityViolation: the loyal lieutenants agree, but not on the order of their loyal commander.
//   - InvalidDecisions: the inputs are malformed; Err holds a model.InvariantViolationError.
func (Verifier) Verify(decisions model.DecisionVector, assignment model.Assignment, order model.Order) model.VerificationResult {
	err := validateInputs(decisions, assignment, order)
	if err != nil {
		return failed(model.InvalidDecisions, err)
	}

	var (
		reference   = model.OrderUnset
		referenceID model.ParticipantID
		agreement   error
		validity    error
	)
	commanderLoyal := assignment.CommanderRole() == model.Loyal
	for i := range decisions {
		id := model.ParticipantID(i)
		if id == assignment.Commander || !assignment.Roles.IsLoyal(id) {
			continue
		}
		decision := decisions.At(id)
		if reference == model.OrderUnset {
			reference, referenceID = decision, id
		} else if agreement == nil && decision != reference {
			agreement = model.AgreementViolationError{
				First:          referenceID,
				Second:         id,
				FirstDecision:  reference,
				SecondDecision: decision,
			}
		}
		if commanderLoyal && validity == nil && decision != order {
			validity = model.ValidityViolationError{
				Commander: assignment.Commander,
				Order:     order,
				Decision:  decision,
			}
		}
	}

	switch {
	case agreement != nil:
		return failed(model.AgreementViolation, multierr.Append(agreement, validity))
	case validity != nil:
		result := failed(model.ValidityViolation, validity)
		result.Decision = reference
		return result
	default:
		return model.VerificationResult{
			OK:       true,
			Kind:     model.NoViolation,
			Decision: reference,
		}
	}
}

func failed(kind model.ViolationKind, err error) model.VerificationResult {
	return model.VerificationResult{
		OK:     false,
		Kind:   kind,
		Detail: err.Error(),
		Err:    err,
	}
}

func validateInputs(decisions model.DecisionVector, assignment model.Assignment, order model.Order) error {
	err := assignment.Validate()
	if err != nil {
		return model.NewInvariantViolationError(err)
	}
	if !order.Valid() {
		return model.NewInvariantViolationErrorf("original order is %v", order)
	}
	if len(decisions) != assignment.Roles.Len() {
		return model.NewInvariantViolationErrorf("decision vector has %d entries for %d generals", len(decisions), assignment.Roles.Len())
	}
	for i, decision := range decisions {
		id := model.ParticipantID(i)
		if id == assignment.Commander {
			continue
		}
		if !decision.Valid() {
			return model.NewInvariantViolationError(fmt.Errorf("general %d has no decision", id))
		}
	}
	return nil
}

package model

import "fmt"

// Order is the binary command relayed between generals.
// OrderUnset is the zero value; it marks vector and matrix cells that were never
// written and is never the outcome of a finished computation.
type Order uint8

const (
	OrderUnset Order = iota
	Attack
	Retreat
)

// Valid returns true for Attack and Retreat.
func (o Order) Valid() bool {
	switch o {
	case Attack, Retreat:
		return true
	default:
		return false
	}
}

func (o Order) String() string {
	switch o {
	case OrderUnset:
		return "unset"
	case Attack:
		return "attack"
	case Retreat:
		return "retreat"
	default:
		return fmt.Sprintf("order(%d)", uint8(o))
	}
}

// Short returns a single letter for compact matrix dumps.
func (o Order) Short() string {
	switch o {
	case Attack:
		return "A"
	case Retreat:
		return "R"
	default:
		return "?"
	}
}

// OrderFromBool maps true to Attack and false to Retreat.
func OrderFromBool(b bool) Order {
	if b {
		return Attack
	}
	return Retreat
}

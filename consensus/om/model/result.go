package model

import "fmt"

// ViolationKind classifies the outcome of verifying one trial.
type ViolationKind uint8

const (
	NoViolation ViolationKind = iota
	AgreementViolation
	ValidityViolation
	// InvalidDecisions marks decision vectors that cannot be verified at all, e.g. a loyal
	// lieutenant without a decision. Such vectors only come out of a defective engine.
	InvalidDecisions
)

func (k ViolationKind) String() string {
	switch k {
	case NoViolation:
		return "none"
	case AgreementViolation:
		return "agreement"
	case ValidityViolation:
		return "validity"
	case InvalidDecisions:
		return "invalid_decisions"
	default:
		return fmt.Sprintf("violation(%d)", uint8(k))
	}
}

// VerificationResult is the outcome of checking Agreement and Validity for one trial.
// When both properties fail, Kind is AgreementViolation and Err carries both errors.
type VerificationResult struct {
	OK     bool
	Kind   ViolationKind
	Detail string
	Err    error
	// Decision is the common decision of the loyal generals; unset if there is none.
	Decision Order
}

// MarshalYAML renders the kind by name.
func (k ViolationKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

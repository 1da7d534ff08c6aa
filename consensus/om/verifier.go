package om

import "github.com/byzantine-generals/omsim/consensus/om/model"

// Verifier checks the safety properties of a finished trial.
type Verifier interface {
	// Verify checks Agreement among the loyal lieutenants and, for a loyal commander,
	// Validity against the commander's original order. Violations are reported in the
	// result and never returned as a failure of the call itself.
	Verify(decisions model.DecisionVector, assignment model.Assignment, order model.Order) model.VerificationResult
}

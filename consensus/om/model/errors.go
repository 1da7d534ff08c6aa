package model

import (
	"errors"
	"fmt"
)

// PreconditionViolationError indicates that a configuration does not satisfy the safety
// constraint generals > 3 * traitors, or is otherwise unusable (negative counts, no generals).
// It is fatal to the configuration, never to the process.
type PreconditionViolationError struct {
	Generals int
	Traitors int
	Reason   string
}

func NewPreconditionViolationError(generals, traitors int, reason string) error {
	return PreconditionViolationError{
		Generals: generals,
		Traitors: traitors,
		Reason:   reason,
	}
}

func (e PreconditionViolationError) Error() string {
	return fmt.Sprintf("invalid configuration with %d generals and %d traitors: %s", e.Generals, e.Traitors, e.Reason)
}

// IsPreconditionViolationError returns whether err is a PreconditionViolationError
func IsPreconditionViolationError(err error) bool {
	var e PreconditionViolationError
	return errors.As(err, &e)
}

// InvariantViolationError indicates corrupted protocol bookkeeping: a message cell written
// twice, a commander re-entering the command chain, an unset value where a decision is
// expected. It always points at a defect and aborts the trial it occurred in.
type InvariantViolationError struct {
	err error
}

func NewInvariantViolationError(err error) error {
	return InvariantViolationError{err}
}

func NewInvariantViolationErrorf(msg string, args ...interface{}) error {
	return InvariantViolationError{fmt.Errorf(msg, args...)}
}

func (e InvariantViolationError) Error() string { return "internal invariant violated: " + e.err.Error() }
func (e InvariantViolationError) Unwrap() error { return e.err }

// IsInvariantViolationError returns whether err is an InvariantViolationError
func IsInvariantViolationError(err error) bool {
	var e InvariantViolationError
	return errors.As(err, &e)
}

// AgreementViolationError reports two loyal generals that decided differently.
type AgreementViolationError struct {
	First          ParticipantID
	Second         ParticipantID
	FirstDecision  Order
	SecondDecision Order
}

func (e AgreementViolationError) Error() string {
	return fmt.Sprintf("agreement violated: loyal general %d decided %v but loyal general %d decided %v",
		e.First, e.FirstDecision, e.Second, e.SecondDecision)
}

// IsAgreementViolationError returns whether err is an AgreementViolationError
func IsAgreementViolationError(err error) bool {
	var e AgreementViolationError
	return errors.As(err, &e)
}

// ValidityViolationError reports loyal generals deciding against the order of a loyal commander.
type ValidityViolationError struct {
	Commander ParticipantID
	Order     Order
	Decision  Order
}

func (e ValidityViolationError) Error() string {
	return fmt.Sprintf("validity violated: loyal commander %d ordered %v but loyal generals decided %v",
		e.Commander, e.Order, e.Decision)
}

// IsValidityViolationError returns whether err is a ValidityViolationError
func IsValidityViolationError(err error) bool {
	var e ValidityViolationError
	return errors.As(err, &e)
}

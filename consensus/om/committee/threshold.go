package committee

import "github.com/byzantine-generals/omsim/consensus/om/model"

// MaxTraitors returns the largest number of traitors that OM can tolerate among n generals,
// i.e. the largest t with n > 3t.
func MaxTraitors(generals int) int {
	if generals < 1 {
		return 0
	}
	return (generals - 1) / 3
}

// MinGenerals returns the smallest number of generals tolerating the given traitors: 3t+1.
func MinGenerals(traitors int) int {
	return 3*traitors + 1
}

// CheckSafety validates a configuration against the safety constraint generals > 3 * traitors.
// Returns model.PreconditionViolationError if the constraint or the basic sanity checks fail.
func CheckSafety(generals, traitors int) error {
	err := CheckCounts(generals, traitors)
	if err != nil {
		return err
	}
	if generals <= 3*traitors {
		return model.NewPreconditionViolationError(generals, traitors, "safety constraint generals > 3*traitors does not hold")
	}
	return nil
}

// CheckCounts validates the counts without the safety constraint.
func CheckCounts(generals, traitors int) error {
	if generals < 1 {
		return model.NewPreconditionViolationError(generals, traitors, "at least one general is required")
	}
	if traitors < 0 {
		return model.NewPreconditionViolationError(generals, traitors, "number of traitors cannot be negative")
	}
	if traitors > generals {
		return model.NewPreconditionViolationError(generals, traitors, "more traitors than generals")
	}
	return nil
}

package metrics

const (
	LabelOutcome       = "outcome"
	LabelCommanderRole = "commander_role"
)

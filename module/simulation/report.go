package simulation

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// Violation identifies a trial whose decisions failed verification. Running Replay with
// Trial reproduces it.
type Violation struct {
	Trial  uint64              `yaml:"trial"`
	Kind   model.ViolationKind `yaml:"kind"`
	Detail string              `yaml:"detail"`
}

// Summary condenses a per-trial quantity over the batch.
type Summary struct {
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	P99    float64 `yaml:"p99"`
	Max    float64 `yaml:"max"`
}

// Report is the outcome of a simulation batch.
type Report struct {
	Generals   int    `yaml:"generals"`
	Traitors   int    `yaml:"traitors"`
	Rounds     int    `yaml:"rounds"`
	Seed       uint64 `yaml:"seed"`
	Iterations uint64 `yaml:"iterations"`

	// Completed counts the trials that ran up to verification.
	Completed           uint64 `yaml:"completed"`
	Passed              uint64 `yaml:"passed"`
	AgreementViolations uint64 `yaml:"agreement_violations"`
	ValidityViolations  uint64 `yaml:"validity_violations"`
	InvalidDecisions    uint64 `yaml:"invalid_decisions"`
	// Aborted counts the trials stopped by an internal invariant violation.
	Aborted           uint64 `yaml:"aborted"`
	TraitorCommanders uint64 `yaml:"traitor_commanders"`
	// Stopped is set when the batch ended before all iterations ran.
	Stopped bool `yaml:"stopped"`

	// Violations lists the failed trials in increasing trial order.
	Violations []Violation `yaml:"violations,omitempty"`
	// Messages summarizes the orders sent per trial.
	Messages Summary `yaml:"messages"`
	// Durations summarizes the trial durations in seconds.
	Durations Summary       `yaml:"durations"`
	Elapsed   time.Duration `yaml:"elapsed"`
}

// Violated returns true if any trial failed verification.
func (r *Report) Violated() bool {
	return len(r.Violations) > 0
}

// PassRate returns the fraction of completed trials that passed verification.
func (r *Report) PassRate() float64 {
	if r.Completed == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Completed)
}

func (r *Report) sortViolations() {
	sort.Slice(r.Violations, func(i, j int) bool {
		return r.Violations[i].Trial < r.Violations[j].Trial
	})
}

// summarize computes the summary of data, which is empty if data is.
func summarize(data stats.Float64Data) (Summary, error) {
	if data.Len() == 0 {
		return Summary{}, nil
	}
	var (
		s   Summary
		err error
	)
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, err
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, err
	}
	if s.P99, err = data.Percentile(99); err != nil {
		return Summary{}, err
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, err
	}
	return s, nil
}

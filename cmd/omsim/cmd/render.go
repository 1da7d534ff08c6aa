package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"

	"github.com/byzantine-generals/omsim/config"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/consensus/om/trial"
	"github.com/byzantine-generals/omsim/module/simulation"
)

// violationsShown caps the violations listed in a table report
const violationsShown = 20

func renderReport(w io.Writer, report *simulation.Report, format string) error {
	if format == config.OutputYAML {
		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"metric", "value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	rows := [][]string{
		{"generals", strconv.Itoa(report.Generals)},
		{"traitors", strconv.Itoa(report.Traitors)},
		{"rounds", strconv.Itoa(report.Rounds)},
		{"seed", strconv.FormatUint(report.Seed, 10)},
		{"trials completed", fmt.Sprintf("%d / %d", report.Completed, report.Iterations)},
		{"passed", fmt.Sprintf("%d (%.2f%%)", report.Passed, 100*report.PassRate())},
		{"agreement violations", strconv.FormatUint(report.AgreementViolations, 10)},
		{"validity violations", strconv.FormatUint(report.ValidityViolations, 10)},
		{"invalid decisions", strconv.FormatUint(report.InvalidDecisions, 10)},
		{"aborted", strconv.FormatUint(report.Aborted, 10)},
		{"traitor commanders", strconv.FormatUint(report.TraitorCommanders, 10)},
		{"messages per trial", summary(report.Messages, "%.0f")},
		{"trial duration (s)", summary(report.Durations, "%.6f")},
		{"elapsed", report.Elapsed.String()},
	}
	if report.Stopped {
		rows = append(rows, []string{"stopped early", "yes"})
	}
	table.AppendBulk(rows)
	table.Render()

	if !report.Violated() {
		return nil
	}
	violations := tablewriter.NewWriter(w)
	violations.SetHeader([]string{"trial", "kind", "detail"})
	violations.SetAutoWrapText(false)
	for i, v := range report.Violations {
		if i == violationsShown {
			violations.SetFooter([]string{"", "", fmt.Sprintf("%d more", len(report.Violations)-violationsShown)})
			break
		}
		violations.Append([]string{strconv.FormatUint(v.Trial, 10), v.Kind.String(), v.Detail})
	}
	violations.Render()
	return nil
}

func summary(s simulation.Summary, verb string) string {
	f := fmt.Sprintf("mean %s, median %s, p99 %s, max %s", verb, verb, verb, verb)
	return fmt.Sprintf(f, s.Mean, s.Median, s.P99, s.Max)
}

func renderTrial(w io.Writer, index uint64, result trial.Result) error {
	verdict := "ok"
	if !result.Verification.OK {
		verdict = result.Verification.Kind.String() + ": " + result.Verification.Detail
	}
	_, err := fmt.Fprintf(w, "trial %d: commander %d (%v) ordered %v, OM(%d), %d messages, verification %s\n",
		index, result.Assignment.Commander, result.Assignment.CommanderRole(), result.Order,
		result.Rounds, result.Messages, verdict)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"general", "role", "decision"})
	for i, role := range result.Assignment.Roles {
		id := model.ParticipantID(i)
		decision := result.Decisions.At(id).String()
		if id == result.Assignment.Commander {
			decision = "commander"
		}
		table.Append([]string{strconv.Itoa(i), role.String(), decision})
	}
	table.Render()
	return nil
}

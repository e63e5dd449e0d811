package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "mend.dev/pkg/mend/internal/model"
)

// SimpleUI implements UI using the cobra command's printers.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRanking prints the suspiciousness ranking as a table.
func (s *SimpleUI) DisplayRanking(ctx context.Context, program *m.Program, ranking m.Ranking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderRankingTable(program, ranking))

	return nil
}

// DisplaySearchInfo prints the search configuration line.
func (s *SimpleUI) DisplaySearchInfo(ctx context.Context, threads int, policy, formula string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("searching with %d worker(s), policy %s, formula %s\n", threads, policy, formula)
}

// DisplayTargetInfo prints the target currently being mutated.
func (s *SimpleUI) DisplayTargetInfo(ctx context.Context, target m.Statement, rank int, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("target #%d (score %.2f) %s:%d: %s\n", rank+1, score, target.File, target.Line, target.Text)
}

// DisplayPatchInfo prints one validated patch attempt.
func (s *SimpleUI) DisplayPatchInfo(ctx context.Context, target m.Statement, patch m.Patch, result m.ValidationResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	for _, op := range patch.Operations {
		s.printf("  patch %d: %s -> %s (%.0f%% passing)\n",
			patch.ID, op.Describe(target.ExprText), result.Status, result.PassRate*100)
	}
}

// DisplayOutcome prints the final result: the plausible patch with its diff,
// or the exhausted-search summary.
func (s *SimpleUI) DisplayOutcome(ctx context.Context, program *m.Program, outcome m.Outcome, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderOutcomeTable(outcome))

	if outcome.Found() && diff != "" {
		s.printf("\n%s\n", diff)
	}

	if !outcome.Found() && outcome.BestPatch != nil {
		s.printf("\nclosest miss: patch %d with %.0f%% of tests passing\n",
			outcome.BestPatch.ID, outcome.BestPassRate*100)
	}

	return nil
}

// DisplayReport prints a previously saved report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RepairReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("repair of %s (%s, %s): %s\n", report.Entry, report.Formula, report.Policy, report.Phase)
	s.printf("targets tried: %d, patches tried: %d\n", report.TargetsTried, report.PatchesTried)

	for _, op := range report.Operations {
		s.printf("  %s\n", op)
	}

	if report.Diff != "" {
		s.printf("\n%s\n", report.Diff)
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}

func renderRankingTable(program *m.Program, ranking m.Ranking) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Rank", "Score", "Line", "Statement"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
	})

	for i, score := range ranking {
		text := ""
		if stmt := program.Statement(score.StatementID); stmt != nil {
			text = stmt.Text
		}

		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.3f", score.Value),
			fmt.Sprintf("%d", score.Line),
			text,
		})
	}

	table.Render()

	return buffer.String()
}

func renderOutcomeTable(outcome m.Outcome) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Result", "Targets", "Patches"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	table.Append([]string{
		outcome.Phase.String(),
		fmt.Sprintf("%d", outcome.TargetsTried),
		fmt.Sprintf("%d", outcome.PatchesTried),
	})

	table.Render()

	return buffer.String()
}

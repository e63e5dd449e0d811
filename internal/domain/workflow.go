package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"mend.dev/pkg/mend/internal/adapter"
	"mend.dev/pkg/mend/internal/controller"
	m "mend.dev/pkg/mend/internal/model"
	"mend.dev/pkg/mend/pkg"
)

// RepairArgs contains the arguments for a repair run.
type RepairArgs struct {
	Programs []m.Path
	Suite    m.Path
	Reports  m.Path
	Config   RepairConfig
}

// RankArgs contains the arguments for a fault-localization-only run.
type RankArgs struct {
	Programs []m.Path
	Suite    m.Path
	Formula  string
	TieBreak string
	Seed     int64
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Reports m.Path
}

// Workflow is the use-case layer behind the CLI commands.
type Workflow interface {
	Repair(ctx context.Context, args RepairArgs) error
	Rank(ctx context.Context, args RankArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	programs     adapter.ProgramAdapter
	suites       adapter.SuiteAdapter
	reports      adapter.ReportStore
	ui           controller.UI
	orchestrator Orchestrator
	instrumentor Instrumentor
	collector    Collector
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	programs adapter.ProgramAdapter,
	suites adapter.SuiteAdapter,
	reports adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	instrumentor Instrumentor,
	collector Collector,
) Workflow {
	return &workflow{
		programs:     programs,
		suites:       suites,
		reports:      reports,
		ui:           ui,
		orchestrator: orchestrator,
		instrumentor: instrumentor,
		collector:    collector,
	}
}

func (w *workflow) Repair(ctx context.Context, args RepairArgs) error {
	if err := w.ui.Start(ctx, controller.WithRepairMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	program, suite, err := w.load(args.Programs, args.Suite)
	if err != nil {
		return err
	}

	w.ui.DisplaySearchInfo(ctx, normalizeThreads(args.Config.Parallel), args.Config.Policy, args.Config.Formula)

	spool, err := pkg.NewSpool[m.ValidationResult]()
	if err != nil {
		return fmt.Errorf("open validation spool: %w", err)
	}

	defer func() {
		_ = spool.Close()
	}()

	cfg := args.Config
	cfg.Events = &uiEvents{ctx: ctx, ui: w.ui, spool: spool}

	outcome, err := w.orchestrator.Repair(ctx, program, suite, cfg)
	if err != nil {
		return err
	}

	if err := w.ui.DisplayRanking(ctx, program, outcome.Ranking); err != nil {
		return err
	}

	diff, err := w.patchDiff(program, outcome.Patch)
	if err != nil {
		return err
	}

	if err := w.ui.DisplayOutcome(ctx, program, outcome, diff); err != nil {
		return err
	}

	w.logValidationSummary(spool)

	report := buildReport(program, suite, outcome, cfg, diff)
	if err := w.reports.SaveReport(args.Reports, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	w.ui.Wait(ctx)

	return nil
}

func (w *workflow) Rank(ctx context.Context, args RankArgs) error {
	if err := w.ui.Start(ctx, controller.WithRankMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	program, suite, err := w.load(args.Programs, args.Suite)
	if err != nil {
		return err
	}

	ranker, err := NewRanker(args.Formula, args.TieBreak, args.Seed)
	if err != nil {
		return err
	}

	results := make([]TraceResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		trace, verdict, err := w.instrumentor.Run(ctx, program, suite.Entry, test)
		if err != nil {
			return err
		}

		test.Verdict = verdict
		results = append(results, TraceResult{Test: test, Trace: trace, Verdict: verdict})
	}

	spectrum, err := w.collector.Collect(ctx, results)
	if err != nil {
		return err
	}

	if err := w.ui.DisplayRanking(ctx, program, ranker.Rank(spectrum, program.Statements)); err != nil {
		return err
	}

	w.ui.Wait(ctx)

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.ui.Start(ctx); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	report, err := w.reports.LoadReport(args.Reports)
	if err != nil {
		return err
	}

	if err := w.ui.DisplayReport(ctx, report); err != nil {
		return err
	}

	w.ui.Wait(ctx)

	return nil
}

func (w *workflow) load(programPaths []m.Path, suitePath m.Path) (*m.Program, m.Suite, error) {
	files, err := w.programs.Load(programPaths)
	if err != nil {
		return nil, m.Suite{}, err
	}

	program, err := BuildProgram(files)
	if err != nil {
		return nil, m.Suite{}, err
	}

	suite, err := w.suites.Load(suitePath)
	if err != nil {
		return nil, m.Suite{}, err
	}

	return program, suite, nil
}

// patchDiff renders a unified diff between the base program and the patched
// candidate, one hunk set per changed file.
func (w *workflow) patchDiff(program *m.Program, patch *m.Patch) (string, error) {
	if patch == nil {
		return "", nil
	}

	patched, err := ApplyPatch(program, *patch)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	for i, file := range program.Files {
		if string(file.Content) == string(patched[i].Content) {
			continue
		}

		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(file.Content)),
			B:        difflib.SplitLines(string(patched[i].Content)),
			FromFile: string(file.Path),
			ToFile:   string(file.Path) + " (patched)",
			Context:  3,
		})
		if err != nil {
			return "", fmt.Errorf("render diff: %w", err)
		}

		b.WriteString(diff)
	}

	return b.String(), nil
}

func (w *workflow) logValidationSummary(spool pkg.Spool[m.ValidationResult]) {
	counts := make(map[m.PatchStatus]uint64)

	err := spool.Range(func(_ uint64, result m.ValidationResult) error {
		counts[result.Status]++
		return nil
	})
	if err != nil {
		slog.Error("failed to summarize validation results", "error", err)
		return
	}

	slog.Info("validation summary",
		"plausible", counts[m.PatchPlausible],
		"rejected", counts[m.PatchRejected],
		"inapplicable", counts[m.PatchInapplicable],
	)
}

func buildReport(program *m.Program, suite m.Suite, outcome m.Outcome, cfg RepairConfig, diff string) m.RepairReport {
	report := m.RepairReport{
		Entry:        suite.Entry,
		Formula:      cfg.Formula,
		Policy:       cfg.Policy,
		Scope:        cfg.Scope,
		Phase:        outcome.Phase.String(),
		TargetsTried: outcome.TargetsTried,
		PatchesTried: outcome.PatchesTried,
		BestPassRate: outcome.BestPassRate,
		Diff:         diff,
		CreatedAt:    time.Now().UTC(),
	}

	if outcome.Validation != nil {
		report.BestPassRate = outcome.Validation.PassRate
		report.Verdicts = make(map[string]string, len(outcome.Validation.Verdicts))

		for name, verdict := range outcome.Validation.Verdicts {
			report.Verdicts[name] = verdict.String()
		}
	}

	if outcome.Patch != nil {
		for _, op := range outcome.Patch.Operations {
			original := ""
			if stmt := program.Statement(op.StatementID); stmt != nil {
				original = stmt.ExprText
			}

			report.Operations = append(report.Operations, op.Describe(original))
		}
	}

	return report
}

func normalizeThreads(threads int) int {
	if threads <= 0 {
		return 1
	}

	return threads
}

// uiEvents bridges orchestrator progress to the UI and spills every
// validation result for the post-run summary.
type uiEvents struct {
	ctx   context.Context
	ui    controller.UI
	spool pkg.Spool[m.ValidationResult]
}

func (e *uiEvents) PhaseChanged(phase m.Phase) {
	slog.Debug("phase changed", "phase", phase.String())
}

func (e *uiEvents) TargetStarted(target m.Statement, rank int, score float64) {
	e.ui.DisplayTargetInfo(e.ctx, target, rank, score)
}

func (e *uiEvents) PatchValidated(target m.Statement, patch m.Patch, result m.ValidationResult) {
	e.ui.DisplayPatchInfo(e.ctx, target, patch, result)

	if err := e.spool.Append(result); err != nil {
		slog.Error("failed to spool validation result", "patch", patch.ID, "error", err)
	}
}

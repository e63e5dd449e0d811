package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	m "mend.dev/pkg/mend/internal/model"
)

// Search policy names accepted by the orchestrator.
const (
	PolicyFirstFound = "first-found"
	PolicyExhaustive = "exhaustive"
)

// RepairConfig selects the ranking formula, ingredient scope, search policy
// and concurrency for one repair run.
type RepairConfig struct {
	Formula  string
	TieBreak string
	Seed     int64
	Scope    string
	Policy   string
	Parallel int
	Events   Events
}

// Events receives progress notifications during a repair run. Calls are
// serialized by the orchestrator, including under parallel validation.
type Events interface {
	PhaseChanged(phase m.Phase)
	TargetStarted(target m.Statement, rank int, score float64)
	PatchValidated(target m.Statement, patch m.Patch, result m.ValidationResult)
}

type noopEvents struct{}

func (noopEvents) PhaseChanged(m.Phase) {}

func (noopEvents) TargetStarted(m.Statement, int, float64) {}

func (noopEvents) PatchValidated(m.Statement, m.Patch, m.ValidationResult) {}

// Orchestrator drives the repair loop over ranked locations until a
// validated patch is found or the search space is exhausted.
//
// The run walks Localizing > Ranked > Generating(target) > Validating(patch)
// and terminates in Found or Exhausted. Under the sequential baseline the
// first plausible patch is deterministic (stable generation order); with
// parallel workers it is best-effort first-to-finish.
type Orchestrator interface {
	Repair(ctx context.Context, program *m.Program, suite m.Suite, cfg RepairConfig) (m.Outcome, error)
}

type orchestrator struct {
	instrumentor Instrumentor
	collector    Collector
	generator    Generator
	validator    Validator
}

// NewOrchestrator constructs an Orchestrator from the engine components.
func NewOrchestrator(instrumentor Instrumentor, collector Collector, generator Generator, validator Validator) Orchestrator {
	return &orchestrator{
		instrumentor: instrumentor,
		collector:    collector,
		generator:    generator,
		validator:    validator,
	}
}

// searchState accumulates the outcome across targets. Guarded by mu because
// parallel workers report results concurrently.
type searchState struct {
	mu      sync.Mutex
	outcome *m.Outcome
	policy  string
	seq     uint
}

func (o *orchestrator) Repair(ctx context.Context, program *m.Program, suite m.Suite, cfg RepairConfig) (m.Outcome, error) {
	events := cfg.Events
	if events == nil {
		events = noopEvents{}
	}

	outcome := m.Outcome{Phase: m.PhaseLocalizing}

	ranker, err := o.validateConfig(cfg)
	if err != nil {
		return outcome, err
	}

	events.PhaseChanged(m.PhaseLocalizing)

	spectrum, err := o.localize(ctx, program, suite)
	if err != nil {
		return outcome, err
	}

	outcome.Ranking = ranker.Rank(spectrum, program.Statements)
	outcome.Phase = m.PhaseRanked
	events.PhaseChanged(m.PhaseRanked)

	pool, err := HarvestIngredients(program)
	if err != nil {
		return outcome, err
	}

	slog.Info("repair search starting",
		"targets", len(outcome.Ranking),
		"ingredients", len(pool),
		"policy", cfg.Policy,
		"parallel", cfg.Parallel,
	)

	search := &searchState{outcome: &outcome, policy: cfg.Policy}

	for rank, score := range outcome.Ranking {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		target := program.Statement(score.StatementID)
		if target == nil {
			return outcome, m.NewEngineFault("program", "ranked statement %d not found", score.StatementID)
		}

		outcome.TargetsTried++
		outcome.Phase = m.PhaseGenerating
		events.PhaseChanged(m.PhaseGenerating)
		events.TargetStarted(*target, rank, score.Value)

		targetPool := FilterPoolForTarget(program, pool, *target, cfg.Scope)

		found, err := o.searchTarget(ctx, program, suite, *target, targetPool, cfg, search, events)
		if err != nil {
			return outcome, err
		}

		if found && cfg.Policy == PolicyFirstFound {
			break
		}
	}

	if outcome.Patch != nil {
		outcome.Phase = m.PhaseFound
	} else {
		outcome.Phase = m.PhaseExhausted
	}

	events.PhaseChanged(outcome.Phase)
	slog.Info("repair search finished",
		"phase", outcome.Phase.String(),
		"targets", outcome.TargetsTried,
		"patches", outcome.PatchesTried,
	)

	return outcome, nil
}

func (o *orchestrator) validateConfig(cfg RepairConfig) (Ranker, error) {
	if cfg.Policy != PolicyFirstFound && cfg.Policy != PolicyExhaustive {
		return nil, m.NewEngineFault("config", "unknown search policy %q", cfg.Policy)
	}

	if !ValidScope(cfg.Scope) {
		return nil, m.NewEngineFault("config", "unknown ingredient scope %q", cfg.Scope)
	}

	return NewRanker(cfg.Formula, cfg.TieBreak, cfg.Seed)
}

// localize runs the whole suite against the base program and folds the
// traces into a spectrum. The precondition check lives in the collector.
func (o *orchestrator) localize(ctx context.Context, program *m.Program, suite m.Suite) (m.Spectrum, error) {
	results := make([]TraceResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		trace, verdict, err := o.instrumentor.Run(ctx, program, suite.Entry, test)
		if err != nil {
			return m.Spectrum{}, err
		}

		test.Verdict = verdict
		results = append(results, TraceResult{Test: test, Trace: trace, Verdict: verdict})
	}

	return o.collector.Collect(ctx, results)
}

// streamPatches chains expression-level patches (replaces, then the remove)
// ahead of statement-level insertions, renumbering them run-wide.
func (o *orchestrator) streamPatches(ctx context.Context, target m.Statement, pool []m.Ingredient, search *searchState) <-chan m.Patch {
	out := make(chan m.Patch)

	go func() {
		defer close(out)

		for patch := range o.generator.ExpressionPatches(ctx, target, pool) {
			if !o.forward(ctx, out, patch, search) {
				return
			}
		}

		for patch := range o.generator.StatementPatches(ctx, target, pool) {
			if !o.forward(ctx, out, patch, search) {
				return
			}
		}
	}()

	return out
}

func (o *orchestrator) forward(ctx context.Context, out chan<- m.Patch, patch m.Patch, search *searchState) bool {
	search.mu.Lock()
	patch.ID = search.seq
	search.seq++
	search.mu.Unlock()

	select {
	case <-ctx.Done():
		return false
	case out <- patch:
		return true
	}
}

func (o *orchestrator) searchTarget(
	ctx context.Context,
	program *m.Program,
	suite m.Suite,
	target m.Statement,
	pool []m.Ingredient,
	cfg RepairConfig,
	search *searchState,
	events Events,
) (bool, error) {
	targetCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	patches := o.streamPatches(targetCtx, target, pool, search)

	if cfg.Parallel <= 1 {
		return o.searchSequential(targetCtx, cancel, program, suite, target, patches, cfg, search, events)
	}

	return o.searchParallel(targetCtx, cancel, program, suite, target, patches, cfg, search, events)
}

func (o *orchestrator) searchSequential(
	ctx context.Context,
	cancel context.CancelFunc,
	program *m.Program,
	suite m.Suite,
	target m.Statement,
	patches <-chan m.Patch,
	cfg RepairConfig,
	search *searchState,
	events Events,
) (bool, error) {
	found := false

	for patch := range patches {
		events.PhaseChanged(m.PhaseValidating)

		result, err := o.validator.Validate(ctx, program, patch, suite)
		if err != nil {
			return found, err
		}

		if o.recordResult(target, patch, result, search, events) {
			found = true

			if cfg.Policy == PolicyFirstFound {
				cancel()
				return true, nil
			}
		}
	}

	return found, nil
}

func (o *orchestrator) searchParallel(
	ctx context.Context,
	cancel context.CancelFunc,
	program *m.Program,
	suite m.Suite,
	target m.Statement,
	patches <-chan m.Patch,
	cfg RepairConfig,
	search *searchState,
	events Events,
) (bool, error) {
	events.PhaseChanged(m.PhaseValidating)

	var (
		foundMu sync.Mutex
		found   bool
	)

	group := &errgroup.Group{}

	for i := 0; i < cfg.Parallel; i++ {
		group.Go(func() error {
			for patch := range patches {
				result, err := o.validator.Validate(ctx, program, patch, suite)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return nil
					}

					return err
				}

				if o.recordResult(target, patch, result, search, events) {
					foundMu.Lock()
					found = true
					foundMu.Unlock()

					if cfg.Policy == PolicyFirstFound {
						// First-to-finish wins; everything in flight is
						// cancelled cooperatively.
						cancel()
						return nil
					}
				}
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return false, err
	}

	foundMu.Lock()
	defer foundMu.Unlock()

	return found, nil
}

// recordResult folds one validation into the outcome and reports whether the
// patch is plausible. The search mutex also serializes observer callbacks.
func (o *orchestrator) recordResult(target m.Statement, patch m.Patch, result m.ValidationResult, search *searchState, events Events) bool {
	search.mu.Lock()
	defer search.mu.Unlock()

	events.PatchValidated(target, patch, result)

	outcome := search.outcome
	outcome.PatchesTried++

	if result.Plausible() {
		if outcome.Patch == nil {
			patchCopy := patch
			resultCopy := result
			outcome.Patch = &patchCopy
			outcome.Validation = &resultCopy
		}

		if search.policy == PolicyExhaustive {
			outcome.Plausible = append(outcome.Plausible, patch)
		}

		return true
	}

	if result.Status == m.PatchRejected && result.PassRate > outcome.BestPassRate {
		patchCopy := patch
		outcome.BestPassRate = result.PassRate
		outcome.BestPatch = &patchCopy
	}

	return false
}

package domain

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mend.dev/pkg/mend/internal/model"
)

// recordingEvents captures every notification; the orchestrator promises the
// calls are serialized, so a plain mutex is enough for the parallel runs.
type recordingEvents struct {
	mu      sync.Mutex
	phases  []m.Phase
	targets []m.Statement
	results []m.ValidationResult
}

func (r *recordingEvents) PhaseChanged(phase m.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *recordingEvents) TargetStarted(target m.Statement, _ int, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
}

func (r *recordingEvents) PatchValidated(_ m.Statement, _ m.Patch, result m.ValidationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func newTestOrchestrator(in Instrumentor) Orchestrator {
	return NewOrchestrator(in, NewCollector(), NewGenerator(), NewValidator(in))
}

func firstFoundConfig() RepairConfig {
	return RepairConfig{
		Formula:  FormulaTarantula,
		TieBreak: TieBreakLine,
		Scope:    ScopeFile,
		Policy:   PolicyFirstFound,
		Parallel: 1,
	}
}

func TestRepair_FirstFoundSequential(t *testing.T) {
	program := sumProgram(t)
	in := NewInstrumentor()
	events := &recordingEvents{}

	cfg := firstFoundConfig()
	cfg.Events = events

	outcome, err := newTestOrchestrator(in).Repair(context.Background(), program, sumSuite(), cfg)
	require.NoError(t, err)

	require.True(t, outcome.Found())
	assert.Equal(t, m.PhaseFound, outcome.Phase)

	require.NotNil(t, outcome.Patch)
	require.Len(t, outcome.Patch.Operations, 1)

	op := outcome.Patch.Operations[0]
	assert.Equal(t, m.OperationReplace, op.Kind)
	assert.Equal(t, "a + b", op.Ingredient.Text)

	faulty := statementByText(t, program, "return a")
	assert.Equal(t, faulty.ID, op.StatementID)

	require.NotNil(t, outcome.Validation)
	assert.Equal(t, 1.0, outcome.Validation.PassRate)

	// The fix sits fourth in the deterministic candidate order, after the
	// condition, identity and literal replacements.
	assert.Equal(t, uint(3), outcome.Patch.ID)
	assert.Equal(t, 4, outcome.PatchesTried)
	assert.Equal(t, 1, outcome.TargetsTried)

	// Two baseline runs plus two per validated candidate.
	assert.Equal(t, uint64(10), in.Runs())

	require.NotEmpty(t, events.phases)
	assert.Equal(t, m.PhaseLocalizing, events.phases[0])
	assert.Equal(t, m.PhaseFound, events.phases[len(events.phases)-1])
	require.NotEmpty(t, events.targets)
	assert.Equal(t, faulty.ID, events.targets[0].ID)
	assert.Len(t, events.results, 4)
}

func TestRepair_SequentialIsDeterministic(t *testing.T) {
	cfg := firstFoundConfig()

	run := func() m.Outcome {
		in := NewInstrumentor()
		outcome, err := newTestOrchestrator(in).Repair(context.Background(), sumProgram(t), sumSuite(), cfg)
		require.NoError(t, err)

		return outcome
	}

	first := run()
	second := run()

	require.NotNil(t, first.Patch)
	require.NotNil(t, second.Patch)
	assert.Equal(t, first.Patch.ID, second.Patch.ID)
	assert.Equal(t, first.Patch.Operations, second.Patch.Operations)
	assert.Equal(t, first.PatchesTried, second.PatchesTried)
	assert.Equal(t, first.Ranking, second.Ranking)
}

func TestRepair_ExhaustiveKeepsSearching(t *testing.T) {
	program := sumProgram(t)
	in := NewInstrumentor()

	cfg := firstFoundConfig()
	cfg.Policy = PolicyExhaustive

	outcome, err := newTestOrchestrator(in).Repair(context.Background(), program, sumSuite(), cfg)
	require.NoError(t, err)

	assert.Equal(t, m.PhaseFound, outcome.Phase)
	require.Len(t, outcome.Plausible, 1)
	assert.Equal(t, outcome.Patch.ID, outcome.Plausible[0].ID)

	// Every candidate of every ranked target gets validated.
	assert.Equal(t, 3, outcome.TargetsTried)
	assert.Equal(t, 32, outcome.PatchesTried)
}

func TestRepair_ParallelFindsAPlausiblePatch(t *testing.T) {
	program := sumProgram(t)
	in := NewInstrumentor()

	cfg := firstFoundConfig()
	cfg.Parallel = 4

	outcome, err := newTestOrchestrator(in).Repair(context.Background(), program, sumSuite(), cfg)
	require.NoError(t, err)

	require.True(t, outcome.Found())
	require.NotNil(t, outcome.Patch)

	// Whichever worker won, its patch must genuinely pass the whole suite.
	check := NewValidator(NewInstrumentor())
	result, err := check.Validate(context.Background(), program, *outcome.Patch, sumSuite())
	require.NoError(t, err)
	assert.Equal(t, m.PatchPlausible, result.Status)
}

func TestRepair_ExhaustedTracksBestPartialPatch(t *testing.T) {
	// No harvested ingredient repairs a doubling function that adds, so the
	// search must exhaust while remembering the closest miss.
	program := mustProgram(t, "twice.go", `package twice

func twice(n int) int {
	return n + 1
}
`)
	suite := m.Suite{
		Entry: "twice",
		Tests: []m.TestCase{
			{Name: "one", Args: []int64{1}, Expect: 2},
			{Name: "three", Args: []int64{3}, Expect: 6},
		},
	}

	in := NewInstrumentor()

	outcome, err := newTestOrchestrator(in).Repair(context.Background(), program, suite, firstFoundConfig())
	require.NoError(t, err)

	assert.Equal(t, m.PhaseExhausted, outcome.Phase)
	assert.False(t, outcome.Found())
	assert.Nil(t, outcome.Patch)
	require.NotNil(t, outcome.BestPatch)
	assert.Equal(t, 0.5, outcome.BestPassRate)
}

func TestRepair_PreconditionNeedsFailingTest(t *testing.T) {
	program := sumProgram(t)
	suite := m.Suite{
		Entry: "sum",
		Tests: []m.TestCase{
			{Name: "small", Args: []int64{1, 2}, Expect: 3},
			{Name: "other_small", Args: []int64{4, 5}, Expect: 9},
		},
	}

	_, err := newTestOrchestrator(NewInstrumentor()).Repair(context.Background(), program, suite, firstFoundConfig())

	var precondition *m.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, 2, precondition.Passing)
	assert.Equal(t, 0, precondition.Failing)
}

func TestRepair_RejectsBadConfig(t *testing.T) {
	program := sumProgram(t)
	orch := newTestOrchestrator(NewInstrumentor())

	tests := []struct {
		name   string
		mutate func(*RepairConfig)
	}{
		{name: "unknown policy", mutate: func(c *RepairConfig) { c.Policy = "sometimes" }},
		{name: "unknown scope", mutate: func(c *RepairConfig) { c.Scope = "galaxy" }},
		{name: "unknown formula", mutate: func(c *RepairConfig) { c.Formula = "magic" }},
		{name: "unknown tie break", mutate: func(c *RepairConfig) { c.TieBreak = "alphabetical" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := firstFoundConfig()
			tt.mutate(&cfg)

			_, err := orch.Repair(context.Background(), program, sumSuite(), cfg)

			var fault *m.EngineFault
			require.ErrorAs(t, err, &fault)
		})
	}
}

func TestRepair_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(NewInstrumentor()).Repair(ctx, sumProgram(t), sumSuite(), firstFoundConfig())
	require.ErrorIs(t, err, context.Canceled)
}

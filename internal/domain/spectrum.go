package domain

import (
	"context"
	"log/slog"

	m "mend.dev/pkg/mend/internal/model"
)

// TraceResult pairs one test case's trace with its verdict on the base
// program. Traces are consumed by the collector immediately after each run.
type TraceResult struct {
	Test    m.TestCase
	Trace   m.ExecutionTrace
	Verdict m.Verdict
}

// Collector folds per-test execution traces into a Spectrum.
type Collector interface {
	Collect(ctx context.Context, results []TraceResult) (m.Spectrum, error)
}

type collector struct{}

// NewCollector constructs the spectrum collector.
func NewCollector() Collector {
	return &collector{}
}

// Collect aggregates the traces. It fails fast with a PreconditionError when
// the suite lacks a passing case, a failing case, or both: spectrum-based
// repair needs at least one of each.
func (c *collector) Collect(ctx context.Context, results []TraceResult) (m.Spectrum, error) {
	if err := ctx.Err(); err != nil {
		return m.Spectrum{}, err
	}

	spectrum := m.Spectrum{Entries: make(map[uint]m.SpectrumEntry)}

	for _, result := range results {
		switch result.Verdict {
		case m.VerdictPass:
			spectrum.TotalPassed++
		case m.VerdictFail:
			spectrum.TotalFailed++
		case m.VerdictUnknown:
			return m.Spectrum{}, m.NewEngineFault("suite", "test %s has no verdict", result.Test.Name)
		}

		for id, count := range result.Trace {
			if count <= 0 {
				continue
			}

			entry := spectrum.Entries[id]

			// A statement counts once per distinct test whose trace hits it,
			// regardless of how many times that test executed it.
			if result.Verdict == m.VerdictFail {
				entry.Failed++
			} else {
				entry.Passed++
			}

			spectrum.Entries[id] = entry
		}
	}

	if spectrum.TotalFailed == 0 || spectrum.TotalPassed == 0 {
		return m.Spectrum{}, &m.PreconditionError{
			Passing: spectrum.TotalPassed,
			Failing: spectrum.TotalFailed,
		}
	}

	slog.Debug("collected spectrum",
		"statements", len(spectrum.Entries),
		"failing", spectrum.TotalFailed,
		"passing", spectrum.TotalPassed,
	)

	return spectrum, nil
}

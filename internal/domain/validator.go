package domain

import (
	"context"
	"log/slog"

	m "mend.dev/pkg/mend/internal/model"
)

// Validator applies one candidate patch to a copy of the base program and
// re-runs the whole suite against it. Per-patch and per-test failures are
// folded into the ValidationResult; nothing escapes except cancellation.
type Validator interface {
	Validate(ctx context.Context, base *m.Program, patch m.Patch, suite m.Suite) (m.ValidationResult, error)
}

type validator struct {
	instrumentor Instrumentor
}

// NewValidator constructs a Validator backed by the provided instrumentor.
func NewValidator(instrumentor Instrumentor) Validator {
	return &validator{instrumentor: instrumentor}
}

func (v *validator) Validate(ctx context.Context, base *m.Program, patch m.Patch, suite m.Suite) (m.ValidationResult, error) {
	result := m.ValidationResult{
		PatchID:  patch.ID,
		Verdicts: make(map[string]m.Verdict, len(suite.Tests)),
	}

	candidate, err := v.applyCandidate(base, patch)
	if err != nil {
		// A patch that cannot be applied or no longer parses is rejected
		// with a distinct status, not conflated with a test failure.
		slog.Debug("patch inapplicable", "patch", patch.ID, "error", err)
		result.Status = m.PatchInapplicable

		return result, nil
	}

	passed := 0

	for _, test := range suite.Tests {
		// Cooperative cancellation point between test runs.
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, verdict, err := v.instrumentor.Run(ctx, candidate, suite.Entry, test)
		if err != nil {
			return result, err
		}

		result.Verdicts[test.Name] = verdict
		if verdict == m.VerdictPass {
			passed++
		}
	}

	result.PassRate = float64(passed) / float64(len(suite.Tests))

	if passed == len(suite.Tests) {
		result.Status = m.PatchPlausible
	} else {
		result.Status = m.PatchRejected
	}

	return result, nil
}

func (v *validator) applyCandidate(base *m.Program, patch m.Patch) (*m.Program, error) {
	files, err := ApplyPatch(base, patch)
	if err != nil {
		return nil, err
	}

	return BuildProgram(files)
}

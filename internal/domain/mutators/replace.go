package mutators

import (
	m "mend.dev/pkg/mend/internal/model"
)

// BuildReplace substitutes the ingredient for the target's expression. The
// identity replacement (ingredient text equal to the original expression) is
// produced like any other, keeping the search space complete.
func BuildReplace(target m.Statement, ingredient m.Ingredient) (m.MutationOperation, bool) {
	if !CanReplace(target) {
		return m.MutationOperation{}, false
	}

	op := m.MutationOperation{
		Kind:        m.OperationReplace,
		StatementID: target.ID,
		File:        target.File,
		Span:        target.Expr,
		Ingredient:  &ingredient,
	}

	return op, true
}

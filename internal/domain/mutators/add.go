package mutators

import (
	m "mend.dev/pkg/mend/internal/model"
)

// BuildAdd inserts the ingredient as a new statement on its own line after
// the target statement. Applicable to statement-level targets only, never to
// a pure expression target.
func BuildAdd(target m.Statement, ingredient m.Ingredient) m.MutationOperation {
	return m.MutationOperation{
		Kind:        m.OperationAdd,
		StatementID: target.ID,
		File:        target.File,
		Span:        m.Span{Start: target.Span.End, End: target.Span.End},
		Ingredient:  &ingredient,
	}
}

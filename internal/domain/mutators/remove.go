package mutators

import (
	m "mend.dev/pkg/mend/internal/model"
)

// BuildRemove drops the target expression. Inside a return this leaves a
// bare `return`, which parses; any other target rejects the operation.
func BuildRemove(target m.Statement) (m.MutationOperation, bool) {
	if !CanRemove(target) {
		return m.MutationOperation{}, false
	}

	op := m.MutationOperation{
		Kind:        m.OperationRemove,
		StatementID: target.ID,
		File:        target.File,
		Span:        target.Expr,
	}

	return op, true
}

// Package mutators provides builders for the mutation operation variants.
package mutators

import (
	m "mend.dev/pkg/mend/internal/model"
)

// CanReplace reports whether the statement carries an expression target.
func CanReplace(target m.Statement) bool {
	return target.HasExpr
}

// CanRemove reports whether dropping the target expression still yields a
// syntactically valid program. Only return results qualify: a bare `return`
// parses, while an assignment or condition with no right-hand side does not.
func CanRemove(target m.Statement) bool {
	return target.HasExpr && target.Kind == m.StatementReturn
}

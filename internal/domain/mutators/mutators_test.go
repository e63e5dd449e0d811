package mutators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mend.dev/pkg/mend/internal/model"
)

func returnTarget() m.Statement {
	return m.Statement{
		ID:      4,
		Kind:    m.StatementReturn,
		File:    "main.go",
		Span:    m.Span{Start: 40, End: 52},
		Expr:    m.Span{Start: 47, End: 52},
		HasExpr: true,
	}
}

func assignTarget() m.Statement {
	return m.Statement{
		ID:      2,
		Kind:    m.StatementAssign,
		File:    "main.go",
		Span:    m.Span{Start: 20, End: 30},
		Expr:    m.Span{Start: 26, End: 30},
		HasExpr: true,
	}
}

func TestBuildReplace(t *testing.T) {
	ingredient := m.Ingredient{Text: "a + b", File: "main.go", Index: 3}

	op, ok := BuildReplace(returnTarget(), ingredient)
	require.True(t, ok)
	assert.Equal(t, m.OperationReplace, op.Kind)
	assert.Equal(t, uint(4), op.StatementID)
	assert.Equal(t, m.Span{Start: 47, End: 52}, op.Span)
	require.NotNil(t, op.Ingredient)
	assert.Equal(t, "a + b", op.Ingredient.Text)
}

func TestBuildReplace_RequiresExpressionTarget(t *testing.T) {
	bare := m.Statement{ID: 1, Kind: m.StatementReturn, HasExpr: false}

	_, ok := BuildReplace(bare, m.Ingredient{Text: "a"})
	assert.False(t, ok)
}

func TestBuildRemove_OnlyReturnResults(t *testing.T) {
	op, ok := BuildRemove(returnTarget())
	require.True(t, ok)
	assert.Equal(t, m.OperationRemove, op.Kind)
	assert.Equal(t, m.Span{Start: 47, End: 52}, op.Span)
	assert.Nil(t, op.Ingredient)

	// Removing the right-hand side of an assignment or a condition would not
	// parse, so the builder refuses.
	_, ok = BuildRemove(assignTarget())
	assert.False(t, ok)

	cond := m.Statement{ID: 0, Kind: m.StatementIf, HasExpr: true}
	_, ok = BuildRemove(cond)
	assert.False(t, ok)
}

func TestBuildAdd_InsertsAfterTarget(t *testing.T) {
	target := assignTarget()

	op := BuildAdd(target, m.Ingredient{Text: "n = n - 1"})
	assert.Equal(t, m.OperationAdd, op.Kind)
	assert.Equal(t, m.Span{Start: target.Span.End, End: target.Span.End}, op.Span)
	require.NotNil(t, op.Ingredient)
	assert.Equal(t, "n = n - 1", op.Ingredient.Text)
}

func TestCanReplace(t *testing.T) {
	assert.True(t, CanReplace(returnTarget()))
	assert.False(t, CanReplace(m.Statement{Kind: m.StatementReturn}))
}

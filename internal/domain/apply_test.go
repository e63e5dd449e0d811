package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mend.dev/pkg/mend/internal/domain/mutators"
	m "mend.dev/pkg/mend/internal/model"
)

func TestApplyPatch_ReplaceLeavesBaseUntouched(t *testing.T) {
	program := sumProgram(t)
	target := statementByText(t, program, "return a")

	op, ok := mutators.BuildReplace(target, m.Ingredient{Text: "a + b"})
	require.True(t, ok)

	files, err := ApplyPatch(program, m.Patch{ID: 1, Operations: []m.MutationOperation{op}})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Contains(t, string(files[0].Content), "return a + b\n\t}")
	assert.Equal(t, sumSource, string(program.Files[0].Content), "base program must stay pristine")

	// The patched text still parses and keeps its statement count.
	patched, err := BuildProgram(files)
	require.NoError(t, err)
	assert.Len(t, patched.Statements, len(program.Statements))
}

func TestApplyPatch_RemoveYieldsBareReturn(t *testing.T) {
	program := sumProgram(t)
	target := statementByText(t, program, "return a")

	op, ok := mutators.BuildRemove(target)
	require.True(t, ok)

	files, err := ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{op}})
	require.NoError(t, err)

	assert.Contains(t, string(files[0].Content), "return\n\t}")

	_, err = BuildProgram(files)
	require.NoError(t, err, "a bare return must still parse")
}

func TestApplyPatch_AddInsertsStatementAfterTarget(t *testing.T) {
	program := gateProgram(t)
	target := statementByText(t, program, "result := 0")

	op := mutators.BuildAdd(target, m.Ingredient{Text: "result = a + b"})

	files, err := ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{op}})
	require.NoError(t, err)

	assert.Contains(t, string(files[0].Content), "result := 0\nresult = a + b")

	patched, err := BuildProgram(files)
	require.NoError(t, err)
	assert.Len(t, patched.Statements, len(program.Statements)+1)
}

func TestApplyPatch_IdentityReplaceReproducesSource(t *testing.T) {
	program := sumProgram(t)
	target := statementByText(t, program, "return a")

	op, ok := mutators.BuildReplace(target, m.Ingredient{Text: target.ExprText})
	require.True(t, ok)

	files, err := ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{op}})
	require.NoError(t, err)

	assert.Equal(t, sumSource, string(files[0].Content))
}

func TestApplyPatch_RejectsOverlappingOperations(t *testing.T) {
	program := sumProgram(t)
	target := statementByText(t, program, "return a + b")

	first, ok := mutators.BuildReplace(target, m.Ingredient{Text: "a"})
	require.True(t, ok)

	second, ok := mutators.BuildReplace(target, m.Ingredient{Text: "b"})
	require.True(t, ok)

	_, err := ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{first, second}})

	var fault *m.EngineFault
	require.ErrorAs(t, err, &fault)
	assert.Contains(t, fault.Error(), "overlapping")
}

func TestApplyPatch_RejectsUnknownFileAndBadSpans(t *testing.T) {
	program := sumProgram(t)

	_, err := ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{{
		Kind: m.OperationRemove,
		File: "ghost.go",
		Span: m.Span{Start: 0, End: 1},
	}}})

	var fault *m.EngineFault
	require.ErrorAs(t, err, &fault)

	_, err = ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{{
		Kind: m.OperationRemove,
		File: "sum.go",
		Span: m.Span{Start: 0, End: len(sumSource) + 10},
	}}})
	require.ErrorAs(t, err, &fault)
}

func TestApplyPatch_InapplicableTextFailsReparse(t *testing.T) {
	program := sumProgram(t)
	target := statementByText(t, program, "return a")

	op, ok := mutators.BuildReplace(target, m.Ingredient{Text: "a +"})
	require.True(t, ok)

	files, err := ApplyPatch(program, m.Patch{Operations: []m.MutationOperation{op}})
	require.NoError(t, err, "splicing is purely textual")
	assert.True(t, strings.Contains(string(files[0].Content), "return a +\n"))

	_, err = BuildProgram(files)
	require.Error(t, err, "the damage surfaces at re-parse")
}

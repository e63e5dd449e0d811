package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mend.dev/pkg/mend/internal/model"
)

func TestBuildProgram_EnumeratesStatementsInSourceOrder(t *testing.T) {
	program := sumProgram(t)

	require.Len(t, program.Statements, 3)

	assert.Equal(t, m.StatementIf, program.Statements[0].Kind)
	assert.Equal(t, "if a >= 10", program.Statements[0].Text)

	assert.Equal(t, m.StatementReturn, program.Statements[1].Kind)
	assert.Equal(t, "return a", program.Statements[1].Text)
	assert.Equal(t, "a", program.Statements[1].ExprText)

	assert.Equal(t, m.StatementReturn, program.Statements[2].Kind)
	assert.Equal(t, "return a + b", program.Statements[2].Text)
	assert.Equal(t, "a + b", program.Statements[2].ExprText)

	for i, stmt := range program.Statements {
		assert.Equal(t, uint(i), stmt.ID)
		assert.Equal(t, m.Path("sum.go"), stmt.File)
		assert.Equal(t, "sum", stmt.Function)
		assert.True(t, stmt.HasExpr)
	}
}

func TestBuildProgram_DescendsIntoBranchesAndLoops(t *testing.T) {
	program := gateProgram(t)

	require.Len(t, program.Statements, 5)

	texts := make([]string, 0, len(program.Statements))
	for _, stmt := range program.Statements {
		texts = append(texts, stmt.Text)
	}

	assert.Equal(t, []string{
		"result := 0",
		"if a >= 10",
		"result = a",
		"result = a + b",
		"return result",
	}, texts)
}

func TestBuildProgram_LoopHeaderText(t *testing.T) {
	program := mustProgram(t, "loop.go", `package loop

func twice(n int) int {
	total := 0
	for n > 0 {
		total = total + 2
		n = n - 1
	}
	return total
}
`)

	stmt := statementByText(t, program, "for n > 0")
	assert.Equal(t, m.StatementFor, stmt.Kind)
	assert.Equal(t, "n > 0", stmt.ExprText)
}

func TestBuildProgram_FunctionTable(t *testing.T) {
	program := mustProgram(t, "pair.go", `package pair

func first(a int, b int) int {
	return a
}

func second(a int, b int) int {
	return b
}
`)

	require.Len(t, program.Functions, 2)

	fn := program.Function("second")
	require.NotNil(t, fn)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	assert.Equal(t, m.Path("pair.go"), fn.File)

	assert.Nil(t, program.Function("third"))
}

func TestBuildProgram_SpansSliceOriginalText(t *testing.T) {
	program := sumProgram(t)
	file := program.File("sum.go")
	require.NotNil(t, file)

	stmt := statementByText(t, program, "return a + b")
	assert.Equal(t, "return a + b", string(file.Content[stmt.Span.Start:stmt.Span.End]))
	assert.Equal(t, "a + b", string(file.Content[stmt.Expr.Start:stmt.Expr.End]))
}

func TestBuildProgram_RejectsUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "non function declaration",
			source: "package p\n\nvar x = 1\n",
		},
		{
			name:   "non int parameter",
			source: "package p\n\nfunc f(s string) int {\n\treturn 0\n}\n",
		},
		{
			name:   "multi assignment",
			source: "package p\n\nfunc f(a int, b int) int {\n\ta, b = b, a\n\treturn a\n}\n",
		},
		{
			name:   "if init clause",
			source: "package p\n\nfunc f(a int) int {\n\tif b := a; b > 0 {\n\t\treturn b\n\t}\n\treturn 0\n}\n",
		},
		{
			name:   "for post clause",
			source: "package p\n\nfunc f(n int) int {\n\tfor i := 0; i < n; i++ {\n\t\tn = n - 1\n\t}\n\treturn n\n}\n",
		},
		{
			name:   "multi result return",
			source: "package p\n\nfunc f(a int) int {\n\treturn a, a\n}\n",
		},
		{
			name:   "duplicate function",
			source: "package p\n\nfunc f(a int) int {\n\treturn a\n}\n\nfunc f(b int) int {\n\treturn b\n}\n",
		},
		{
			name:   "syntax error",
			source: "package p\n\nfunc f( {\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildProgram([]m.SourceFile{{Path: "bad.go", Content: []byte(tt.source)}})
			require.Error(t, err)

			var fault *m.EngineFault
			require.ErrorAs(t, err, &fault)
		})
	}
}

func TestBuildProgram_TwoIndexesAgreeOnIDs(t *testing.T) {
	first := gateProgram(t)
	second := gateProgram(t)

	require.Len(t, second.Statements, len(first.Statements))

	for i := range first.Statements {
		assert.Equal(t, first.Statements[i].ID, second.Statements[i].ID)
		assert.Equal(t, first.Statements[i].Text, second.Statements[i].Text)
		assert.Equal(t, first.Statements[i].Span, second.Statements[i].Span)
	}
}

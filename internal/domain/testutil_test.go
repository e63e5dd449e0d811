package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "mend.dev/pkg/mend/internal/model"
)

// sumSource returns the wrong operand for large first arguments: the early
// return should add b but does not.
const sumSource = `package sum

func sum(a int, b int) int {
	if a >= 10 {
		return a
	}
	return a + b
}
`

// gateSource carries the same bug in accumulator form, so every statement of
// the faulty path is exercised by both tests except the faulty assignment.
const gateSource = `package gate

func gate(a int, b int) int {
	result := 0
	if a >= 10 {
		result = a
	} else {
		result = a + b
	}
	return result
}
`

func mustProgram(t *testing.T, path, source string) *m.Program {
	t.Helper()

	program, err := BuildProgram([]m.SourceFile{{Path: m.Path(path), Content: []byte(source)}})
	require.NoError(t, err)

	return program
}

func sumProgram(t *testing.T) *m.Program {
	t.Helper()
	return mustProgram(t, "sum.go", sumSource)
}

func sumSuite() m.Suite {
	return m.Suite{
		Entry: "sum",
		Tests: []m.TestCase{
			{Name: "small_operands", Args: []int64{1, 2}, Expect: 3},
			{Name: "large_first_operand", Args: []int64{10, 20}, Expect: 30},
		},
	}
}

func gateProgram(t *testing.T) *m.Program {
	t.Helper()
	return mustProgram(t, "gate.go", gateSource)
}

func gateSuite() m.Suite {
	return m.Suite{
		Entry: "gate",
		Tests: []m.TestCase{
			{Name: "small_operands", Args: []int64{1, 2}, Expect: 3},
			{Name: "large_first_operand", Args: []int64{10, 20}, Expect: 30},
		},
	}
}

// statementByText finds the statement whose rendered text matches exactly.
func statementByText(t *testing.T, program *m.Program, text string) m.Statement {
	t.Helper()

	for _, stmt := range program.Statements {
		if stmt.Text == text {
			return stmt
		}
	}

	t.Fatalf("no statement with text %q", text)

	return m.Statement{}
}

// Package model defines the data structures for the repair engine.
package model

// StatementKind classifies the statement forms of the supported subset.
type StatementKind string

const (
	// StatementAssign represents a single-name assignment (= or :=).
	StatementAssign StatementKind = "assign"
	// StatementIf represents an if statement; tracing counts condition evaluations.
	StatementIf StatementKind = "if"
	// StatementFor represents a for loop; tracing counts condition evaluations.
	StatementFor StatementKind = "for"
	// StatementReturn represents a return with zero or one result.
	StatementReturn StatementKind = "return"
	// StatementExpr represents a bare expression statement.
	StatementExpr StatementKind = "expr"
)

// Span is a half-open byte range [Start, End) into a file's contents.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Statement is one executable node of a parsed program, immutable once parsed.
// The ID is assigned in source order across the loaded file set and stays
// stable for the lifetime of the Program snapshot it belongs to.
type Statement struct {
	ID       uint
	Kind     StatementKind
	File     Path
	Function string
	Line     int
	Text     string
	Span     Span
	// Expr is the byte span of the statement's primary expression: the
	// assignment RHS, the return result, the if/for condition, or the
	// expression of an expression statement. Zero for a bare `return` or a
	// condition-less `for`.
	Expr     Span
	ExprText string
	HasExpr  bool
}

// SourceFile is one loaded program file together with its raw contents.
type SourceFile struct {
	Path    Path
	Package string
	Content []byte
}

// Function describes one function of the program.
type Function struct {
	Name   string
	File   Path
	Params []string
	Line   int
}

// Program is an immutable snapshot of a parsed program: the loaded files,
// their functions, and every supported statement in source order. Patch
// application never mutates a Program; it produces new file contents that are
// parsed into a fresh snapshot.
type Program struct {
	Files      []SourceFile
	Functions  []Function
	Statements []Statement
}

// File returns the loaded file with the given path, or nil.
func (p *Program) File(path Path) *SourceFile {
	for i := range p.Files {
		if p.Files[i].Path == path {
			return &p.Files[i]
		}
	}

	return nil
}

// Statement returns the statement with the given id, or nil.
func (p *Program) Statement(id uint) *Statement {
	for i := range p.Statements {
		if p.Statements[i].ID == id {
			return &p.Statements[i]
		}
	}

	return nil
}

// Function returns the function with the given name, or nil.
func (p *Program) Function(name string) *Function {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i]
		}
	}

	return nil
}

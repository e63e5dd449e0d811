// Package domain contains the core repair workflow and engine logic.
package domain

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	m "mend.dev/pkg/mend/internal/model"
)

// programIndex is the parsed form of a program snapshot: one AST per file, a
// function table, and every supported statement enumerated in source order.
// Statement ids are assigned by the enumeration, so two indexes built from
// the same file set always agree on ids.
type programIndex struct {
	fset   *token.FileSet
	files  []*indexedFile
	funcs  map[string]*indexedFunc
	stmts  []m.Statement
	stmtID map[ast.Stmt]uint
}

type indexedFile struct {
	src m.SourceFile
	ast *ast.File
}

type indexedFunc struct {
	decl   *ast.FuncDecl
	file   *indexedFile
	params []string
}

// buildIndex parses the files and enumerates their statements, rejecting
// constructs outside the supported subset with an EngineFault.
func buildIndex(files []m.SourceFile) (*programIndex, error) {
	idx := &programIndex{
		fset:   token.NewFileSet(),
		funcs:  make(map[string]*indexedFunc),
		stmtID: make(map[ast.Stmt]uint),
	}

	for i := range files {
		parsed, err := parser.ParseFile(idx.fset, string(files[i].Path), files[i].Content, parser.SkipObjectResolution)
		if err != nil {
			return nil, m.NewEngineFault("program", "parse %s: %v", files[i].Path, err)
		}

		file := &indexedFile{src: files[i], ast: parsed}
		file.src.Package = parsed.Name.Name
		idx.files = append(idx.files, file)

		if err := idx.indexDecls(file); err != nil {
			return nil, err
		}
	}

	for _, file := range idx.files {
		for _, decl := range file.ast.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}

			fn := idx.funcs[fd.Name.Name]
			if err := idx.enumerateBlock(file, fn, fd.Body.List); err != nil {
				return nil, err
			}
		}
	}

	return idx, nil
}

func (idx *programIndex) indexDecls(file *indexedFile) error {
	for _, decl := range file.ast.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			return m.NewEngineFault("program", "%s: only func declarations are supported", file.src.Path)
		}

		if fd.Body == nil {
			return m.NewEngineFault("program", "%s: func %s has no body", file.src.Path, fd.Name.Name)
		}

		if _, exists := idx.funcs[fd.Name.Name]; exists {
			return m.NewEngineFault("program", "duplicate function %s", fd.Name.Name)
		}

		params, err := paramNames(file.src.Path, fd)
		if err != nil {
			return err
		}

		idx.funcs[fd.Name.Name] = &indexedFunc{decl: fd, file: file, params: params}
	}

	return nil
}

func paramNames(path m.Path, fd *ast.FuncDecl) ([]string, error) {
	var names []string

	for _, field := range fd.Type.Params.List {
		ident, ok := field.Type.(*ast.Ident)
		if !ok || ident.Name != "int" {
			return nil, m.NewEngineFault("program", "%s: func %s: parameters must be typed int", path, fd.Name.Name)
		}

		for _, name := range field.Names {
			names = append(names, name.Name)
		}
	}

	return names, nil
}

// enumerateBlock assigns ids to the statements of a block in source order,
// descending into if/else and for bodies.
func (idx *programIndex) enumerateBlock(file *indexedFile, fn *indexedFunc, stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := idx.enumerateStmt(file, fn, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (idx *programIndex) enumerateStmt(file *indexedFile, fn *indexedFunc, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
			return idx.fault(file, stmt, "assignments must have a single name and value")
		}

		if _, ok := s.Lhs[0].(*ast.Ident); !ok {
			return idx.fault(file, stmt, "assignment target must be an identifier")
		}

		idx.record(file, fn, stmt, m.StatementAssign, s.Rhs[0])

	case *ast.ReturnStmt:
		if len(s.Results) > 1 {
			return idx.fault(file, stmt, "return may carry at most one result")
		}

		var expr ast.Expr
		if len(s.Results) == 1 {
			expr = s.Results[0]
		}

		idx.record(file, fn, stmt, m.StatementReturn, expr)

	case *ast.IfStmt:
		if s.Init != nil {
			return idx.fault(file, stmt, "if init clauses are not supported")
		}

		idx.record(file, fn, stmt, m.StatementIf, s.Cond)

		if err := idx.enumerateBlock(file, fn, s.Body.List); err != nil {
			return err
		}

		if err := idx.enumerateElse(file, fn, s.Else); err != nil {
			return err
		}

	case *ast.ForStmt:
		if s.Init != nil || s.Post != nil {
			return idx.fault(file, stmt, "for init/post clauses are not supported")
		}

		idx.record(file, fn, stmt, m.StatementFor, s.Cond)

		if err := idx.enumerateBlock(file, fn, s.Body.List); err != nil {
			return err
		}

	case *ast.ExprStmt:
		idx.record(file, fn, stmt, m.StatementExpr, s.X)

	case *ast.BlockStmt:
		if err := idx.enumerateBlock(file, fn, s.List); err != nil {
			return err
		}

	default:
		return idx.fault(file, stmt, "unsupported statement")
	}

	return nil
}

func (idx *programIndex) enumerateElse(file *indexedFile, fn *indexedFunc, stmt ast.Stmt) error {
	if stmt == nil {
		return nil
	}

	return idx.enumerateStmt(file, fn, stmt)
}

func (idx *programIndex) fault(file *indexedFile, stmt ast.Stmt, detail string) error {
	pos := idx.fset.Position(stmt.Pos())
	return m.NewEngineFault("program", "%s:%d: %s", file.src.Path, pos.Line, detail)
}

func (idx *programIndex) record(file *indexedFile, fn *indexedFunc, stmt ast.Stmt, kind m.StatementKind, expr ast.Expr) {
	id := uint(len(idx.stmts))
	pos := idx.fset.Position(stmt.Pos())
	span := idx.span(stmt)

	entry := m.Statement{
		ID:       id,
		Kind:     kind,
		File:     file.src.Path,
		Function: fn.decl.Name.Name,
		Line:     pos.Line,
		Text:     statementText(kind, file.src.Content, span, idx.exprSpan(expr)),
		Span:     span,
	}

	if expr != nil {
		entry.HasExpr = true
		entry.Expr = idx.exprSpan(expr)
		entry.ExprText = string(file.src.Content[entry.Expr.Start:entry.Expr.End])
	}

	idx.stmts = append(idx.stmts, entry)
	idx.stmtID[stmt] = id
}

func (idx *programIndex) span(node ast.Node) m.Span {
	return m.Span{
		Start: idx.fset.Position(node.Pos()).Offset,
		End:   idx.fset.Position(node.End()).Offset,
	}
}

func (idx *programIndex) exprSpan(expr ast.Expr) m.Span {
	if expr == nil {
		return m.Span{}
	}

	return idx.span(expr)
}

// statementText renders a one-line summary: if/for statements show only their
// header so multi-line bodies do not leak into reports.
func statementText(kind m.StatementKind, content []byte, span, expr m.Span) string {
	switch kind {
	case m.StatementIf:
		if expr.Len() > 0 {
			return "if " + string(content[expr.Start:expr.End])
		}

		return "if"
	case m.StatementFor:
		if expr.Len() > 0 {
			return "for " + string(content[expr.Start:expr.End])
		}

		return "for"
	case m.StatementAssign, m.StatementReturn, m.StatementExpr:
	}

	return strings.TrimSpace(string(content[span.Start:span.End]))
}

// BuildProgram parses the provided files into an immutable Program snapshot.
func BuildProgram(files []m.SourceFile) (*m.Program, error) {
	idx, err := buildIndex(files)
	if err != nil {
		return nil, err
	}

	return idx.program(), nil
}

func (idx *programIndex) program() *m.Program {
	prog := &m.Program{}

	for _, file := range idx.files {
		prog.Files = append(prog.Files, file.src)
	}

	for _, file := range idx.files {
		for _, decl := range file.ast.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}

			fn := idx.funcs[fd.Name.Name]
			prog.Functions = append(prog.Functions, m.Function{
				Name:   fd.Name.Name,
				File:   file.src.Path,
				Params: fn.params,
				Line:   idx.fset.Position(fd.Pos()).Line,
			})
		}
	}

	prog.Statements = append(prog.Statements, idx.stmts...)

	return prog
}

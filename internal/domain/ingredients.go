package domain

import (
	"go/ast"
	"path/filepath"

	m "mend.dev/pkg/mend/internal/model"
)

// Ingredient scope names accepted by the harvester.
const (
	ScopeFile     = "file"
	ScopePackage  = "package"
	ScopeCodebase = "codebase"
)

// ValidScope reports whether the name is a known ingredient scope.
func ValidScope(scope string) bool {
	return scope == ScopeFile || scope == ScopePackage || scope == ScopeCodebase
}

// HarvestIngredients extracts every distinct expression of the program in
// preorder discovery order, deduplicated by source text. The pool is reused
// across all mutation attempts of a run.
func HarvestIngredients(program *m.Program) ([]m.Ingredient, error) {
	idx, err := buildIndex(program.Files)
	if err != nil {
		return nil, err
	}

	var pool []m.Ingredient

	seen := make(map[string]struct{})

	for _, file := range idx.files {
		for _, decl := range file.ast.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}

			pool = harvestExprs(idx, file, fd, pool, seen)
		}
	}

	return pool, nil
}

func harvestExprs(idx *programIndex, file *indexedFile, fd *ast.FuncDecl, pool []m.Ingredient, seen map[string]struct{}) []m.Ingredient {
	ast.Inspect(fd.Body, func(node ast.Node) bool {
		expr, ok := node.(ast.Expr)
		if !ok {
			return true
		}

		// Parens add nothing the inner expression does not already provide.
		if _, paren := expr.(*ast.ParenExpr); paren {
			return true
		}

		span := idx.span(expr)
		text := string(file.src.Content[span.Start:span.End])

		if _, dup := seen[text]; dup {
			return true
		}

		seen[text] = struct{}{}
		pool = append(pool, m.Ingredient{
			Text:  text,
			File:  file.src.Path,
			Line:  idx.fset.Position(expr.Pos()).Line,
			Index: len(pool),
		})

		return true
	})

	return pool
}

// FilterPoolForTarget narrows the pool to the configured scope relative to
// the target statement's file: same file, same package directory, or the
// whole loaded set.
func FilterPoolForTarget(program *m.Program, pool []m.Ingredient, target m.Statement, scope string) []m.Ingredient {
	if scope == ScopeCodebase {
		return pool
	}

	targetFile := program.File(target.File)
	if targetFile == nil {
		return nil
	}

	filtered := make([]m.Ingredient, 0, len(pool))

	for _, ingredient := range pool {
		switch scope {
		case ScopeFile:
			if ingredient.File == target.File {
				filtered = append(filtered, ingredient)
			}
		case ScopePackage:
			if samePackage(program, ingredient.File, targetFile) {
				filtered = append(filtered, ingredient)
			}
		}
	}

	return filtered
}

func samePackage(program *m.Program, path m.Path, target *m.SourceFile) bool {
	file := program.File(path)
	if file == nil {
		return false
	}

	return file.Package == target.Package &&
		filepath.Dir(string(file.Path)) == filepath.Dir(string(target.Path))
}

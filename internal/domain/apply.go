package domain

import (
	"sort"

	m "mend.dev/pkg/mend/internal/model"
)

// ApplyPatch produces the patched file set for a candidate program. The base
// program is never touched: every affected file gets fresh content bytes
// (copy-on-apply), so parallel workers can share one base snapshot safely.
// Overlapping operation spans within one file reject the patch.
func ApplyPatch(base *m.Program, patch m.Patch) ([]m.SourceFile, error) {
	edits := make(map[m.Path][]m.MutationOperation)

	for _, op := range patch.Operations {
		if base.File(op.File) == nil {
			return nil, m.NewEngineFault("patch", "operation targets unknown file %s", op.File)
		}

		edits[op.File] = append(edits[op.File], op)
	}

	files := make([]m.SourceFile, len(base.Files))

	for i, file := range base.Files {
		files[i] = file

		ops, ok := edits[file.Path]
		if !ok {
			continue
		}

		content, err := spliceFile(file, ops)
		if err != nil {
			return nil, err
		}

		files[i].Content = content
	}

	return files, nil
}

// spliceFile applies the edits back to front so earlier offsets stay valid.
func spliceFile(file m.SourceFile, ops []m.MutationOperation) ([]byte, error) {
	sorted := make([]m.MutationOperation, len(ops))
	copy(sorted, ops)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Span.End > sorted[i-1].Span.Start {
			return nil, m.NewEngineFault("patch", "overlapping operations in %s", file.Path)
		}
	}

	content := make([]byte, len(file.Content))
	copy(content, file.Content)

	for _, op := range sorted {
		if op.Span.Start < 0 || op.Span.End > len(content) || op.Span.Start > op.Span.End {
			return nil, m.NewEngineFault("patch", "operation span out of range in %s", file.Path)
		}

		content = splice(content, op)
	}

	return content, nil
}

func splice(content []byte, op m.MutationOperation) []byte {
	var insert []byte

	switch op.Kind {
	case m.OperationReplace:
		insert = []byte(op.Ingredient.Text)
	case m.OperationAdd:
		insert = []byte("\n" + op.Ingredient.Text)
	case m.OperationRemove:
	}

	patched := make([]byte, 0, len(content)-op.Span.Len()+len(insert))
	patched = append(patched, content[:op.Span.Start]...)
	patched = append(patched, insert...)
	patched = append(patched, content[op.Span.End:]...)

	return patched
}

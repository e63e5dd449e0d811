package adapter

import (
	"fmt"
	"path/filepath"

	m "mend.dev/pkg/mend/internal/model"
)

// ProgramAdapter loads program source files from disk into the raw file set
// the domain layer parses. It hides filesystem details the same way the
// filesystem adapter does for the workflow.
type ProgramAdapter interface {
	// Load reads the given files in order. Order matters: statement ids and
	// ingredient discovery follow it.
	Load(paths []m.Path) ([]m.SourceFile, error)
}

// LocalProgramAdapter reads program files from the local filesystem.
type LocalProgramAdapter struct {
	fs SourceFSAdapter
}

// NewLocalProgramAdapter constructs a LocalProgramAdapter over the provided
// filesystem adapter.
func NewLocalProgramAdapter(fs SourceFSAdapter) *LocalProgramAdapter {
	return &LocalProgramAdapter{fs: fs}
}

// Load reads each path and returns the raw source files.
func (a *LocalProgramAdapter) Load(paths []m.Path) ([]m.SourceFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no program files given")
	}

	files := make([]m.SourceFile, 0, len(paths))

	for _, path := range paths {
		if filepath.Ext(string(path)) != ".go" {
			return nil, fmt.Errorf("%s: program files must be .go files", path)
		}

		content, err := a.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read program file: %w", err)
		}

		files = append(files, m.SourceFile{Path: path, Content: content})
	}

	return files, nil
}

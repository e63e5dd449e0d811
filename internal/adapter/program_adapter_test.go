package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mend.dev/pkg/mend/internal/model"
)

func TestProgramAdapter_LoadKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(first, []byte("package p\n"), 0o600))

	second := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(second, []byte("package p\n"), 0o600))

	files, err := NewLocalProgramAdapter(NewLocalSourceFSAdapter()).Load([]m.Path{
		m.Path(first), m.Path(second),
	})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, m.Path(first), files[0].Path)
	assert.Equal(t, m.Path(second), files[1].Path)
	assert.Equal(t, "package p\n", string(files[0].Content))
}

func TestProgramAdapter_RejectsNonGoFiles(t *testing.T) {
	_, err := NewLocalProgramAdapter(NewLocalSourceFSAdapter()).Load([]m.Path{"notes.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".go")
}

func TestProgramAdapter_RejectsEmptyInput(t *testing.T) {
	_, err := NewLocalProgramAdapter(NewLocalSourceFSAdapter()).Load(nil)
	require.Error(t, err)
}

func TestProgramAdapter_MissingFile(t *testing.T) {
	_, err := NewLocalProgramAdapter(NewLocalSourceFSAdapter()).Load([]m.Path{"ghost.go"})
	require.Error(t, err)
}

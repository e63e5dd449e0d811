package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mend.dev/pkg/mend/internal/domain"
	m "mend.dev/pkg/mend/internal/model"
)

// mockWorkflow records the arguments each use case was called with.
type mockWorkflow struct {
	repairArgs *domain.RepairArgs
	rankArgs   *domain.RankArgs
	viewArgs   *domain.ViewArgs
	err        error
}

func (w *mockWorkflow) Repair(_ context.Context, args domain.RepairArgs) error {
	w.repairArgs = &args
	return w.err
}

func (w *mockWorkflow) Rank(_ context.Context, args domain.RankArgs) error {
	w.rankArgs = &args
	return w.err
}

func (w *mockWorkflow) View(_ context.Context, args domain.ViewArgs) error {
	w.viewArgs = &args
	return w.err
}

func newTestRootCmd(children ...*cobra.Command) *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	for _, child := range children {
		cmd.AddCommand(child)
	}

	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd
}

func TestRootCmd_ShowsHelpWithoutSubcommand(t *testing.T) {
	out := &bytes.Buffer{}

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "mend")
}

func TestParsePaths(t *testing.T) {
	assert.Empty(t, parsePaths(nil))
	assert.Equal(t, []m.Path{"a.go", "dir/b.go"}, parsePaths([]string{"a.go", "dir/b.go"}))
}

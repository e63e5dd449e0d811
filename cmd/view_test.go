package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mend.dev/pkg/mend/internal/model"
)

func TestViewCmd_UsesReportsDir(t *testing.T) {
	mock := &mockWorkflow{}
	withMockWorkflow(t, mock)

	cmd := newTestRootCmd(newViewCmd())
	cmd.SetArgs([]string{"view", "-o", "my-reports"})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, mock.viewArgs)
	assert.Equal(t, m.Path("my-reports"), mock.viewArgs.Reports)
}

func TestViewCmd_RejectsPositionalArgs(t *testing.T) {
	mock := &mockWorkflow{}
	withMockWorkflow(t, mock)

	cmd := newTestRootCmd(newViewCmd())
	cmd.SetArgs([]string{"view", "extra"})

	require.Error(t, cmd.Execute())
	assert.Nil(t, mock.viewArgs)
}

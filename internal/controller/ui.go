// Package controller provides output adapters for displaying repair results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	m "mend.dev/pkg/mend/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRank StartMode = iota
	ModeRepair
)

// StartOption is a functional option for Start.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRankMode sets the UI to fault-localization display mode.
func WithRankMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRank
	}
}

// WithRepairMode sets the UI to repair execution mode.
func WithRepairMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRepair
	}
}

// UI is the display surface for repair runs. Implementations can use plain
// text or an interactive terminal.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayRanking(ctx context.Context, program *m.Program, ranking m.Ranking) error
	DisplaySearchInfo(ctx context.Context, threads int, policy, formula string)
	DisplayTargetInfo(ctx context.Context, target m.Statement, rank int, score float64)
	DisplayPatchInfo(ctx context.Context, target m.Statement, patch m.Patch, result m.ValidationResult)
	DisplayOutcome(ctx context.Context, program *m.Program, outcome m.Outcome, diff string) error
	DisplayReport(ctx context.Context, report m.RepairReport) error
}

// NewUI picks the interactive TUI on a terminal and the simple printer
// everywhere else (pipes, CI).
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(os.Stdout)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether the file is attached to a character device.
func IsTTY(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

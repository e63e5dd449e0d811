package controller

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	m "mend.dev/pkg/mend/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with Bubble Tea for interactive terminals. Short output
// prints directly; long rankings open a scrollable pager.
type TUI struct {
	output   io.Writer
	attempts int
	target   string
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI.
func (t *TUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (t *TUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (pager exits handle this themselves).
func (t *TUI) Wait(_ context.Context) {}

// DisplayRanking shows the suspiciousness ranking, paginated when it does
// not fit a screen.
func (t *TUI) DisplayRanking(ctx context.Context, program *m.Program, ranking m.Ranking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newRankingModel(program, ranking)

	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	prog := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return err
	}

	return nil
}

// DisplaySearchInfo shows the search configuration line.
func (t *TUI) DisplaySearchInfo(ctx context.Context, threads int, policy, formula string) {
	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprintf(t.output, "%s %d worker(s), policy %s, formula %s\n",
		labelStyle.Render("search:"), threads, policy, formula)
}

// DisplayTargetInfo records and shows the target currently being mutated.
func (t *TUI) DisplayTargetInfo(ctx context.Context, target m.Statement, rank int, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.target = target.Text
	fmt.Fprintf(t.output, "%s #%d (%.2f) %s:%d %s\n",
		labelStyle.Render("target:"), rank+1, score, target.File, target.Line, target.Text)
}

// DisplayPatchInfo counts attempts; per-patch noise stays off the screen.
func (t *TUI) DisplayPatchInfo(ctx context.Context, _ m.Statement, _ m.Patch, _ m.ValidationResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.attempts++
}

// DisplayOutcome shows the final result with a pass-rate bar and the patch
// diff when one was found.
func (t *TUI) DisplayOutcome(ctx context.Context, _ *m.Program, outcome m.Outcome, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	if outcome.Found() {
		b.WriteString(titleStyle.Render("plausible patch found"))
	} else {
		b.WriteString(badStyle.Render("search exhausted"))
	}

	fmt.Fprintf(&b, "\n%s %d targets, %d patches validated\n",
		labelStyle.Render("tried:"), outcome.TargetsTried, outcome.PatchesTried)

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	switch {
	case outcome.Found():
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("tests: "), bar.ViewAs(1.0))
	case outcome.BestPatch != nil:
		fmt.Fprintf(&b, "%s %s (closest miss: patch %d)\n",
			labelStyle.Render("tests: "), bar.ViewAs(outcome.BestPassRate), outcome.BestPatch.ID)
	}

	if outcome.Found() && diff != "" {
		b.WriteString("\n")
		b.WriteString(renderDiff(diff))
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

// DisplayReport shows a previously saved report.
func (t *TUI) DisplayReport(ctx context.Context, report m.RepairReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("repair of %s", report.Entry)))
	fmt.Fprintf(&b, "\n%s %s, %s, scope %s\n",
		labelStyle.Render("config:"), report.Formula, report.Policy, report.Scope)
	fmt.Fprintf(&b, "%s %s after %d targets, %d patches\n",
		labelStyle.Render("result:"), report.Phase, report.TargetsTried, report.PatchesTried)

	for _, op := range report.Operations {
		fmt.Fprintf(&b, "  %s\n", op)
	}

	if report.Diff != "" {
		b.WriteString("\n")
		b.WriteString(renderDiff(report.Diff))
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

func renderDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = goodStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = badStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

const rankingPageSize = 20

// rankingModel is the Bubble Tea model paging the suspiciousness ranking.
type rankingModel struct {
	rows     []string
	height   int
	offset   int
	quitting bool
}

func newRankingModel(program *m.Program, ranking m.Ranking) rankingModel {
	rows := make([]string, 0, len(ranking))

	for i, score := range ranking {
		text := ""
		if stmt := program.Statement(score.StatementID); stmt != nil {
			text = stmt.Text
		}

		rows = append(rows, fmt.Sprintf("%3d  %.3f  line %-4d %s", i+1, score.Value, score.Line, text))
	}

	return rankingModel{rows: rows}
}

func (rm rankingModel) needsPagination() bool {
	return len(rm.rows) > rankingPageSize
}

func (rm rankingModel) Init() tea.Cmd {
	return nil
}

func (rm rankingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height
		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)
	}

	return rm, nil
}

func (rm rankingModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		rm.quitting = true
		return rm, tea.Quit

	case "down", "j":
		if rm.offset < rm.maxOffset() {
			rm.offset++
		}

		return rm, nil

	case "up", "k":
		if rm.offset > 0 {
			rm.offset--
		}

		return rm, nil
	}

	return rm, nil
}

func (rm rankingModel) pageSize() int {
	// Reserve lines for the header and footer.
	if rm.height > 4 {
		return rm.height - 4
	}

	return rankingPageSize
}

func (rm rankingModel) maxOffset() int {
	max := len(rm.rows) - rm.pageSize()
	if max < 0 {
		return 0
	}

	return max
}

func (rm rankingModel) View() string {
	if rm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("suspiciousness ranking"))
	b.WriteString("\n\n")

	end := rm.offset + rm.pageSize()
	if end > len(rm.rows) {
		end = len(rm.rows)
	}

	for _, row := range rm.rows[rm.offset:end] {
		b.WriteString(row)
		b.WriteString("\n")
	}

	if rm.needsPagination() {
		b.WriteString(footerStyle.Render("\n j/k scroll, q to quit\n"))
	}

	return b.String()
}

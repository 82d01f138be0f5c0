package fsplit

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var brailleSpinner = spinner.Spinner{
	Frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
	FPS:    100 * time.Millisecond,
}

type progressMsg struct{ cur, total int }

type doneMsg struct {
	summary Summary
	err     error
}

type progressModel struct {
	spinner    spinner.Model
	cur, total int
	done       bool
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = brailleSpinner
	return progressModel{spinner: s}
}

func (m progressModel) Init() tea.Cmd { return m.spinner.Tick }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.cur, m.total = msg.cur, msg.total
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	if m.total == 0 {
		return fmt.Sprintf("%s Splitting...\n", m.spinner.View())
	}
	return fmt.Sprintf("%s Splitting... %d/%d\n", m.spinner.View(), m.cur, m.total)
}

type TUI struct {
	app         *App
	noAnimation bool
}

func NewTUI(app *App, noAnimation bool) *TUI {
	return &TUI{app: app, noAnimation: noAnimation}
}

func (t *TUI) Run(ctx context.Context) error {
	if t.noAnimation || t.app.opts.printsOutput() {
		summary, err := t.app.Execute(ctx)
		fmt.Print(FormatSummary(summary))
		return err
	}

	p := tea.NewProgram(newProgressModel(), tea.WithOutput(os.Stderr), tea.WithInput(nil), tea.WithContext(ctx))
	t.app.SetProgressCallback(func(c, tot int) { p.Send(progressMsg{cur: c, total: tot}) })

	results := make(chan doneMsg, 1)
	go func() {
		summary, err := t.app.Execute(ctx)
		results <- doneMsg{summary: summary, err: err}
		p.Send(doneMsg{summary: summary, err: err})
	}()

	if _, err := p.Run(); err != nil {
		t.app.logger.Debug("progress ui stopped: " + err.Error())
	}
	res := <-results
	fmt.Print(FormatSummary(res.summary))
	return res.err
}

func FormatSummary(s Summary) string {
	var b strings.Builder
	if s.Message != "" {
		b.WriteString(headerStyle.Render(s.Message) + "\n\n")
	}

	renderList := func(title string, style lipgloss.Style, list []string) {
		if len(list) == 0 {
			return
		}
		b.WriteString(style.Render(title) + "\n")
		for _, f := range list {
			b.WriteString(fmt.Sprintf("  %s\n", f))
		}
	}

	renderList("Split:", successStyle, s.Split)
	renderList("Created:", createdStyle, s.Created)
	renderList("Restored:", successStyle, s.Restored)
	renderList("Deleted:", deletedStyle, s.Deleted)
	renderList("Skipped:", skippedStyle, s.Skipped)
	renderList("Failed:", errorStyle, s.Failed)
	renderList("Warnings:", warnStyle, s.Warnings)

	return b.String()
}

// FormatHistory renders journal entries newest first.
func FormatHistory(entries []JournalEntry, pr *PathResolver) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("History") + "\n\n")
	for _, e := range entries {
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		state := successStyle.Render(e.State)
		if e.State != TxVerified.String() {
			state = errorStyle.Render(e.State)
		}
		if e.Undone {
			state = dimStyle.Render("undone")
		}
		path := e.Original
		if pr != nil {
			path = pr.Relative(path)
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %-12s %s (%d files)\n",
			dimStyle.Render(id), e.CreatedAt.Format(time.DateTime), state, path, len(e.Files)))
	}
	return b.String()
}

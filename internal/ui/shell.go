package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/handset/internal/dispatch"
	"github.com/five82/handset/internal/history"
)

type shellState struct {
	input    textinput.Model
	viewport viewport.Model
	pending  string // line being executed, "" when idle
	recall   int
}

func newShellState(hist *history.Store) shellState {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "shell <cmd>  |  adb <args>  |  fastboot <args>"
	return shellState{
		input:    in,
		viewport: viewport.New(80, 20),
		recall:   hist.RecallLen(),
	}
}

func (s *shellState) resize(width, height int) {
	s.viewport.Width = width
	if h := height - 2; h > 1 {
		s.viewport.Height = h
	} else {
		s.viewport.Height = 1
	}
	s.input.Width = width - 4
}

type shellOutcomeMsg dispatch.Outcome

func runPendingCmd(ctx context.Context, p *dispatch.Pending) tea.Cmd {
	return func() tea.Msg {
		return shellOutcomeMsg(p.Run(ctx))
	}
}

func (m Model) handleShellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submitShell()
	case key.Matches(msg, m.keys.RecallBack):
		m.recallShell(history.Back)
		return m, nil
	case key.Matches(msg, m.keys.RecallFwd):
		m.recallShell(history.Forward)
		return m, nil
	case key.Matches(msg, m.keys.ClearShell):
		m.history.Clear()
		m.refreshTranscript()
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.shell.viewport.HalfPageUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.shell.viewport.HalfPageDown()
		return m, nil
	}

	if m.shell.pending != "" {
		return m, nil
	}
	var cmd tea.Cmd
	m.shell.input, cmd = m.shell.input.Update(msg)
	return m, cmd
}

// submitShell hands the input line to the dispatcher. The command entry is
// in the transcript before the tool runs; the input stays disabled until the
// outcome arrives.
func (m Model) submitShell() (tea.Model, tea.Cmd) {
	if m.dispatch == nil || m.shell.pending != "" {
		return m, nil
	}
	pending, err := m.dispatch.Begin(m.shell.input.Value())
	switch {
	case errors.Is(err, dispatch.ErrEmptyCommand), errors.Is(err, dispatch.ErrBusy):
		return m, nil
	case err != nil:
		m.setStatus("", err)
		return m, nil
	}

	m.shell.pending = pending.Line()
	m.shell.input.Reset()
	m.shell.input.Blur()
	m.shell.recall = m.history.RecallLen()
	m.refreshTranscript()
	return m, runPendingCmd(m.ctx, pending)
}

func (m *Model) handleShellOutcome(out dispatch.Outcome) {
	m.shell.pending = ""
	if m.currentView == ViewShell {
		m.shell.input.Focus()
	}
	m.refreshTranscript()

	var unknown *dispatch.UnknownCommandError
	if errors.As(out.Err, &unknown) && unknown.Suggestion != "" {
		m.setStatus("did you mean "+unknown.Suggestion+"?", nil)
	}
}

func (m *Model) recallShell(dir history.Direction) {
	if m.shell.pending != "" {
		return
	}
	idx, text := m.history.Navigate(dir, m.shell.recall)
	m.shell.recall = idx
	m.shell.input.SetValue(text)
	m.shell.input.CursorEnd()
}

// refreshTranscript re-renders the transcript and scrolls to the newest entry.
func (m *Model) refreshTranscript() {
	m.shell.viewport.SetContent(renderTranscript(m.history.Transcript(), m.theme.Styles(), m.shell.viewport.Width))
	m.shell.viewport.GotoBottom()
}

func renderTranscript(entries []history.Entry, styles Styles, width int) string {
	if len(entries) == 0 {
		return styles.FaintText.Render("No commands yet. Try: shell getprop ro.product.model")
	}
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.Kind {
		case history.KindCommand:
			b.WriteString(styles.AccentText.Bold(true).Render(wrap.Render("> " + e.Text)))
		case history.KindError:
			b.WriteString(styles.DangerText.Render(wrap.Render(e.Text)))
		default:
			b.WriteString(styles.Text.Render(wrap.Render(e.Text)))
		}
	}
	return b.String()
}

func (m Model) renderShell() string {
	styles := m.theme.Styles()
	var b strings.Builder
	if m.shell.viewport.TotalLineCount() == 0 {
		b.WriteString(renderTranscript(m.history.Transcript(), styles, m.width))
	} else {
		b.WriteString(m.shell.viewport.View())
	}
	b.WriteString("\n\n")
	if m.shell.pending != "" {
		b.WriteString(styles.WarningText.Render(m.spinner.View() + " running " + truncate(m.shell.pending, m.width-12)))
	} else {
		b.WriteString(m.shell.input.View())
	}
	return b.String()
}

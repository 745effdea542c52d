package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/logging"
	"github.com/five82/handset/internal/logtail"
)

// logTailLines bounds how much of the log file the pane reads.
const logTailLines = 500

var errLogToStderr = errors.New("logging goes to stderr; set log.path to view it here")

var logLevelCycle = []logrus.Level{logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}

type logState struct {
	viewport viewport.Model
	level    logrus.Level
	follow   bool
	lines    []string
	err      error
}

func newLogState() logState {
	return logState{
		viewport: viewport.New(80, 20),
		level:    logrus.DebugLevel,
		follow:   true,
	}
}

func (l *logState) resize(width, height int) {
	l.viewport.Width = width
	if h := height - 1; h > 1 {
		l.viewport.Height = h
	} else {
		l.viewport.Height = 1
	}
}

type logLinesMsg struct {
	lines []string
	err   error
}

// loadLogs reads the tail of the log file at the current level filter.
func (m Model) loadLogs() tea.Cmd {
	path, level := m.logPath, m.logs.level
	return func() tea.Msg {
		if path == "" || path == logging.StderrPath {
			return logLinesMsg{err: errLogToStderr}
		}
		lines, err := logtail.Tail(path, logTailLines, level)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logs.err = msg.err
	if msg.err == nil {
		m.logs.lines = msg.lines
	}
	m.refreshLogView()
}

// refreshLogView renders the buffered lines into the viewport.
func (m *Model) refreshLogView() {
	m.logs.viewport.SetContent(renderLogLines(m.logs.lines, m.theme.Styles()))
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

func renderLogLines(lines []string, styles Styles) string {
	if len(lines) == 0 {
		return styles.FaintText.Render("No log entries at this level.")
	}
	out := make([]string, len(lines))
	last := logrus.InfoLevel
	for i, line := range lines {
		if lvl, ok := logtail.LineLevel(line); ok {
			last = lvl
		}
		out[i] = styles.LevelStyle(last).Render(line)
	}
	return strings.Join(out, "\n")
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleLevel):
		m.logs.level = nextLevel(m.logs.level)
		return m, m.loadLogs()
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logs.viewport.GotoBottom()
			return m, m.loadLogs()
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadLogs()
	case key.Matches(msg, m.keys.Up):
		m.logs.follow = false
		m.logs.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logs.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logs.follow = false
		m.logs.viewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logs.viewport.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logs.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logs.viewport.GotoBottom()
	}
	return m, nil
}

func nextLevel(current logrus.Level) logrus.Level {
	for i, lvl := range logLevelCycle {
		if lvl == current {
			return logLevelCycle[(i+1)%len(logLevelCycle)]
		}
	}
	return logLevelCycle[0]
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	var b strings.Builder

	status := "level ≥ " + m.logs.level.String()
	if m.logs.follow {
		status += "  following"
	} else {
		status += "  paused"
	}
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render(truncate(m.logPath, m.width/2)))
	b.WriteString("  ")
	b.WriteString(styles.AccentText.Render(status))
	b.WriteString("\n")

	if m.logs.err != nil {
		b.WriteString("  ")
		b.WriteString(styles.WarningText.Render(m.logs.err.Error()))
		return b.String()
	}
	b.WriteString(m.logs.viewport.View())
	return b.String()
}

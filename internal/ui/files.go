package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/transfer"
)

type fileState struct {
	initialPath string
	loaded      bool
	selected    int
	offset      int
}

// nextPath is the directory to list when the view is activated: the saved
// path on first use, the browser's current directory afterwards.
func (f fileState) nextPath(b *transfer.Browser) string {
	if !f.loaded && f.initialPath != "" {
		return f.initialPath
	}
	if b == nil {
		return ""
	}
	return b.Path()
}

type listingMsg struct {
	path  string
	reset bool
	err   error
}

type transferMsg struct {
	op      transfer.Op
	outcome transfer.Outcome
	err     error
}

// loadListing lists path and makes it current.
func (m Model) loadListing(path string) tea.Cmd {
	if m.browser == nil {
		return nil
	}
	browser, ctx := m.browser, m.ctx
	return func() tea.Msg {
		return listingMsg{path: path, reset: true, err: browser.Load(ctx, path)}
	}
}

func (m Model) browseCmd(fn func(context.Context) error, reset bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return listingMsg{reset: reset, err: fn(ctx)}
	}
}

func (m Model) handleListing(msg listingMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// A remembered directory that no longer exists falls back to the
		// configured start path.
		if !m.files.loaded && msg.path != "" && m.browser != nil && msg.path != m.browser.Path() {
			m.files.loaded = true
			return m, m.loadListing(m.browser.Path())
		}
		m.setStatus("", msg.err)
		return m, nil
	}
	m.files.loaded = true
	if msg.reset {
		m.files.selected = 0
		m.files.offset = 0
	}
	m.clampFiles()
	return m, nil
}

func (m *Model) clampFiles() {
	n := 0
	if m.browser != nil {
		n = len(m.browser.Entries())
	}
	if m.files.selected >= n {
		m.files.selected = n - 1
	}
	if m.files.selected < 0 {
		m.files.selected = 0
	}
}

func (m Model) selectedEntry() (bridge.FileEntry, bool) {
	if m.browser == nil {
		return bridge.FileEntry{}, false
	}
	entries := m.browser.Entries()
	if m.files.selected < 0 || m.files.selected >= len(entries) {
		return bridge.FileEntry{}, false
	}
	return entries[m.files.selected], true
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.browser == nil {
		return m, nil
	}
	count := len(m.browser.Entries())
	page := m.contentHeight() - 3
	if page < 1 {
		page = 1
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.files.selected > 0 {
			m.files.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.files.selected < count-1 {
			m.files.selected++
		}
	case key.Matches(msg, m.keys.Top):
		m.files.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.files.selected = count - 1
		m.clampFiles()
	case key.Matches(msg, m.keys.PageUp):
		m.files.selected -= page
		m.clampFiles()
	case key.Matches(msg, m.keys.PageDown):
		m.files.selected += page
		m.clampFiles()
	case key.Matches(msg, m.keys.Open):
		entry, ok := m.selectedEntry()
		if !ok || !entry.IsDir() {
			return m, nil
		}
		browser := m.browser
		return m, m.browseCmd(func(ctx context.Context) error { return browser.Enter(ctx, entry) }, true)
	case key.Matches(msg, m.keys.Parent):
		return m, m.browseCmd(m.browser.Up, true)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.browseCmd(m.browser.Reload, false)
	case key.Matches(msg, m.keys.Export):
		entry, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		return m, m.transferCmd(transfer.OpExport, func(ctx context.Context, s *transfer.Session) (transfer.Outcome, error) {
			return s.Export(ctx, entry)
		})
	case key.Matches(msg, m.keys.ImportFile):
		return m, m.transferCmd(transfer.OpImportFile, func(ctx context.Context, s *transfer.Session) (transfer.Outcome, error) {
			return s.ImportFile(ctx)
		})
	case key.Matches(msg, m.keys.ImportFolder):
		return m, m.transferCmd(transfer.OpImportFolder, func(ctx context.Context, s *transfer.Session) (transfer.Outcome, error) {
			return s.ImportFolder(ctx)
		})
	}
	m.scrollFiles()
	return m, nil
}

// scrollFiles keeps the selection inside the visible window.
func (m *Model) scrollFiles() {
	rows := m.contentHeight() - 3
	if rows < 1 {
		rows = 1
	}
	if m.files.selected < m.files.offset {
		m.files.offset = m.files.selected
	}
	if m.files.selected >= m.files.offset+rows {
		m.files.offset = m.files.selected - rows + 1
	}
}

// transferCmd runs one session operation off the UI loop. The session asks
// for local paths through the picker, which reenters the loop as
// pickRequestMsg.
func (m Model) transferCmd(op transfer.Op, fn func(context.Context, *transfer.Session) (transfer.Outcome, error)) tea.Cmd {
	if m.session == nil {
		return func() tea.Msg { return statusMsg{text: "transfers are unavailable"} }
	}
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		out, err := fn(ctx, session)
		return transferMsg{op: op, outcome: out, err: err}
	}
}

func (m *Model) handleTransfer(msg transferMsg) {
	switch {
	case errors.Is(msg.err, transfer.ErrBusy):
		m.setStatus(msg.op.String()+" already in progress", nil)
	case msg.err != nil:
		m.setStatus("", msg.err)
	case msg.outcome.Status == transfer.StatusCancelled:
		// A dismissed picker aborts without a message.
	case msg.outcome.Status == transfer.StatusFailed:
		m.setStatus("", fmt.Errorf("%s failed: %s", msg.op, msg.outcome.Message))
	default:
		m.setStatus(msg.outcome.Message, nil)
	}
	m.clampFiles()
}

func (m Model) renderFiles() string {
	styles := m.theme.Styles()
	if m.browser == nil {
		return styles.MutedText.Render("  File browsing is unavailable.")
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(styles.AccentText.Bold(true).Render(m.browser.Path()))
	if busy := m.transfersInProgress(); busy != "" {
		b.WriteString("  ")
		b.WriteString(styles.WarningText.Render(m.spinner.View() + " " + busy))
	}
	b.WriteString("\n")
	if err := m.browser.Err(); err != nil {
		b.WriteString("  ")
		b.WriteString(styles.DangerText.Render(truncate(err.Error(), m.width-4)))
	}
	b.WriteString("\n")

	entries := m.browser.Entries()
	if len(entries) == 0 {
		if m.files.loaded {
			b.WriteString(styles.FaintText.Render("  (empty)"))
		} else {
			b.WriteString(styles.MutedText.Render("  " + m.spinner.View() + " Loading..."))
		}
		return b.String()
	}

	rows := m.contentHeight() - 3
	if rows < 1 {
		rows = 1
	}
	end := m.files.offset + rows
	if end > len(entries) {
		end = len(entries)
	}
	for i := m.files.offset; i < end; i++ {
		e := entries[i]
		size := ""
		if e.Kind == bridge.KindFile && e.Size >= 0 {
			size = humanize.IBytes(uint64(e.Size))
		}
		nameWidth := m.width - 34
		if nameWidth < 12 {
			nameWidth = 12
		}
		line := fmt.Sprintf("  %-*s %10s  %s %s", nameWidth, truncate(entryLabel(e), nameWidth), size, e.Date, e.Time)
		switch {
		case i == m.files.selected:
			line = styles.Selected.Render(">" + line[1:])
		case e.IsDir():
			line = styles.AccentText.Render(line)
		case e.LinkTarget != "":
			line = styles.InfoText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// transfersInProgress names the running transfer kinds.
func (m Model) transfersInProgress() string {
	if m.session == nil {
		return ""
	}
	var busy []string
	for _, op := range []transfer.Op{transfer.OpImportFile, transfer.OpImportFolder, transfer.OpExport} {
		if m.session.InProgress(op) {
			busy = append(busy, op.String())
		}
	}
	return strings.Join(busy, ", ")
}

func entryLabel(e bridge.FileEntry) string {
	switch {
	case e.IsDir():
		return e.Name + "/"
	case e.LinkTarget != "":
		return e.Name + " -> " + e.LinkTarget
	default:
		return e.Name
	}
}

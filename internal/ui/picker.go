package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pickKind int

const (
	pickFile pickKind = iota
	pickDirectory
	pickSavePath
)

func (k pickKind) title() string {
	switch k {
	case pickDirectory:
		return "Choose a local folder"
	case pickSavePath:
		return "Save as"
	default:
		return "Choose a local file"
	}
}

// pickRequest is one question from a transfer goroutine. The reply channel
// is buffered so the UI never blocks answering it; "" means cancelled.
type pickRequest struct {
	kind      pickKind
	suggested string
	reply     chan string
}

type pickRequestMsg pickRequest

// promptPicker implements transfer.Picker by handing requests to the UI loop
// and waiting for the operator's answer.
type promptPicker struct {
	requests chan pickRequest
}

func newPromptPicker() *promptPicker {
	return &promptPicker{requests: make(chan pickRequest)}
}

func (p *promptPicker) PickFile(ctx context.Context) (string, error) {
	return p.ask(ctx, pickFile, "")
}

func (p *promptPicker) PickDirectory(ctx context.Context) (string, error) {
	return p.ask(ctx, pickDirectory, "")
}

func (p *promptPicker) PickSavePath(ctx context.Context, suggestedName string) (string, error) {
	return p.ask(ctx, pickSavePath, suggestedName)
}

func (p *promptPicker) ask(ctx context.Context, kind pickKind, suggested string) (string, error) {
	req := pickRequest{kind: kind, suggested: suggested, reply: make(chan string, 1)}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case path := <-req.reply:
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// waitForPick delivers the next picker request to the UI loop.
func waitForPick(ctx context.Context, p *promptPicker) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-p.requests:
			return pickRequestMsg(req)
		case <-ctx.Done():
			return nil
		}
	}
}

// pickModal is the overlay that answers a pickRequest.
type pickModal struct {
	req   pickRequest
	fp    filepicker.Model
	input textinput.Model
	width int
}

var selectDir = key.NewBinding(
	key.WithKeys("s"),
	key.WithHelp("s", "use this folder"),
)

func newPickModal(req pickRequest, width, height int) *pickModal {
	start := localStartDir()
	pm := &pickModal{req: req}

	switch req.kind {
	case pickSavePath:
		in := textinput.New()
		in.Prompt = "path: "
		in.SetValue(filepath.Join(start, req.suggested))
		in.CursorEnd()
		in.Focus()
		pm.input = in
	default:
		fp := filepicker.New()
		fp.CurrentDirectory = start
		fp.AutoHeight = false
		fp.ShowPermissions = false
		fp.FileAllowed = req.kind == pickFile
		fp.DirAllowed = false
		// esc cancels the pick instead of climbing a directory.
		fp.KeyMap.Back = key.NewBinding(
			key.WithKeys("h", "backspace", "left"),
			key.WithHelp("h", "back"),
		)
		pm.fp = fp
	}
	pm.resize(width, height)
	return pm
}

func localStartDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (p *pickModal) init() tea.Cmd {
	if p.req.kind == pickSavePath {
		return textinput.Blink
	}
	return p.fp.Init()
}

func (p *pickModal) resize(width, height int) {
	w := width - 10
	if w < 20 {
		w = 20
	}
	p.width = w
	p.input.Width = w - 10
	if h := height - 10; h > 3 {
		p.fp.SetHeight(h)
	} else {
		p.fp.SetHeight(3)
	}
}

// update handles msg and reports the chosen path once the pick is done.
func (p *pickModal) update(msg tea.Msg) (tea.Cmd, string, bool) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return nil, "", true
	}

	if p.req.kind == pickSavePath {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" {
			return nil, strings.TrimSpace(p.input.Value()), true
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd, "", false
	}

	if k, ok := msg.(tea.KeyMsg); ok && p.req.kind == pickDirectory && key.Matches(k, selectDir) {
		return nil, p.fp.CurrentDirectory, true
	}
	var cmd tea.Cmd
	p.fp, cmd = p.fp.Update(msg)
	if ok, path := p.fp.DidSelectFile(msg); ok {
		return cmd, path, true
	}
	return cmd, "", false
}

func (m Model) openPick(req pickRequest) (tea.Model, tea.Cmd) {
	m.pick = newPickModal(req, m.width, m.height)
	return m, m.pick.init()
}

// updatePick forwards msg to the open modal and answers the request when the
// operator chooses or cancels. The next request is awaited only afterwards.
func (m Model) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, path, done := m.pick.update(msg)
	if !done {
		return m, cmd
	}
	m.pick.req.reply <- path
	m.pick = nil
	return m, tea.Batch(cmd, waitForPick(m.ctx, m.picker))
}

func (m Model) renderPick() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.pick.req.kind.title()))
	b.WriteString("\n\n")

	switch m.pick.req.kind {
	case pickSavePath:
		b.WriteString(m.pick.input.View())
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("enter save  esc cancel"))
	default:
		b.WriteString(styles.MutedText.Render(m.pick.fp.CurrentDirectory))
		b.WriteString("\n")
		b.WriteString(m.pick.fp.View())
		b.WriteString("\n")
		hint := "enter choose  h up  esc cancel"
		if m.pick.req.kind == pickDirectory {
			hint = "l open  s use this folder  h up  esc cancel"
		}
		b.WriteString(styles.FaintText.Render(hint))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(m.pick.width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

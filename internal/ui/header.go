package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/handset/internal/device"
)

// modeLabel is the header badge text for a connection mode.
func modeLabel(mode device.Mode) string {
	switch mode {
	case device.ModeBridge:
		return "ADB"
	case device.ModeBootloader:
		return "FASTBOOT"
	case device.ModeNone:
		return "NO DEVICE"
	default:
		return "SCANNING"
	}
}

// renderHeader renders the status bar: mode, device count, polling state
// and the sticky discovery error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("handset", styles.Logo),
		styles.StatusStyle(m.snapshot.Mode.String()).Render(modeLabel(m.snapshot.Mode)),
		bg.Render("Devices:", styles.MutedText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Devices())), styles.Text),
	}

	if channels := m.pollingChannels(); channels != "" {
		label := "polling " + channels
		if m.snapshot.Loading() {
			label = m.spinner.View() + " " + label
		}
		parts = append(parts, bg.Render(label, styles.InfoText))
	}

	if err := m.snapshot.Err(); err != nil {
		maxErr := m.width / 3
		if maxErr < 20 {
			maxErr = 20
		}
		parts = append(parts, bg.Render(truncate(err.Error(), maxErr), styles.DangerText))
	} else if !m.snapshot.LastUpdated.IsZero() && m.width >= 80 {
		parts = append(parts, bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// pollingChannels names the active discovery channels.
func (m Model) pollingChannels() string {
	var names []string
	if m.bridgePoll != nil && m.bridgePoll.Active() {
		names = append(names, device.ChannelBridge.String())
	}
	if m.bootPoll != nil && m.bootPoll.Active() {
		names = append(names, device.ChannelBootloader.String())
	}
	return strings.Join(names, "+")
}

// renderCommandBar renders the view tabs and the current view's key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	tabs := make([]string, 0, int(viewCount))
	for v := ViewDevices; v < viewCount; v++ {
		label := fmt.Sprintf("%d %s", int(v)+1, v.String())
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Render(" "+label+" "))
		} else {
			tabs = append(tabs, bg.Render(label, styles.MutedText))
		}
	}

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.currentView {
	case ViewDevices:
		commands = []cmd{{"n", "Nickname"}, {"i", "Info"}, {"b/c/R", "Reboot"}, {"r", "Refresh"}}
	case ViewFlasher:
		commands = []cmd{{"enter", "Flash"}, {"ctrl+w", "Wipe"}, {"ctrl+r", "Reboot"}}
	case ViewFiles:
		commands = []cmd{{"enter", "Open"}, {"h", "Up"}, {"x", "Export"}, {"u/U", "Import"}}
	case ViewShell:
		commands = []cmd{{"enter", "Run"}, {"up/down", "Recall"}, {"ctrl+l", "Clear"}}
	case ViewLogs:
		follow := "Pause"
		if !m.logs.follow {
			follow = "Follow"
		}
		commands = []cmd{{"f", m.logs.level.String()}, {"Space", follow}}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := []string{bg.Join(tabs, " ")}
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	if !m.currentView.typing() {
		segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// statusTTL is how long a non-error status message stays in the footer.
const statusTTL = 8 * time.Second

// renderFooter shows the latest status message, or the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var content string
	switch {
	case m.status.isErr:
		content = bg.Render(truncate(m.status.text, m.width-4), styles.DangerText)
	case m.status.text != "" && time.Since(m.status.at) < statusTTL:
		content = bg.Render(truncate(m.status.text, m.width-4), styles.Text)
	default:
		hints := make([]string, 0, 3)
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			hints = append(hints, bg.Render(h.Key, styles.AccentText)+bg.Space()+bg.Render(h.Desc, styles.FaintText))
		}
		content = bg.Join(hints, "  ")
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Padding(0, 1).
		Width(m.width).
		Render(content)
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

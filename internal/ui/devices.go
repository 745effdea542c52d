package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/device"
	"github.com/five82/handset/internal/nickname"
	"github.com/five82/handset/internal/poller"
	"github.com/five82/handset/internal/state"
)

type deviceState struct {
	selected    int
	editing     bool
	editID      string
	input       textinput.Model
	info        *bridge.Info
	loadingInfo bool
}

func newDeviceState() deviceState {
	in := textinput.New()
	in.Prompt = "nickname: "
	in.Placeholder = "blank clears"
	in.CharLimit = 64
	return deviceState{input: in}
}

func (d *deviceState) clamp(n int) {
	if d.selected >= n {
		d.selected = n - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

func (d *deviceState) resize(width int) {
	if w := width - 16; w > 10 {
		d.input.Width = w
	}
}

type infoMsg struct {
	info bridge.Info
	err  error
}

// selectedDevice returns the highlighted row, if any.
func (m Model) selectedDevice() (state.Listed, bool) {
	listed := m.snapshot.Devices()
	if m.devices.selected < 0 || m.devices.selected >= len(listed) {
		return state.Listed{}, false
	}
	return listed[m.devices.selected], true
}

func (m Model) handleDevicesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Devices())
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.devices.selected > 0 {
			m.devices.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.devices.selected < count-1 {
			m.devices.selected++
		}
	case key.Matches(msg, m.keys.Top):
		m.devices.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.devices.selected = count - 1
		m.devices.clamp(count)
	case key.Matches(msg, m.keys.Refresh):
		for _, p := range []*poller.Poller{m.bridgePoll, m.bootPoll} {
			if p != nil && p.Active() {
				p.Refresh(m.ctx, false)
			}
		}
		m.setStatus("refreshing", nil)
	case key.Matches(msg, m.keys.Nickname):
		d, ok := m.selectedDevice()
		if !ok || m.nicknames == nil {
			return m, nil
		}
		label, _ := m.nicknames.Get(d.ID)
		m.devices.editing = true
		m.devices.editID = d.ID
		m.devices.input.SetValue(label)
		m.devices.input.CursorEnd()
		return m, m.devices.input.Focus()
	case key.Matches(msg, m.keys.Info):
		if m.client == nil || m.devices.loadingInfo {
			return m, nil
		}
		if m.snapshot.Mode != device.ModeBridge {
			m.setStatus("device info needs a device in bridge mode", nil)
			return m, nil
		}
		m.devices.loadingInfo = true
		return m, deviceInfoCmd(m.ctx, m.client)
	case key.Matches(msg, m.keys.RebootSystem):
		return m, m.rebootCmd("")
	case key.Matches(msg, m.keys.RebootBootloader):
		return m, m.rebootCmd("bootloader")
	case key.Matches(msg, m.keys.RebootRecovery):
		return m, m.rebootCmd("recovery")
	}
	return m, nil
}

func (m Model) handleNicknameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.devices.editing = false
		m.devices.input.Blur()
		return m, nil
	case "enter":
		id, label := m.devices.editID, strings.TrimSpace(m.devices.input.Value())
		m.devices.editing = false
		m.devices.input.Blur()
		return m, saveNicknameCmd(m.nicknames, id, label)
	}
	var cmd tea.Cmd
	m.devices.input, cmd = m.devices.input.Update(msg)
	return m, cmd
}

func saveNicknameCmd(reg *nickname.Registry, id, label string) tea.Cmd {
	return func() tea.Msg {
		if err := reg.Set(id, label); err != nil {
			return statusMsg{err: fmt.Errorf("save nickname: %w", err)}
		}
		if label == "" {
			return statusMsg{text: "nickname cleared for " + id}
		}
		return statusMsg{text: fmt.Sprintf("%s is now %q", id, label)}
	}
}

func deviceInfoCmd(ctx context.Context, client DeviceControl) tea.Cmd {
	return func() tea.Msg {
		info, err := client.DeviceInfo(ctx)
		return infoMsg{info: info, err: err}
	}
}

func (m Model) rebootCmd(target string) tea.Cmd {
	if m.client == nil {
		return nil
	}
	if !m.snapshot.Mode.Connected() {
		return func() tea.Msg { return statusMsg{text: "no device to reboot"} }
	}
	client, ctx := m.client, m.ctx
	label := target
	if label == "" {
		label = "system"
	}
	return func() tea.Msg {
		if err := client.Reboot(ctx, target); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "rebooting to " + label}
	}
}

// displayName returns the nickname for d, or its serial.
func (m Model) displayName(d device.Device) string {
	if m.nicknames == nil {
		return d.ID
	}
	return m.nicknames.Display(d)
}

func (m Model) renderDevices() string {
	styles := m.theme.Styles()
	var b strings.Builder

	listed := m.snapshot.Devices()
	if len(listed) == 0 {
		b.WriteString("\n  ")
		switch m.snapshot.Mode {
		case device.ModeUnknown:
			b.WriteString(styles.MutedText.Render(m.spinner.View() + " Scanning for devices..."))
		default:
			b.WriteString(styles.MutedText.Render("No device connected."))
			b.WriteString("\n  ")
			b.WriteString(styles.FaintText.Render("Connect a phone with USB debugging enabled, or boot it into fastboot."))
		}
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("  %-22s %-22s %-14s %s", "NAME", "SERIAL", "STATUS", "CHANNEL")
		b.WriteString(styles.FaintText.Render(header))
		b.WriteString("\n")
		for i, d := range listed {
			name := truncate(m.displayName(d.Device), 22)
			row := fmt.Sprintf("  %-22s %-22s ", name, truncate(d.ID, 22))
			status := styles.StatusStyle(d.RawStatus).Render(d.RawStatus)
			line := row + status + " " + d.Channel.String()
			if i == m.devices.selected {
				line = styles.Selected.Render(">"+row[1:]) + status + styles.Selected.Render(" "+d.Channel.String())
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.devices.editing {
		b.WriteString("\n  ")
		b.WriteString(m.devices.input.View())
		b.WriteString("\n  ")
		b.WriteString(styles.FaintText.Render("enter save  esc cancel"))
		b.WriteString("\n")
	}

	switch {
	case m.devices.loadingInfo:
		b.WriteString("\n  ")
		b.WriteString(styles.MutedText.Render(m.spinner.View() + " Reading device properties..."))
	case m.devices.info != nil:
		b.WriteString("\n")
		b.WriteString(m.renderInfo(*m.devices.info, styles))
	}
	return b.String()
}

func (m Model) renderInfo(info bridge.Info, styles Styles) string {
	rows := []struct{ label, value string }{
		{"Model", info.Model},
		{"Brand", info.Brand},
		{"Codename", info.Codename},
		{"Android", info.AndroidVersion},
		{"Build", info.BuildNumber},
		{"Battery", info.BatteryLevel},
		{"IP address", info.IPAddress},
		{"Root", info.RootStatus},
		{"RAM", info.RAMTotal},
		{"Storage", info.Storage},
	}
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(styles.AccentText.Bold(true).Render("Device info"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-12s", r.label)))
		valueStyle := styles.Text
		if r.value == bridge.NotAvailable {
			valueStyle = styles.FaintText
		}
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}
	return b.String()
}

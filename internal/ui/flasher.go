package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// confirmPrompt asks a y/n question before running a destructive command.
type confirmPrompt struct {
	question string
	running  string
	run      tea.Cmd
}

type flasherState struct {
	inputs [2]textinput.Model // partition, image
	focus  int
}

func newFlasherState() flasherState {
	partition := textinput.New()
	partition.Prompt = "partition: "
	partition.Placeholder = "boot"
	partition.CharLimit = 64

	image := textinput.New()
	image.Prompt = "image:     "
	image.Placeholder = "/path/to/boot.img"

	return flasherState{inputs: [2]textinput.Model{partition, image}}
}

func (f *flasherState) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *flasherState) focusCurrent() {
	f.blur()
	f.inputs[f.focus].Focus()
}

func (f *flasherState) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = width - 16
	}
}

func (f flasherState) values() (partition, image string) {
	return strings.TrimSpace(f.inputs[0].Value()), strings.TrimSpace(f.inputs[1].Value())
}

func (m Model) handleFlasherKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.RecallBack), key.Matches(msg, m.keys.RecallFwd):
		m.flasher.focus = 1 - m.flasher.focus
		m.flasher.focusCurrent()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.promptFlash()
	case key.Matches(msg, m.keys.Wipe):
		if m.client == nil {
			return m, nil
		}
		if !m.bootloaderReady() {
			m.setStatus("wiping needs a device in bootloader mode", nil)
			return m, nil
		}
		m.confirm = &confirmPrompt{
			question: "Erase all user data on the device?",
			running:  "wiping user data",
			run:      m.clientCmd("user data wiped", m.client.WipeData),
		}
		return m, nil
	case key.Matches(msg, m.keys.BootReboot):
		if m.client == nil {
			return m, nil
		}
		if !m.bootloaderReady() {
			m.setStatus("no device in bootloader mode", nil)
			return m, nil
		}
		client := m.client
		m.setStatus("rebooting...", nil)
		return m, m.clientCmd("rebooting to system", func(ctx context.Context) error {
			return client.Reboot(ctx, "")
		})
	}

	var cmd tea.Cmd
	m.flasher.inputs[m.flasher.focus], cmd = m.flasher.inputs[m.flasher.focus].Update(msg)
	return m, cmd
}

func (m Model) promptFlash() (tea.Model, tea.Cmd) {
	partition, image := m.flasher.values()
	switch {
	case partition == "":
		m.setStatus("", fmt.Errorf("partition name cannot be empty"))
		return m, nil
	case image == "":
		m.setStatus("", fmt.Errorf("image path cannot be empty"))
		return m, nil
	case !m.bootloaderReady():
		m.setStatus("flashing needs a device in bootloader mode", nil)
		return m, nil
	case m.client == nil:
		return m, nil
	}

	client := m.client
	m.confirm = &confirmPrompt{
		question: fmt.Sprintf("Flash %s to %s?", filepath.Base(image), partition),
		running:  "flashing " + partition,
		run: m.clientCmd("flashed "+partition, func(ctx context.Context) error {
			return client.FlashPartition(ctx, partition, image)
		}),
	}
	return m, nil
}

// bootloaderReady reports whether the bootloader channel sees a device. The
// bridge channel is not polled in this view, so the combined mode may be stale.
func (m Model) bootloaderReady() bool {
	return len(m.snapshot.Bootloader.Devices) > 0
}

// clientCmd runs fn and reports done, or the error, in the status line.
func (m Model) clientCmd(done string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: done}
	}
}

func (m Model) renderFlasher() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(styles.AccentText.Bold(true).Render("Bootloader devices"))
	b.WriteString("\n")
	devices := m.snapshot.Bootloader.Devices
	if len(devices) == 0 {
		b.WriteString("  ")
		if m.snapshot.Bootloader.Loading || !m.snapshot.Bootloader.Polled {
			b.WriteString(styles.MutedText.Render(m.spinner.View() + " Waiting for fastboot..."))
		} else {
			b.WriteString(styles.FaintText.Render("None. Reboot the device to the bootloader to flash it."))
		}
		b.WriteString("\n")
	}
	for _, d := range devices {
		b.WriteString("  ")
		b.WriteString(styles.Text.Render(fmt.Sprintf("%-24s ", truncate(m.displayName(d), 24))))
		b.WriteString(styles.StatusStyle(d.RawStatus).Render(d.RawStatus))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, in := range m.flasher.inputs {
		b.WriteString("  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(styles.FaintText.Render("up/down switch field  enter flash  ctrl+w wipe data  ctrl+r reboot"))

	if m.confirm != nil {
		b.WriteString("\n\n  ")
		b.WriteString(styles.WarningText.Bold(true).Render(m.confirm.question + " [y/N]"))
	}
	return b.String()
}

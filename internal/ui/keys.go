package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	ForceQuit  key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewDevices key.Binding
	ViewFlasher key.Binding
	ViewFiles   key.Binding
	ViewShell   key.Binding
	ViewLogs    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Devices
	Refresh          key.Binding
	Nickname         key.Binding
	Info             key.Binding
	RebootSystem     key.Binding
	RebootBootloader key.Binding
	RebootRecovery   key.Binding

	// Files
	Open         key.Binding
	Parent       key.Binding
	Export       key.Binding
	ImportFile   key.Binding
	ImportFolder key.Binding

	// Shell and flasher inputs
	Submit     key.Binding
	RecallBack key.Binding
	RecallFwd  key.Binding
	ClearShell key.Binding
	Wipe       key.Binding
	BootReboot key.Binding

	// Logs
	CycleLevel   key.Binding
	ToggleFollow key.Binding

	// Confirmation prompts
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / cancel"),
		),

		ViewDevices: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Devices"),
		),
		ViewFlasher: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Flasher"),
		),
		ViewFiles: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Files"),
		),
		ViewShell: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Shell"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Nickname: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Set nickname"),
		),
		Info: key.NewBinding(
			key.WithKeys("i", "enter"),
			key.WithHelp("i", "Device info"),
		),
		RebootSystem: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reboot system"),
		),
		RebootBootloader: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Reboot to bootloader"),
		),
		RebootRecovery: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Reboot to recovery"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "Open directory"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace", "h", "left"),
			key.WithHelp("backspace", "Parent directory"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export selected"),
		),
		ImportFile: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Import file"),
		),
		ImportFolder: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "Import folder"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Run"),
		),
		RecallBack: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "Older command"),
		),
		RecallFwd: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "Newer command"),
		),
		ClearShell: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "Clear transcript"),
		),
		Wipe: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "Wipe data"),
		),
		BootReboot: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Reboot to system"),
		),

		CycleLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle level filter"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewDevices, k.ViewFlasher, k.ViewFiles, k.ViewShell, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Refresh, k.Nickname, k.Info, k.RebootSystem, k.RebootBootloader, k.RebootRecovery},
		{k.Open, k.Parent, k.Export, k.ImportFile, k.ImportFolder},
		{k.Submit, k.RecallBack, k.RecallFwd, k.ClearShell},
		{k.Wipe, k.BootReboot},
		{k.CycleLevel, k.ToggleFollow},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

// Package ui provides the Bubble Tea terminal interface for handset.
//
// # Views
//
// Five views share one header and footer:
//
//   - Devices: every device seen on either channel, with nicknames, device
//     info and reboot actions
//   - Flasher: bootloader devices, partition flashing and data wipe
//   - Files: remote directory browser with import and export transfers
//   - Shell: command transcript and input routed through the dispatcher
//   - Logs: tail of the handset log file with a level filter
//
// # Polling
//
// The active view decides which pollers run. Devices keeps both channels
// polling, Flasher only the bootloader channel, and the remaining views stop
// both. Switching views starts and stops pollers synchronously from Update.
// The model reads state.Store snapshots on a fixed tick.
//
// # Transfers
//
// Transfer sessions run in tea.Cmd goroutines. When a session needs a local
// path it sends a request through promptPicker; the model opens a picker
// modal and answers on the request's reply channel. Escape answers with an
// empty path, which the session treats as a cancellation.
//
// # Key Bindings
//
// Views that accept text (Shell, Flasher) only react to tab, shift+tab and
// ctrl+c globally; the other views also accept single-letter shortcuts.
// Press ? for the full list.
package ui

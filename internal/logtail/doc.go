// Package logtail reads handset's own log file for the `handset logs`
// command and the TUI log pane.
//
// Read extracts the last N lines of a file in one pass using a ring buffer,
// so memory stays proportional to N rather than to the file size.
//
// Entries are logfmt as written by the logging package:
//
//	time="2026-03-02T10:15:04Z" level=warn msg="bridge discovery failed" channel=bridge
//
// LineLevel pulls the level field out of a line and Filter drops entries
// below a minimum severity. Continuation lines carry no level and travel
// with the entry they follow.
//
// Read returns nil, nil for a missing log file; other I/O errors are wrapped.
package logtail

// Package config loads handset configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path (the --config flag)
//  2. The HANDSET_CONFIG environment variable
//  3. ~/.config/handset/config.toml
//
// A missing file is not an error: every key has a default so handset works
// with no configuration at all. A file that exists but does not parse is an
// error.
//
// # Environment Overrides
//
// Every key can be overridden with a HANDSET_ variable where dots become
// underscores, for example HANDSET_POLL_BRIDGE_INTERVAL=2s or
// HANDSET_TOOLS_BRIDGE=/opt/platform-tools/adb.
//
// # TOML Format
//
//	[tools]
//	bridge = "adb"
//	bootloader = "fastboot"
//	search_dirs = ["./bin"]
//
//	[poll]
//	bridge_interval = "3s"
//	bootloader_interval = "4s"
//	empty_accept_streak = 2
//	mode_priority = "bridge"
//
//	[files]
//	start_path = "/sdcard"
//
//	[shell]
//	no_output_marker = "(no output)"
//
//	[wireless]
//	default_port = "5555"
//
//	[storage]
//	nicknames_path = "~/.config/handset/nicknames.toml"
//	journal_path = "~/.local/share/handset/journal.db"
//	prefs_path = "~/.config/handset/prefs.toml"
//
//	[log]
//	path = "~/.local/state/handset/handset.log"
//	level = "info"
//
// Tilde paths are expanded. log.path "-" sends logs to stderr.
//
// # Validation
//
// Poll intervals must be positive, empty_accept_streak must be at least 1
// and mode_priority must name a channel ("bridge" or "bootloader").
package config

// Package device defines the device records produced by discovery and the
// connection mode classifier.
//
// Two discovery channels exist: the debug bridge (adb) and the bootloader
// (fastboot). Each channel yields an unordered list of Device records. The
// Classify function folds the latest accepted snapshot of both channels into a
// single Mode:
//
//	bridge non-empty, bootloader non-empty  → preferred channel (bridge by default)
//	bridge non-empty                        → ModeBridge
//	bootloader non-empty                    → ModeBootloader
//	both empty, at least one polled         → ModeNone
//	neither polled yet                      → ModeUnknown
//
// Classify is pure; callers recompute the mode from fresh snapshots instead of
// storing it.
package device

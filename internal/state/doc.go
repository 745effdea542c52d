// Package state aggregates the two discovery channels into the device view
// the UI renders.
//
// # Overview
//
// Each discovery channel (bridge, bootloader) has its own poller.Poller. The
// pollers publish their State through poller.Options.OnChange, which is wired
// to Store.Update. The UI reads Store.Snapshot, which carries both channel
// states plus the connection mode recomputed by device.Classify.
//
//	Producers (pollers):           Consumer (UI):
//	┌──────────────────┐          ┌──────────────────┐
//	│ bridge poller    │──┐       │                  │
//	│                  │  ├──────→│ store.Snapshot() │
//	│ bootloader poller│──┘       │   → render       │
//	└──────────────────┘ Update   └──────────────────┘
//
// # Concurrency Model
//
// Update takes the write lock only to copy the incoming state; Snapshot takes
// the read lock and returns independent copies of both device slices. Watch
// callbacks run after the lock is released, on the goroutine that called
// Update.
//
// # Mode
//
// The mode is never stored. Snapshot recomputes it on every call from the last
// accepted lists so it cannot drift from the device lists it is derived from.
//
// # Errors
//
// A discovery error stays on its channel state (poller.State.Err) until that
// channel's next successful poll. Snapshot.Err returns the first one, bridge
// first, so the UI can show an error banner while still listing the devices
// from the last good poll.
package state

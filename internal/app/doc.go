// Package app is the composition root for handset.
//
// # Overview
//
// Open loads configuration and wires every component the TUI and the CLI
// share: the tool client, pollers, the state store, the dispatcher, the
// transcript and its journal, nicknames and the remote file browser. Run
// opens the services and hands them to the Bubble Tea interface.
//
// # Startup
//
//  1. Load config from ~/.config/handset/config.toml (defaults when absent)
//  2. Initialize logrus, to a file or stderr
//  3. Resolve the bridge and bootloader tools
//  4. Open the SQLite journal and seed the recall buffer from it
//  5. Build the dispatcher, browser, store and one poller per channel
//
// Nothing polls until StartPolling is called or the TUI activates a view.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │
//	└──────┬───────┘
//	       ├─────> config.Load()
//	       ├─────> logging.New()
//	       ├─────> bridge.NewClient()
//	       ├─────> journal.Open()      optional
//	       ├─────> dispatch.New()
//	       └─────> poller.New() x2     OnChange -> state.Store.Update
//
//	Poller goroutine (per channel):
//	┌─────────────────────────────────────────┐
//	│ Discover() -> State                     │
//	│  └─> store.Update()                     │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// A bad config file or an unusable log path fails Open. A journal that cannot
// be opened is logged and the transcript stays in memory for the session.
// Discovery errors never stop a poller; they are carried in the state and
// shown in the header.
package app

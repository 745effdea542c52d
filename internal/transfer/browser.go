package transfer

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/five82/handset/internal/bridge"
)

// DefaultStartPath is where browsing begins when nothing else is configured.
const DefaultStartPath = "/sdcard"

// Transport performs remote file operations.
type Transport interface {
	ListFiles(ctx context.Context, dir string) ([]bridge.FileEntry, error)
	PushFile(ctx context.Context, local, remote string) (string, error)
	PullFile(ctx context.Context, remote, local string) (string, error)
}

// JoinRemote joins dir and name with POSIX semantics, so ".." climbs one level
// and the root stays "/".
func JoinRemote(dir, name string) string {
	if dir == "" {
		dir = "/"
	}
	return path.Join(dir, name)
}

// SortEntries orders directories before everything else, then by name.
func SortEntries(entries []bridge.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return entries[i].Name < entries[j].Name
	})
}

// Browser tracks the current remote directory and its listing.
type Browser struct {
	transport Transport

	mu      sync.RWMutex
	dir     string
	entries []bridge.FileEntry
	err     error
}

// NewBrowser returns a Browser positioned at start without loading it.
func NewBrowser(transport Transport, start string) *Browser {
	start = strings.TrimSpace(start)
	if start == "" {
		start = DefaultStartPath
	}
	return &Browser{transport: transport, dir: JoinRemote("/", start)}
}

// Path returns the current directory.
func (b *Browser) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dir
}

// Entries returns a copy of the current listing.
func (b *Browser) Entries() []bridge.FileEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]bridge.FileEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Err returns the error from the last load, if it failed.
func (b *Browser) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// Load lists dir and, on success, makes it the current directory. On failure
// the current directory and listing are kept.
func (b *Browser) Load(ctx context.Context, dir string) error {
	dir = JoinRemote("/", dir)
	entries, err := b.transport.ListFiles(ctx, dir)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.err = err
		return err
	}
	SortEntries(entries)
	b.dir = dir
	b.entries = entries
	b.err = nil
	return nil
}

// Reload lists the current directory again.
func (b *Browser) Reload(ctx context.Context) error {
	return b.Load(ctx, b.Path())
}

// Enter opens the named child directory. Non-directories are ignored.
func (b *Browser) Enter(ctx context.Context, entry bridge.FileEntry) error {
	if !entry.IsDir() {
		return nil
	}
	return b.Load(ctx, JoinRemote(b.Path(), entry.Name))
}

// Up moves to the parent directory.
func (b *Browser) Up(ctx context.Context) error {
	return b.Load(ctx, JoinRemote(b.Path(), ".."))
}

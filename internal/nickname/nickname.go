// Package nickname stores operator-assigned labels for device serials.
package nickname

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/device"
)

// ErrEmptyID is returned when a nickname is set for a blank device id.
var ErrEmptyID = errors.New("device id is empty")

// Storage persists the registry blob.
type Storage interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// Entry is one id/label pair.
type Entry struct {
	ID    string
	Label string
}

type blob struct {
	Nicknames map[string]string `toml:"nicknames"`
}

// Registry maps device ids to labels. It reads the blob on every call so a
// Set never overwrites entries written since the last read by this process.
type Registry struct {
	mu      sync.Mutex
	storage Storage
	log     logrus.FieldLogger
}

// New returns a Registry backed by storage.
func New(storage Storage, log logrus.FieldLogger) *Registry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Registry{storage: storage, log: log.WithField("component", "nickname")}
}

// Get returns the label for id and whether one is set.
func (r *Registry) Get(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names, _ := r.load()
	label, ok := names[strings.TrimSpace(id)]
	return label, ok
}

// Set stores label for id. An empty or blank label removes the entry.
func (r *Registry) Set(id, label string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	label = strings.TrimSpace(label)

	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.load()
	if err != nil {
		return fmt.Errorf("read nicknames: %w", err)
	}
	if label == "" {
		if _, ok := names[id]; !ok {
			return nil
		}
		delete(names, id)
	} else {
		names[id] = label
	}

	data, err := toml.Marshal(blob{Nicknames: names})
	if err != nil {
		return fmt.Errorf("marshal nicknames: %w", err)
	}
	if err := r.storage.Write(data); err != nil {
		return fmt.Errorf("write nicknames: %w", err)
	}
	return nil
}

// All returns every entry sorted by id.
func (r *Registry) All() []Entry {
	r.mu.Lock()
	names, _ := r.load()
	r.mu.Unlock()

	out := make([]Entry, 0, len(names))
	for id, label := range names {
		out = append(out, Entry{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Display returns the nickname for d when set, otherwise its serial.
func (r *Registry) Display(d device.Device) string {
	if label, ok := r.Get(d.ID); ok {
		return label
	}
	return d.ID
}

// load must be called with mu held. Read and parse failures yield an empty
// map; only a read failure is returned, so Set never replaces a blob it could
// not read.
func (r *Registry) load() (map[string]string, error) {
	names := map[string]string{}
	data, err := r.storage.Read()
	if err != nil {
		r.log.WithError(err).Error("read nickname registry")
		return names, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return names, nil
	}
	var b blob
	if err := toml.Unmarshal(data, &b); err != nil {
		r.log.WithError(err).Error("parse nickname registry")
		return names, nil
	}
	for id, label := range b.Nicknames {
		if strings.TrimSpace(label) == "" {
			continue
		}
		names[id] = label
	}
	return names, nil
}

// FileStorage keeps the blob in a TOML file. A missing file reads as empty.
type FileStorage struct {
	Path string
}

// Read returns the file contents.
func (f FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write replaces the file, creating parent directories as needed.
func (f FileStorage) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create nickname dir: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// MemoryStorage keeps the blob in memory.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func (m *MemoryStorage) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

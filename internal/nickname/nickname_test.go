package nickname

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/five82/handset/internal/device"
)

func TestRegistry_RoundTrip(t *testing.T) {
	r := New(&MemoryStorage{}, nil)

	if err := r.Set("R58M", "Pixel"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok := r.Get("R58M"); !ok || got != "Pixel" {
		t.Fatalf("Get = %q,%v, want Pixel,true", got, ok)
	}

	if err := r.Set("R58M", ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if got, ok := r.Get("R58M"); ok {
		t.Fatalf("Get after clear = %q, want absent", got)
	}
}

func TestRegistry_BlankLabelRemoves(t *testing.T) {
	r := New(&MemoryStorage{}, nil)
	_ = r.Set("A", "one")
	if err := r.Set("A", "   "); err != nil {
		t.Fatalf("Set blank: %v", err)
	}
	if _, ok := r.Get("A"); ok {
		t.Fatalf("blank label was stored")
	}
	if got := len(r.All()); got != 0 {
		t.Fatalf("All len = %d, want 0", got)
	}
}

func TestRegistry_EmptyID(t *testing.T) {
	r := New(&MemoryStorage{}, nil)
	if err := r.Set(" ", "x"); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("Set err = %v, want ErrEmptyID", err)
	}
}

func TestRegistry_CorruptBlobReadsEmpty(t *testing.T) {
	store := &MemoryStorage{}
	_ = store.Write([]byte("this is = not [valid toml"))
	r := New(store, nil)

	if _, ok := r.Get("A"); ok {
		t.Fatalf("corrupt blob produced an entry")
	}
	if err := r.Set("A", "Pixel"); err != nil {
		t.Fatalf("Set over corrupt blob: %v", err)
	}
	if got, _ := r.Get("A"); got != "Pixel" {
		t.Fatalf("Get = %q, want Pixel", got)
	}
}

type failingStorage struct{}

func (failingStorage) Read() ([]byte, error) { return nil, errors.New("disk gone") }
func (failingStorage) Write([]byte) error    { return errors.New("disk gone") }

func TestRegistry_ReadFailureIsEmpty(t *testing.T) {
	r := New(failingStorage{}, nil)
	if _, ok := r.Get("A"); ok {
		t.Fatalf("Get on failing storage returned an entry")
	}
	if err := r.Set("A", "x"); err == nil {
		t.Fatalf("Set on failing storage = nil, want error")
	}
}

func TestRegistry_ConcurrentSetsKeepAllEntries(t *testing.T) {
	r := New(&MemoryStorage{}, nil)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = r.Set(id, "label-"+id)
		}(id)
	}
	wg.Wait()

	if got := len(r.All()); got != len(ids) {
		t.Fatalf("All len = %d, want %d", got, len(ids))
	}
}

func TestRegistry_Display(t *testing.T) {
	r := New(&MemoryStorage{}, nil)
	d := device.Device{ID: "SER1"}
	if got := r.Display(d); got != "SER1" {
		t.Fatalf("Display = %q, want serial", got)
	}
	_ = r.Set("SER1", "Work phone")
	if got := r.Display(d); got != "Work phone" {
		t.Fatalf("Display = %q, want nickname", got)
	}
}

func TestFileStorage_PersistsAcrossRegistries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nicknames.toml")
	store := FileStorage{Path: path}

	if data, err := store.Read(); err != nil || data != nil {
		t.Fatalf("Read missing = %q,%v, want nil,nil", data, err)
	}

	if err := New(store, nil).Set("SER1", "Pixel"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("nickname file not written: %v", err)
	}

	if got, ok := New(store, nil).Get("SER1"); !ok || got != "Pixel" {
		t.Fatalf("Get from fresh registry = %q,%v, want Pixel,true", got, ok)
	}
}

// flakyStorage fails its first read and records every write.
type flakyStorage struct {
	MemoryStorage
	failed bool
	writes int
}

func (f *flakyStorage) Read() ([]byte, error) {
	if !f.failed {
		f.failed = true
		return nil, errors.New("transient read error")
	}
	return f.MemoryStorage.Read()
}

func (f *flakyStorage) Write(data []byte) error {
	f.writes++
	return f.MemoryStorage.Write(data)
}

func TestRegistry_SetKeepsBlobOnReadFailure(t *testing.T) {
	store := &flakyStorage{}
	_ = store.MemoryStorage.Write([]byte("[nicknames]\nA = \"Pixel\"\nB = \"Tab\"\n"))
	r := New(store, nil)

	if err := r.Set("C", "Phone"); err == nil {
		t.Fatalf("Set after read failure = nil, want error")
	}
	if store.writes != 0 {
		t.Fatalf("writes = %d, want 0", store.writes)
	}
	if got := len(r.All()); got != 2 {
		t.Fatalf("All len = %d, want 2", got)
	}
}

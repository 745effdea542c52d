package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/history"
)

type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)
	out, ok := f.responses[line]
	if !ok {
		return "", &bridge.RunError{Tool: name, Stderr: "error: no devices/emulators found", Err: errors.New("exit status 1")}
	}
	return out, nil
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HANDSET_CONFIG", "")
	content := fmt.Sprintf(`
[storage]
nicknames_path = %q
journal_path = %q
prefs_path = %q

[log]
path = %q
`,
		filepath.Join(dir, "nicknames.toml"),
		filepath.Join(dir, "journal.db"),
		filepath.Join(dir, "prefs.toml"),
		filepath.Join(dir, "handset.log"),
	)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestOpen_WiresDispatcherToJournal(t *testing.T) {
	cfgPath := writeConfig(t)
	runner := &fakeRunner{responses: map[string]string{
		"adb shell getprop ro.product.model": "Pixel 8\n",
	}}
	ctx := context.Background()

	s, err := Open(ctx, Options{ConfigPath: cfgPath, Runner: runner})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Journal == nil {
		t.Fatal("Journal = nil, want opened journal")
	}

	out, err := s.Dispatch.Submit(ctx, "shell getprop ro.product.model")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Output != "Pixel 8" || out.Err != nil {
		t.Fatalf("Outcome = %+v, want Pixel 8", out)
	}

	out, err = s.Dispatch.Submit(ctx, "shell reboot now")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Err == nil {
		t.Fatal("Outcome.Err = nil, want tool failure")
	}

	records, err := s.Journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	var kinds []history.Kind
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	want := []history.Kind{history.KindCommand, history.KindResult, history.KindCommand, history.KindError}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("journal kinds = %v, want %v", kinds, want)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, Options{ConfigPath: cfgPath, Runner: runner})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recall := reopened.History.Recall()
	if len(recall) != 2 || recall[1] != "shell reboot now" {
		t.Fatalf("Recall after reopen = %v", recall)
	}
	if len(reopened.History.Transcript()) != 0 {
		t.Fatalf("Transcript after reopen = %v, want empty", reopened.History.Transcript())
	}
}

func TestOpen_NoJournal(t *testing.T) {
	cfgPath := writeConfig(t)
	s, err := Open(context.Background(), Options{ConfigPath: cfgPath, Runner: &fakeRunner{}, NoJournal: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Journal != nil {
		t.Fatal("Journal != nil with NoJournal")
	}
	s.History.Append(history.KindCommand, "adb devices")
	if got := len(s.History.Transcript()); got != 1 {
		t.Fatalf("Transcript len = %d, want 1", got)
	}
}

func TestOpen_BadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[poll]\nempty_accept_streak = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Open(context.Background(), Options{ConfigPath: path}); err == nil {
		t.Fatal("Open succeeded with invalid config")
	}
}

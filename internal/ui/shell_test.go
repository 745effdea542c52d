package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/handset/internal/dispatch"
	"github.com/five82/handset/internal/history"
	"github.com/five82/handset/internal/prefs"
)

type fakeInvoker struct {
	shell map[string]string
}

func (f fakeInvoker) RunShell(_ context.Context, command string) (string, error) {
	if out, ok := f.shell[command]; ok {
		return out, nil
	}
	return "", errors.New(command + ": not found")
}

func (f fakeInvoker) RunBridge(context.Context, string) (string, error) {
	return "List of devices attached\n", nil
}

func (f fakeInvoker) RunBootloader(context.Context, string) (string, error) {
	return "", nil
}

func newShellModel(t *testing.T, shell map[string]string) (Model, *dispatch.Dispatcher, *history.Store) {
	t.Helper()
	hist := history.New()
	d := dispatch.New(fakeInvoker{shell: shell}, hist, dispatch.Options{NoOutputMarker: "(no output)"})
	m := newTestModel(t, Options{Dispatch: d, History: hist, Prefs: prefs.Prefs{LastView: "shell"}})
	return m, d, hist
}

func TestShellSubmit(t *testing.T) {
	m, d, hist := newShellModel(t, map[string]string{"getprop ro.product.model": "Pixel 8\n"})

	m = typeText(t, m, "shell getprop ro.product.model")
	m, cmd := update(t, m, keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a run command")
	}
	if m.shell.pending != "shell getprop ro.product.model" {
		t.Fatalf("pending = %q", m.shell.pending)
	}
	if !d.Busy() {
		t.Fatal("dispatcher should be busy until the outcome arrives")
	}
	if got := hist.Transcript(); len(got) != 1 || got[0].Kind != history.KindCommand {
		t.Fatalf("transcript = %+v, want one command entry", got)
	}

	m, _ = update(t, m, keyPress("x"))
	if got := m.shell.input.Value(); got != "" {
		t.Fatalf("input = %q while pending, want empty", got)
	}

	m, _ = update(t, m, cmd())
	if m.shell.pending != "" {
		t.Fatalf("pending = %q after outcome", m.shell.pending)
	}
	if d.Busy() {
		t.Fatal("dispatcher still busy")
	}
	got := hist.Transcript()
	if len(got) != 2 || got[1].Kind != history.KindResult || got[1].Text != "Pixel 8" {
		t.Fatalf("transcript = %+v, want result Pixel 8", got)
	}
	if !strings.Contains(m.View(), "Pixel 8") {
		t.Fatal("shell view should show the result")
	}
}

func TestShellIgnoresBlankLine(t *testing.T) {
	m, _, hist := newShellModel(t, nil)
	m = typeText(t, m, "   ")
	m, cmd := update(t, m, keyPress("enter"))
	if cmd != nil || m.shell.pending != "" {
		t.Fatal("blank line should not run")
	}
	if n := len(hist.Transcript()); n != 0 {
		t.Fatalf("transcript has %d entries, want 0", n)
	}
}

func TestShellToolError(t *testing.T) {
	m, _, hist := newShellModel(t, nil)
	m = typeText(t, m, "shell bogus")
	m, cmd := update(t, m, keyPress("enter"))
	m, _ = update(t, m, cmd())

	got := hist.Transcript()
	if len(got) != 2 || got[1].Kind != history.KindError {
		t.Fatalf("transcript = %+v, want an error entry", got)
	}
	if m.status.isErr {
		t.Fatal("tool errors belong in the transcript, not the status line")
	}
}

func TestShellSuggestsKeyword(t *testing.T) {
	m, _, _ := newShellModel(t, nil)
	m = typeText(t, m, "adbb devices")
	m, cmd := update(t, m, keyPress("enter"))
	m, _ = update(t, m, cmd())
	if m.status.text != "did you mean adb?" {
		t.Fatalf("status = %q, want did you mean adb?", m.status.text)
	}
}

func TestShellRecall(t *testing.T) {
	m, _, hist := newShellModel(t, nil)
	hist.RecordCommand("shell ls")
	hist.RecordCommand("adb devices")
	m.shell.recall = hist.RecallLen()

	steps := []struct {
		key  string
		want string
	}{
		{"up", "adb devices"},
		{"up", "shell ls"},
		{"up", "shell ls"},
		{"down", "adb devices"},
		{"down", ""},
	}
	for i, s := range steps {
		m, _ = update(t, m, keyPress(s.key))
		if got := m.shell.input.Value(); got != s.want {
			t.Fatalf("step %d (%s): input = %q, want %q", i, s.key, got, s.want)
		}
	}
}

func TestShellClear(t *testing.T) {
	m, _, hist := newShellModel(t, map[string]string{"id": "uid=2000(shell)"})
	m = typeText(t, m, "shell id")
	m, cmd := update(t, m, keyPress("enter"))
	m, _ = update(t, m, cmd())

	m, _ = update(t, m, keyPress("ctrl+l"))
	if n := len(hist.Transcript()); n != 0 {
		t.Fatalf("transcript has %d entries after clear, want 0", n)
	}
	if !strings.Contains(m.View(), "No commands yet") {
		t.Fatal("cleared transcript should show the empty hint")
	}
}

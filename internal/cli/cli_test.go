package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/five82/handset/internal/bridge"
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
		return "", &bridge.RunError{Tool: name, Stderr: "error: unexpected " + line, Err: errors.New("exit status 1")}
	}
	return out, nil
}

func (f *fakeRunner) called(line string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == line {
			return true
		}
	}
	return false
}

type harness struct {
	t      *testing.T
	dir    string
	config string
	runner *fakeRunner
}

func newHarness(t *testing.T, responses map[string]string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HANDSET_CONFIG", "")
	content := fmt.Sprintf(`
[storage]
nicknames_path = %q
journal_path = %q

[log]
path = %q
level = "debug"
`,
		filepath.Join(dir, "nicknames.toml"),
		filepath.Join(dir, "journal.db"),
		filepath.Join(dir, "handset.log"),
	)
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &harness{t: t, dir: dir, config: cfg, runner: &fakeRunner{responses: responses}}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	c := &CLI{Stdout: &out, Runner: h.runner}
	err := execute(context.Background(), c, append([]string{"--config", h.config}, args...))
	return out.String(), err
}

func TestDevicesCommand(t *testing.T) {
	h := newHarness(t, map[string]string{
		"adb devices":      "List of devices attached\nR58M123\tdevice\n",
		"fastboot devices": "",
	})
	if _, err := h.run("nick", "R58M123", "Test phone"); err != nil {
		t.Fatalf("nick: %v", err)
	}

	out, err := h.run("devices")
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if !strings.Contains(out, "mode: bridge") {
		t.Fatalf("devices output = %q, want mode line", out)
	}
	if !strings.Contains(out, "R58M123") || !strings.Contains(out, "Test phone") {
		t.Fatalf("devices output = %q, want serial and nickname", out)
	}
}

func TestDevicesCommand_BothChannelsFail(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run("devices"); err == nil {
		t.Fatal("devices succeeded with both discoveries failing")
	}
}

func TestNickCommand(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run("nick", "ABC", "Lab tablet"); err != nil {
		t.Fatalf("nick set: %v", err)
	}
	out, err := h.run("nick", "ABC")
	if err != nil || strings.TrimSpace(out) != "Lab tablet" {
		t.Fatalf("nick get = %q, %v, want Lab tablet", out, err)
	}
	if _, err := h.run("nick", "ABC", "--clear"); err != nil {
		t.Fatalf("nick clear: %v", err)
	}
	if _, err := h.run("nick", "ABC"); err == nil {
		t.Fatal("nick get after clear succeeded")
	}
}

func TestRunCommandAndHistory(t *testing.T) {
	h := newHarness(t, map[string]string{
		"adb shell echo hi": "hi\n",
		"adb shell true":    "",
	})
	out, err := h.run("run", "shell echo hi")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "hi" {
		t.Fatalf("run output = %q, want hi", out)
	}

	out, err = h.run("run", "shell", "true")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "(no output)" {
		t.Fatalf("run output = %q, want no-output marker", out)
	}

	if _, err := h.run("run", "adb"); err == nil {
		t.Fatal("bare prefix succeeded")
	}

	out, err = h.run("history", "-n", "10")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"> shell echo hi", "> shell true", "(no output)", "> adb"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history output = %q, missing %q", out, want)
		}
	}
}

func TestLsCommand(t *testing.T) {
	h := newHarness(t, map[string]string{
		"adb shell ls -lA /sdcard": "total 8\n" +
			"drwxrwx--x 2 root sdcard_rw 4096 2024-01-01 10:00 DCIM\n" +
			"-rw-rw---- 1 root sdcard_rw 2048 2024-01-02 11:00 notes.txt\n",
	})
	out, err := h.run("ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "DCIM/") || !strings.Contains(out, "notes.txt") || !strings.Contains(out, "2.0 KiB") {
		t.Fatalf("ls output = %q", out)
	}
}

func TestPackagesCommand(t *testing.T) {
	h := newHarness(t, map[string]string{
		"adb shell pm list packages -f": "package:/data/app/base.apk=com.android.chrome\n" +
			"package:/system/app/Maps.apk=com.google.android.apps.maps\n" +
			"package:/system/app/Calc.apk=com.android.calculator2\n",
	})
	out, err := h.run("packages", "maps")
	if err != nil {
		t.Fatalf("packages: %v", err)
	}
	if strings.TrimSpace(out) != "com.google.android.apps.maps" {
		t.Fatalf("packages output = %q", out)
	}
}

func TestWipeRequiresConfirmation(t *testing.T) {
	h := newHarness(t, map[string]string{"fastboot -w": "OKAY"})
	_, err := h.run("wipe")
	if !errors.Is(err, errConfirmRequired) {
		t.Fatalf("wipe err = %v, want errConfirmRequired", err)
	}
	if h.runner.called("fastboot -w") {
		t.Fatal("wipe ran without confirmation")
	}
	if _, err := h.run("wipe", "--yes"); err != nil {
		t.Fatalf("wipe --yes: %v", err)
	}
	if !h.runner.called("fastboot -w") {
		t.Fatal("wipe --yes did not run the tool")
	}
}

func TestFlashCommand(t *testing.T) {
	h := newHarness(t, nil)
	image := filepath.Join(h.dir, "boot.img")
	if err := os.WriteFile(image, []byte("img"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	h.runner.responses = map[string]string{"fastboot flash boot " + image: "OKAY"}

	out, err := h.run("flash", "boot", image)
	if err != nil {
		t.Fatalf("flash: %v", err)
	}
	if !strings.Contains(out, "flashed") {
		t.Fatalf("flash output = %q", out)
	}
}

func TestLogsCommand(t *testing.T) {
	h := newHarness(t, map[string]string{"adb devices": "List of devices attached\n"})
	if _, err := h.run("mode"); err != nil {
		t.Fatalf("mode: %v", err)
	}
	logPath := filepath.Join(h.dir, "handset.log")
	data := "level=info msg=one\nlevel=error msg=two\n"
	if err := os.WriteFile(logPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out, err := h.run("logs", "--level", "error")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "level=error msg=two" {
		t.Fatalf("logs output = %q", out)
	}
}

func TestRunCommandLine(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"shell ls -l"}, want: "shell ls -l"},
		{args: []string{"adb", "push", "my file.txt", "/sdcard"}, want: "adb push 'my file.txt' /sdcard"},
		{args: []string{"fastboot", "-w"}, want: "fastboot -w"},
	}
	for _, tt := range tests {
		r := RunCmd{Line: tt.args}
		if got := r.commandLine(); got != tt.want {
			t.Fatalf("commandLine(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

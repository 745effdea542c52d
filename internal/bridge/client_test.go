package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/five82/handset/internal/device"
)

type response struct {
	out string
	err error
}

type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]response
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)
	r, ok := f.responses[line]
	if !ok {
		return "", &RunError{Tool: name, Err: errors.New("unexpected call: " + line)}
	}
	return r.out, r.err
}

func newFakeClient(responses map[string]response) (*Client, *fakeRunner) {
	runner := &fakeRunner{responses: responses}
	return NewClientWithRunner(Tools{}, runner), runner
}

func TestDiscoverBridge(t *testing.T) {
	c, _ := newFakeClient(map[string]response{
		"adb devices": {out: "List of devices attached\nR58M123\tdevice\nemulator-5554\toffline\n* daemon started\nbroken line here\n"},
	})
	got, err := c.DiscoverBridge(context.Background())
	if err != nil {
		t.Fatalf("DiscoverBridge: %v", err)
	}
	want := []device.Device{{ID: "R58M123", RawStatus: "device"}, {ID: "emulator-5554", RawStatus: "offline"}}
	if !device.Equal(got, want) {
		t.Fatalf("DiscoverBridge = %#v, want %#v", got, want)
	}
}

func TestDiscoverBootloader(t *testing.T) {
	c, _ := newFakeClient(map[string]response{
		"fastboot devices": {out: "8A2X0KC1\tfastboot"},
	})
	got, err := c.DiscoverBootloader(context.Background())
	if err != nil {
		t.Fatalf("DiscoverBootloader: %v", err)
	}
	if len(got) != 1 || got[0].ID != "8A2X0KC1" {
		t.Fatalf("DiscoverBootloader = %#v, want one record", got)
	}
}

func TestRunBridgeSplitsQuotedArgs(t *testing.T) {
	c, runner := newFakeClient(map[string]response{
		"adb push my file.txt /sdcard/": {out: "1 file pushed"},
	})
	out, err := c.RunBridge(context.Background(), `push "my file.txt" /sdcard/`)
	if err != nil {
		t.Fatalf("RunBridge: %v", err)
	}
	if out != "1 file pushed" {
		t.Fatalf("RunBridge = %q", out)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("calls = %v", runner.calls)
	}

	if _, err := c.RunBootloader(context.Background(), `flash "boot`); err == nil {
		t.Fatalf("RunBootloader with unbalanced quote = nil error")
	}
}

func TestListFilesQuotesPath(t *testing.T) {
	c, _ := newFakeClient(map[string]response{
		`adb shell ls -lA '/sdcard/My Music'`: {out: "total 8\n-rw-rw---- 1 u0 media 4096 2024-03-01 10:00 a.mp3"},
	})
	got, err := c.ListFiles(context.Background(), "/sdcard/My Music")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a.mp3" || got[0].Size != 4096 {
		t.Fatalf("ListFiles = %#v", got)
	}
}

func TestDeviceModeAndReboot(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]response
		target    string
		wantMode  device.Mode
		wantCall  string
		wantErr   error
	}{
		{
			name: "bridge",
			responses: map[string]response{
				"adb devices":         {out: "List of devices attached\nA\tdevice"},
				"adb reboot recovery": {},
			},
			target:   "recovery",
			wantMode: device.ModeBridge,
			wantCall: "adb reboot recovery",
		},
		{
			name: "bootloader to bootloader",
			responses: map[string]response{
				"adb devices":                {out: "List of devices attached\nA\tunauthorized"},
				"fastboot devices":           {out: "A\tfastboot"},
				"fastboot reboot-bootloader": {},
			},
			target:   "bootloader",
			wantMode: device.ModeBootloader,
			wantCall: "fastboot reboot-bootloader",
		},
		{
			name: "bootloader normal boot",
			responses: map[string]response{
				"adb devices":      {err: errors.New("adb missing")},
				"fastboot devices": {out: "A\tfastboot"},
				"fastboot reboot":  {},
			},
			wantMode: device.ModeBootloader,
			wantCall: "fastboot reboot",
		},
		{
			name: "none",
			responses: map[string]response{
				"adb devices":      {out: "List of devices attached"},
				"fastboot devices": {},
			},
			wantMode: device.ModeNone,
			wantErr:  ErrNoDevice,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, runner := newFakeClient(tt.responses)
			mode, err := c.DeviceMode(context.Background())
			if err != nil || mode != tt.wantMode {
				t.Fatalf("DeviceMode = %v,%v, want %v", mode, err, tt.wantMode)
			}
			err = c.Reboot(context.Background(), tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Reboot err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Reboot: %v", err)
			}
			if last := runner.calls[len(runner.calls)-1]; last != tt.wantCall {
				t.Fatalf("last call = %q, want %q", last, tt.wantCall)
			}
		})
	}
}

func TestDeviceModeBothFail(t *testing.T) {
	c, _ := newFakeClient(map[string]response{
		"adb devices":      {err: errors.New("adb gone")},
		"fastboot devices": {err: errors.New("fastboot gone")},
	})
	mode, err := c.DeviceMode(context.Background())
	if err == nil || mode != device.ModeUnknown {
		t.Fatalf("DeviceMode = %v,%v, want unknown with error", mode, err)
	}
}

func TestValidationNeverCallsTool(t *testing.T) {
	c, runner := newFakeClient(nil)
	ctx := context.Background()

	checks := []struct {
		name string
		run  func() error
	}{
		{"flash without partition", func() error { return c.FlashPartition(ctx, " ", "boot.img") }},
		{"flash without image", func() error { return c.FlashPartition(ctx, "boot", "") }},
		{"install without path", func() error { _, err := c.InstallPackage(ctx, ""); return err }},
		{"uninstall without name", func() error { _, err := c.UninstallPackage(ctx, ""); return err }},
		{"sideload without path", func() error { _, err := c.Sideload(ctx, ""); return err }},
		{"connect without ip", func() error { _, err := c.ConnectWireless(ctx, "", ""); return err }},
		{"disconnect without ip", func() error { _, err := c.DisconnectWireless(ctx, "", ""); return err }},
	}
	for _, chk := range checks {
		if err := chk.run(); err == nil {
			t.Fatalf("%s: err = nil, want validation error", chk.name)
		}
	}
	if len(runner.calls) != 0 {
		t.Fatalf("validation reached the tool: %v", runner.calls)
	}
}

func TestWireless(t *testing.T) {
	c, runner := newFakeClient(map[string]response{
		"adb tcpip 5555":               {out: "restarting in TCP mode port: 5555"},
		"adb connect 10.0.0.5:5555":    {out: "connected to 10.0.0.5:5555"},
		"adb connect 10.0.0.6:5555":    {out: "failed to connect to '10.0.0.6:5555': Connection refused"},
		"adb connect 10.0.0.7:5555":    {},
		"adb disconnect 10.0.0.5:5555": {err: errors.New("exit 1")},
		"adb disconnect 10.0.0.5":      {},
		"adb connect 10.0.0.8:7000":    {out: "already connected to 10.0.0.8:7000"},
	})
	ctx := context.Background()

	if _, err := c.EnableWireless(ctx, ""); err != nil {
		t.Fatalf("EnableWireless: %v", err)
	}
	if out, err := c.ConnectWireless(ctx, "10.0.0.5", ""); err != nil || !strings.HasPrefix(out, "connected") {
		t.Fatalf("ConnectWireless = %q,%v", out, err)
	}
	if _, err := c.ConnectWireless(ctx, "10.0.0.8", "7000"); err != nil {
		t.Fatalf("ConnectWireless already connected: %v", err)
	}
	if _, err := c.ConnectWireless(ctx, "10.0.0.6", ""); err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("ConnectWireless refused err = %v", err)
	}
	if _, err := c.ConnectWireless(ctx, "10.0.0.7", ""); err == nil {
		t.Fatalf("ConnectWireless empty output = nil error")
	}
	out, err := c.DisconnectWireless(ctx, "10.0.0.5", "")
	if err != nil || out != "disconnected from 10.0.0.5:5555" {
		t.Fatalf("DisconnectWireless = %q,%v", out, err)
	}
	if last := runner.calls[len(runner.calls)-1]; last != "adb disconnect 10.0.0.5" {
		t.Fatalf("disconnect did not retry with bare ip: %q", last)
	}
}

func TestDeviceInfoFallsBack(t *testing.T) {
	c, _ := newFakeClient(map[string]response{
		"adb shell getprop ro.product.model":          {out: "Pixel 7"},
		"adb shell getprop ro.product.brand":          {out: "google"},
		"adb shell getprop ro.build.version.release":  {out: "14"},
		"adb shell ip addr show wlan0":                {out: "inet 192.168.1.20/24 brd 192.168.1.255"},
		"adb shell su -c id -u":                       {out: "0"},
		"adb shell cat /proc/meminfo | grep MemTotal": {out: "MemTotal:        8048576 kB"},
		"adb shell dumpsys battery | grep level":      {out: "  level: 87"},
	})
	info, err := c.DeviceInfo(context.Background())
	if err != nil {
		t.Fatalf("DeviceInfo: %v", err)
	}
	if info.Model != "Pixel 7" || info.Brand != "google" || info.AndroidVersion != "14" {
		t.Fatalf("props = %+v", info)
	}
	if info.IPAddress != "192.168.1.20" || info.RootStatus != "Yes" || info.BatteryLevel != "87%" {
		t.Fatalf("probes = %+v", info)
	}
	if info.RAMTotal != "7.7 GB" {
		t.Fatalf("RAMTotal = %q, want 7.7 GB", info.RAMTotal)
	}
	if info.Codename != NotAvailable || info.BuildNumber != NotAvailable || info.Storage != NotAvailable {
		t.Fatalf("missing probes should be N/A: %+v", info)
	}
}

func TestCommandName(t *testing.T) {
	tests := map[string]string{
		"adb":                          "adb",
		"/opt/platform-tools/fastboot": "fastboot",
		"./bin/adb.exe":                "adb",
	}
	for in, want := range tests {
		if got := CommandName(in); got != want {
			t.Fatalf("CommandName(%q) = %q, want %q", in, got, want)
		}
	}
}

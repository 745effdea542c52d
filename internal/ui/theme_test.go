package ui

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestStatusColor(t *testing.T) {
	th := GetTheme("Nightfox")

	if got := th.StatusColor("  Device "); got != th.StatusColors["device"] {
		t.Fatalf("StatusColor = %q, want %q", got, th.StatusColors["device"])
	}
	if got := th.StatusColor("host"); got != th.Muted {
		t.Fatalf("StatusColor(host) = %q, want muted %q", got, th.Muted)
	}
}

func TestEveryThemeColorsEveryMode(t *testing.T) {
	keys := []string{"device", "fastboot", "offline", "unauthorized", "bridge", "bootloader", "none", "unknown"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, k := range keys {
			if th.StatusColors[k] == "" {
				t.Fatalf("theme %s has no color for %q", name, k)
			}
		}
	}
}

func TestLevelStyle(t *testing.T) {
	s := GetTheme("Slate").Styles()
	if got, want := s.LevelStyle(logrus.ErrorLevel).GetForeground(), s.DangerText.GetForeground(); got != want {
		t.Fatalf("LevelStyle(error) foreground = %v, want %v", got, want)
	}
	if got, want := s.LevelStyle(logrus.DebugLevel).GetForeground(), s.FaintText.GetForeground(); got != want {
		t.Fatalf("LevelStyle(debug) foreground = %v, want %v", got, want)
	}
}

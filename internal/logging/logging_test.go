package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_WritesLogfmtToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "handset.log")

	logger, closer, err := New(Options{Path: path, Level: "info"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithField("channel", "bridge").Info("poll complete")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "level=info") || !strings.Contains(got, `msg="poll complete"`) || !strings.Contains(got, "channel=bridge") {
		t.Fatalf("log output = %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Fatalf("debug entry written at info level: %q", got)
	}
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	logger, closer, err := New(Options{Path: StderrPath, Level: "warn", Verbose: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", logger.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{in: "", want: logrus.InfoLevel},
		{in: "debug", want: logrus.DebugLevel},
		{in: " WARN ", want: logrus.WarnLevel},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

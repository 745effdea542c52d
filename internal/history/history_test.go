package history

import (
	"context"
	"errors"
	"testing"
)

func TestRecordCommand_AdjacentDedup(t *testing.T) {
	tests := []struct {
		name     string
		commands []string
		want     []string
	}{
		{name: "repeat", commands: []string{"shell ls", "shell ls"}, want: []string{"shell ls"}},
		{name: "non adjacent", commands: []string{"shell ls", "adb devices", "shell ls"}, want: []string{"shell ls", "adb devices", "shell ls"}},
		{name: "triple", commands: []string{"a", "a", "a", "b"}, want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			var idx int
			for _, c := range tt.commands {
				idx = s.RecordCommand(c)
			}
			got := s.Recall()
			if len(got) != len(tt.want) {
				t.Fatalf("Recall = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Recall = %q, want %q", got, tt.want)
				}
			}
			if idx != len(tt.want) {
				t.Fatalf("reset index = %d, want %d", idx, len(tt.want))
			}
		})
	}
}

func TestNavigate(t *testing.T) {
	s := New()
	s.RecordCommand("one")
	s.RecordCommand("two")
	s.RecordCommand("three")

	steps := []struct {
		dir      Direction
		wantIdx  int
		wantText string
	}{
		{Back, 2, "three"},
		{Back, 1, "two"},
		{Back, 0, "one"},
		{Back, 0, "one"},
		{Forward, 1, "two"},
		{Forward, 2, "three"},
		{Forward, 3, ""},
		{Forward, 3, ""},
	}

	idx := s.RecallLen()
	for i, step := range steps {
		var text string
		idx, text = s.Navigate(step.dir, idx)
		if idx != step.wantIdx || text != step.wantText {
			t.Fatalf("step %d: Navigate = %d,%q, want %d,%q", i, idx, text, step.wantIdx, step.wantText)
		}
	}
}

func TestNavigate_EmptyBufferAndOutOfRange(t *testing.T) {
	s := New()
	if idx, text := s.Navigate(Back, 0); idx != 0 || text != "" {
		t.Fatalf("Navigate on empty = %d,%q, want 0,\"\"", idx, text)
	}
	s.RecordCommand("x")
	if idx, text := s.Navigate(Back, 99); idx != 0 || text != "x" {
		t.Fatalf("Navigate from 99 = %d,%q, want 0,x", idx, text)
	}
	if idx, text := s.Navigate(Forward, -5); idx != 1 || text != "" {
		t.Fatalf("Navigate from -5 = %d,%q, want 1,\"\"", idx, text)
	}
}

func TestClear_KeepsRecall(t *testing.T) {
	s := New()
	s.Append(KindCommand, "shell ls")
	s.Append(KindResult, "sdcard")
	s.RecordCommand("shell ls")

	s.Clear()

	if got := len(s.Transcript()); got != 0 {
		t.Fatalf("Transcript len = %d, want 0", got)
	}
	if got := s.RecallLen(); got != 1 {
		t.Fatalf("RecallLen = %d, want 1", got)
	}
}

func TestAppend_OrderAndIDs(t *testing.T) {
	s := New()
	a := s.Append(KindCommand, "shell id")
	b := s.Append(KindError, "permission denied")

	got := s.Transcript()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("Transcript = %+v, want [a b]", got)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("entry ids not unique: %q %q", a.ID, b.ID)
	}

	got[0].Text = "mutated"
	if s.Transcript()[0].Text != "shell id" {
		t.Fatalf("Transcript shares backing array")
	}
}

type recorderFunc func(context.Context, Entry) error

func (f recorderFunc) Record(ctx context.Context, e Entry) error { return f(ctx, e) }

func TestAppend_RecorderFailureDoesNotBlock(t *testing.T) {
	var seen []Kind
	s := New(WithRecorder(recorderFunc(func(_ context.Context, e Entry) error {
		seen = append(seen, e.Kind)
		return errors.New("disk full")
	})))

	s.Append(KindCommand, "shell ls")
	s.Append(KindResult, "ok")

	if len(s.Transcript()) != 2 {
		t.Fatalf("recorder failure dropped entries")
	}
	if len(seen) != 2 || seen[0] != KindCommand || seen[1] != KindResult {
		t.Fatalf("recorder saw %v, want [command result]", seen)
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindCommand, KindResult, KindError} {
		if got := ParseKind(k.String()); got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

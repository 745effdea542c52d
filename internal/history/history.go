// Package history keeps the shell transcript and the command recall buffer.
package history

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind classifies a transcript entry.
type Kind int

const (
	KindCommand Kind = iota
	KindResult
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindResult:
		return "result"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) Kind {
	switch s {
	case "result":
		return KindResult
	case "error":
		return KindError
	default:
		return KindCommand
	}
}

// Entry is one transcript line.
type Entry struct {
	ID   string
	Kind Kind
	Text string
	At   time.Time
}

// Direction moves through the recall buffer.
type Direction int

const (
	Back    Direction = iota // older
	Forward                  // newer
)

// Recorder receives every appended entry, for example to persist it.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Option configures a Store.
type Option func(*Store)

// WithRecorder mirrors appended entries to r. Recorder failures are logged
// and never fail the append.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithLogger sets the logger used for recorder failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// Store holds the transcript and recall buffer. The zero value is not usable;
// call New.
type Store struct {
	mu         sync.Mutex
	transcript []Entry
	recall     []string
	recorder   Recorder
	log        logrus.FieldLogger
	now        func() time.Time
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s
}

// Append adds an entry to the end of the transcript and returns it.
func (s *Store) Append(kind Kind, text string) Entry {
	e := Entry{ID: uuid.NewString(), Kind: kind, Text: text, At: s.now()}

	s.mu.Lock()
	s.transcript = append(s.transcript, e)
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.Record(context.Background(), e); err != nil {
			s.log.WithError(err).WithField("kind", kind.String()).Warn("record history entry")
		}
	}
	return e
}

// Clear empties the transcript. The recall buffer is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// Transcript returns a copy of the transcript in append order.
func (s *Store) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// RecordCommand adds text to the recall buffer unless it repeats the newest
// entry. It returns the buffer length, which is the reset navigation index.
func (s *Store) RecordCommand(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.recall); n == 0 || s.recall[n-1] != text {
		s.recall = append(s.recall, text)
	}
	return len(s.recall)
}

// RecallLen returns the number of recall entries.
func (s *Store) RecallLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recall)
}

// Recall returns a copy of the recall buffer, oldest first.
func (s *Store) Recall() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.recall...)
}

// Navigate moves from current one step in dir. Back stops at 0; Forward stops
// at the buffer length, which yields an empty line.
func (s *Store) Navigate(dir Direction, current int) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.recall)
	if current < 0 {
		current = 0
	}
	if current > n {
		current = n
	}

	next := current
	switch dir {
	case Back:
		if next > 0 {
			next--
		}
	case Forward:
		if next < n {
			next++
		}
	}

	if next == n {
		return next, ""
	}
	return next, s.recall[next]
}

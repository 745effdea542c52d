package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/coalesce"
)

var (
	// ErrBusy is returned when an operation of the same kind is running.
	ErrBusy = errors.New("transfer already in progress")
	// ErrUnsupportedEntry is returned when exporting an entry that is neither
	// a file nor a directory.
	ErrUnsupportedEntry = errors.New("only files and directories can be exported")
)

// Picker asks the operator for local paths. An empty path with a nil error
// means the operator cancelled.
type Picker interface {
	PickFile(ctx context.Context) (string, error)
	PickDirectory(ctx context.Context) (string, error)
	PickSavePath(ctx context.Context, suggestedName string) (string, error)
}

// Op identifies a transfer kind.
type Op int

const (
	OpImportFile Op = iota
	OpImportFolder
	OpExport
	opCount
)

func (o Op) String() string {
	switch o {
	case OpImportFile:
		return "import file"
	case OpImportFolder:
		return "import folder"
	case OpExport:
		return "export"
	default:
		return "unknown"
	}
}

// Status is the terminal state of a transfer.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// Outcome reports how a transfer ended.
type Outcome struct {
	Op      Op
	Status  Status
	Message string
	Local   string
	Remote  string
	Err     error
}

// Session coordinates push and pull operations against a Browser.
type Session struct {
	transport Transport
	picker    Picker
	browser   *Browser
	log       logrus.FieldLogger
	gates     [opCount]coalesce.Gate
}

// NewSession returns a Session. log may be nil.
func NewSession(transport Transport, picker Picker, browser *Browser, log logrus.FieldLogger) *Session {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Session{
		transport: transport,
		picker:    picker,
		browser:   browser,
		log:       log.WithField("component", "transfer"),
	}
}

// InProgress reports whether an operation of kind op is running.
func (s *Session) InProgress(op Op) bool {
	return s.gates[op].Busy()
}

// Export pulls entry from the current directory to a local path chosen by the
// operator: a directory for Directory entries, a save path for File entries.
func (s *Session) Export(ctx context.Context, entry bridge.FileEntry) (Outcome, error) {
	if entry.Kind != bridge.KindFile && entry.Kind != bridge.KindDirectory {
		return Outcome{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedEntry, entry.Name, entry.Kind)
	}
	return s.guard(OpExport, func() Outcome {
		out := Outcome{Op: OpExport, Remote: JoinRemote(s.browser.Path(), entry.Name)}

		var local string
		var err error
		if entry.IsDir() {
			local, err = s.picker.PickDirectory(ctx)
		} else {
			local, err = s.picker.PickSavePath(ctx, entry.Name)
		}
		if done := pickerOutcome(&out, local, err); done {
			return out
		}
		out.Local = local

		msg, err := s.transport.PullFile(ctx, out.Remote, local)
		return s.finish(ctx, out, msg, err, fmt.Sprintf("exported %s to %s", entry.Name, local))
	})
}

// ImportFile pushes a picked local file into the current directory.
func (s *Session) ImportFile(ctx context.Context) (Outcome, error) {
	return s.guard(OpImportFile, func() Outcome {
		out := Outcome{Op: OpImportFile}
		local, err := s.picker.PickFile(ctx)
		if done := pickerOutcome(&out, local, err); done {
			return out
		}
		out.Local = local
		out.Remote = JoinRemote(s.browser.Path(), filepath.Base(local))

		msg, err := s.transport.PushFile(ctx, local, out.Remote)
		return s.finish(ctx, out, msg, err, fmt.Sprintf("imported %s to %s", filepath.Base(local), out.Remote))
	})
}

// ImportFolder pushes a picked local directory into the current directory.
func (s *Session) ImportFolder(ctx context.Context) (Outcome, error) {
	return s.guard(OpImportFolder, func() Outcome {
		out := Outcome{Op: OpImportFolder}
		local, err := s.picker.PickDirectory(ctx)
		if done := pickerOutcome(&out, local, err); done {
			return out
		}
		out.Local = local
		out.Remote = s.browser.Path()

		msg, err := s.transport.PushFile(ctx, local, out.Remote)
		return s.finish(ctx, out, msg, err, fmt.Sprintf("imported folder %s to %s", filepath.Base(local), out.Remote))
	})
}

func (s *Session) guard(op Op, fn func() Outcome) (Outcome, error) {
	var out Outcome
	if !s.gates[op].Do(func() { out = fn() }) {
		return Outcome{Op: op}, ErrBusy
	}
	return out, nil
}

// pickerOutcome fills out for a cancelled or failed pick and reports whether
// the operation should stop.
func pickerOutcome(out *Outcome, local string, err error) bool {
	switch {
	case err != nil:
		out.Status = StatusFailed
		out.Err = fmt.Errorf("choose local path: %w", err)
		out.Message = out.Err.Error()
		return true
	case strings.TrimSpace(local) == "":
		out.Status = StatusCancelled
		return true
	default:
		return false
	}
}

func (s *Session) finish(ctx context.Context, out Outcome, toolMsg string, err error, success string) Outcome {
	log := s.log.WithFields(logrus.Fields{"op": out.Op.String(), "local": out.Local, "remote": out.Remote})
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		out.Message = err.Error()
		log.WithError(err).Warn("transfer failed")
		return out
	}
	out.Status = StatusSucceeded
	out.Message = success
	if detail := strings.TrimSpace(toolMsg); detail != "" {
		out.Message += ": " + lastLine(detail)
	}
	log.Info("transfer complete")

	if out.Op != OpExport {
		if err := s.browser.Reload(ctx); err != nil {
			log.WithError(err).Warn("reload listing after import")
		}
	}
	return out
}

func lastLine(s string) string {
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}

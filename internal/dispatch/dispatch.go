package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/five82/handset/internal/coalesce"
	"github.com/five82/handset/internal/history"
)

// DefaultNoOutputMarker replaces an empty result in the transcript.
const DefaultNoOutputMarker = "(no output)"

const shellKeyword = "shell"

var (
	ErrEmptyCommand   = errors.New("command is empty")
	ErrBusy           = errors.New("a command is already running")
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
)

// UsageError reports a recognized prefix with nothing after it.
type UsageError struct {
	Prefix string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s <command>", e.Prefix)
}

func (e *UsageError) Unwrap() error { return ErrUsage }

// UnknownCommandError names input that matched no prefix.
type UnknownCommandError struct {
	Input      string
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	msg := fmt.Sprintf("unknown command: %s", e.Input)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }

// Invoker runs a routed command.
type Invoker interface {
	RunShell(ctx context.Context, command string) (string, error)
	RunBridge(ctx context.Context, args string) (string, error)
	RunBootloader(ctx context.Context, args string) (string, error)
}

// Route identifies which sub-protocol a line targets.
type Route int

const (
	RouteShell Route = iota
	RouteBridge
	RouteBootloader
)

func (r Route) String() string {
	switch r {
	case RouteShell:
		return "shell"
	case RouteBridge:
		return "bridge"
	case RouteBootloader:
		return "bootloader"
	default:
		return "unknown"
	}
}

// Target is a parsed command line.
type Target struct {
	Route Route
	Arg   string
}

// Options configure a Dispatcher.
type Options struct {
	BridgeCommand     string // defaults to "adb"
	BootloaderCommand string // defaults to "fastboot"
	NoOutputMarker    string
}

// Outcome is the result of one dispatched line.
type Outcome struct {
	Command string
	Target  Target
	Output  string // normalized, only set on success
	Err     error
}

// Dispatcher routes operator command lines and records them in history.
// One line is processed at a time.
type Dispatcher struct {
	invoker Invoker
	history *history.Store
	opts    Options
	gate    coalesce.Gate
}

// New returns a Dispatcher.
func New(invoker Invoker, hist *history.Store, opts Options) *Dispatcher {
	if strings.TrimSpace(opts.BridgeCommand) == "" {
		opts.BridgeCommand = "adb"
	}
	if strings.TrimSpace(opts.BootloaderCommand) == "" {
		opts.BootloaderCommand = "fastboot"
	}
	if opts.NoOutputMarker == "" {
		opts.NoOutputMarker = DefaultNoOutputMarker
	}
	return &Dispatcher{invoker: invoker, history: hist, opts: opts}
}

// Busy reports whether a line is being processed.
func (d *Dispatcher) Busy() bool {
	return d.gate.Busy()
}

// Parse classifies a trimmed line by prefix. The shell form is checked first.
func (d *Dispatcher) Parse(line string) (Target, error) {
	prefixes := []struct {
		keyword string
		route   Route
	}{
		{shellKeyword, RouteShell},
		{d.opts.BridgeCommand, RouteBridge},
		{d.opts.BootloaderCommand, RouteBootloader},
	}
	for _, p := range prefixes {
		if line == p.keyword {
			return Target{}, &UsageError{Prefix: p.keyword}
		}
		if rest, ok := strings.CutPrefix(line, p.keyword+" "); ok {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return Target{}, &UsageError{Prefix: p.keyword}
			}
			return Target{Route: p.route, Arg: rest}, nil
		}
	}
	return Target{}, &UnknownCommandError{Input: line, Suggestion: d.suggest(line)}
}

// suggest proposes a known keyword close to the first word of line.
func (d *Dispatcher) suggest(line string) string {
	word, _, _ := strings.Cut(line, " ")
	word = strings.ToLower(word)
	best, bestDist := "", 3
	for _, kw := range []string{shellKeyword, d.opts.BridgeCommand, d.opts.BootloaderCommand} {
		if dist := levenshtein.ComputeDistance(word, kw); dist < bestDist {
			best, bestDist = kw, dist
		}
	}
	return best
}

// Pending is a line accepted by Begin whose outcome is not yet known.
type Pending struct {
	d    *Dispatcher
	line string
	once sync.Once
	out  Outcome
}

// Line returns the accepted command text.
func (p *Pending) Line() string { return p.line }

// Begin accepts line for execution. The command entry is appended to the
// transcript and the recall buffer before Begin returns, and the dispatcher
// stays busy until Run completes. A blank line returns ErrEmptyCommand and a
// line submitted while another is pending returns ErrBusy; neither touches
// history.
func (d *Dispatcher) Begin(line string) (*Pending, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmptyCommand
	}
	if !d.gate.Enter(false) {
		return nil, ErrBusy
	}
	d.history.Append(history.KindCommand, line)
	d.history.RecordCommand(line)
	return &Pending{d: d, line: line}, nil
}

// Run executes the pending line, appends exactly one result or error entry,
// and frees the dispatcher. Later calls return the first outcome.
func (p *Pending) Run(ctx context.Context) Outcome {
	p.once.Do(func() {
		defer p.d.gate.Release(false)
		p.out = p.d.execute(ctx, p.line)
	})
	return p.out
}

// Submit is Begin followed by Run.
func (d *Dispatcher) Submit(ctx context.Context, line string) (Outcome, error) {
	pending, err := d.Begin(line)
	if err != nil {
		return Outcome{}, err
	}
	return pending.Run(ctx), nil
}

func (d *Dispatcher) execute(ctx context.Context, line string) Outcome {
	out := Outcome{Command: line}

	target, err := d.Parse(line)
	if err != nil {
		out.Err = err
		d.history.Append(history.KindError, err.Error())
		return out
	}
	out.Target = target

	var raw string
	switch target.Route {
	case RouteShell:
		raw, err = d.invoker.RunShell(ctx, target.Arg)
	case RouteBridge:
		raw, err = d.invoker.RunBridge(ctx, target.Arg)
	case RouteBootloader:
		raw, err = d.invoker.RunBootloader(ctx, target.Arg)
	}
	if err != nil {
		out.Err = err
		d.history.Append(history.KindError, err.Error())
		return out
	}

	out.Output = Normalize(raw, d.opts.NoOutputMarker)
	d.history.Append(history.KindResult, out.Output)
	return out
}

// Normalize trims raw and substitutes marker for an empty result.
func Normalize(raw, marker string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return marker
}

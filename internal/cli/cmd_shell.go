package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"

	"github.com/five82/handset/internal/config"
	"github.com/five82/handset/internal/history"
	"github.com/five82/handset/internal/journal"
	"github.com/five82/handset/internal/logging"
	"github.com/five82/handset/internal/logtail"
)

// --- Console Commands ---

type RunCmd struct {
	Line []string `arg:"" passthrough:"" help:"Console line, for example: shell ls /sdcard"`
}

// commandLine rebuilds the console line. A single argument is taken verbatim
// so quoted lines pass through untouched.
func (r *RunCmd) commandLine() string {
	if len(r.Line) == 1 {
		return r.Line[0]
	}
	return shellquote.Join(r.Line...)
}

func (r *RunCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, true)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	out, err := s.Dispatch.Submit(ctx, r.commandLine())
	if err != nil {
		return err
	}
	if out.Err != nil {
		return out.Err
	}
	fmt.Fprintln(globals.out(), out.Output)
	return nil
}

type HistoryCmd struct {
	Lines int `short:"n" default:"20" help:"Number of entries to show"`
}

func (h *HistoryCmd) Run(ctx context.Context, globals *CLI) (err error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	j, err := journal.Open(ctx, cfg.Storage.JournalPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := j.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	records, err := j.Recent(ctx, h.Lines)
	if err != nil {
		return err
	}
	tw := globals.table()
	for _, r := range records {
		text := r.Text
		if r.Kind == history.KindCommand {
			text = "> " + text
		}
		lines := strings.Split(text, "\n")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", humanize.Time(r.At), r.Kind, lines[0])
		for _, more := range lines[1:] {
			fmt.Fprintf(tw, "\t\t%s\n", more)
		}
	}
	return tw.Flush()
}

type LogsCmd struct {
	Lines int    `short:"n" default:"100" help:"Number of entries to show (0 for all)"`
	Level string `default:"debug" help:"Minimum level: debug, info, warn, error"`
}

func (l *LogsCmd) Run(ctx context.Context, globals *CLI) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := cfg.Log.Path
	if globals.Log != "" {
		path = globals.Log
	}
	if path == logging.StderrPath {
		return errors.New("logging goes to stderr; there is no log file to read")
	}
	minLevel, err := logging.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	lines, err := logtail.Tail(path, l.Lines, minLevel)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(globals.out(), line)
	}
	return nil
}

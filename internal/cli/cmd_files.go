package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/transfer"
)

// --- File Commands ---

type LsCmd struct {
	Path string `arg:"" optional:"" help:"Remote directory (default files.start_path)"`
}

func (l *LsCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	dir := l.Path
	if dir == "" {
		dir = s.Config.Files.StartPath
	}
	if err := s.Browser.Load(ctx, dir); err != nil {
		return err
	}
	tw := globals.table()
	for _, e := range s.Browser.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", e.Permissions, formatSize(e), e.Date, e.Time, displayName(e))
	}
	return tw.Flush()
}

func formatSize(e bridge.FileEntry) string {
	if e.IsDir() || e.Size < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(e.Size))
}

func displayName(e bridge.FileEntry) string {
	switch {
	case e.IsDir():
		return e.Name + "/"
	case e.LinkTarget != "":
		return e.Name + " -> " + e.LinkTarget
	default:
		return e.Name
	}
}

type PushCmd struct {
	Local  string `arg:"" type:"path" help:"Local file or folder"`
	Remote string `arg:"" optional:"" help:"Remote directory (default files.start_path)"`
}

func (p *PushCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	dir := p.Remote
	if dir == "" {
		dir = s.Config.Files.StartPath
	}
	remote := transfer.JoinRemote(dir, filepath.Base(p.Local))
	out, err := s.Client.PushFile(ctx, p.Local, remote)
	if err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), lastLine(out, "pushed "+p.Local+" to "+remote))
	return nil
}

type PullCmd struct {
	Remote string `arg:"" help:"Remote file or folder"`
	Local  string `arg:"" optional:"" type:"path" help:"Local destination (default current directory)"`
}

func (p *PullCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	local := p.Local
	if local == "" {
		local = path.Base(p.Remote)
	}
	out, err := s.Client.PullFile(ctx, p.Remote, local)
	if err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), lastLine(out, "pulled "+p.Remote+" to "+local))
	return nil
}

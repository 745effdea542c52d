// Package cli defines the handset command tree. With no command the TUI
// starts; every other command performs one operation and exits.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/five82/handset/internal/app"
	"github.com/five82/handset/internal/bridge"
)

// CLI is the root command structure for handset.
type CLI struct {
	Config  string `help:"Config file path (default ~/.config/handset/config.toml)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Log     string `help:"Log file path, - for stderr"`

	// Default command - TUI
	Tui TuiCmd `cmd:"" default:"1" help:"Launch the interactive control panel (default)"`

	Devices  DevicesCmd  `cmd:"" help:"List connected devices and the connection mode"`
	Mode     ModeCmd     `cmd:"" help:"Print the detected connection mode"`
	Nick     NickCmd     `cmd:"" help:"Show or set device nicknames"`
	Info     InfoCmd     `cmd:"" help:"Show device properties"`
	Reboot   RebootCmd   `cmd:"" help:"Reboot the device"`
	Wireless WirelessCmd `cmd:"" help:"Wireless bridge connections"`

	Run     RunCmd     `cmd:"" help:"Dispatch a console line (shell ..., adb ..., fastboot ...)"`
	History HistoryCmd `cmd:"" help:"List recent console entries"`
	Logs    LogsCmd    `cmd:"" help:"Print the handset log"`

	Ls   LsCmd   `cmd:"" help:"List a remote directory"`
	Push PushCmd `cmd:"" help:"Copy a local file or folder to the device"`
	Pull PullCmd `cmd:"" help:"Copy a remote file or folder from the device"`

	Install   InstallCmd   `cmd:"" help:"Install or replace an application package"`
	Uninstall UninstallCmd `cmd:"" help:"Remove an installed application"`
	Packages  PackagesCmd  `cmd:"" help:"List installed applications"`

	Flash    FlashCmd    `cmd:"" help:"Flash an image to a partition"`
	Wipe     WipeCmd     `cmd:"" help:"Erase user data"`
	Sideload SideloadCmd `cmd:"" help:"Sideload an OTA package"`

	// Stdout receives command output; nil means os.Stdout.
	Stdout io.Writer `kong:"-"`
	// Runner replaces tool execution; nil runs the real binaries.
	Runner bridge.Runner `kong:"-"`
}

// Main parses args, runs the selected command and returns the exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &CLI{Stdout: stdout}
	if err := execute(ctx, c, args, kong.Writers(stdout, stderr)); err != nil {
		fmt.Fprintf(stderr, "handset: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, c *CLI, args []string, opts ...kong.Option) error {
	opts = append([]kong.Option{
		kong.Name("handset"),
		kong.Description("Terminal control panel for adb and fastboot devices."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}, opts...)
	parser, err := kong.New(c, opts...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(c)
}

func (c *CLI) out() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *CLI) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out(), 0, 4, 2, ' ', 0)
}

func (c *CLI) options(journal bool) app.Options {
	return app.Options{
		ConfigPath: c.Config,
		LogPath:    c.Log,
		Verbose:    c.Verbose,
		Runner:     c.Runner,
		NoJournal:  !journal,
	}
}

// open builds the services for a one-shot command. Only commands that read
// or write console history need the journal.
func (c *CLI) open(ctx context.Context, journal bool) (*app.Services, error) {
	return app.Open(ctx, c.options(journal))
}

func closeServices(s *app.Services, err *error) {
	if cerr := s.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// --- TUI Command ---

type TuiCmd struct{}

func (t *TuiCmd) Run(ctx context.Context, globals *CLI) error {
	return app.Run(ctx, globals.options(true))
}

var errConfirmRequired = errors.New("refusing to continue without --yes")

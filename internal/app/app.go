package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/config"
	"github.com/five82/handset/internal/device"
	"github.com/five82/handset/internal/dispatch"
	"github.com/five82/handset/internal/history"
	"github.com/five82/handset/internal/journal"
	"github.com/five82/handset/internal/logging"
	"github.com/five82/handset/internal/nickname"
	"github.com/five82/handset/internal/poller"
	"github.com/five82/handset/internal/prefs"
	"github.com/five82/handset/internal/state"
	"github.com/five82/handset/internal/transfer"
	"github.com/five82/handset/internal/ui"
)

// recallSeed is how many journaled commands are loaded into the recall buffer.
const recallSeed = 200

var (
	_ dispatch.Invoker   = (*bridge.Client)(nil)
	_ transfer.Transport = (*bridge.Client)(nil)
)

// Options configure the handset services.
type Options struct {
	ConfigPath string
	LogPath    string // overrides log.path when set
	Verbose    bool
	// Runner replaces process execution, for tests. Nil runs the real tools.
	Runner bridge.Runner
	// NoJournal keeps the transcript in memory only.
	NoJournal bool
}

// Services is the wired set of components shared by the TUI and the CLI.
type Services struct {
	Config     config.Config
	Log        *logrus.Logger
	Client     *bridge.Client
	Nicknames  *nickname.Registry
	Journal    *journal.Journal // nil when disabled or unavailable
	History    *history.Store
	Dispatch   *dispatch.Dispatcher
	Browser    *transfer.Browser
	Store      *state.Store
	Bridge     *poller.Poller
	Bootloader *poller.Poller

	logCloser io.Closer
}

// Open loads configuration and builds every component. Nothing is polled
// until StartPolling. Callers must Close the result.
func Open(ctx context.Context, opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogPath != "" {
		cfg.Log.Path = opts.LogPath
	}

	logger, logCloser, err := logging.New(logging.Options{
		Path:    cfg.Log.Path,
		Level:   cfg.Log.Level,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	s := &Services{Config: cfg, Log: logger, logCloser: logCloser}

	tools := bridge.Tools{
		Bridge:      cfg.Tools.Bridge,
		Bootloader:  cfg.Tools.Bootloader,
		SearchDirs:  cfg.Tools.SearchDirs,
		DefaultPort: cfg.Wireless.DefaultPort,
	}
	clientLog := logger.WithField("component", "bridge")
	if opts.Runner != nil {
		s.Client = bridge.NewClientWithRunner(tools, opts.Runner, bridge.WithLogger(clientLog))
	} else {
		s.Client = bridge.NewClient(tools, bridge.WithLogger(clientLog))
	}

	s.Nicknames = nickname.New(nickname.FileStorage{Path: cfg.Storage.NicknamesPath}, logger)

	histOpts := []history.Option{history.WithLogger(logger.WithField("component", "history"))}
	if !opts.NoJournal {
		j, err := journal.Open(ctx, cfg.Storage.JournalPath)
		if err != nil {
			logger.WithError(err).WithField("path", cfg.Storage.JournalPath).Warn("journal unavailable; history will not persist")
		} else {
			s.Journal = j
			histOpts = append(histOpts, history.WithRecorder(j))
		}
	}
	s.History = history.New(histOpts...)
	s.seedRecall(ctx)

	s.Dispatch = dispatch.New(s.Client, s.History, dispatch.Options{
		BridgeCommand:     s.Client.BridgeCommand(),
		BootloaderCommand: s.Client.BootloaderCommand(),
		NoOutputMarker:    cfg.Shell.NoOutputMarker,
	})
	s.Browser = transfer.NewBrowser(s.Client, cfg.Files.StartPath)

	s.Store = state.NewStore(cfg.Poll.Priority())
	s.Bridge = newPoller(s, device.ChannelBridge)
	s.Bootloader = newPoller(s, device.ChannelBootloader)

	logger.WithFields(logrus.Fields{
		"bridge":     s.Client.BridgeCommand(),
		"bootloader": s.Client.BootloaderCommand(),
		"priority":   cfg.Poll.Priority().String(),
	}).Debug("services ready")
	return s, nil
}

func (s *Services) seedRecall(ctx context.Context) {
	if s.Journal == nil {
		return
	}
	commands, err := s.Journal.Commands(ctx, recallSeed)
	if err != nil {
		s.Log.WithError(err).Warn("load command history")
		return
	}
	for _, cmd := range commands {
		s.History.RecordCommand(cmd)
	}
}

// NewTransferSession returns a transfer session using picker for local paths.
func (s *Services) NewTransferSession(picker transfer.Picker) *transfer.Session {
	return transfer.NewSession(s.Client, picker, s.Browser, s.Log.WithField("component", "transfer"))
}

// Close stops polling and releases the journal and log file.
func (s *Services) Close() error {
	s.StopPolling()
	s.Bridge.Wait()
	s.Bootloader.Wait()

	var errs []error
	if s.Journal != nil {
		if err := s.Journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run boots the handset TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	s, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	userPrefs, err := prefs.Load(s.Config.Storage.PrefsPath)
	if err != nil {
		s.Log.WithError(err).Warn("load prefs")
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Client:     s.Client,
		Store:      s.Store,
		Bridge:     s.Bridge,
		Bootloader: s.Bootloader,
		Dispatch:   s.Dispatch,
		History:    s.History,
		Browser:    s.Browser,
		NewSession: s.NewTransferSession,
		Nicknames:  s.Nicknames,
		Logger:     s.Log,
		LogPath:    s.Config.Log.Path,
		Prefs:      userPrefs,
		PrefsPath:  s.Config.Storage.PrefsPath,
	})
}

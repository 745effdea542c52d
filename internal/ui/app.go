package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/bridge"
	"github.com/five82/handset/internal/dispatch"
	"github.com/five82/handset/internal/history"
	"github.com/five82/handset/internal/nickname"
	"github.com/five82/handset/internal/poller"
	"github.com/five82/handset/internal/prefs"
	"github.com/five82/handset/internal/state"
	"github.com/five82/handset/internal/transfer"
)

// View represents the current active view.
type View int

const (
	ViewDevices View = iota
	ViewFlasher
	ViewFiles
	ViewShell
	ViewLogs
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewFlasher:
		return "flasher"
	case ViewFiles:
		return "files"
	case ViewShell:
		return "shell"
	case ViewLogs:
		return "logs"
	default:
		return "devices"
	}
}

// ParseView maps a saved view name back to a View, defaulting to devices.
func ParseView(name string) View {
	for v := ViewDevices; v < viewCount; v++ {
		if v.String() == strings.ToLower(strings.TrimSpace(name)) {
			return v
		}
	}
	return ViewDevices
}

// typing reports whether the view owns letter keys for text entry.
func (v View) typing() bool {
	return v == ViewShell || v == ViewFlasher
}

// DeviceControl is the part of the bridge client the views call directly.
type DeviceControl interface {
	DeviceInfo(ctx context.Context) (bridge.Info, error)
	Reboot(ctx context.Context, target string) error
	FlashPartition(ctx context.Context, partition, image string) error
	WipeData(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Client     DeviceControl
	Store      *state.Store
	Bridge     *poller.Poller
	Bootloader *poller.Poller
	Dispatch   *dispatch.Dispatcher
	History    *history.Store
	Browser    *transfer.Browser
	NewSession func(transfer.Picker) *transfer.Session
	Nicknames  *nickname.Registry
	Logger     logrus.FieldLogger
	LogPath    string
	Prefs      prefs.Prefs
	PrefsPath  string
	Tick       time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	client     DeviceControl
	store      *state.Store
	bridgePoll *poller.Poller
	bootPoll   *poller.Poller
	dispatch   *dispatch.Dispatcher
	history    *history.Store
	browser    *transfer.Browser
	session    *transfer.Session
	picker     *promptPicker
	nicknames  *nickname.Registry
	log        logrus.FieldLogger
	logPath    string
	prefs      prefs.Prefs
	prefsPath  string
	tick       time.Duration

	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	snapshot state.Snapshot
	status   statusLine

	devices deviceState
	files   fileState
	shell   shellState
	flasher flasherState
	logs    logState

	pick    *pickModal
	confirm *confirmPrompt
}

type statusLine struct {
	text  string
	isErr bool
	at    time.Time
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = 500 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	hist := opts.History
	if hist == nil {
		hist = history.New()
	}
	p := opts.Prefs
	if p.Theme == "" {
		p.Theme = prefs.DefaultTheme()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	picker := newPromptPicker()
	var session *transfer.Session
	if opts.NewSession != nil {
		session = opts.NewSession(picker)
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		bridgePoll:  opts.Bridge,
		bootPoll:    opts.Bootloader,
		dispatch:    opts.Dispatch,
		history:     hist,
		browser:     opts.Browser,
		session:     session,
		picker:      picker,
		nicknames:   opts.Nicknames,
		log:         log.WithField("component", "ui"),
		logPath:     opts.LogPath,
		prefs:       p,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(p.Theme),
		currentView: ParseView(p.LastView),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		devices:     newDeviceState(),
		files:       fileState{initialPath: strings.TrimSpace(p.BrowsePath)},
		shell:       newShellState(hist),
		flasher:     newFlasherState(),
		logs:        newLogState(),
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	m.focusView()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		m.spinner.Tick,
		waitForPick(m.ctx, m.picker),
		m.activate(),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.devices.clamp(len(m.snapshot.Devices()))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.setStatus(msg.text, msg.err)
		return m, nil

	case infoMsg:
		m.devices.loadingInfo = false
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		info := msg.info
		m.devices.info = &info
		return m, nil

	case listingMsg:
		return m.handleListing(msg)

	case transferMsg:
		m.handleTransfer(msg)
		return m, nil

	case pickRequestMsg:
		return m.openPick(pickRequest(msg))

	case shellOutcomeMsg:
		m.handleShellOutcome(dispatch.Outcome(msg))
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	if m.pick != nil {
		return m.updatePick(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.pick != nil {
		return m.renderPick()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Modal prompts take precedence over
// view switching, and views that accept text only see global control keys.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.pick != nil {
		return m.updatePick(msg)
	}
	if m.confirm != nil {
		prompt := m.confirm
		m.confirm = nil
		if key.Matches(msg, m.keys.Confirm) {
			m.setStatus(prompt.running+"...", nil)
			return m, prompt.run
		}
		m.setStatus("cancelled", nil)
		return m, nil
	}
	if m.devices.editing {
		return m.handleNicknameKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		cmd := m.switchView((m.currentView + 1) % viewCount)
		return m, cmd
	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.switchView((m.currentView + viewCount - 1) % viewCount)
		return m, cmd
	}

	if m.currentView.typing() {
		return m.handleViewKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		cmd := m.cycleTheme()
		return m, cmd
	case key.Matches(msg, m.keys.ViewDevices):
		cmd := m.switchView(ViewDevices)
		return m, cmd
	case key.Matches(msg, m.keys.ViewFlasher):
		cmd := m.switchView(ViewFlasher)
		return m, cmd
	case key.Matches(msg, m.keys.ViewFiles):
		cmd := m.switchView(ViewFiles)
		return m, cmd
	case key.Matches(msg, m.keys.ViewShell):
		cmd := m.switchView(ViewShell)
		return m, cmd
	case key.Matches(msg, m.keys.ViewLogs):
		cmd := m.switchView(ViewLogs)
		return m, cmd
	}
	return m.handleViewKey(msg)
}

func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case ViewDevices:
		return m.handleDevicesKey(msg)
	case ViewFlasher:
		return m.handleFlasherKey(msg)
	case ViewFiles:
		return m.handleFilesKey(msg)
	case ViewShell:
		return m.handleShellKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// switchView makes v current and activates the pollers it needs.
func (m *Model) switchView(v View) tea.Cmd {
	if v == m.currentView {
		return nil
	}
	m.currentView = v
	m.prefs.LastView = v.String()
	m.focusView()
	return m.activate()
}

// focusView moves keyboard focus to the inputs of the current view.
func (m *Model) focusView() {
	m.shell.input.Blur()
	m.flasher.blur()
	switch m.currentView {
	case ViewShell:
		if m.shell.pending == "" {
			m.shell.input.Focus()
		}
	case ViewFlasher:
		m.flasher.focusCurrent()
	}
}

// activate starts and stops pollers for the current view and returns the
// load command the view needs. The devices view watches both channels, the
// flasher only the bootloader channel, and every other view neither.
func (m Model) activate() tea.Cmd {
	switch m.currentView {
	case ViewDevices:
		startPoller(m.ctx, m.bridgePoll)
		startPoller(m.ctx, m.bootPoll)
	case ViewFlasher:
		stopPoller(m.bridgePoll)
		startPoller(m.ctx, m.bootPoll)
	default:
		stopPoller(m.bridgePoll)
		stopPoller(m.bootPoll)
	}

	switch m.currentView {
	case ViewFiles:
		return m.loadListing(m.files.nextPath(m.browser))
	case ViewLogs:
		return m.loadLogs()
	}
	return nil
}

func startPoller(ctx context.Context, p *poller.Poller) {
	if p != nil {
		p.Start(ctx)
	}
}

func stopPoller(p *poller.Poller) {
	if p != nil {
		p.Stop()
	}
}

func (m *Model) cycleTheme() tea.Cmd {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.prefs.Theme = m.theme.Name
	m.refreshTranscript()
	m.refreshLogView()
	p, path, log := m.prefs, m.prefsPath, m.log
	return func() tea.Msg {
		if err := prefs.Save(path, p); err != nil {
			log.WithError(err).Warn("save prefs")
		}
		return nil
	}
}

func (m *Model) setStatus(text string, err error) {
	if err != nil {
		m.status = statusLine{text: err.Error(), isErr: true, at: time.Now()}
		return
	}
	m.status = statusLine{text: text, at: time.Now()}
}

// handleTick refreshes the snapshot and, when following, the log pane.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logs.follow {
		cmds = append(cmds, m.loadLogs())
	}
	return m, tea.Batch(cmds...)
}

// resize sizes every view's components to the window.
func (m *Model) resize() {
	h := m.contentHeight()
	m.shell.resize(m.width, h)
	m.logs.resize(m.width, h)
	m.flasher.resize(m.width)
	m.devices.resize(m.width)
	m.refreshTranscript()
	m.refreshLogView()
	if m.pick != nil {
		m.pick.resize(m.width, m.height)
	}
}

// contentHeight is the window height minus the header, command bar and footer.
func (m Model) contentHeight() int {
	if h := m.height - 3; h > 1 {
		return h
	}
	return 1
}

// renderMain renders the header, command bar, active view and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.fitContent(m.renderContent()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDevices:
		return m.renderDevices()
	case ViewFlasher:
		return m.renderFlasher()
	case ViewFiles:
		return m.renderFiles()
	case ViewShell:
		return m.renderShell()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// fitContent pads or truncates content to the content height.
func (m Model) fitContent(content string) string {
	h := m.contentHeight()
	lines := strings.Split(content, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type statusMsg struct {
	text string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and saves preferences on exit.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		err = nil
	}
	if fm, ok := final.(Model); ok {
		fm.saveSession()
	}
	return err
}

// saveSession stops polling and remembers the last view and directory.
func (m Model) saveSession() {
	stopPoller(m.bridgePoll)
	stopPoller(m.bootPoll)
	if m.browser != nil && m.files.loaded {
		m.prefs.BrowsePath = m.browser.Path()
	}
	m.prefs.LastView = m.currentView.String()
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.WithError(err).Warn("save prefs")
	}
}

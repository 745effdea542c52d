package poller

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/coalesce"
	"github.com/five82/handset/internal/device"
)

const (
	// DefaultAcceptEmptyAfter is the number of consecutive empty results
	// needed before an empty list replaces a non-empty one.
	DefaultAcceptEmptyAfter = 2
	defaultInterval         = 3 * time.Second
)

// DiscoverFunc performs one discovery call for a channel.
type DiscoverFunc func(ctx context.Context) ([]device.Device, error)

// State is the observable record of one channel.
type State struct {
	Channel     device.Channel
	InFlight    bool
	Queued      bool
	Loading     bool
	EmptyStreak int
	Devices     []device.Device // last accepted result
	Polled      bool            // at least one result accepted
	Err         error           // sticky until the next successful poll
	LastPolled  time.Time
	// Seq increases with every published copy. Consumers drop a copy whose
	// Seq is not newer than the last one they applied.
	Seq uint64
}

// Observation returns the snapshot used by the mode classifier.
func (s State) Observation() device.Observation {
	return device.Observation{Devices: device.Clone(s.Devices), Polled: s.Polled}
}

// Options configure a Poller.
type Options struct {
	Channel          device.Channel
	Discover         DiscoverFunc
	Interval         time.Duration
	AcceptEmptyAfter int
	Logger           logrus.FieldLogger
	// OnChange receives a copy of the state after every transition. It is
	// called without internal locks held and may be called from any goroutine.
	OnChange func(State)
}

// Poller runs the coalescing discovery loop for one channel.
type Poller struct {
	channel    device.Channel
	discover   DiscoverFunc
	interval   time.Duration
	acceptFrom int
	log        logrus.FieldLogger
	onChange   func(State)

	gate coalesce.Gate

	mu         sync.Mutex
	state      State
	active     bool
	generation uint64
	stop       chan struct{}
	loopDone   sync.WaitGroup
	inFlightWG sync.WaitGroup
}

// New builds an inactive Poller.
func New(opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	acceptFrom := opts.AcceptEmptyAfter
	if acceptFrom < 1 {
		acceptFrom = DefaultAcceptEmptyAfter
	}
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Poller{
		channel:    opts.Channel,
		discover:   opts.Discover,
		interval:   interval,
		acceptFrom: acceptFrom,
		log:        log.WithField("channel", opts.Channel.String()),
		onChange:   opts.OnChange,
		state:      State{Channel: opts.Channel},
	}
}

// Start activates the poller: the empty streak is reset, one non-silent
// refresh is issued immediately, and silent refreshes follow every interval
// until Stop or ctx cancellation. Start on an active poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.generation++
	p.state.EmptyStreak = 0
	p.state.Loading = false
	stop := make(chan struct{})
	p.stop = stop
	p.loopDone.Add(1)
	p.mu.Unlock()

	p.Refresh(ctx, false)

	go func() {
		defer p.loopDone.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				p.Refresh(ctx, true)
			}
		}
	}()
}

// Stop deactivates the poller. The interval timer is cancelled before Stop
// returns; an in-flight discovery call keeps running but its result is
// discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.generation++
	p.state.Loading = false
	close(p.stop)
	p.stop = nil
	p.mu.Unlock()

	p.loopDone.Wait()
	p.notify()
}

// Active reports whether the poller is started.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Refresh requests a poll without blocking. While a call is in flight the
// request is coalesced into a single follow-up.
func (p *Poller) Refresh(ctx context.Context, silent bool) {
	if !p.gate.Enter(true) {
		p.notify()
		return
	}
	p.inFlightWG.Add(1)
	go func() {
		defer p.inFlightWG.Done()
		p.run(ctx, silent)
	}()
}

// Poll requests a poll and waits for it, and any follow-up it triggers, to
// finish. A coalesced request returns immediately.
func (p *Poller) Poll(ctx context.Context, silent bool) {
	if !p.gate.Enter(true) {
		p.notify()
		return
	}
	p.run(ctx, silent)
}

// Wait blocks until no refresh goroutine started by this poller is running.
func (p *Poller) Wait() {
	p.inFlightWG.Wait()
}

// State returns a copy of the current channel state.
func (p *Poller) State() State {
	p.mu.Lock()
	st := p.state
	p.mu.Unlock()

	st.Devices = device.Clone(st.Devices)
	st.InFlight = p.gate.Busy()
	st.Queued = p.gate.Queued()
	return st
}

// run owns the gate until it returns.
func (p *Poller) run(ctx context.Context, silent bool) {
	for {
		gen := p.currentGeneration()
		if !silent {
			p.setLoading(gen, true)
		}
		p.notify()

		devices, err := p.discover(ctx)
		p.apply(gen, devices, err)

		if !p.gate.Release(p.Active()) {
			break
		}
		silent = true
	}
	p.notify()
}

func (p *Poller) apply(gen uint64, devices []device.Device, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || gen != p.generation {
		p.log.Debug("discarding stale discovery result")
		return
	}

	p.state.Loading = false
	p.state.LastPolled = time.Now()

	if err != nil {
		p.state.Err = err
		p.log.WithError(err).Warn("device discovery failed")
		return
	}
	p.state.Err = nil

	fresh := device.Sanitize(devices, "")
	if len(fresh) > 0 {
		p.state.EmptyStreak = 0
		if !device.Equal(fresh, p.state.Devices) {
			p.log.WithField("count", len(fresh)).Debug("device list changed")
		}
		p.state.Devices = fresh
		p.state.Polled = true
		return
	}

	p.state.EmptyStreak++
	if len(p.state.Devices) == 0 || p.state.EmptyStreak >= p.acceptFrom {
		if len(p.state.Devices) > 0 {
			p.log.Debug("device list cleared")
		}
		p.state.Devices = nil
		p.state.Polled = true
	}
}

func (p *Poller) setLoading(gen uint64, loading bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active && gen == p.generation {
		p.state.Loading = loading
	}
}

func (p *Poller) currentGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// notify publishes a copy stamped under mu, so copies taken later always
// carry a higher Seq even when delivered out of order.
func (p *Poller) notify() {
	if p.onChange == nil {
		return
	}
	p.mu.Lock()
	p.state.Seq++
	st := p.state
	p.mu.Unlock()

	st.Devices = device.Clone(st.Devices)
	st.InFlight = p.gate.Busy()
	st.Queued = p.gate.Queued()
	p.onChange(st)
}

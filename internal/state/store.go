package state

import (
	"sync"
	"time"

	"github.com/five82/handset/internal/device"
	"github.com/five82/handset/internal/poller"
)

// Snapshot is the UI-facing view of both discovery channels.
type Snapshot struct {
	Bridge      poller.State
	Bootloader  poller.State
	Mode        device.Mode
	LastUpdated time.Time
}

// Devices returns the accepted devices of both channels, bridge first.
func (s Snapshot) Devices() []Listed {
	out := make([]Listed, 0, len(s.Bridge.Devices)+len(s.Bootloader.Devices))
	for _, d := range s.Bridge.Devices {
		out = append(out, Listed{Device: d, Channel: device.ChannelBridge})
	}
	for _, d := range s.Bootloader.Devices {
		out = append(out, Listed{Device: d, Channel: device.ChannelBootloader})
	}
	return out
}

// Err returns the first sticky discovery error, if any.
func (s Snapshot) Err() error {
	if s.Bridge.Err != nil {
		return s.Bridge.Err
	}
	return s.Bootloader.Err
}

// Loading reports whether either channel shows a loading indicator.
func (s Snapshot) Loading() bool {
	return s.Bridge.Loading || s.Bootloader.Loading
}

// Listed is a device tagged with the channel that reported it.
type Listed struct {
	device.Device
	Channel device.Channel
}

// Store collects channel states published by the pollers.
type Store struct {
	mu         sync.RWMutex
	priority   device.Priority
	bridge     poller.State
	bootloader poller.State
	updated    time.Time
	watchers   []func(Snapshot)
}

// NewStore returns a Store that classifies with the given priority.
func NewStore(priority device.Priority) *Store {
	return &Store{
		priority:   priority,
		bridge:     poller.State{Channel: device.ChannelBridge},
		bootloader: poller.State{Channel: device.ChannelBootloader},
	}
}

// Update records the latest state of one channel. It matches poller.Options.OnChange.
// A state whose Seq is not newer than the stored one for its channel is
// dropped; a zero Seq is always applied.
func (s *Store) Update(st poller.State) {
	st.Devices = device.Clone(st.Devices)

	s.mu.Lock()
	current := &s.bridge
	if st.Channel == device.ChannelBootloader {
		current = &s.bootloader
	}
	if st.Seq != 0 && st.Seq <= current.Seq {
		s.mu.Unlock()
		return
	}
	*current = st
	s.updated = time.Now()
	watchers := append([]func(Snapshot){}, s.watchers...)
	s.mu.Unlock()

	if len(watchers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range watchers {
		fn(snap)
	}
}

// Watch registers fn to receive a snapshot after every Update.
func (s *Store) Watch(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Snapshot returns a copy of the current state with the mode recomputed.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Bridge:      s.bridge,
		Bootloader:  s.bootloader,
		LastUpdated: s.updated,
	}
	snap.Bridge.Devices = device.Clone(s.bridge.Devices)
	snap.Bootloader.Devices = device.Clone(s.bootloader.Devices)
	snap.Mode = device.Classify(s.bridge.Observation(), s.bootloader.Observation(), s.priority)
	return snap
}

package device

import (
	"fmt"
	"strings"
)

// Device is a single record reported by a discovery call.
type Device struct {
	ID        string
	RawStatus string
}

// Channel identifies one of the two discovery sources.
type Channel int

const (
	ChannelBridge Channel = iota
	ChannelBootloader
)

func (c Channel) String() string {
	switch c {
	case ChannelBridge:
		return "bridge"
	case ChannelBootloader:
		return "bootloader"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Mode is the effective connection mode derived from both channels.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeNone
	ModeBridge
	ModeBootloader
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBridge:
		return "bridge"
	case ModeBootloader:
		return "bootloader"
	default:
		return "unknown"
	}
}

// Connected reports whether a device is reachable in either mode.
func (m Mode) Connected() bool {
	return m == ModeBridge || m == ModeBootloader
}

// Priority decides which mode wins when both channels report devices.
type Priority int

const (
	PreferBridge Priority = iota
	PreferBootloader
)

func (p Priority) String() string {
	if p == PreferBootloader {
		return "bootloader"
	}
	return "bridge"
}

// ParsePriority maps a config value onto a Priority. Empty means PreferBridge.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bridge", "adb":
		return PreferBridge, nil
	case "bootloader", "fastboot":
		return PreferBootloader, nil
	default:
		return PreferBridge, fmt.Errorf("unknown mode priority %q", s)
	}
}

// Observation is the latest accepted snapshot of one channel.
// Polled is false until the channel has accepted at least one result.
type Observation struct {
	Devices []Device
	Polled  bool
}

// Classify returns the connection mode for the given channel snapshots.
// A device present on the preferred channel wins; Unknown is returned only
// while neither channel has been polled.
func Classify(bridge, bootloader Observation, priority Priority) Mode {
	hasBridge := len(bridge.Devices) > 0
	hasBoot := len(bootloader.Devices) > 0

	switch {
	case hasBridge && hasBoot:
		if priority == PreferBootloader {
			return ModeBootloader
		}
		return ModeBridge
	case hasBridge:
		return ModeBridge
	case hasBoot:
		return ModeBootloader
	case bridge.Polled || bootloader.Polled:
		return ModeNone
	default:
		return ModeUnknown
	}
}

// Equal reports whether two device lists hold the same records in the same order.
func Equal(a, b []Device) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of devices, or nil when empty.
func Clone(devices []Device) []Device {
	if len(devices) == 0 {
		return nil
	}
	dup := make([]Device, len(devices))
	copy(dup, devices)
	return dup
}

// Sanitize drops records without an id and fills a missing status with
// fallbackStatus.
func Sanitize(devices []Device, fallbackStatus string) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			continue
		}
		status := strings.TrimSpace(d.RawStatus)
		if status == "" {
			status = fallbackStatus
		}
		out = append(out, Device{ID: id, RawStatus: status})
	}
	return out
}

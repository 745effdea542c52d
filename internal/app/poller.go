package app

import (
	"context"

	"github.com/five82/handset/internal/device"
	"github.com/five82/handset/internal/poller"
)

func newPoller(s *Services, ch device.Channel) *poller.Poller {
	opts := poller.Options{
		Channel:          ch,
		AcceptEmptyAfter: s.Config.Poll.EmptyAcceptStreak,
		Logger:           s.Log,
		OnChange:         s.Store.Update,
	}
	switch ch {
	case device.ChannelBootloader:
		opts.Discover = s.Client.DiscoverBootloader
		opts.Interval = s.Config.Poll.BootloaderInterval
	default:
		opts.Discover = s.Client.DiscoverBridge
		opts.Interval = s.Config.Poll.BridgeInterval
	}
	return poller.New(opts)
}

// Poller returns the poller for ch.
func (s *Services) Poller(ch device.Channel) *poller.Poller {
	if ch == device.ChannelBootloader {
		return s.Bootloader
	}
	return s.Bridge
}

// StartPolling activates the pollers for the given channels, or both when
// none are named. Already active pollers are left alone.
func (s *Services) StartPolling(ctx context.Context, channels ...device.Channel) {
	if len(channels) == 0 {
		channels = []device.Channel{device.ChannelBridge, device.ChannelBootloader}
	}
	for _, ch := range channels {
		s.Poller(ch).Start(ctx)
	}
}

// StopPolling deactivates both pollers. In-flight discovery calls finish but
// their results are discarded.
func (s *Services) StopPolling() {
	s.Bridge.Stop()
	s.Bootloader.Stop()
}

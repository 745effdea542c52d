package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/handset/internal/app"
	"github.com/five82/handset/internal/device"
	"github.com/five82/handset/internal/state"
)

// --- Device Commands ---

type DevicesCmd struct {
	Watch bool `short:"w" help:"Keep polling and print every change until interrupted"`
}

func (d *DevicesCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	if d.Watch {
		return watchDevices(ctx, globals, s)
	}

	bridged, bridgeErr := s.Client.DiscoverBridge(ctx)
	booted, bootErr := s.Client.DiscoverBootloader(ctx)
	if bridgeErr != nil && bootErr != nil {
		return errors.Join(bridgeErr, bootErr)
	}
	mode := device.Classify(
		device.Observation{Devices: bridged, Polled: bridgeErr == nil},
		device.Observation{Devices: booted, Polled: bootErr == nil},
		s.Config.Poll.Priority(),
	)

	var listed []state.Listed
	for _, dev := range bridged {
		listed = append(listed, state.Listed{Device: dev, Channel: device.ChannelBridge})
	}
	for _, dev := range booted {
		listed = append(listed, state.Listed{Device: dev, Channel: device.ChannelBootloader})
	}
	printDevices(globals, s, mode, listed)
	for _, e := range []error{bridgeErr, bootErr} {
		if e != nil {
			fmt.Fprintf(globals.out(), "warning: %v\n", e)
		}
	}
	return nil
}

func printDevices(globals *CLI, s *app.Services, mode device.Mode, listed []state.Listed) {
	fmt.Fprintf(globals.out(), "mode: %s\n", mode)
	if len(listed) == 0 {
		return
	}
	tw := globals.table()
	fmt.Fprintln(tw, "SERIAL\tNAME\tCHANNEL\tSTATUS")
	for _, l := range listed {
		name, ok := s.Nicknames.Get(l.ID)
		if !ok {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, name, l.Channel, l.RawStatus)
	}
	_ = tw.Flush()
}

func watchDevices(ctx context.Context, globals *CLI, s *app.Services) error {
	changes := make(chan state.Snapshot, 16)
	s.Store.Watch(func(snap state.Snapshot) {
		select {
		case changes <- snap:
		default:
		}
	})
	s.StartPolling(ctx)
	defer s.StopPolling()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-changes:
			if snap.Mode == device.ModeUnknown {
				continue
			}
			key := snapshotKey(snap)
			if key == last {
				continue
			}
			last = key
			fmt.Fprintf(globals.out(), "[%s] ", snap.LastUpdated.Format("15:04:05"))
			printDevices(globals, s, snap.Mode, snap.Devices())
			if err := snap.Err(); err != nil {
				fmt.Fprintf(globals.out(), "warning: %v\n", err)
			}
		}
	}
}

func snapshotKey(snap state.Snapshot) string {
	var b strings.Builder
	b.WriteString(snap.Mode.String())
	for _, l := range snap.Devices() {
		fmt.Fprintf(&b, "|%s/%s/%s", l.Channel, l.ID, l.RawStatus)
	}
	if err := snap.Err(); err != nil {
		b.WriteString("|err:" + err.Error())
	}
	return b.String()
}

type ModeCmd struct{}

func (m *ModeCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	mode, err := s.Client.DeviceMode(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), mode)
	return nil
}

type NickCmd struct {
	Serial string `arg:"" optional:"" help:"Device serial; omit to list all nicknames"`
	Label  string `arg:"" optional:"" help:"New nickname; omit to print the current one"`
	Clear  bool   `help:"Remove the nickname for serial"`
}

func (n *NickCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	switch {
	case n.Serial == "":
		tw := globals.table()
		for _, e := range s.Nicknames.All() {
			fmt.Fprintf(tw, "%s\t%s\n", e.ID, e.Label)
		}
		return tw.Flush()
	case n.Clear:
		return s.Nicknames.Set(n.Serial, "")
	case n.Label == "":
		label, ok := s.Nicknames.Get(n.Serial)
		if !ok {
			return fmt.Errorf("no nickname for %s", n.Serial)
		}
		fmt.Fprintln(globals.out(), label)
		return nil
	default:
		return s.Nicknames.Set(n.Serial, n.Label)
	}
}

type InfoCmd struct{}

func (i *InfoCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	info, err := s.Client.DeviceInfo(ctx)
	if err != nil {
		return err
	}
	tw := globals.table()
	rows := [][2]string{
		{"Model", info.Model},
		{"Brand", info.Brand},
		{"Codename", info.Codename},
		{"Android", info.AndroidVersion},
		{"Build", info.BuildNumber},
		{"Battery", info.BatteryLevel},
		{"IP address", info.IPAddress},
		{"Root", info.RootStatus},
		{"RAM", info.RAMTotal},
		{"Storage", info.Storage},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

type RebootCmd struct {
	Target string `arg:"" optional:"" help:"Boot target: bootloader, recovery, sideload (default normal boot)"`
}

func (r *RebootCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	if err := s.Client.Reboot(ctx, r.Target); err != nil {
		return err
	}
	target := r.Target
	if target == "" {
		target = "system"
	}
	fmt.Fprintf(globals.out(), "rebooting to %s\n", target)
	return nil
}

// --- Wireless Commands ---

type WirelessCmd struct {
	Enable     WirelessEnableCmd     `cmd:"" help:"Switch the USB-connected device to wireless mode"`
	Connect    WirelessConnectCmd    `cmd:"" help:"Connect to a device over the network"`
	Disconnect WirelessDisconnectCmd `cmd:"" help:"Drop a network connection"`
}

type WirelessEnableCmd struct {
	Port string `help:"TCP port (default wireless.default_port)"`
}

func (w *WirelessEnableCmd) Run(ctx context.Context, globals *CLI) error {
	return wireless(ctx, globals, func(s *app.Services) (string, error) {
		return s.Client.EnableWireless(ctx, w.Port)
	})
}

type WirelessConnectCmd struct {
	IP   string `arg:"" help:"Device IP address"`
	Port string `help:"TCP port (default wireless.default_port)"`
}

func (w *WirelessConnectCmd) Run(ctx context.Context, globals *CLI) error {
	return wireless(ctx, globals, func(s *app.Services) (string, error) {
		return s.Client.ConnectWireless(ctx, w.IP, w.Port)
	})
}

type WirelessDisconnectCmd struct {
	IP   string `arg:"" help:"Device IP address"`
	Port string `help:"TCP port (default wireless.default_port)"`
}

func (w *WirelessDisconnectCmd) Run(ctx context.Context, globals *CLI) error {
	return wireless(ctx, globals, func(s *app.Services) (string, error) {
		return s.Client.DisconnectWireless(ctx, w.IP, w.Port)
	})
}

func wireless(ctx context.Context, globals *CLI, fn func(*app.Services) (string, error)) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	out, err := fn(s)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(globals.out(), out)
	}
	return nil
}

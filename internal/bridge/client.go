package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"github.com/five82/handset/internal/device"
)

// ErrNoDevice is returned when an operation needs a connected device and
// neither channel reports one.
var ErrNoDevice = errors.New("no connected device detected in bridge or bootloader mode")

// Tools names the two binaries and where to look for them.
type Tools struct {
	Bridge      string
	Bootloader  string
	SearchDirs  []string
	DefaultPort string
}

// Client drives the bridge and bootloader tools.
type Client struct {
	runner  Runner
	tools   Tools
	resolve func(name string) (string, error)
	log     logrus.FieldLogger

	mu       sync.Mutex
	resolved map[string]string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient returns a Client that runs real binaries. Binaries are resolved on
// first use so a missing tool surfaces as a per-call error.
func NewClient(tools Tools, opts ...Option) *Client {
	c := newClient(tools, ExecRunner{}, opts...)
	c.resolve = func(name string) (string, error) {
		return ResolveTool(name, tools.SearchDirs)
	}
	return c
}

// NewClientWithRunner returns a Client that passes tool names to runner unresolved.
func NewClientWithRunner(tools Tools, runner Runner, opts ...Option) *Client {
	c := newClient(tools, runner, opts...)
	c.resolve = func(name string) (string, error) { return name, nil }
	return c
}

func newClient(tools Tools, runner Runner, opts ...Option) *Client {
	if tools.Bridge == "" {
		tools.Bridge = "adb"
	}
	if tools.Bootloader == "" {
		tools.Bootloader = "fastboot"
	}
	if tools.DefaultPort == "" {
		tools.DefaultPort = "5555"
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Client{
		runner:   runner,
		tools:    tools,
		log:      discard,
		resolved: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BridgeCommand is the name an operator types to address the bridge tool.
func (c *Client) BridgeCommand() string { return CommandName(c.tools.Bridge) }

// BootloaderCommand is the name an operator types to address the bootloader tool.
func (c *Client) BootloaderCommand() string { return CommandName(c.tools.Bootloader) }

func (c *Client) run(ctx context.Context, tool string, args ...string) (string, error) {
	path, err := c.binary(tool)
	if err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{"tool": CommandName(tool), "args": args}).Debug("run tool")
	return c.runner.Run(ctx, path, args...)
}

func (c *Client) binary(tool string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path, ok := c.resolved[tool]; ok {
		return path, nil
	}
	path, err := c.resolve(tool)
	if err != nil {
		return "", err
	}
	c.resolved[tool] = path
	return path, nil
}

func (c *Client) bridge(ctx context.Context, args ...string) (string, error) {
	return c.run(ctx, c.tools.Bridge, args...)
}

func (c *Client) bootloader(ctx context.Context, args ...string) (string, error) {
	return c.run(ctx, c.tools.Bootloader, args...)
}

// DiscoverBridge lists devices visible to the bridge tool.
func (c *Client) DiscoverBridge(ctx context.Context) ([]device.Device, error) {
	out, err := c.bridge(ctx, "devices")
	if err != nil {
		return nil, fmt.Errorf("list bridge devices: %w", err)
	}
	return parseDeviceList(out, true), nil
}

// DiscoverBootloader lists devices visible to the bootloader tool.
func (c *Client) DiscoverBootloader(ctx context.Context) ([]device.Device, error) {
	out, err := c.bootloader(ctx, "devices")
	if err != nil {
		return nil, fmt.Errorf("list bootloader devices: %w", err)
	}
	return parseDeviceList(out, false), nil
}

// RunShell runs command in the device shell.
func (c *Client) RunShell(ctx context.Context, command string) (string, error) {
	return c.bridge(ctx, "shell", command)
}

// RunBridge runs the bridge tool with arguments split from text.
func (c *Client) RunBridge(ctx context.Context, text string) (string, error) {
	args, err := splitArgs(text)
	if err != nil {
		return "", err
	}
	return c.bridge(ctx, args...)
}

// RunBootloader runs the bootloader tool with arguments split from text.
func (c *Client) RunBootloader(ctx context.Context, text string) (string, error) {
	args, err := splitArgs(text)
	if err != nil {
		return "", err
	}
	return c.bootloader(ctx, args...)
}

func splitArgs(text string) ([]string, error) {
	args, err := shellquote.Split(text)
	if err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("no arguments given")
	}
	return args, nil
}

// ListFiles lists the remote directory dir.
func (c *Client) ListFiles(ctx context.Context, dir string) ([]FileEntry, error) {
	out, err := c.bridge(ctx, "shell", "ls -lA "+shellquote.Join(dir))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return parseListing(out), nil
}

// PushFile copies local to remote.
func (c *Client) PushFile(ctx context.Context, local, remote string) (string, error) {
	out, err := c.bridge(ctx, "push", local, remote)
	if err != nil {
		return "", fmt.Errorf("push file: %w", err)
	}
	return out, nil
}

// PullFile copies remote to local, preserving timestamps and mode.
func (c *Client) PullFile(ctx context.Context, remote, local string) (string, error) {
	out, err := c.bridge(ctx, "pull", "-a", remote, local)
	if err != nil {
		return "", fmt.Errorf("pull file: %w", err)
	}
	return out, nil
}

// DeviceMode probes both tools. A bridge record in device, recovery or
// sideload state wins; otherwise any bootloader record means bootloader mode.
// An error is returned only when both probes fail.
func (c *Client) DeviceMode(ctx context.Context) (device.Mode, error) {
	bridged, bridgeErr := c.DiscoverBridge(ctx)
	if bridgeErr == nil {
		for _, d := range bridged {
			switch strings.ToLower(d.RawStatus) {
			case "device", "recovery", "sideload":
				return device.ModeBridge, nil
			}
		}
	}

	booted, bootErr := c.DiscoverBootloader(ctx)
	if bootErr == nil && len(booted) > 0 {
		return device.ModeBootloader, nil
	}
	if bridgeErr != nil && bootErr != nil {
		return device.ModeUnknown, fmt.Errorf("detect device mode: %w", errors.Join(bridgeErr, bootErr))
	}
	return device.ModeNone, nil
}

// Reboot restarts the device into target ("" for a normal boot, or
// bootloader, recovery, sideload...). The tool is chosen from the detected mode.
func (c *Client) Reboot(ctx context.Context, target string) error {
	mode, err := c.DeviceMode(ctx)
	if err != nil {
		return err
	}
	target = strings.TrimSpace(target)

	args := []string{"reboot"}
	if target != "" {
		args = append(args, target)
	}
	switch mode {
	case device.ModeBridge:
		_, err = c.bridge(ctx, args...)
	case device.ModeBootloader:
		if target == "bootloader" {
			args = []string{"reboot-bootloader"}
		}
		_, err = c.bootloader(ctx, args...)
	default:
		return ErrNoDevice
	}
	if err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}

// InstallPackage installs or replaces the package at path.
func (c *Client) InstallPackage(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("package path cannot be empty")
	}
	out, err := c.bridge(ctx, "install", "-r", path)
	if err != nil {
		return "", fmt.Errorf("install package: %w", err)
	}
	return out, nil
}

// UninstallPackage removes the named package.
func (c *Client) UninstallPackage(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("package name cannot be empty")
	}
	out, err := c.bridge(ctx, "shell", "pm", "uninstall", name)
	if err != nil {
		return "", fmt.Errorf("uninstall package: %w", err)
	}
	return out, nil
}

// ListPackages returns installed packages sorted by name.
func (c *Client) ListPackages(ctx context.Context) ([]Package, error) {
	out, err := c.bridge(ctx, "shell", "pm", "list", "packages", "-f")
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return parsePackages(out), nil
}

// FlashPartition writes image to partition.
func (c *Client) FlashPartition(ctx context.Context, partition, image string) error {
	partition, image = strings.TrimSpace(partition), strings.TrimSpace(image)
	if partition == "" {
		return errors.New("partition name cannot be empty")
	}
	if image == "" {
		return errors.New("image path cannot be empty")
	}
	if _, err := c.bootloader(ctx, "flash", partition, image); err != nil {
		return fmt.Errorf("flash %s: %w", partition, err)
	}
	return nil
}

// WipeData erases user data.
func (c *Client) WipeData(ctx context.Context) error {
	if _, err := c.bootloader(ctx, "-w"); err != nil {
		return fmt.Errorf("wipe data: %w", err)
	}
	return nil
}

// Sideload sends an OTA package to a device in sideload mode.
func (c *Client) Sideload(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("file path cannot be empty")
	}
	out, err := c.bridge(ctx, "sideload", path)
	if err != nil {
		return "", fmt.Errorf("sideload package: %w", err)
	}
	return out, nil
}

// EnableWireless restarts the bridge daemon on the device listening on port.
func (c *Client) EnableWireless(ctx context.Context, port string) (string, error) {
	out, err := c.bridge(ctx, "tcpip", c.port(port))
	if err != nil {
		return "", fmt.Errorf("enable wireless bridge (is the device connected over USB?): %w", err)
	}
	return out, nil
}

// ConnectWireless connects to ip:port. The tool reports failures on stdout,
// so success is decided by the output text.
func (c *Client) ConnectWireless(ctx context.Context, ip, port string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", errors.New("IP address cannot be empty")
	}
	address := ip + ":" + c.port(port)

	out, err := c.bridge(ctx, "connect", address)
	if err != nil {
		var runErr *RunError
		if errors.As(err, &runErr) {
			out = runErr.Stdout
		}
	}
	out = strings.TrimSpace(out)
	switch {
	case strings.Contains(out, "connected to"):
		return out, nil
	case out != "":
		return "", errors.New(out)
	case err != nil:
		return "", fmt.Errorf("connect %s: %w", address, err)
	default:
		return "", fmt.Errorf("connect %s: no device found or IP is wrong", address)
	}
}

// DisconnectWireless disconnects ip:port, retrying with the bare ip.
func (c *Client) DisconnectWireless(ctx context.Context, ip, port string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", errors.New("IP address cannot be empty")
	}
	address := ip + ":" + c.port(port)

	out, err := c.bridge(ctx, "disconnect", address)
	if err != nil {
		out, err = c.bridge(ctx, "disconnect", ip)
		if err != nil {
			return "", fmt.Errorf("disconnect %s: %w", address, err)
		}
	}
	if out == "" {
		return "disconnected from " + address, nil
	}
	return out, nil
}

func (c *Client) port(port string) string {
	if port = strings.TrimSpace(port); port != "" {
		return port
	}
	return c.tools.DefaultPort
}

// DeviceInfo gathers device properties. Individual probe failures yield
// NotAvailable rather than an error.
func (c *Client) DeviceInfo(ctx context.Context) (Info, error) {
	if _, err := c.binary(c.tools.Bridge); err != nil {
		return Info{}, err
	}
	info := Info{
		Model:          c.prop(ctx, "ro.product.model"),
		Brand:          c.prop(ctx, "ro.product.brand"),
		Codename:       c.prop(ctx, "ro.product.device"),
		AndroidVersion: c.prop(ctx, "ro.build.version.release"),
		BuildNumber:    c.prop(ctx, "ro.build.id"),
		IPAddress:      c.ipAddress(ctx),
		RootStatus:     "No",
		RAMTotal:       NotAvailable,
		Storage:        NotAvailable,
		BatteryLevel:   NotAvailable,
	}
	if out, err := c.bridge(ctx, "shell", "su", "-c", "id -u"); err == nil && out == "0" {
		info.RootStatus = "Yes"
	}
	if out, err := c.bridge(ctx, "shell", "cat /proc/meminfo | grep MemTotal"); err == nil {
		info.RAMTotal = parseRAM(out)
	}
	if out, err := c.bridge(ctx, "shell", "df /data"); err == nil {
		info.Storage = parseStorage(out)
	}
	if out, err := c.bridge(ctx, "shell", "dumpsys battery | grep level"); err == nil {
		info.BatteryLevel = parseBattery(out)
	}
	return info, nil
}

func (c *Client) prop(ctx context.Context, name string) string {
	out, err := c.bridge(ctx, "shell", "getprop", name)
	if err != nil || out == "" {
		return NotAvailable
	}
	return out
}

func (c *Client) ipAddress(ctx context.Context) string {
	if out, err := c.bridge(ctx, "shell", "ip", "addr", "show", "wlan0"); err == nil {
		if ip := parseIP(out); ip != "" {
			return ip
		}
	}
	if ip := c.prop(ctx, "dhcp.wlan0.ipaddress"); ip != NotAvailable {
		return ip
	}
	return NotAvailable
}

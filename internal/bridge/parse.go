package bridge

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/five82/handset/internal/device"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	inetAddr    = regexp.MustCompile(`inet (\d+\.\d+\.\d+\.\d+)/\d+`)
	memTotal    = regexp.MustCompile(`MemTotal:\s*(\d+)\s*kB`)
	batteryLine = regexp.MustCompile(`level:\s*(\d+)`)
)

// parseDeviceList reads "serial<ws>status" lines. The bridge tool prints a
// header line first.
func parseDeviceList(output string, skipHeader bool) []device.Device {
	var devices []device.Device
	for i, line := range strings.Split(output, "\n") {
		if skipHeader && i == 0 {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		devices = append(devices, device.Device{ID: fields[0], RawStatus: fields[1]})
	}
	return devices
}

// parseListing reads `ls -lA` output.
func parseListing(output string) []FileEntry {
	var entries []FileEntry
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "total") {
			continue
		}
		parts := whitespace.Split(line, 8)
		if len(parts) < 6 {
			continue
		}

		entry := FileEntry{Permissions: parts[0], Kind: KindOther, Size: -1}
		switch parts[0][0] {
		case 'd':
			entry.Kind = KindDirectory
		case '-':
			entry.Kind = KindFile
		}
		if parts[0][0] != 'l' {
			entry.Size = parseSize(parts[4])
		}

		switch len(parts) {
		case 8:
			entry.Date, entry.Time, entry.Name = parts[5], parts[6], parts[7]
		case 7:
			entry.Date, entry.Name = parts[5], parts[6]
		default:
			entry.Name = parts[5]
		}

		if parts[0][0] == 'l' {
			if name, target, ok := strings.Cut(entry.Name, " -> "); ok {
				entry.Name, entry.LinkTarget = name, target
			}
		}
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" || entry.Name == "." || entry.Name == ".." {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// parsePackages reads `pm list packages -f` output: package:<apk path>=<name>.
func parsePackages(output string) []Package {
	var pkgs []Package
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "package:"))
		if line == "" {
			continue
		}
		var pkg Package
		if idx := strings.LastIndex(line, "="); idx >= 0 {
			pkg.Path, pkg.Name = line[:idx], line[idx+1:]
		} else {
			pkg.Name = line
		}
		if pkg.Name == "" {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs
}

func parseIP(output string) string {
	if m := inetAddr.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return ""
}

func parseRAM(output string) string {
	m := memTotal.FindStringSubmatch(output)
	if len(m) < 2 {
		return NotAvailable
	}
	kb, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f GB", kb/1024/1024)
}

// parseStorage reads the second line of `df /data` as used / total.
func parseStorage(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return NotAvailable
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 4 {
		return NotAvailable
	}
	total, errTotal := strconv.ParseFloat(fields[1], 64)
	used, errUsed := strconv.ParseFloat(fields[2], 64)
	if errTotal != nil || errUsed != nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f GB / %.1f GB", used/1024/1024, total/1024/1024)
}

func parseBattery(output string) string {
	if m := batteryLine.FindStringSubmatch(output); len(m) > 1 {
		return m[1] + "%"
	}
	return NotAvailable
}

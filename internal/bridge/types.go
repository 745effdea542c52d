package bridge

import "strconv"

// EntryKind classifies a remote directory entry.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindOther
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// FileEntry is one line of a remote directory listing.
type FileEntry struct {
	Name        string
	Kind        EntryKind
	Size        int64 // -1 when unknown
	Permissions string
	Date        string
	Time        string
	LinkTarget  string
}

// IsDir reports whether the entry can be browsed into.
func (e FileEntry) IsDir() bool {
	return e.Kind == KindDirectory
}

// Package is an installed application.
type Package struct {
	Name string
	Path string
}

// Info summarizes device properties. Fields that could not be read hold
// NotAvailable.
type Info struct {
	Model          string
	Brand          string
	Codename       string
	AndroidVersion string
	BuildNumber    string
	BatteryLevel   string
	IPAddress      string
	RootStatus     string
	RAMTotal       string
	Storage        string
}

// NotAvailable marks an unreadable Info field.
const NotAvailable = "N/A"

func parseSize(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

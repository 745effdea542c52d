// Package transfer moves files between the local machine and the device.
//
// Browser holds the current remote directory. Paths are joined with POSIX
// semantics (path.Join), so entering ".." climbs one level and never escapes
// "/". Listings are sorted directories first, then by name, and replaced
// wholesale on every load.
//
// Session runs the three operator actions:
//
//	Export        entry → PickDirectory (dirs) or PickSavePath (files) → PullFile
//	ImportFile    PickFile → PushFile(local, cwd/basename(local)) → reload
//	ImportFolder  PickDirectory → PushFile(local, cwd) → reload
//
// Each kind runs at most once at a time; a concurrent request of the same kind
// returns ErrBusy. A picker returning "" is a cancellation: the Outcome has
// StatusCancelled and no message.
package transfer

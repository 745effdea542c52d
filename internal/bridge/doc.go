// Package bridge runs the external device tools: the debug bridge (adb) and
// the bootloader flasher (fastboot).
//
// Every operation shells out through a Runner. ExecRunner is the production
// implementation; tests pass a fake through NewClientWithRunner. Tool output
// is trimmed; a failed invocation returns a *RunError that carries stderr.
//
// # Binary resolution
//
// Tools named without a path separator are looked up in order:
//
//  1. each configured search dir (default ./bin)
//  2. <directory of the running executable>/bin
//  3. $PATH
//
// Resolution happens on first use and is cached, so a missing tool shows up as
// a discovery error in the UI instead of preventing startup.
//
// # Parsing
//
// Device lists are "serial<ws>status" lines (the bridge tool prints a header
// first). Directory listings come from `ls -lA`; entries starting with d are
// directories, - are files, anything else (symlinks, devices, sockets) is
// KindOther. Symlink names drop the " -> target" suffix, which is kept in
// LinkTarget.
package bridge

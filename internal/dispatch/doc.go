// Package dispatch routes operator command lines to the device tools.
//
// A line is matched by prefix:
//
//	shell <cmd>        → Invoker.RunShell(cmd)
//	<bridge> <args>    → Invoker.RunBridge(args)       e.g. "adb devices"
//	<bootloader> <args>→ Invoker.RunBootloader(args)   e.g. "fastboot getvar all"
//
// A bare prefix is a usage error; anything else is an unknown command error
// with a suggestion when the first word is a near miss.
//
// Dispatch is split in two so a UI can show the command immediately:
// Begin appends the command to history and claims the dispatcher, Run
// performs the call and appends the result or error. Only one line is
// processed at a time; Begin returns ErrBusy otherwise. Successful output is
// trimmed, and an empty result is recorded as a "(no output)" marker.
package dispatch

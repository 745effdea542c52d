// Package poller runs the periodic device discovery loop for one channel.
//
// # Request coalescing
//
// Each Poller owns a coalesce.Gate. A refresh requested while a discovery call
// is outstanding only marks the gate as queued; when the call finishes, one
// silent follow-up runs. A burst of N requests therefore costs at most one
// extra call.
//
// # Accepting results
//
//	non-empty result  → replace the list, reset EmptyStreak
//	empty result      → EmptyStreak++; replace the list only if it was
//	                    already empty or EmptyStreak reached AcceptEmptyAfter
//	error             → keep the list, record a sticky Err
//
// Err is cleared by the next successful discovery.
//
// # Lifecycle
//
// Start resets EmptyStreak, issues one non-silent refresh, and ticks silently
// every Interval. Stop cancels the ticker synchronously and bumps an internal
// generation counter; a discovery call still running when Stop is called is
// not aborted, but its result is discarded.
package poller

// Package coordinator provides background synchronization of targets.
//
// The coordinator polls the configured targets on a jittered ticker. A target
// with a sync policy is refreshed when its interval has elapsed since the last
// attempt, as decided by sync.ShouldSync. Targets without a policy are only
// refreshed on demand through the API.
//
// # Sync Decision Flow
//
// 1. Ticker fires
// 2. For each target, the status service atomically claims the target by
// moving it into the Syncing phase when ShouldSync agrees
// 3. The claimed target is refreshed through sync.Manager
// 4. The outcome is recorded: Complete with the cycle id, row and warning
// counts, or Failed with the error message and an increased attempt count
//
// Claiming through TargetStateService.UpdateStatusAtomically keeps servers
// that share a database from refreshing the same target concurrently.
//
// # Error Handling
//
// Failed syncs are logged and recorded as Failed. The coordinator keeps
// running, and the target is attempted again once its interval elapses.
package coordinator

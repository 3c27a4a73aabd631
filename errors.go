package netsim

import (
	"errors"
	"fmt"
)

// ErrRollbackEvicted is returned when a requested rollback keyframe has
// already fallen out of the historic buffer's window. The caller cannot
// reconcile and must instead treat the connection as having suffered a
// hard desync (typically resolved by a full Sync re-seed from Authority).
var ErrRollbackEvicted = errors.New("netsim: rollback keyframe evicted from historic buffer")

// ErrUnknownReplicationTarget is returned (wrapped) by Serialize when asked
// about a ReplicationTarget the orchestrator has no proxy configured for;
// DirtyCount panics via invariantViolation in the same case.
var ErrUnknownReplicationTarget = errors.New("netsim: unknown replication target")

// invariantViolation panics with a formatted message. It marks conditions
// that indicate a programming error in the host (e.g. calling Tick before
// InitializeForRole) rather than a recoverable runtime condition.
func invariantViolation(format string, args ...any) {
	panic(fmt.Sprintf("netsim: invariant violation: "+format, args...))
}

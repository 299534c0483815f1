package walletmethods

import "github.com/bsv-blockchain/brc100-wallet-core/walleterr"

// Status mirrors walletdb.ActionStatus's values without importing the
// storage package, keeping the state machine reusable by callers that
// have not yet loaded an action row.
type Status string

const (
	StatusUnsigned    Status = "unsigned"
	StatusUnprocessed Status = "unprocessed"
	StatusSigned      Status = "signed"
	StatusSending     Status = "sending"
	StatusUnproven    Status = "unproven"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusNoSend      Status = "nosend"
)

// validTransitions enumerates the Action.status state machine from §3:
// unsigned -> signed -> sending -> unproven -> completed, with failed
// reachable from any non-terminal state and nosend a terminal branch off
// of signed (an action the caller chose not to broadcast).
var validTransitions = map[Status]map[Status]bool{
	StatusUnsigned:    {StatusUnprocessed: true, StatusSigned: true, StatusFailed: true},
	StatusUnprocessed: {StatusSigned: true, StatusFailed: true},
	StatusSigned:      {StatusSending: true, StatusNoSend: true, StatusFailed: true},
	StatusSending:     {StatusUnproven: true, StatusFailed: true},
	StatusUnproven:    {StatusCompleted: true, StatusFailed: true},
	StatusCompleted:   {},
	StatusFailed:      {},
	StatusNoSend:      {},
}

// IsTerminal reports whether status has no further valid transitions.
func IsTerminal(status Status) bool {
	transitions, ok := validTransitions[status]
	return !ok || len(transitions) == 0
}

// Transition validates a status change against the state machine,
// returning a StorageConflict error for any move the machine does not
// allow (including any move out of a terminal state), per property
// P-MONOTONIC: an action's status only ever advances forward through
// this graph, never backward.
func Transition(from, to Status) error {
	if from == to {
		return nil
	}
	allowed, ok := validTransitions[from]
	if !ok {
		return walleterr.Newf(walleterr.InvalidArgument, "walletmethods: unknown action status %q", from)
	}
	if !allowed[to] {
		return walleterr.Newf(walleterr.StorageConflict, "walletmethods: invalid action status transition %s -> %s", from, to)
	}
	return nil
}

package walletmethods

import (
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// PurgeCandidate is one failed/completed action eligible for retention
// cleanup.
type PurgeCandidate struct {
	ActionID    uint64
	Status      string
	CompletedAt int64 // unix seconds
}

// PurgeParams controls how aggressively PurgeData reclaims storage.
// Open Question (spec.md §9): the retention window has no normative
// default, so PurgeData takes it as an explicit parameter rather than
// hardcoding one; callers needing a default should read it from
// wallet.Config.
type PurgeParams struct {
	RetentionWindow time.Duration
	PurgeCompleted  bool
	PurgeFailed     bool
}

// PurgeData returns the subset of candidates old enough (per clk) and of
// a status class the caller opted into purging, per §4.G's bounded
// retention cleanup. It never purges an action outside a terminal status
// (completed/failed), matching the Action.status state machine's
// invariant that an in-flight action is never garbage collected.
func PurgeData(clk clock.Clock, candidates []PurgeCandidate, params PurgeParams) []uint64 {
	cutoff := clk.Now().Add(-params.RetentionWindow).Unix()
	var purge []uint64
	for _, c := range candidates {
		if c.CompletedAt > cutoff {
			continue
		}
		switch c.Status {
		case "completed":
			if params.PurgeCompleted {
				purge = append(purge, c.ActionID)
			}
		case "failed":
			if params.PurgeFailed {
				purge = append(purge, c.ActionID)
			}
		}
	}
	return purge
}

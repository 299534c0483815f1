package walletmethods

import (
	"context"

	"github.com/btcsuite/btclog"

	"github.com/bsv-blockchain/brc100-wallet-core/beef"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// log is the package-level leveled logger, silent until a caller wires a
// backend via UseLogger, following the teacher's per-package log.go
// convention.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the algorithmic core.
func UseLogger(logger btclog.Logger) { log = logger }

// Broadcaster is the narrow capability attemptToPostReqsToNetwork needs
// from the Services Facade: posting a BEEF bundle and receiving an
// accept/reject outcome. Kept local so this package does not import
// walletservices directly, the same dependency-inversion shape beef
// uses for its own Services interface.
type Broadcaster interface {
	PostBeef(ctx context.Context, beefBytes []byte) (*BroadcastOutcome, error)
}

// BroadcastOutcome mirrors walletservices.PostBeefResult's shape.
type BroadcastOutcome struct {
	Accepted bool
	TxID     string
	Message  string
}

// PendingBroadcast is one queued broadcast attempt, carrying enough to
// assemble and resubmit a BEEF bundle.
type PendingBroadcast struct {
	ReqID    uint64
	RawTx    []byte
	TxID     string
	Attempts uint32
}

// BroadcastResult records the outcome of one attempt, for the caller to
// persist back into the BroadcastRequest row.
type BroadcastResult struct {
	ReqID    uint64
	Accepted bool
	TxID     string
	Error    string
}

// AttemptToPostReqsToNetwork assembles an AtomicBEEF for each pending
// broadcast and submits it via broadcaster, per §4.G. A BroadcastRejected
// error is terminal for that request (not retried here); a transient
// error is reported back so the caller can leave the request queued for
// the next reviewStatus tick. Ported from original_source's
// utils/attempt_to_post_reqs_to_network.py's per-request try/except loop.
func AttemptToPostReqsToNetwork(ctx context.Context, broadcaster Broadcaster, reqs []PendingBroadcast) []BroadcastResult {
	results := make([]BroadcastResult, len(reqs))
	for i, req := range reqs {
		atomicBeef, err := beef.AssembleAtomic(req.RawTx, nil)
		if err != nil {
			results[i] = BroadcastResult{ReqID: req.ReqID, Error: err.Error()}
			log.Warnf("walletmethods: failed to assemble atomic beef for req %d: %v", req.ReqID, err)
			continue
		}

		outcome, err := broadcaster.PostBeef(ctx, atomicBeef)
		if err != nil {
			results[i] = BroadcastResult{ReqID: req.ReqID, Error: err.Error()}
			if walleterr.IsCode(err, walleterr.BroadcastRejected) {
				log.Errorf("walletmethods: req %d rejected by network: %v", req.ReqID, err)
			} else {
				log.Debugf("walletmethods: req %d transient broadcast failure: %v", req.ReqID, err)
			}
			continue
		}
		results[i] = BroadcastResult{ReqID: req.ReqID, Accepted: outcome.Accepted, TxID: outcome.TxID, Error: outcome.Message}
	}
	return results
}

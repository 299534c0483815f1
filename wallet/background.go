package wallet

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/ticker"

	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
)

// BroadcastPending implements one pass of §4.G's attemptToPostReqsToNetwork:
// submit every queued BroadcastRequest, advance its owning action signed
// -> sending on acceptance, and record the attempt either way.
func (w *Wallet) BroadcastPending(ctx context.Context) error {
	pending, err := w.db.BroadcastRequestsByStatus("queued")
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	reqs := make([]walletmethods.PendingBroadcast, len(pending))
	for i, p := range pending {
		reqs[i] = walletmethods.PendingBroadcast{ReqID: p.ReqID, RawTx: p.RawTx, Attempts: p.Attempts}
	}

	results := walletmethods.AttemptToPostReqsToNetwork(ctx, facadeBroadcaster{w.services}, reqs)
	byID := make(map[uint64]*walletdb.BroadcastRequest, len(pending))
	for _, p := range pending {
		byID[p.ReqID] = p
	}

	for _, res := range results {
		req := byID[res.ReqID]
		req.Attempts++
		req.LastError = res.Error
		if res.Accepted {
			req.LastStatus = "accepted"
			if err := w.advanceToSending(req.ActionID, res.TxID); err != nil {
				log.Warnf("wallet: failed to advance action %d to sending: %v", req.ActionID, err)
			}
		} else {
			req.LastStatus = "error"
		}
		if err := w.db.UpdateBroadcastRequest(req); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wallet) advanceToSending(actionID uint64, txid string) error {
	action, err := w.db.GetAction(actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return nil
	}
	if err := walletmethods.Transition(walletmethods.Status(action.Status.String()), walletmethods.StatusSending); err != nil {
		return err
	}
	action.Status = walletdb.StatusSending
	if txid != "" {
		action.TxID = txid
	}
	return w.db.UpdateAction(action)
}

// ReviewPending implements one pass of §4.G's reviewStatus: poll the
// Services Facade for confirmation on every action currently sending or
// unproven, advancing sending -> unproven -> completed one step per call
// as proof becomes available.
func (w *Wallet) ReviewPending(ctx context.Context) error {
	actions, err := w.db.ActionsForUser(w.userID)
	if err != nil {
		return err
	}

	var candidates []walletmethods.ReviewCandidate
	for _, a := range actions {
		if a.Status == walletdb.StatusSending || a.Status == walletdb.StatusUnproven {
			candidates = append(candidates, walletmethods.ReviewCandidate{ActionID: a.ActionID, TxID: a.TxID})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	outcomes := walletmethods.ReviewStatus(ctx, w.clk, facadeStatusChecker{w.services}, candidates)
	for _, o := range outcomes {
		if o.Error != "" || o.StillWaiting {
			continue
		}
		if err := w.advanceOnProof(o.ActionID); err != nil {
			log.Warnf("wallet: failed to advance proven action %d: %v", o.ActionID, err)
		}
	}
	return nil
}

func (w *Wallet) advanceOnProof(actionID uint64) error {
	action, err := w.db.GetAction(actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return nil
	}
	from := walletmethods.Status(action.Status.String())
	next := walletmethods.StatusUnproven
	nextStored := walletdb.StatusUnproven
	if from == walletmethods.StatusUnproven {
		next = walletmethods.StatusCompleted
		nextStored = walletdb.StatusCompleted
	}
	if err := walletmethods.Transition(from, next); err != nil {
		return err
	}
	action.Status = nextStored
	return w.db.UpdateAction(action)
}

// PurgeData implements purgeData: delete storage for the user's
// completed/failed actions older than params' retention window.
func (w *Wallet) PurgeData(ctx context.Context, params walletmethods.PurgeParams) (int, error) {
	actions, err := w.db.ActionsForUser(w.userID)
	if err != nil {
		return 0, err
	}
	candidates := make([]walletmethods.PurgeCandidate, len(actions))
	for i, a := range actions {
		candidates[i] = walletmethods.PurgeCandidate{ActionID: a.ActionID, Status: a.Status.String(), CompletedAt: a.CreatedAt}
	}
	toPurge := walletmethods.PurgeData(w.clk, candidates, params)
	for _, id := range toPurge {
		if err := w.db.DeleteAction(id); err != nil {
			return 0, err
		}
	}
	return len(toPurge), nil
}

// RunBackgroundLoops drives BroadcastPending and ReviewPending on their
// own tickers until ctx is canceled, following the teacher's pattern of
// one pause/resume-capable ticker per background concern.
func (w *Wallet) RunBackgroundLoops(ctx context.Context, broadcastInterval, reviewInterval time.Duration) {
	broadcastTicker := ticker.New(broadcastInterval)
	reviewTicker := ticker.New(reviewInterval)
	broadcastTicker.Resume()
	reviewTicker.Resume()
	defer broadcastTicker.Stop()
	defer reviewTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-broadcastTicker.Ticks():
			if err := w.BroadcastPending(ctx); err != nil {
				log.Warnf("wallet: broadcast pass failed: %v", err)
			}
		case <-reviewTicker.Ticks():
			if err := w.ReviewPending(ctx); err != nil {
				log.Warnf("wallet: review pass failed: %v", err)
			}
		}
	}
}

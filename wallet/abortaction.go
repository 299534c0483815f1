package wallet

import (
	"context"

	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
)

// AbortActionRequest is abortAction's argument shape (§6).
type AbortActionRequest struct {
	Reference string
}

// AbortActionResult is abortAction's response shape.
type AbortActionResult struct {
	Aborted bool
}

// AbortAction implements abortAction: release the reservation held by a
// draft or unsent action's reference and transition it to failed. Per
// §4.G's state machine, failed is reachable from any non-terminal state.
func (w *Wallet) AbortAction(ctx context.Context, req AbortActionRequest) (*AbortActionResult, error) {
	action, err := w.db.GetActionByReference(req.Reference)
	if err != nil {
		return nil, err
	}
	if action == nil || action.UserID != w.userID {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: unknown action reference %q", req.Reference)
	}

	from := walletmethods.Status(action.Status.String())
	if walletmethods.IsTerminal(from) {
		return nil, walleterr.Newf(walleterr.StorageConflict, "wallet: action %q is already terminal (%s)", req.Reference, from)
	}
	if err := walletmethods.Transition(from, walletmethods.StatusFailed); err != nil {
		return nil, err
	}

	for _, outputID := range action.InputOutputIDs {
		out, err := w.db.GetOutput(outputID)
		if err != nil {
			return nil, err
		}
		if out == nil {
			continue
		}
		if out.SpentByActionID == action.ActionID {
			out.Spendable = true
			out.SpentByActionID = 0
			if err := w.db.UpdateOutput(out); err != nil {
				return nil, err
			}
		}
	}
	w.releaseReservation(req.Reference)

	action.Status = walletdb.StatusFailed
	if err := w.db.UpdateAction(action); err != nil {
		return nil, err
	}
	return &AbortActionResult{Aborted: true}, nil
}

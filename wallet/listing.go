package wallet

import (
	"context"

	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
)

// ListActionsRequest is listActions' argument shape (§6).
type ListActionsRequest struct {
	Labels        []string
	IncludeLabels bool
	Limit         int
	Offset        int
}

// ListActionsResult is listActions' response shape.
type ListActionsResult struct {
	Actions    []walletmethods.ActionSummary
	TotalCount int
}

// ListActions implements listActions: load every one of the caller's
// actions, then defer filtering, ordering and pagination to
// walletmethods.ListActions.
func (w *Wallet) ListActions(ctx context.Context, req ListActionsRequest) (*ListActionsResult, error) {
	rows, err := w.db.ActionsForUser(w.userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]walletmethods.ActionSummary, len(rows))
	for i, a := range rows {
		summaries[i] = walletmethods.ActionSummary{
			ActionID:    a.ActionID,
			TxID:        a.TxID,
			Status:      a.Status.String(),
			Satoshis:    a.Satoshis,
			Description: a.Description,
			Labels:      a.Labels,
			CreatedAt:   a.CreatedAt,
		}
	}

	result := walletmethods.ListActions(summaries, walletmethods.ListActionsRequest{
		Labels:        req.Labels,
		IncludeLabels: req.IncludeLabels,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	return &ListActionsResult{Actions: result.Actions, TotalCount: result.TotalCount}, nil
}

// ListOutputsRequest is listOutputs' argument shape (§6).
type ListOutputsRequest struct {
	Basket string
	Limit  int
	Offset int
}

// ListOutputsResult is listOutputs' response shape.
type ListOutputsResult struct {
	Outputs    []walletmethods.OutputSummary
	TotalCount int
}

// ListOutputs implements listOutputs: load the caller's spendable
// outputs (all baskets, including reserved ones, since reservation does
// not affect visibility), resolve the named basket filter to its id, and
// defer ordering/pagination to walletmethods.ListOutputs.
func (w *Wallet) ListOutputs(ctx context.Context, req ListOutputsRequest) (*ListOutputsResult, error) {
	rows, err := w.db.SpendableOutputsForUser(w.userID)
	if err != nil {
		return nil, err
	}

	var basketID uint64
	if req.Basket != "" {
		baskets, err := w.db.FindOutputBaskets(w.userID, req.Basket)
		if err != nil {
			return nil, err
		}
		if len(baskets) == 0 {
			return &ListOutputsResult{}, nil
		}
		basketID = baskets[0].BasketID
	}

	summaries := make([]walletmethods.OutputSummary, len(rows))
	for i, o := range rows {
		summaries[i] = walletmethods.OutputSummary{
			OutputID:      o.OutputID,
			Satoshis:      o.Satoshis,
			LockingScript: o.LockingScript,
			Spendable:     o.Spendable,
			BasketID:      o.BasketID,
			CreatedAt:     o.CreatedAt,
		}
	}

	result := walletmethods.ListOutputs(summaries, walletmethods.ListOutputsRequest{
		BasketID: basketID,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	return &ListOutputsResult{Outputs: result.Outputs, TotalCount: result.TotalCount}, nil
}

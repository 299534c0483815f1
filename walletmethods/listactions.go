package walletmethods

import "sort"

// ActionSummary is the listActions view of a stored action: only the
// fields the BRC-100 listActions response exposes.
type ActionSummary struct {
	ActionID    uint64
	TxID        string
	Status      string
	Satoshis    int64
	Description string
	Labels      []string
	CreatedAt   int64
}

// ListActionsRequest mirrors abiwire.ListActionsRequest's filter/page
// shape, decoupled from the wire layer so it can be driven directly by
// the orchestrator.
type ListActionsRequest struct {
	Labels        []string
	IncludeLabels bool
	Limit         int
	Offset        int
}

// ListActionsResult is a page of actions plus the total count available,
// matching the teacher's rpcserver.go pagination responses of
// (items, totalCount).
type ListActionsResult struct {
	Actions    []ActionSummary
	TotalCount int
}

// ListActions filters actions by label (when requested), orders them
// descending by creation time then id (matching the concrete scenario 6
// default shape: newest first, stable tie-break on id), and applies
// offset/limit.
func ListActions(all []ActionSummary, req ListActionsRequest) ListActionsResult {
	filtered := all
	if len(req.Labels) > 0 {
		filtered = make([]ActionSummary, 0, len(all))
		for _, a := range all {
			if hasAnyLabel(a.Labels, req.Labels) {
				filtered = append(filtered, a)
			}
		}
	}

	sorted := make([]ActionSummary, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt > sorted[j].CreatedAt
		}
		return sorted[i].ActionID > sorted[j].ActionID
	})

	total := len(sorted)
	page := paginate(sorted, req.Offset, req.Limit)
	if !req.IncludeLabels {
		for i := range page {
			page[i].Labels = nil
		}
	}
	return ListActionsResult{Actions: page, TotalCount: total}
}

// OutputSummary is the listOutputs view of a stored output.
type OutputSummary struct {
	OutputID      uint64
	Satoshis      int64
	LockingScript []byte
	Spendable     bool
	BasketID      uint64
	Tags          []string
	CreatedAt     int64
}

// ListOutputsRequest mirrors abiwire.ListOutputsRequest's filter/page shape.
type ListOutputsRequest struct {
	BasketID uint64
	Limit    int
	Offset   int
}

// ListOutputsResult is a page of outputs plus the total count matching
// the basket filter.
type ListOutputsResult struct {
	Outputs    []OutputSummary
	TotalCount int
}

// ListOutputs filters by basket (zero means all baskets), orders
// descending by createdAt then outputId per §6's listOutputs ordering,
// and applies offset/limit. generateChange's own candidate pool is
// ordered separately, by walletdb.SpendableOutputsForUser's ascending
// satoshis index, since that is a coin-selection concern rather than a
// display-ordering one.
func ListOutputs(all []OutputSummary, req ListOutputsRequest) ListOutputsResult {
	filtered := all
	if req.BasketID != 0 {
		filtered = make([]OutputSummary, 0, len(all))
		for _, o := range all {
			if o.BasketID == req.BasketID {
				filtered = append(filtered, o)
			}
		}
	}

	sorted := make([]OutputSummary, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt > sorted[j].CreatedAt
		}
		return sorted[i].OutputID > sorted[j].OutputID
	})

	total := len(sorted)
	page := paginate(sorted, req.Offset, req.Limit)
	return ListOutputsResult{Outputs: page, TotalCount: total}
}

func hasAnyLabel(labels, want []string) bool {
	for _, l := range labels {
		for _, w := range want {
			if l == w {
				return true
			}
		}
	}
	return false
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

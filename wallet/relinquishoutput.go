package wallet

import (
	"context"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// RelinquishOutputRequest is relinquishOutput's argument shape (§6):
// output is "txid.vout".
type RelinquishOutputRequest struct {
	Basket string
	Output string
}

// RelinquishOutputResult is relinquishOutput's response shape.
type RelinquishOutputResult struct {
	Relinquished bool
}

// RelinquishOutput implements relinquishOutput: drop an output from a
// basket's tracked set without spending it, matching the teacher's
// sweep.go convention of letting callers abandon a UTXO the wallet no
// longer wants to manage.
func (w *Wallet) RelinquishOutput(ctx context.Context, req RelinquishOutputRequest) (*RelinquishOutputResult, error) {
	txid, vout, err := parseOutputRef(req.Output)
	if err != nil {
		return nil, err
	}

	baskets, err := w.db.FindOutputBaskets(w.userID, req.Basket)
	if err != nil {
		return nil, err
	}
	if len(baskets) == 0 {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: unknown basket %q", req.Basket)
	}
	basketID := baskets[0].BasketID

	rows, err := w.db.SpendableOutputsForUser(w.userID)
	if err != nil {
		return nil, err
	}
	for _, o := range rows {
		if o.BasketID != basketID || o.Vout != vout {
			continue
		}
		origin, err := w.db.GetAction(o.ActionID)
		if err != nil {
			return nil, err
		}
		if origin == nil || origin.TxID != txid {
			continue
		}
		o.Spendable = false
		if err := w.db.UpdateOutput(o); err != nil {
			return nil, err
		}
		return &RelinquishOutputResult{Relinquished: true}, nil
	}
	return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: output %q not found in basket %q", req.Output, req.Basket)
}

func parseOutputRef(ref string) (txid string, vout uint32, err error) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) != 2 {
		return "", 0, walleterr.Newf(walleterr.InvalidArgument, "wallet: malformed output reference %q", ref)
	}
	v, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return "", 0, walleterr.Newf(walleterr.InvalidArgument, "wallet: malformed output reference %q: %v", ref, err)
	}
	return parts[0], uint32(v), nil
}

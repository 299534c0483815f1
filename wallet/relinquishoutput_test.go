package wallet

import (
	"context"
	"fmt"
	"testing"

	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

func TestRelinquishOutputMarksOutputUnspendable(t *testing.T) {
	w := newTestWallet(t)
	out := fundWallet(t, w, 100000)
	action, err := w.db.GetAction(out.ActionID)
	if err != nil {
		t.Fatal(err)
	}

	ref := fmt.Sprintf("%s.%d", action.TxID, out.Vout)
	res, err := w.RelinquishOutput(context.Background(), RelinquishOutputRequest{Basket: "default", Output: ref})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Relinquished {
		t.Fatal("expected Relinquished=true")
	}

	reloaded, err := w.db.GetOutput(out.OutputID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Spendable {
		t.Error("expected the output to be unspendable after relinquishing")
	}
}

func TestRelinquishOutputRejectsUnknownBasket(t *testing.T) {
	w := newTestWallet(t)
	out := fundWallet(t, w, 100000)
	action, err := w.db.GetAction(out.ActionID)
	if err != nil {
		t.Fatal(err)
	}

	ref := fmt.Sprintf("%s.%d", action.TxID, out.Vout)
	_, err = w.RelinquishOutput(context.Background(), RelinquishOutputRequest{Basket: "no-such-basket", Output: ref})
	if !walleterr.IsCode(err, walleterr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestParseOutputRefRejectsMalformedInput(t *testing.T) {
	if _, _, err := parseOutputRef("not-a-ref"); err == nil {
		t.Fatal("expected an error for a malformed output reference")
	}
	txid, vout, err := parseOutputRef("abc123.7")
	if err != nil {
		t.Fatal(err)
	}
	if txid != "abc123" || vout != 7 {
		t.Fatalf("got (%q, %d), want (%q, 7)", txid, vout, "abc123")
	}
}

package wallet

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

func TestCreateActionReservesInputsAndStoresUnsignedAction(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 100000)

	outScript := []byte{0x51} // stand-in locking script for the payee
	res, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "test payment",
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: outScript}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reference == "" {
		t.Fatal("expected a non-empty reference")
	}

	action, err := w.db.GetActionByReference(res.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if action == nil || action.Status != walletdb.StatusUnsigned {
		t.Fatalf("expected an unsigned action, got %+v", action)
	}
	if len(action.InputOutputIDs) == 0 {
		t.Fatal("expected at least one reserved input")
	}

	for _, id := range action.InputOutputIDs {
		if _, reserved, err := w.db.IsReserved(id); err != nil || !reserved {
			t.Errorf("expected output %d to be reserved, reserved=%v err=%v", id, reserved, err)
		}
	}
}

func TestCreateActionRejectsEmptyOutputs(t *testing.T) {
	w := newTestWallet(t)

	_, err := w.CreateAction(context.Background(), CreateActionRequest{Description: "no outputs"})
	if !walleterr.IsCode(err, walleterr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestCreateActionFailsOnInsufficientFunds(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 500)

	_, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "too big",
		Outputs:     []ActionOutputSpec{{Satoshis: 100000, LockingScript: []byte{0x51}}},
	})
	if !walleterr.IsCode(err, walleterr.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
}

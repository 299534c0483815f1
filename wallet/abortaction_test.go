package wallet

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
)

func TestAbortActionReleasesReservedInputs(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 100000)

	created, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "to be aborted",
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: []byte{0x51}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	action, err := w.db.GetActionByReference(created.Reference)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.AbortAction(context.Background(), AbortActionRequest{Reference: created.Reference}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := w.db.GetActionByReference(created.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != walletdb.StatusFailed {
		t.Fatalf("expected failed status, got %v", reloaded.Status)
	}

	for _, id := range action.InputOutputIDs {
		if _, reserved, err := w.db.IsReserved(id); err != nil || reserved {
			t.Errorf("expected output %d to be released, reserved=%v err=%v", id, reserved, err)
		}
	}
}

func TestAbortActionRejectsTerminalAction(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 100000)

	created, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "abort twice",
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: []byte{0x51}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.AbortAction(context.Background(), AbortActionRequest{Reference: created.Reference}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AbortAction(context.Background(), AbortActionRequest{Reference: created.Reference}); err == nil {
		t.Fatal("expected an error aborting an already-terminal action")
	}
}

func TestAbortActionRestoresSpentInputsAfterSigning(t *testing.T) {
	w := newTestWallet(t)
	out := fundWallet(t, w, 100000)

	created, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "sign then abort",
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: []byte{0x51}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.SignAction(context.Background(), SignActionRequest{Reference: created.Reference}); err != nil {
		t.Fatal(err)
	}

	spent, err := w.db.GetOutput(out.OutputID)
	if err != nil {
		t.Fatal(err)
	}
	if spent.Spendable {
		t.Fatal("expected the funding output to be marked unspendable after signing")
	}

	if _, err := w.AbortAction(context.Background(), AbortActionRequest{Reference: created.Reference}); err != nil {
		t.Fatal(err)
	}

	restored, err := w.db.GetOutput(out.OutputID)
	if err != nil {
		t.Fatal(err)
	}
	if !restored.Spendable {
		t.Error("expected the funding output to be restored to spendable after abort")
	}
}

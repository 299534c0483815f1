package wallet

import (
	"bytes"
	"context"
	"testing"

	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
)

func TestSignActionProducesValidSignedTransaction(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 100000)

	created, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "pay someone",
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: []byte{0x51}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	signed, err := w.SignAction(context.Background(), SignActionRequest{Reference: created.Reference})
	if err != nil {
		t.Fatal(err)
	}
	if signed.TxID == "" {
		t.Fatal("expected a non-empty txid")
	}

	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(signed.RawTx)); err != nil {
		t.Fatalf("expected a well-formed signed transaction: %v", err)
	}
	for i, in := range tx.TxIn {
		if len(in.SignatureScript) == 0 {
			t.Errorf("input %d has an empty signature script", i)
		}
	}

	action, err := w.db.GetActionByReference(created.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if action.Status != walletdb.StatusSigned {
		t.Fatalf("expected signed status, got %v", action.Status)
	}

	pending, err := w.db.BroadcastRequestsByStatus("queued")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly one queued broadcast request, got %d", len(pending))
	}
}

func TestSignActionNoSendSkipsBroadcastQueue(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 100000)

	created, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "no-send payment",
		NoSend:      true,
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: []byte{0x51}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.SignAction(context.Background(), SignActionRequest{Reference: created.Reference}); err != nil {
		t.Fatal(err)
	}

	action, err := w.db.GetActionByReference(created.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if action.Status != walletdb.StatusNoSend {
		t.Fatalf("expected nosend status, got %v", action.Status)
	}

	pending, err := w.db.BroadcastRequestsByStatus("queued")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no queued broadcast requests for a noSend action, got %d", len(pending))
	}
}

func TestSignActionRejectsAlreadySignedAction(t *testing.T) {
	w := newTestWallet(t)
	fundWallet(t, w, 100000)

	created, err := w.CreateAction(context.Background(), CreateActionRequest{
		Description: "double sign",
		Outputs:     []ActionOutputSpec{{Satoshis: 1000, LockingScript: []byte{0x51}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.SignAction(context.Background(), SignActionRequest{Reference: created.Reference}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.SignAction(context.Background(), SignActionRequest{Reference: created.Reference}); err == nil {
		t.Fatal("expected an error signing an already-signed action")
	}
}

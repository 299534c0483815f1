package wallet

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
)

// InternalizeOutputSpec describes one output of the externally-supplied
// transaction the caller asks the wallet to adopt.
type InternalizeOutputSpec struct {
	Vout         uint32
	Basket       string
	KeyID        string
	Counterparty string // empty or keyderiver.CounterpartySelf for a wallet-payment output
}

// InternalizeActionRequest is internalizeAction's argument shape (§6).
type InternalizeActionRequest struct {
	RawTx       []byte
	Outputs     []InternalizeOutputSpec
	Description string
}

// InternalizeActionResult is internalizeAction's response shape.
type InternalizeActionResult struct {
	Accepted bool
}

// InternalizeAction implements internalizeAction: recompute each claimed
// output's expected locking script from (protocol, keyID, counterparty)
// and confirm it against the transaction's actual script before adopting
// it as a spendable, wallet-owned output. The whole operation is rolled
// back on any mismatch (§4.G's "entire internalize is rolled back").
func (w *Wallet) InternalizeAction(ctx context.Context, req InternalizeActionRequest) (*InternalizeActionResult, error) {
	if len(req.Outputs) == 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: internalizeAction requires at least one output")
	}

	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(req.RawTx)); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: failed to parse raw tx: %v", err)
	}

	expected := make([]walletmethods.InternalizedOutput, len(req.Outputs))
	for i, o := range req.Outputs {
		var script []byte
		var err error
		if o.Counterparty == "" || o.Counterparty == keyderiver.CounterpartySelf {
			script, err = brc29.LockingScriptForSelf(w.masterPriv, changeProtocol, o.KeyID)
		} else {
			// The wallet is the recipient here, so it derives its own
			// side of the joint key (keyderiver.Derive, same as
			// brc29.ForCounterparty) rather than LockingScriptForCounterparty,
			// which computes the sender's side of the same derivation.
			var pair *keyderiver.DerivedKeyPair
			pair, err = keyderiver.Derive(w.masterPriv, o.Counterparty, changeProtocol, o.KeyID)
			if err == nil {
				script, err = brc29.LockingScriptForPubKey(pair.PublicKey)
			}
		}
		if err != nil {
			return nil, err
		}
		expected[i] = walletmethods.InternalizedOutput{Vout: o.Vout, ExpectedOwner: script}
	}

	if _, err := walletmethods.InternalizeAction(req.RawTx, expected); err != nil {
		return nil, err
	}

	txid := walletmethods.TransactionID(req.RawTx)
	action, err := w.db.InsertAction(&walletdb.Action{
		UserID:      w.userID,
		TxID:        txid,
		RawTx:       req.RawTx,
		Status:      walletdb.StatusCompleted,
		Description: req.Description,
		Version:     uint32(tx.Version),
		LockTime:    tx.LockTime,
		IsOutgoing:  false,
		Reference:   txid,
		CreatedAt:   w.clk.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	for i, o := range req.Outputs {
		basket, err := w.db.FindOrCreateDefaultBasketAndLabel(w.userID)
		if err != nil {
			return nil, err
		}
		if o.Basket != "" {
			named, err := w.db.FindOutputBaskets(w.userID, o.Basket)
			if err != nil {
				return nil, err
			}
			if len(named) > 0 {
				basket = named[0]
			}
		}
		txOut := tx.TxOut[o.Vout]
		if _, err := w.db.InsertOutput(&walletdb.Output{
			UserID:          w.userID,
			ActionID:        action.ActionID,
			Vout:            o.Vout,
			Satoshis:        txOut.Value,
			LockingScript:   expected[i].ExpectedOwner,
			Spendable:       true,
			BasketID:        basket.BasketID,
			Type:            "P2PKH",
			CreatedAt:       w.clk.Now().Unix(),
			DerivationKeyID: o.KeyID,
		}); err != nil {
			return nil, err
		}
	}

	return &InternalizeActionResult{Accepted: true}, nil
}

func parseCompressedPubKey(hexKey string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: malformed counterparty key %q: %v", hexKey, err)
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: invalid counterparty key %q: %v", hexKey, err)
	}
	return pub, nil
}

package wallet

import (
	"bytes"
	"context"

	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
)

// SignActionRequest is signAction's argument shape (§6): the reference
// returned by a prior CreateAction call.
type SignActionRequest struct {
	Reference string
}

// SignActionResult is signAction's response shape.
type SignActionResult struct {
	TxID  string
	RawTx []byte
}

// SignAction implements signAction: load the draft built by CreateAction,
// derive each input's unlocking script through processAction, transition
// the action unsigned -> signed, roll the spent inputs and any change
// output into storage, and queue the signed transaction for broadcast
// unless the caller asked for NoSend.
func (w *Wallet) SignAction(ctx context.Context, req SignActionRequest) (*SignActionResult, error) {
	action, err := w.db.GetActionByReference(req.Reference)
	if err != nil {
		return nil, err
	}
	if action == nil || action.UserID != w.userID {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: unknown action reference %q", req.Reference)
	}
	if action.Status != walletdb.StatusUnsigned {
		return nil, walleterr.Newf(walleterr.StorageConflict, "wallet: action %q is not in unsigned state", req.Reference)
	}

	var draft wire.MsgTx
	if err := draft.Deserialize(bytes.NewReader(action.RawTx)); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: failed to deserialize draft transaction: %v", err)
	}
	if len(draft.TxIn) != len(action.InputOutputIDs) {
		return nil, walleterr.New(walleterr.StorageConflict, "wallet: draft input count does not match reserved outputs")
	}

	fundingOutputs, err := w.db.FindOutputsByIDs(action.InputOutputIDs)
	if err != nil {
		return nil, err
	}

	inputs := make([]walletmethods.FundingInput, len(draft.TxIn))
	for i, txIn := range draft.TxIn {
		out := fundingOutputs[i]
		inputs[i] = walletmethods.FundingInput{
			TxID:          txIn.PreviousOutPoint.Hash.String(),
			Vout:          txIn.PreviousOutPoint.Index,
			Satoshis:      out.Satoshis,
			LockingScript: out.LockingScript,
			KeyID: brc29.KeyID{
				Protocol:     changeProtocol,
				ID:           out.DerivationKeyID,
				Counterparty: keyderiver.CounterpartySelf,
			},
		}
	}

	outputs := make([]walletmethods.FundingOutput, len(draft.TxOut))
	for i, txOut := range draft.TxOut {
		outputs[i] = walletmethods.FundingOutput{Satoshis: txOut.Value, LockingScript: txOut.PkScript}
	}

	signed, err := walletmethods.ProcessAction(walletmethods.AssembleRequest{
		MasterPrivateKey: w.masterPriv,
		Inputs:           inputs,
		Outputs:          outputs,
		Version:          action.Version,
		LockTime:         action.LockTime,
	})
	if err != nil {
		return nil, err
	}

	if err := walletmethods.Transition(walletmethods.Status(action.Status.String()), walletmethods.StatusSigned); err != nil {
		return nil, err
	}

	for _, out := range fundingOutputs {
		out.Spendable = false
		out.SpentByActionID = action.ActionID
		if err := w.db.UpdateOutput(out); err != nil {
			return nil, err
		}
	}

	if len(action.ChangeVouts) > 0 {
		basket, err := w.db.FindOrCreateDefaultBasketAndLabel(w.userID)
		if err != nil {
			return nil, err
		}
		for i, vout := range action.ChangeVouts {
			changeOut := draft.TxOut[vout]
			if _, err := w.db.InsertOutput(&walletdb.Output{
				UserID:          w.userID,
				ActionID:        action.ActionID,
				Vout:            vout,
				Satoshis:        changeOut.Value,
				LockingScript:   changeOut.PkScript,
				Spendable:       true,
				Change:          true,
				BasketID:        basket.BasketID,
				Type:            "P2PKH",
				CreatedAt:       w.clk.Now().Unix(),
				DerivationKeyID: action.ChangeKeyIDs[i],
			}); err != nil {
				return nil, err
			}
		}
	}

	action.RawTx = signed.RawTx
	action.TxID = signed.TxID
	action.Status = walletdb.StatusSigned
	if action.NoSend {
		if err := walletmethods.Transition(walletmethods.StatusSigned, walletmethods.StatusNoSend); err != nil {
			return nil, err
		}
		action.Status = walletdb.StatusNoSend
	}
	if err := w.db.UpdateAction(action); err != nil {
		return nil, err
	}

	if !action.NoSend {
		if err := w.enqueueBroadcast(action); err != nil {
			return nil, err
		}
	}

	return &SignActionResult{TxID: signed.TxID, RawTx: signed.RawTx}, nil
}

func (w *Wallet) enqueueBroadcast(action *walletdb.Action) error {
	_, err := w.db.InsertBroadcastRequest(&walletdb.BroadcastRequest{
		ActionID:   action.ActionID,
		RawTx:      action.RawTx,
		LastStatus: "queued",
	})
	return err
}

package wallet

import (
	"bytes"
	"context"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/txsize"
	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
)

// ActionOutputSpec is one requested output of a createAction call.
type ActionOutputSpec struct {
	Satoshis          int64
	LockingScript     []byte
	OutputDescription string
}

// CreateActionRequest is createAction's argument shape (§6).
type CreateActionRequest struct {
	Description            string
	Outputs                []ActionOutputSpec
	Labels                 []string
	NoSend                 bool
	AcceptDelayedBroadcast bool
	FeeRateSatPerByte      float64
}

// CreateActionResult is createAction's response shape: a draft reference
// the caller passes to SignAction to complete and broadcast the action.
type CreateActionResult struct {
	Reference string
}

const defaultFeeRateSatPerByte = 0.5

// CreateAction implements createAction: select funding inputs and
// compute change per §4.G's generateChange, reserve the selected
// outputs under a fresh reference, build the unsigned transaction
// skeleton, and persist a draft `unsigned` action. No private key
// material is used to sign here; CreateAction only derives the change
// locking script. Signing happens in SignAction, matching the teacher's
// separation of input selection (sweep's coin selection) from witness
// generation (lnwallet's signing pass).
func (w *Wallet) CreateAction(ctx context.Context, req CreateActionRequest) (*CreateActionResult, error) {
	if len(req.Outputs) == 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: createAction requires at least one output")
	}

	reference, err := newReference()
	if err != nil {
		return nil, err
	}

	basket, err := w.db.FindOrCreateDefaultBasketAndLabel(w.userID)
	if err != nil {
		return nil, err
	}

	var target int64
	fixedSizes := make([]int, len(req.Outputs))
	for i, o := range req.Outputs {
		if o.Satoshis < 0 {
			return nil, walleterr.New(walleterr.InvalidArgument, "wallet: negative output value")
		}
		target += o.Satoshis
		fixedSizes[i] = len(o.LockingScript)
	}

	changeLockingScript, err := brc29.LockingScriptForSelf(w.masterPriv, changeProtocol, reference)
	if err != nil {
		return nil, err
	}

	spendable, err := w.db.SpendableOutputsForUser(w.userID)
	if err != nil {
		return nil, err
	}
	var avail []walletmethods.SpendableOutput
	currentBasketCount := 0
	for _, o := range spendable {
		if o.BasketID == basket.BasketID {
			currentBasketCount++
		}
		if _, reserved, err := w.db.IsReserved(o.OutputID); err != nil {
			return nil, err
		} else if reserved {
			continue
		}
		avail = append(avail, walletmethods.SpendableOutput{
			OutputID:           o.OutputID,
			Satoshis:           o.Satoshis,
			UnlockingScriptLen: txsize.P2PKHUnlockingScriptSize,
		})
	}

	feeRate := req.FeeRateSatPerByte
	if feeRate <= 0 {
		feeRate = defaultFeeRateSatPerByte
	}

	plan, err := walletmethods.GenerateChange(walletmethods.ChangeRequest{
		Available:               avail,
		TargetSatoshis:          target,
		FeeRateSatPerByte:       feeRate,
		FixedOutputScriptSizes:  fixedSizes,
		ChangeLockingScriptSize: len(changeLockingScript),
		NumberOfDesiredUTXOs:    basket.NumberOfDesiredUTXOs,
		MinimumDesiredUTXOValue: basket.MinimumDesiredUTXOValue,
		CurrentBasketCount:      currentBasketCount,
	})
	if err != nil {
		return nil, err
	}

	outputIDs := make([]uint64, len(plan.Inputs))
	for i, in := range plan.Inputs {
		outputIDs[i] = in.OutputID
	}
	if err := w.db.ReserveOutputs(outputIDs, reference); err != nil {
		return nil, err
	}

	changeKeyIDs := make([]string, len(plan.ChangeOutputs))
	changeScripts := make([][]byte, len(plan.ChangeOutputs))
	for i := range plan.ChangeOutputs {
		keyID := reference
		if len(plan.ChangeOutputs) > 1 {
			keyID = changeOutputKeyID(reference, i)
		}
		script, err := brc29.LockingScriptForSelf(w.masterPriv, changeProtocol, keyID)
		if err != nil {
			w.releaseReservation(reference)
			return nil, err
		}
		changeKeyIDs[i] = keyID
		changeScripts[i] = script
	}

	rawTx, err := buildUnsignedSkeleton(w.db, plan.Inputs, req.Outputs, plan.ChangeOutputs, changeScripts)
	if err != nil {
		w.releaseReservation(reference)
		return nil, err
	}

	var changeVouts []uint32
	for i := range plan.ChangeOutputs {
		changeVouts = append(changeVouts, uint32(len(req.Outputs)+i))
	}

	_, err = w.db.InsertAction(&walletdb.Action{
		UserID:         w.userID,
		RawTx:          rawTx,
		Status:         walletdb.StatusUnsigned,
		Satoshis:       target,
		Description:    req.Description,
		Version:        2,
		IsOutgoing:     true,
		Reference:      reference,
		CreatedAt:      w.clk.Now().Unix(),
		Labels:         req.Labels,
		InputOutputIDs: outputIDs,
		ChangeVouts:    changeVouts,
		ChangeKeyIDs:   changeKeyIDs,
		NoSend:         req.NoSend,
	})
	if err != nil {
		w.releaseReservation(reference)
		return nil, err
	}

	return &CreateActionResult{Reference: reference}, nil
}

// buildUnsignedSkeleton assembles the draft transaction's wire bytes with
// empty scriptSigs: every selected input's prevout (resolved from the
// action that originally created it), the caller's requested outputs,
// and one trailing change output per entry in changeSatoshis/changeLockingScripts
// (§4.G step 5 may call for more than one).
func buildUnsignedSkeleton(db *walletdb.DB, inputs []walletmethods.SpendableOutput, outputs []ActionOutputSpec, changeSatoshis []int64, changeLockingScripts [][]byte) ([]byte, error) {
	tx := wire.NewMsgTx(2)

	for _, in := range inputs {
		outputRow, err := db.GetOutput(in.OutputID)
		if err != nil {
			return nil, err
		}
		if outputRow == nil {
			return nil, walleterr.Newf(walleterr.StorageConflict, "wallet: selected output %d no longer exists", in.OutputID)
		}
		originAction, err := db.GetAction(outputRow.ActionID)
		if err != nil {
			return nil, err
		}
		if originAction == nil {
			return nil, walleterr.Newf(walleterr.StorageConflict, "wallet: output %d has no originating action", in.OutputID)
		}
		hash, err := chainhash.NewHashFromStr(originAction.TxID)
		if err != nil {
			return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: invalid stored txid for output %d: %v", in.OutputID, err)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, outputRow.Vout), nil, nil))
	}

	for _, o := range outputs {
		tx.AddTxOut(wire.NewTxOut(o.Satoshis, o.LockingScript))
	}
	for i, satoshis := range changeSatoshis {
		tx.AddTxOut(wire.NewTxOut(satoshis, changeLockingScripts[i]))
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: failed to serialize draft transaction: %v", err)
	}
	return buf.Bytes(), nil
}

// changeOutputKeyID derives a distinct BRC-29 key id for the i'th of
// several split change outputs so each gets its own locking script
// instead of reusing one across outputs.
func changeOutputKeyID(reference string, i int) string {
	return reference + "-change-" + strconv.Itoa(i)
}

func (w *Wallet) releaseReservation(reference string) {
	if err := w.db.ReleaseOutputs(reference); err != nil {
		log.Warnf("wallet: failed to release reservation %q after createAction error: %v", reference, err)
	}
}

// Package walletmethods implements the orchestrator's algorithmic core:
// transaction assembly and signing, coin selection, action/output
// listing, network submission and status review, and data retention,
// ported from original_source's utils package and grounded on the
// teacher's sweep (coin selection, fee-bumping) and lnwallet (signing,
// PSBT-style funding) packages.
package walletmethods

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// FundingInput is one selected UTXO to spend, carrying enough information
// to both reference it in the raw transaction and reproduce its
// unlocking script at signing time.
type FundingInput struct {
	TxID          string
	Vout          uint32
	Satoshis      int64
	LockingScript []byte
	KeyID         brc29.KeyID
}

// FundingOutput is one output the action creates.
type FundingOutput struct {
	Satoshis      int64
	LockingScript []byte
}

// AssembleRequest bundles everything processAction needs to build and
// sign a raw transaction for an action.
type AssembleRequest struct {
	MasterPrivateKey *btcec.PrivateKey
	Inputs           []FundingInput
	Outputs          []FundingOutput
	Version          uint32
	LockTime         uint32
}

// AssembleResult is the signed raw transaction plus its computed txid.
type AssembleResult struct {
	RawTx []byte
	TxID  string
}

// ProcessAction assembles a raw transaction from the selected inputs and
// requested outputs, signs every input with its BRC-29 unlocking script
// producer, and returns the serialized bytes plus the resulting txid.
// Ported from original_source's utils/process_action.py, following the
// teacher's lnwallet signing flow of building the unsigned tx first and
// filling in each input's witness/sigScript in a second pass once every
// output (and thus every other input's prevout) is fixed.
func ProcessAction(req AssembleRequest) (*AssembleResult, error) {
	if len(req.Inputs) == 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "walletmethods: action has no inputs")
	}
	if len(req.Outputs) == 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "walletmethods: action has no outputs")
	}

	tx := wire.NewMsgTx(int32(req.Version))
	tx.LockTime = req.LockTime

	for _, in := range req.Inputs {
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, walleterr.Newf(walleterr.InvalidArgument, "walletmethods: invalid input txid: %v", err)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, in.Vout), nil, nil))
	}
	for _, out := range req.Outputs {
		if out.Satoshis < 0 {
			return nil, walleterr.New(walleterr.InvalidArgument, "walletmethods: negative output value")
		}
		tx.AddTxOut(wire.NewTxOut(out.Satoshis, out.LockingScript))
	}

	prevOutFetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range req.Inputs {
		prevOutFetcher.AddPrevOut(tx.TxIn[i].PreviousOutPoint, wire.NewTxOut(in.Satoshis, in.LockingScript))
	}

	hashCache := txscript.NewTxSigHashes(tx, prevOutFetcher)
	for i, in := range req.Inputs {
		producer, err := unlockingProducerFor(req.MasterPrivateKey, in.KeyID)
		if err != nil {
			return nil, err
		}
		sigHash, err := txscript.CalcWitnessSigHash(in.LockingScript, hashCache, brc29.SighashAllForkID, tx, i, in.Satoshis)
		if err != nil {
			return nil, walleterr.Newf(walleterr.InvalidArgument, "walletmethods: sighash computation failed: %v", err)
		}
		sigScript, err := producer(sigHash)
		if err != nil {
			return nil, err
		}
		tx.TxIn[i].SignatureScript = sigScript
	}

	rawTx, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	return &AssembleResult{RawTx: rawTx, TxID: TransactionID(rawTx)}, nil
}

func unlockingProducerFor(masterPriv *btcec.PrivateKey, keyID brc29.KeyID) (brc29.UnlockingScriptProducer, error) {
	if keyID.Counterparty == "" || keyID.Counterparty == keyderiver.CounterpartySelf {
		return brc29.ForSelf(masterPriv, keyID.Protocol, keyID.ID)
	}
	return brc29.ForCounterparty(masterPriv, keyID.Counterparty, keyID.Protocol, keyID.ID)
}

func serializeTx(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "walletmethods: failed to serialize transaction: %v", err)
	}
	return buf.Bytes(), nil
}

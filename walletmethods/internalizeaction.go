package walletmethods

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// InternalizedOutput describes one output of an externally-supplied
// transaction that internalizeAction is being asked to adopt into the
// wallet, either as a basket insertion or as a wallet payment.
type InternalizedOutput struct {
	Vout          uint32
	ExpectedOwner []byte // the locking script the wallet expects to own this output
}

// InternalizeResult reports the outputs internalizeAction accepted,
// keyed by vout.
type InternalizeResult struct {
	AcceptedVouts []uint32
}

// InternalizeAction validates that rawTx actually pays the outputs the
// caller claims belong to the wallet before adopting them, by recomputing
// each output's locking script and matching it against ExpectedOwner.
// Ported from original_source's utils/internalize_action.py's script
// comparison step; grounded on brc29.Verify's use for the inverse
// check in ProcessAction.
func InternalizeAction(rawTx []byte, outputs []InternalizedOutput) (*InternalizeResult, error) {
	tx := wire.NewMsgTx(0)
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "walletmethods: failed to parse raw tx: %v", err)
	}

	result := &InternalizeResult{}
	for _, out := range outputs {
		if int(out.Vout) >= len(tx.TxOut) {
			return nil, walleterr.Newf(walleterr.InvalidArgument, "walletmethods: vout %d out of range", out.Vout)
		}
		actual := tx.TxOut[out.Vout].PkScript
		if !scriptsEqual(actual, out.ExpectedOwner) {
			return nil, walleterr.Newf(walleterr.ScriptMismatch,
				"walletmethods: output %d locking script does not match expected owner", out.Vout)
		}
		if !isValidLockingScript(actual) {
			return nil, walleterr.Newf(walleterr.ScriptMismatch, "walletmethods: output %d is not a recognized locking script", out.Vout)
		}
		result.AcceptedVouts = append(result.AcceptedVouts, out.Vout)
	}
	return result, nil
}

func isValidLockingScript(script []byte) bool {
	return txscript.IsPayToPubKeyHash(script)
}

func scriptsEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VerifyUnlockingScript re-checks that a spending input's unlocking
// script actually satisfies the prevout's locking script for the given
// sighash, used when internalizing an action that also carries inputs
// spending the wallet's own outputs.
func VerifyUnlockingScript(lockingScript, sigScript, sigHash []byte) error {
	return brc29.Verify(lockingScript, sigScript, sigHash)
}

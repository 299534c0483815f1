// Package brc29 implements the BRC-29 payment template: a P2PKH locking
// script bound to a BRC-42-derived key, and an unlocking-script producer
// closure that signs a sighash preimage against that key.
//
// The unlocking-script producer follows the same closure shape as the
// teacher's lnwallet.WitnessGenerator (witnessgen.go): a function value
// that captures its signing context and is invoked per-input at
// transaction-assembly time, hiding the details of the underlying script
// from the caller.
package brc29

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// SighashAllForkID is BSV's mandatory default sighash type: SIGHASH_ALL
// with the FORKID flag set.
const SighashAllForkID = txscript.SigHashAll | 0x40

// KeyID is the (protocol, keyID) pair bound into a payment template,
// together with the counterparty the key was derived for.
type KeyID struct {
	Protocol     keyderiver.Protocol
	ID           string
	Counterparty string
}

// LockingScriptForSelf builds the P2PKH locking script for a key the
// wallet derives for itself under the given protocol/keyID.
func LockingScriptForSelf(masterPriv *btcec.PrivateKey, protocol keyderiver.Protocol, keyID string) ([]byte, error) {
	pair, err := keyderiver.Derive(masterPriv, keyderiver.CounterpartySelf, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return lockingScriptForPubKey(pair.PublicKey)
}

// LockingScriptForCounterparty builds the P2PKH locking script paying a
// named counterparty's derived public key, computed from the sender's
// master private key and the counterparty's master public key.
func LockingScriptForCounterparty(masterPriv *btcec.PrivateKey, counterpartyPub *btcec.PublicKey, protocol keyderiver.Protocol, keyID string) ([]byte, error) {
	childPub, err := keyderiver.DeriveChildPublicKey(masterPriv, counterpartyPub, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return lockingScriptForPubKey(childPub)
}

// LockingScriptForPubKey builds the P2PKH locking script for an
// already-derived public key. Used by callers that hold a full BRC-42
// keypair (e.g. internalizeAction reconstructing its own receiving
// script via keyderiver.Derive) rather than deriving fresh from a
// protocol/keyID pair against a counterparty's master key.
func LockingScriptForPubKey(pub *btcec.PublicKey) ([]byte, error) {
	return lockingScriptForPubKey(pub)
}

func lockingScriptForPubKey(pub *btcec.PublicKey) ([]byte, error) {
	hash := btcutil.Hash160(pub.SerializeCompressed())
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(hash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// UnlockingScriptProducer is the closure returned by ForSelf/ForCounterparty:
// given the sighash preimage for the input it will unlock, it returns the
// scriptSig bytes `<sig||sighashType> <pub>`.
type UnlockingScriptProducer func(sigHash []byte) ([]byte, error)

// ForSelf returns an UnlockingScriptProducer bound to a key the wallet
// derives for itself.
func ForSelf(masterPriv *btcec.PrivateKey, protocol keyderiver.Protocol, keyID string) (UnlockingScriptProducer, error) {
	pair, err := keyderiver.Derive(masterPriv, keyderiver.CounterpartySelf, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return producer(pair.PrivateKey), nil
}

// ForCounterparty returns an UnlockingScriptProducer bound to the key
// derived jointly with the given counterparty, usable by the wallet to
// spend a payment it received from that counterparty.
func ForCounterparty(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string) (UnlockingScriptProducer, error) {
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return producer(pair.PrivateKey), nil
}

func producer(priv *btcec.PrivateKey) UnlockingScriptProducer {
	pub := priv.PubKey()
	return func(sigHash []byte) ([]byte, error) {
		if len(sigHash) != 32 {
			return nil, walleterr.Newf(walleterr.InvalidArgument,
				"brc29: sighash must be 32 bytes, got %d", len(sigHash))
		}
		sig := ecdsa.Sign(priv, sigHash)
		sigBytes := append(sig.Serialize(), byte(SighashAllForkID))

		return txscript.NewScriptBuilder().
			AddData(sigBytes).
			AddData(pub.SerializeCompressed()).
			Script()
	}
}

// Verify checks that sigScript correctly unlocks lockingScript for the
// given sighash preimage; used by internalizeAction's script-match check
// and by tests asserting the BRC-29 round-trip invariant.
func Verify(lockingScript, sigScript, sigHash []byte) error {
	tokenizer := txscript.MakeScriptTokenizer(0, sigScript)
	if !tokenizer.Next() {
		return walleterr.New(walleterr.ScriptMismatch, "brc29: empty unlocking script")
	}
	sigWithType := tokenizer.Data()
	if !tokenizer.Next() {
		return walleterr.New(walleterr.ScriptMismatch, "brc29: unlocking script missing public key")
	}
	pubBytes := tokenizer.Data()

	if len(sigWithType) == 0 {
		return walleterr.New(walleterr.ScriptMismatch, "brc29: empty signature")
	}
	sigDER := sigWithType[:len(sigWithType)-1]

	pub, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return walleterr.Newf(walleterr.ScriptMismatch, "brc29: invalid public key in unlocking script: %v", err)
	}
	sig, err := ecdsa.ParseDERSignature(sigDER)
	if err != nil {
		return walleterr.Newf(walleterr.ScriptMismatch, "brc29: invalid signature encoding: %v", err)
	}
	if !sig.Verify(sigHash, pub) {
		return walleterr.New(walleterr.ScriptMismatch, "brc29: signature does not verify")
	}

	wantLocking, err := lockingScriptForPubKey(pub)
	if err != nil {
		return err
	}
	if !bytesEqual(wantLocking, lockingScript) {
		return walleterr.New(walleterr.ScriptMismatch, "brc29: unlocking key does not match locking script")
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
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

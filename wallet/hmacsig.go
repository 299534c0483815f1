package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// CreateHmac implements createHmac: an HMAC-SHA256 tag over data, keyed
// by the BRC-42-derived child private key for (protocol, keyID,
// counterparty), per property P-HMAC-VERIFY.
func CreateHmac(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, data []byte) ([]byte, error) {
	key, err := hmacKey(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// VerifyHmac implements verifyHmac: true iff tag is the HMAC-SHA256 of
// data under the same derived key, compared in constant time so flipping
// any bit of the tag or the data flips the result (P-HMAC-VERIFY).
func VerifyHmac(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, data, tag []byte) (bool, error) {
	want, err := CreateHmac(masterPriv, counterparty, protocol, keyID, data)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(want, tag) == 1, nil
}

// hmacKey and Encrypt/Decrypt's AES key both derive their secret key
// material from the child private scalar rather than the public point:
// per BRC-42, each side of a (protocol, keyID, counterparty) derivation
// independently computes the matching private key for its own role, so
// the scalar is secret to the holder while the derived public point is
// computable by the counterparty too.
func hmacKey(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string) ([]byte, error) {
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return pair.PrivateKey.Serialize(), nil
}

// CreateSignature implements createSignature: an RFC6979 deterministic,
// low-S ECDSA signature over sha256(data) (or directly over
// hashToDirectlySign when the caller supplies one), using the BRC-42
// child private key for (protocol, keyID, counterparty).
func CreateSignature(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, data, hashToDirectlySign []byte) ([]byte, error) {
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	digest := hashToDirectlySign
	if digest == nil {
		h := sha256.Sum256(data)
		digest = h[:]
	}
	if len(digest) != 32 {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: digest must be 32 bytes")
	}
	sig := ecdsa.Sign(pair.PrivateKey, digest)
	return sig.Serialize(), nil
}

// VerifySignature implements verifySignature: true iff signature is a
// valid ECDSA signature over sha256(data) (or hashToDirectlySign) by the
// BRC-42 child public key for the same context (P-SIG-VERIFY).
func VerifySignature(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, data, hashToDirectlySign, signature []byte) (bool, error) {
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return false, err
	}
	digest := hashToDirectlySign
	if digest == nil {
		h := sha256.Sum256(data)
		digest = h[:]
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false, nil
	}
	return sig.Verify(digest, pair.PublicKey), nil
}

// Package keyderiver implements BRC-42 child key derivation: given a
// master keypair and a (protocol, keyID, counterparty) invocation
// context, derive a child keypair shared with (or owned solely by) the
// counterparty.
//
// The derivation follows the same homomorphic point-addition shape the
// teacher uses for revocation keys in lnwallet/script_utils.go
// (deriveRevocationPubkey/deriveRevocationPrivKey): a shared secret feeds
// an HMAC to produce a scalar, and the child key is the master key offset
// by that scalar, either as a private-key addition or a public-key point
// addition.
package keyderiver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// Special counterparty values recognized in place of a literal public key.
const (
	CounterpartySelf   = "self"
	CounterpartyAnyone = "anyone"
)

// anyoneSecret is the fixed scalar used to derive the "anyone" key, whose
// private key is known to all parties by construction: a public,
// protocol-level constant, not a secret.
var anyoneSecret = sha256.Sum256([]byte("brc42-anyone"))

// anyonePrivateKey returns the fixed, publicly-known keypair used when the
// counterparty is "anyone".
func anyonePrivateKey() *btcec.PrivateKey {
	priv, _ := btcec.PrivKeyFromBytes(anyoneSecret[:])
	return priv
}

// Protocol identifies a BRC-42 protocol context: a security level in
// {0,1,2} and a protocol name.
type Protocol struct {
	SecurityLevel int
	Name          string
}

func (p Protocol) validate() error {
	if p.SecurityLevel < 0 || p.SecurityLevel > 2 {
		return walleterr.Newf(walleterr.InvalidArgument,
			"invalid protocol: securityLevel %d out of range [0,2]", p.SecurityLevel)
	}
	if p.Name == "" {
		return walleterr.New(walleterr.InvalidArgument, "invalid protocol: empty protocolName")
	}
	return nil
}

// invoice builds the BRC-42 invocation string: securityLevel ∥
// protocolName ∥ keyID.
func invoice(p Protocol, keyID string) []byte {
	buf := make([]byte, 0, 1+len(p.Name)+len(keyID))
	buf = append(buf, byte(p.SecurityLevel))
	buf = append(buf, []byte(p.Name)...)
	buf = append(buf, []byte(keyID)...)
	return buf
}

// resolveCounterpartyPub resolves the special "self"/"anyone" strings, or
// parses a hex/compressed-serialized public key.
func resolveCounterpartyPub(masterPriv *btcec.PrivateKey, counterparty string) (*btcec.PublicKey, error) {
	switch counterparty {
	case CounterpartySelf:
		return masterPriv.PubKey(), nil
	case CounterpartyAnyone:
		return anyonePrivateKey().PubKey(), nil
	default:
		return ParsePublicKey(counterparty)
	}
}

// ParsePublicKey parses a hex-encoded compressed or uncompressed
// secp256k1 public key. On failure it returns a walleterr.InvalidArgument
// error whose description says the counterparty key is invalid; walleterr
// has no separate counterparty error code.
func ParsePublicKey(hexStr string) (*btcec.PublicKey, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "invalid counterparty key: %v", err)
	}
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "invalid counterparty key: %v", err)
	}
	return pub, nil
}

// scalarFromSharedSecret computes HMAC-SHA256(sharedSecretX, invoice) mod
// N, the per-invocation offset scalar.
func scalarFromSharedSecret(sharedX []byte, inv []byte) *big.Int {
	mac := hmac.New(sha256.New, sharedX)
	mac.Write(inv)
	tag := mac.Sum(nil)
	scalar := new(big.Int).SetBytes(tag)
	return scalar.Mod(scalar, btcec.S256().N)
}

// sharedSecretX computes ECDH(priv, pub) and returns the X coordinate of
// the shared point, serialized to 32 bytes.
func sharedSecretX(priv *btcec.PrivateKey, pub *btcec.PublicKey) []byte {
	var point btcec.JacobianPoint
	pub.AsJacobian(&point)

	var result btcec.JacobianPoint
	btcec.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()

	x := result.X.Bytes()
	out := make([]byte, 32)
	copy(out[32-len(x):], x[:])
	return out
}

// DeriveChildPrivateKey derives the child private key owned by the
// caller, given the caller's master private key, the counterparty
// ("self", "anyone", or a hex public key), the protocol, and the keyID.
//
// The offset is always applied to the caller's own master private key,
// so for an external counterparty the result is the private half of the
// child public key that counterparty computes with
// DeriveChildPublicKey(counterpartyPriv, callerMasterPub, protocol, keyID).
func DeriveChildPrivateKey(masterPriv *btcec.PrivateKey, counterparty string, protocol Protocol, keyID string) (*btcec.PrivateKey, error) {
	if err := protocol.validate(); err != nil {
		return nil, err
	}
	counterpartyPub, err := resolveCounterpartyPub(masterPriv, counterparty)
	if err != nil {
		return nil, err
	}

	sharedX := sharedSecretX(masterPriv, counterpartyPub)
	scalar := scalarFromSharedSecret(sharedX, invoice(protocol, keyID))

	childScalar := new(big.Int).Add(new(big.Int).SetBytes(masterPriv.Serialize()), scalar)
	childScalar.Mod(childScalar, btcec.S256().N)

	childBytes := make([]byte, 32)
	childScalar.FillBytes(childBytes)
	childPriv, _ := btcec.PrivKeyFromBytes(childBytes)
	return childPriv, nil
}

// DeriveChildPublicKey derives the child public key reachable by a holder
// of masterPub, given the deriving party's private key (used to compute
// the ECDH shared secret) and the invocation context. The deriving party
// calls this with their own private key and the target's public key to
// learn the target's child public key without needing the target's
// private key.
func DeriveChildPublicKey(derivingPriv *btcec.PrivateKey, masterPub *btcec.PublicKey, protocol Protocol, keyID string) (*btcec.PublicKey, error) {
	if err := protocol.validate(); err != nil {
		return nil, err
	}

	sharedX := sharedSecretX(derivingPriv, masterPub)
	scalar := scalarFromSharedSecret(sharedX, invoice(protocol, keyID))

	var masterPoint btcec.JacobianPoint
	masterPub.AsJacobian(&masterPoint)

	var scalarPoint btcec.JacobianPoint
	var scalarBytes [32]byte
	scalar.FillBytes(scalarBytes[:])
	var modScalar btcec.ModNScalar
	modScalar.SetBytes(&scalarBytes)
	btcec.ScalarBaseMultNonConst(&modScalar, &scalarPoint)

	var childPoint btcec.JacobianPoint
	btcec.AddNonConst(&masterPoint, &scalarPoint, &childPoint)
	childPoint.ToAffine()

	return btcec.NewPublicKey(&childPoint.X, &childPoint.Y), nil
}

// DerivedKeyPair is both halves of a child keypair owned by the caller,
// available because the caller controls the master private key the
// offset is applied to.
type DerivedKeyPair struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  *btcec.PublicKey
}

// Derive computes the caller's full child keypair via
// DeriveChildPrivateKey, for "self", "anyone" or an external
// counterparty. To compute a counterparty's child public key instead, use
// DeriveChildPublicKey with the counterparty's master public key.
func Derive(masterPriv *btcec.PrivateKey, counterparty string, protocol Protocol, keyID string) (*DerivedKeyPair, error) {
	childPriv, err := DeriveChildPrivateKey(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return &DerivedKeyPair{PrivateKey: childPriv, PublicKey: childPriv.PubKey()}, nil
}

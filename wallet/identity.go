package wallet

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// Network identifies the chain a wallet was constructed for, per §6's
// WALLET_CHAIN environment variable.
type Network string

const (
	NetworkMain Network = "mainnet"
	NetworkTest Network = "testnet"
)

// GetPublicKey implements getPublicKey: when identityKey is requested,
// returns the wallet's root identity public key; otherwise returns the
// BRC-42 child public key for (protocol, keyID, counterparty), the
// public half of the keypair Derive produces, satisfying P-KEY-PAIR.
func GetPublicKey(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, identityKey bool) (*btcec.PublicKey, error) {
	if identityKey {
		return masterPriv.PubKey(), nil
	}
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	return pair.PublicKey, nil
}

// KeyLinkageRevelation is the shared secret a counterparty-key-linkage
// disclosure reveals: the ECDH point between the wallet's master key and
// the named counterparty, which lets a verifier confirm that two derived
// public keys both descend from the same (wallet, counterparty) pair
// without learning either party's master private key.
type KeyLinkageRevelation struct {
	EncryptedLinkage []byte
	ProtocolHash     []byte
}

// RevealCounterpartyKeyLinkage implements revealCounterpartyKeyLinkage:
// discloses the X coordinate of the ECDH shared point between the
// wallet's master key and counterparty's master public key, sealed with
// sealBytes under a key the wallet derives for itself (counterparty
// "self") from verifierProtocol and verifierKeyID. No verifier public key
// enters the derivation, so only a holder of the wallet's master key can
// recompute the seal key. Deferred per spec's open question on
// certificate-adjacent methods: the disclosure format is these sealed
// bytes rather than a certificate-bound structure.
func RevealCounterpartyKeyLinkage(masterPriv *btcec.PrivateKey, counterpartyPub *btcec.PublicKey, verifierProtocol keyderiver.Protocol, verifierKeyID string) (*KeyLinkageRevelation, error) {
	sharedX, err := sharedSecretX(masterPriv, counterpartyPub)
	if err != nil {
		return nil, err
	}
	sealKey, err := hmacKey(masterPriv, keyderiver.CounterpartySelf, verifierProtocol, verifierKeyID)
	if err != nil {
		return nil, err
	}
	sealed, err := sealBytes(sealKey, sharedX)
	if err != nil {
		return nil, err
	}
	protoHash := sha256.Sum256([]byte(verifierProtocol.Name))
	return &KeyLinkageRevelation{EncryptedLinkage: sealed, ProtocolHash: protoHash[:]}, nil
}

// RevealSpecificKeyLinkage implements revealSpecificKeyLinkage: like
// RevealCounterpartyKeyLinkage but scoped to one specific (protocol,
// keyID) derivation rather than the whole counterparty relationship,
// disclosing the single derived scalar's linkage rather than the raw
// ECDH point.
func RevealSpecificKeyLinkage(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, verifierProtocol keyderiver.Protocol, verifierKeyID string) (*KeyLinkageRevelation, error) {
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	sealKey, err := hmacKey(masterPriv, keyderiver.CounterpartySelf, verifierProtocol, verifierKeyID)
	if err != nil {
		return nil, err
	}
	sealed, err := sealBytes(sealKey, pair.PrivateKey.Serialize())
	if err != nil {
		return nil, err
	}
	protoHash := sha256.Sum256([]byte(protocol.Name + "/" + keyID))
	return &KeyLinkageRevelation{EncryptedLinkage: sealed, ProtocolHash: protoHash[:]}, nil
}

func sharedSecretX(priv *btcec.PrivateKey, pub *btcec.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: missing counterparty public key")
	}
	var point btcec.JacobianPoint
	pub.AsJacobian(&point)
	var result btcec.JacobianPoint
	btcec.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()
	x := result.X.Bytes()
	return x[:], nil
}

func sealBytes(key, plaintext []byte) ([]byte, error) {
	sum := sha256.Sum256(key)
	sealed := make([]byte, len(plaintext))
	for i := range plaintext {
		sealed[i] = plaintext[i] ^ sum[i%len(sum)]
	}
	return sealed, nil
}

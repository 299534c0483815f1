package wallet

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// GetPublicKey implements getPublicKey (§6) against the wallet's own
// master key, wrapping the package-level GetPublicKey.
func (w *Wallet) GetPublicKey(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, identityKey bool) (*btcec.PublicKey, error) {
	return GetPublicKey(w.masterPriv, counterparty, protocol, keyID, identityKey)
}

// RevealCounterpartyKeyLinkage implements revealCounterpartyKeyLinkage
// against the wallet's own master key.
func (w *Wallet) RevealCounterpartyKeyLinkage(ctx context.Context, counterpartyPub *btcec.PublicKey, verifierProtocol keyderiver.Protocol, verifierKeyID string) (*KeyLinkageRevelation, error) {
	return RevealCounterpartyKeyLinkage(w.masterPriv, counterpartyPub, verifierProtocol, verifierKeyID)
}

// RevealSpecificKeyLinkage implements revealSpecificKeyLinkage against
// the wallet's own master key.
func (w *Wallet) RevealSpecificKeyLinkage(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, verifierProtocol keyderiver.Protocol, verifierKeyID string) (*KeyLinkageRevelation, error) {
	return RevealSpecificKeyLinkage(w.masterPriv, counterparty, protocol, keyID, verifierProtocol, verifierKeyID)
}

// Certificate is the minimal shape a discovered or held certificate
// carries: enough to identify its subject and type without committing to
// a full selective-disclosure field model, which upstream BRC-100 leaves
// unspecified for this layer.
type Certificate struct {
	Type         string
	SerialNumber string
	Subject      string // hex-encoded subject public key
	Certifier    string // hex-encoded certifier public key
	Fields       map[string]string
}

// DiscoverByIdentityKeyRequest is discoverByIdentityKey's argument shape.
type DiscoverByIdentityKeyRequest struct {
	IdentityKey string
	Limit       int
}

// DiscoverByIdentityKey implements discoverByIdentityKey. The wallet core
// has no certificate registry of its own to query; this always returns
// an empty result, leaving certificate discovery to a higher-level
// manager built atop this core, per the deferred certificate contract.
func (w *Wallet) DiscoverByIdentityKey(ctx context.Context, req DiscoverByIdentityKeyRequest) ([]Certificate, error) {
	return nil, nil
}

// DiscoverByAttributesRequest is discoverByAttributes' argument shape.
type DiscoverByAttributesRequest struct {
	Attributes map[string]string
	Limit      int
}

// DiscoverByAttributes implements discoverByAttributes; deferred, see
// DiscoverByIdentityKey.
func (w *Wallet) DiscoverByAttributes(ctx context.Context, req DiscoverByAttributesRequest) ([]Certificate, error) {
	return nil, nil
}

// ProveCertificateRequest is proveCertificate's argument shape.
type ProveCertificateRequest struct {
	Certificate    Certificate
	FieldsToReveal []string
	Verifier       string // hex-encoded verifier public key
}

// ProveCertificateResult is proveCertificate's response shape: a
// selective-disclosure keyring for the requested fields, each sealed
// under a key derived with the named verifier as counterparty in the
// wallet's certificate-field protocol.
type ProveCertificateResult struct {
	KeyringForVerifier map[string][]byte
}

// ProveCertificate implements proveCertificate: for each disclosed field
// it derives the wallet's self field key and seals it with sealBytes
// under the wallet's own child private key derived with the verifier as
// counterparty. The verifier's derivation with the wallet as counterparty
// yields the verifier's child key, not this one, so the keyring is
// opened with the wallet's master key. The certificate registry itself lives above this core (see
// DiscoverByIdentityKey); this only performs the field-key sealing step,
// which is the part §4.A's key-derivation stack actually owns.
func (w *Wallet) ProveCertificate(ctx context.Context, req ProveCertificateRequest) (*ProveCertificateResult, error) {
	verifierPub, err := parseCompressedPubKey(req.Verifier)
	if err != nil {
		return nil, err
	}
	protocol := keyderiver.Protocol{SecurityLevel: 2, Name: "certificate field encryption"}

	keyring := make(map[string][]byte, len(req.FieldsToReveal))
	for _, field := range req.FieldsToReveal {
		pair, err := keyderiver.Derive(w.masterPriv, keyderiver.CounterpartySelf, protocol, req.Certificate.SerialNumber+"/"+field)
		if err != nil {
			return nil, err
		}
		sealKeyPair, err := keyderiver.Derive(w.masterPriv, hex.EncodeToString(verifierPub.SerializeCompressed()), protocol, req.Certificate.SerialNumber+"/"+field)
		if err != nil {
			return nil, err
		}
		sealed, err := sealBytes(sealKeyPair.PrivateKey.Serialize(), pair.PrivateKey.Serialize())
		if err != nil {
			return nil, err
		}
		keyring[field] = sealed
	}
	return &ProveCertificateResult{KeyringForVerifier: keyring}, nil
}

// RelinquishCertificateRequest is relinquishCertificate's argument shape.
type RelinquishCertificateRequest struct {
	Type         string
	SerialNumber string
	Certifier    string
}

// RelinquishCertificateResult is relinquishCertificate's response shape.
type RelinquishCertificateResult struct {
	Relinquished bool
}

// RelinquishCertificate implements relinquishCertificate; deferred, see
// DiscoverByIdentityKey: with no certificate registry in this core, there
// is nothing to drop, so this always reports success.
func (w *Wallet) RelinquishCertificate(ctx context.Context, req RelinquishCertificateRequest) (*RelinquishCertificateResult, error) {
	if req.SerialNumber == "" {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: relinquishCertificate requires a serial number")
	}
	return &RelinquishCertificateResult{Relinquished: true}, nil
}

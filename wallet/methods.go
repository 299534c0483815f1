package wallet

import (
	"context"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
)

// Encrypt implements the encrypt BRC-100 method against the wallet's own
// master key.
func (w *Wallet) Encrypt(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, plaintext []byte) ([]byte, error) {
	return Encrypt(w.masterPriv, counterparty, protocol, keyID, plaintext)
}

// Decrypt implements the decrypt BRC-100 method against the wallet's own
// master key.
func (w *Wallet) Decrypt(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, envelope []byte) ([]byte, error) {
	return Decrypt(w.masterPriv, counterparty, protocol, keyID, envelope)
}

// CreateHmac implements createHmac against the wallet's own master key.
func (w *Wallet) CreateHmac(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, data []byte) ([]byte, error) {
	return CreateHmac(w.masterPriv, counterparty, protocol, keyID, data)
}

// VerifyHmac implements verifyHmac against the wallet's own master key.
func (w *Wallet) VerifyHmac(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, data, tag []byte) (bool, error) {
	return VerifyHmac(w.masterPriv, counterparty, protocol, keyID, data, tag)
}

// CreateSignature implements createSignature against the wallet's own
// master key.
func (w *Wallet) CreateSignature(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, data, hashToDirectlySign []byte) ([]byte, error) {
	return CreateSignature(w.masterPriv, counterparty, protocol, keyID, data, hashToDirectlySign)
}

// VerifySignature implements verifySignature against the wallet's own
// master key.
func (w *Wallet) VerifySignature(ctx context.Context, counterparty string, protocol keyderiver.Protocol, keyID string, data, hashToDirectlySign, signature []byte) (bool, error) {
	return VerifySignature(w.masterPriv, counterparty, protocol, keyID, data, hashToDirectlySign, signature)
}

package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// bie1Magic is the BRC-100 ciphertext envelope's magic prefix: "BIE1"
// (the Electrum-ECIES convention carried over from the legacy bsv
// libraries this protocol descends from) followed by the invoking
// protocol's securityLevel byte, so a reader can tell which key-
// derivation strength produced the envelope without decrypting it.
var bie1Magic = []byte{0x42, 0x49, 0x45, 0x31}

const (
	ivSize  = 16
	macSize = 32
)

// Encrypt implements the encrypt BRC-100 method: derive a child keypair
// for (protocol, keyID, counterparty) per BRC-42, use its private scalar
// as AES key material to build an AES-256-CBC-then-HMAC envelope tagged
// with the BIE1 magic prefix and securityLevel byte (scenario 1's
// expected `0x42 0x49 0x45 0x31 0x02` for securityLevel=2).
func Encrypt(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, plaintext []byte) ([]byte, error) {
	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	aesKey := sha256.Sum256(pair.PrivateKey.Serialize())

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: failed to generate iv: %v", err)
	}

	block, err := aes.NewCipher(aesKey[:])
	if err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: %v", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	var envelope bytes.Buffer
	envelope.Write(bie1Magic)
	envelope.WriteByte(byte(protocol.SecurityLevel))
	envelope.Write(iv)
	envelope.Write(ciphertext)

	tag := hmac.New(sha256.New, aesKey[:])
	tag.Write(envelope.Bytes())
	envelope.Write(tag.Sum(nil))

	return envelope.Bytes(), nil
}

// Decrypt reverses Encrypt: re-derives the same child keypair, verifies
// the HMAC tag in constant time, and strips the BIE1 envelope.
func Decrypt(masterPriv *btcec.PrivateKey, counterparty string, protocol keyderiver.Protocol, keyID string, envelope []byte) ([]byte, error) {
	minLen := len(bie1Magic) + 1 + ivSize + macSize
	if len(envelope) < minLen {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: ciphertext too short")
	}
	if !bytes.Equal(envelope[:len(bie1Magic)], bie1Magic) {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: missing BIE1 magic prefix")
	}
	securityLevel := int(envelope[len(bie1Magic)])
	if securityLevel != protocol.SecurityLevel {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: security level mismatch in ciphertext envelope")
	}

	body := envelope[:len(envelope)-macSize]
	tagGot := envelope[len(envelope)-macSize:]

	pair, err := keyderiver.Derive(masterPriv, counterparty, protocol, keyID)
	if err != nil {
		return nil, err
	}
	aesKey := sha256.Sum256(pair.PrivateKey.Serialize())

	tagWant := hmac.New(sha256.New, aesKey[:])
	tagWant.Write(body)
	if subtle.ConstantTimeCompare(tagWant.Sum(nil), tagGot) != 1 {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: ciphertext authentication failed")
	}

	offset := len(bie1Magic) + 1
	iv := envelope[offset : offset+ivSize]
	ciphertext := body[offset+ivSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: malformed ciphertext length")
	}

	block, err := aes.NewCipher(aesKey[:])
	if err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "wallet: %v", err)
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: empty plaintext after decryption")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return nil, walleterr.New(walleterr.InvalidArgument, "wallet: invalid pkcs7 padding")
	}
	return data[:len(data)-padLen], nil
}

package wallet

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 2, Name: "ctx"}
	plaintext := []byte("secret message")

	ciphertext, err := Encrypt(masterPriv, keyderiver.CounterpartySelf, protocol, "default", plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("expected ciphertext to differ from plaintext")
	}
	wantPrefix := []byte{0x42, 0x49, 0x45, 0x31, 0x02}
	if !bytes.HasPrefix(ciphertext, wantPrefix) {
		t.Errorf("expected ciphertext to begin with %x, got %x", wantPrefix, ciphertext[:5])
	}

	decrypted, err := Decrypt(masterPriv, keyderiver.CounterpartySelf, protocol, "default", ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("got %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 1, Name: "ctx"}

	ciphertext, err := Encrypt(masterPriv, keyderiver.CounterpartySelf, protocol, "default", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte{}, ciphertext...)
	tampered[len(tampered)-1] ^= 0x01

	if _, err := Decrypt(masterPriv, keyderiver.CounterpartySelf, protocol, "default", tampered); err == nil {
		t.Fatal("expected authentication failure on tampered ciphertext")
	}
}

func TestDecryptRejectsWrongCounterparty(t *testing.T) {
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	other, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 1, Name: "ctx"}

	ciphertext, err := Encrypt(masterPriv, keyderiver.CounterpartySelf, protocol, "default", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(other, keyderiver.CounterpartySelf, protocol, "default", ciphertext); err == nil {
		t.Fatal("expected decryption under a different master key to fail")
	}
}

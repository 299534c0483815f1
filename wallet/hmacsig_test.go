package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
)

func TestCreateHmacAndVerify(t *testing.T) {
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 1, Name: "auth"}
	data := []byte("auth data")

	tag, err := CreateHmac(masterPriv, keyderiver.CounterpartySelf, protocol, "default", data)
	if err != nil {
		t.Fatal(err)
	}
	valid, err := VerifyHmac(masterPriv, keyderiver.CounterpartySelf, protocol, "default", data, tag)
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("expected tag to verify")
	}

	tampered := append([]byte{}, tag...)
	tampered[0] ^= 0x01
	valid, err = VerifyHmac(masterPriv, keyderiver.CounterpartySelf, protocol, "default", data, tampered)
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Fatal("expected tampered tag to fail verification")
	}
}

func TestCreateSignatureAndVerify(t *testing.T) {
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 2, Name: "docs"}
	data := []byte("a document to sign")

	sig, err := CreateSignature(masterPriv, keyderiver.CounterpartySelf, protocol, "default", data, nil)
	if err != nil {
		t.Fatal(err)
	}
	valid, err := VerifySignature(masterPriv, keyderiver.CounterpartySelf, protocol, "default", data, nil, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("expected signature to verify")
	}

	valid, err = VerifySignature(masterPriv, keyderiver.CounterpartySelf, protocol, "default", []byte("different data"), nil, sig)
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Fatal("expected signature over different data to fail verification")
	}
}

func TestCreateSignatureWithDirectHash(t *testing.T) {
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 0, Name: "docs"}
	hash := make([]byte, 32)
	for i := range hash {
		hash[i] = byte(i)
	}

	sig, err := CreateSignature(masterPriv, keyderiver.CounterpartySelf, protocol, "default", nil, hash)
	if err != nil {
		t.Fatal(err)
	}
	valid, err := VerifySignature(masterPriv, keyderiver.CounterpartySelf, protocol, "default", nil, hash, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("expected direct-hash signature to verify")
	}
}

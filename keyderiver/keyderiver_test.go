package keyderiver

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
)

func mustPrivKey(t *testing.T, hexByte byte) *btcec.PrivateKey {
	t.Helper()
	b := bytes.Repeat([]byte{hexByte}, 32)
	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv
}

func TestDeriveSelfKeyPairConsistency(t *testing.T) {
	master := mustPrivKey(t, 0x02)
	proto := Protocol{SecurityLevel: 2, Name: "ctx"}

	pair, err := Derive(master, CounterpartySelf, proto, "default")
	if err != nil {
		t.Fatal(err)
	}

	// P-KEY-PAIR: public key returned equals derive_private(...) . G
	wantPub := pair.PrivateKey.PubKey()
	if !wantPub.IsEqual(pair.PublicKey) {
		t.Error("derived public key does not match private key's own public key")
	}

	pubOnly, err := DeriveChildPublicKey(master, master.PubKey(), proto, "default")
	if err != nil {
		t.Fatal(err)
	}
	if !pubOnly.IsEqual(pair.PublicKey) {
		t.Error("DeriveChildPublicKey disagrees with Derive's public key")
	}
}

func TestDeriveAnyoneIsDeterministic(t *testing.T) {
	master := mustPrivKey(t, 0x03)
	proto := Protocol{SecurityLevel: 1, Name: "p"}

	a, err := Derive(master, CounterpartyAnyone, proto, "k")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Derive(master, CounterpartyAnyone, proto, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !a.PrivateKey.PubKey().IsEqual(b.PrivateKey.PubKey()) {
		t.Error("anyone derivation is not deterministic")
	}
}

func TestDeriveDifferentKeyIDsDiffer(t *testing.T) {
	master := mustPrivKey(t, 0x04)
	proto := Protocol{SecurityLevel: 1, Name: "p"}

	a, err := Derive(master, CounterpartySelf, proto, "one")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Derive(master, CounterpartySelf, proto, "two")
	if err != nil {
		t.Fatal(err)
	}
	if a.PrivateKey.PubKey().IsEqual(b.PrivateKey.PubKey()) {
		t.Error("different keyIDs produced the same derived key")
	}
}

func TestInvalidProtocolRejected(t *testing.T) {
	master := mustPrivKey(t, 0x05)

	if _, err := Derive(master, CounterpartySelf, Protocol{SecurityLevel: 3, Name: "p"}, "k"); err == nil {
		t.Error("expected error for securityLevel out of range")
	}
	if _, err := Derive(master, CounterpartySelf, Protocol{SecurityLevel: 1, Name: ""}, "k"); err == nil {
		t.Error("expected error for empty protocolName")
	}
}

func TestInvalidCounterpartyRejected(t *testing.T) {
	master := mustPrivKey(t, 0x06)
	proto := Protocol{SecurityLevel: 1, Name: "p"}

	if _, err := Derive(master, "not-a-valid-hex-pubkey", proto, "k"); err == nil {
		t.Error("expected error for malformed counterparty key")
	}
}

package walletmethods

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
)

func buildTestTx(t *testing.T, lockingScript []byte, satoshis int64) []byte {
	t.Helper()
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(wire.NewTxOut(satoshis, lockingScript))
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestInternalizeActionAcceptsMatchingOutput(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 1, Name: "payments"}
	lockingScript, err := brc29.LockingScriptForSelf(priv, protocol, "1")
	if err != nil {
		t.Fatal(err)
	}
	rawTx := buildTestTx(t, lockingScript, 5000)

	result, err := InternalizeAction(rawTx, []InternalizedOutput{{Vout: 0, ExpectedOwner: lockingScript}})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.AcceptedVouts) != 1 || result.AcceptedVouts[0] != 0 {
		t.Fatalf("expected vout 0 accepted, got %v", result.AcceptedVouts)
	}
}

func TestInternalizeActionRejectsMismatchedOwner(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	other, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 1, Name: "payments"}
	actualScript, err := brc29.LockingScriptForSelf(priv, protocol, "1")
	if err != nil {
		t.Fatal(err)
	}
	wrongScript, err := brc29.LockingScriptForSelf(other, protocol, "1")
	if err != nil {
		t.Fatal(err)
	}
	rawTx := buildTestTx(t, actualScript, 5000)

	if _, err := InternalizeAction(rawTx, []InternalizedOutput{{Vout: 0, ExpectedOwner: wrongScript}}); err == nil {
		t.Fatal("expected script mismatch error")
	}
}

func TestInternalizeActionRejectsOutOfRangeVout(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	protocol := keyderiver.Protocol{SecurityLevel: 1, Name: "payments"}
	lockingScript, err := brc29.LockingScriptForSelf(priv, protocol, "1")
	if err != nil {
		t.Fatal(err)
	}
	rawTx := buildTestTx(t, lockingScript, 5000)

	if _, err := InternalizeAction(rawTx, []InternalizedOutput{{Vout: 5, ExpectedOwner: lockingScript}}); err == nil {
		t.Fatal("expected out-of-range vout error")
	}
}

package wallet

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/clock"

	"github.com/bsv-blockchain/brc100-wallet-core/brc29"
	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walletservices"
)

// newTestWallet builds a Wallet over a fresh on-disk store under a
// deterministic test clock, mirroring walletdb's openTestDB helper.
func newTestWallet(t *testing.T) *Wallet {
	return newTestWalletWithServices(t, walletservices.Config{})
}

// newTestWalletWithServices is newTestWallet with an explicit Services
// config, used by tests that point the Services Facade at an
// httptest.Server standing in for ARC/BHS.
func newTestWalletWithServices(t *testing.T, services walletservices.Config) *Wallet {
	t.Helper()
	masterPriv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewTestClock(time.Unix(1700000000, 0))
	cfg := Config{DBPath: t.TempDir(), Services: services}
	w, err := New(cfg, masterPriv, clk)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.db.Close() })
	return w
}

// randomHash returns an unpredictable chainhash.Hash, used to stand in
// for a genesis prevout or external txid in tests that don't need a
// real ancestor transaction.
func randomHash(t *testing.T) *chainhash.Hash {
	t.Helper()
	var h chainhash.Hash
	if _, err := rand.Read(h[:]); err != nil {
		t.Fatal(err)
	}
	return &h
}

func randomTxIDHex(t *testing.T) string {
	t.Helper()
	return randomHash(t).String()
}

// fundWallet inserts a completed genesis action owning one spendable,
// wallet-derived output of the given value, the way a prior internalized
// or self-sent payment would appear in storage.
func fundWallet(t *testing.T, w *Wallet, satoshis int64) *walletdb.Output {
	t.Helper()

	genesisTxID := randomTxIDHex(t)
	genesis, err := w.db.InsertAction(&walletdb.Action{
		UserID:     w.userID,
		TxID:       genesisTxID,
		Status:     walletdb.StatusCompleted,
		Reference:  "genesis-" + genesisTxID,
		CreatedAt:  w.clk.Now().Unix(),
	})
	if err != nil {
		t.Fatal(err)
	}

	keyID := "genesis-output"
	lockingScript, err := brc29.LockingScriptForSelf(w.masterPriv, changeProtocol, keyID)
	if err != nil {
		t.Fatal(err)
	}

	basket, err := w.db.FindOrCreateDefaultBasketAndLabel(w.userID)
	if err != nil {
		t.Fatal(err)
	}

	out, err := w.db.InsertOutput(&walletdb.Output{
		UserID:          w.userID,
		ActionID:        genesis.ActionID,
		Vout:            0,
		Satoshis:        satoshis,
		LockingScript:   lockingScript,
		Spendable:       true,
		BasketID:        basket.BasketID,
		Type:            "P2PKH",
		CreatedAt:       w.clk.Now().Unix(),
		DerivationKeyID: keyID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

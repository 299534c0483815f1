// Package wallet is the Wallet Orchestrator: it implements the BRC-100
// method surface by wiring together key derivation, the BRC-29 payment
// template, the algorithmic core in walletmethods, the Storage Provider,
// and the Services Facade. It is the only package aware of both wire and
// storage concerns; lower layers never import each other.
package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/clock"

	"github.com/bsv-blockchain/brc100-wallet-core/keyderiver"
	"github.com/bsv-blockchain/brc100-wallet-core/walletdb"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
	"github.com/bsv-blockchain/brc100-wallet-core/walletmethods"
	"github.com/bsv-blockchain/brc100-wallet-core/walletservices"
)

// log is the package-level leveled logger, silent until a caller wires a
// backend via UseLogger, following the teacher's per-package log.go
// convention.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the orchestrator.
func UseLogger(logger btclog.Logger) { log = logger }

// changeProtocol is the fixed BRC-42 protocol context the wallet uses to
// derive P2PKH keys for its own change and basket-internal outputs. A
// single change output's keyID is the creating action's reference, split
// change outputs use that reference plus a "-change-<i>" suffix, and
// internalized outputs use the keyID the caller supplied.
var changeProtocol = keyderiver.Protocol{SecurityLevel: 2, Name: "wallet payment"}

// Wallet is the orchestrator instance: one master key, one storage
// connection, one Services Facade.
type Wallet struct {
	db          *walletdb.DB
	services    *walletservices.Facade
	masterPriv  *btcec.PrivateKey
	network     Network
	clk         clock.Clock
	userID      uint64
	identityKey string
}

// New constructs a Wallet, opening its storage and resolving (creating on
// first run) the user row and default basket/label for masterPriv's
// identity key, per §4.H's "resolve user by identity key (create on first
// call)".
func New(cfg Config, masterPriv *btcec.PrivateKey, clk clock.Clock) (*Wallet, error) {
	db, err := walletdb.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	identityKey := hex.EncodeToString(masterPriv.PubKey().SerializeCompressed())
	user, err := db.FindUserByIdentityKey(identityKey)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = db.InsertUser(identityKey, cfg.DBPath)
		if err != nil {
			return nil, err
		}
	}
	if _, err := db.FindOrCreateDefaultBasketAndLabel(user.UserID); err != nil {
		return nil, err
	}

	w := &Wallet{
		db:          db,
		services:    walletservices.New(cfg.Services),
		masterPriv:  masterPriv,
		network:     cfg.network(),
		clk:         clk,
		userID:      user.UserID,
		identityKey: identityKey,
	}
	return w, nil
}

// GetNetwork implements getNetwork.
func (w *Wallet) GetNetwork(ctx context.Context) (Network, error) {
	return w.network, nil
}

// GetHeight implements getHeight, delegating to the Services Facade's
// chain tip lookup.
func (w *Wallet) GetHeight(ctx context.Context) (uint32, error) {
	return w.services.GetHeight(ctx)
}

// WaitForAuthentication implements waitForAuthentication: the base
// wallet is always authenticated, so it returns immediately. Managers
// built on top of this core override the behavior for challenge-response
// authentication flows.
func (w *Wallet) WaitForAuthentication(ctx context.Context) (bool, error) {
	return true, nil
}

// newReference generates a fresh, unpredictable draft-action reference
// token, used both as the reservation key and as the BRC-42 keyID for
// the action's change output.
func newReference() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", walleterr.Newf(walleterr.InvalidArgument, "wallet: failed to generate reference: %v", err)
	}
	return hex.EncodeToString(b), nil
}

// facadeBroadcaster adapts *walletservices.Facade to walletmethods.Broadcaster.
type facadeBroadcaster struct{ facade *walletservices.Facade }

func (a facadeBroadcaster) PostBeef(ctx context.Context, beefBytes []byte) (*walletmethods.BroadcastOutcome, error) {
	res, err := a.facade.PostBeef(ctx, beefBytes)
	if err != nil {
		return nil, err
	}
	return &walletmethods.BroadcastOutcome{Accepted: res.Accepted, TxID: res.TxID, Message: res.Message}, nil
}

// facadeStatusChecker adapts *walletservices.Facade to walletmethods.StatusChecker.
type facadeStatusChecker struct{ facade *walletservices.Facade }

func (a facadeStatusChecker) GetTransactionStatus(ctx context.Context, txid string) (bool, error) {
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return false, walleterr.Newf(walleterr.InvalidArgument, "wallet: invalid txid %q: %v", txid, err)
	}
	status, err := a.facade.GetTransactionStatus(ctx, *hash)
	if err != nil {
		return false, err
	}
	return status.Status == "confirmed" || status.Status == "mined", nil
}

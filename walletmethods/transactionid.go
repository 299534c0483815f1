package walletmethods

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// TransactionID computes a transaction's id: the double-SHA256 of its
// raw serialized bytes, byte-reversed and hex-encoded, per property
// P-TX-ID. Ported from original_source's
// utils/transaction_id.transaction_id, usable independently of a full
// action record. chainhash.Hash.String() performs the conventional
// byte-reversal for display, so this is exactly reverse(double_sha256(raw)).hex().
func TransactionID(rawTx []byte) string {
	return chainhash.DoubleHashH(rawTx).String()
}

// Package txsize estimates the serialized byte size of a non-segwit,
// BSV-style transaction from its input/output script sizes, following
// the same "named constant built from its wire-format layout" style as
// the teacher's lnwallet.size.go, adapted from BIP-141 weight accounting
// (which this chain does not use) to plain serialized-byte counting.
package txsize

import "github.com/bsv-blockchain/brc100-wallet-core/walleterr"

const (
	// TxFixedOverhead is the version (4 bytes) plus lockTime (4 bytes)
	// fields present in every transaction regardless of input/output
	// count.
	TxFixedOverhead = 4 + 4

	// InputFixedOverhead is an input's fixed-width fields: previous
	// txid (32 bytes) + previous vout (4 bytes) + sequence (4 bytes).
	InputFixedOverhead = 32 + 4 + 4

	// OutputFixedOverhead is an output's fixed-width fields: value (8
	// bytes).
	OutputFixedOverhead = 8

	// P2PKHUnlockingScriptSize is the typical scriptSig size for a
	// BRC-29 P2PKH spend: push<sig||sighashtype> (1 + up to 72 + 1) +
	// push<pubkey> (1 + 33), using the conservative DER signature upper
	// bound.
	P2PKHUnlockingScriptSize = 1 + 72 + 1 + 1 + 33

	// P2PKHLockingScriptSize is OP_DUP OP_HASH160 <20-byte hash>
	// OP_EQUALVERIFY OP_CHECKSIG.
	P2PKHLockingScriptSize = 1 + 1 + 1 + 20 + 1 + 1
)

// VarIntLen mirrors wire.VarIntLen for the transaction_size formula; kept
// local so this package has no dependency on the wire codec package.
func VarIntLen(n uint64) int {
	switch {
	case n <= 252:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// InputSize is the serialized size of a transaction input whose
// unlocking script is unlockingScriptSize bytes long: the fixed fields
// plus the varint-length-prefixed script.
func InputSize(unlockingScriptSize int) (int, error) {
	if unlockingScriptSize < 0 {
		return 0, walleterr.New(walleterr.TransactionSize, "txsize: negative unlocking script size")
	}
	return InputFixedOverhead + unlockingScriptSize + VarIntLen(uint64(unlockingScriptSize)), nil
}

// OutputSize is the serialized size of a transaction output whose
// locking script is lockingScriptSize bytes long.
func OutputSize(lockingScriptSize int) (int, error) {
	if lockingScriptSize < 0 {
		return 0, walleterr.New(walleterr.TransactionSize, "txsize: negative locking script size")
	}
	return OutputFixedOverhead + lockingScriptSize + VarIntLen(uint64(lockingScriptSize)), nil
}

// TransactionSize is the total serialized size of a transaction given
// the per-input and per-output script sizes: version + lockTime +
// varint(inputCount) + Σinputs + varint(outputCount) + Σoutputs.
func TransactionSize(inputScriptSizes, outputScriptSizes []int) (int, error) {
	total := TxFixedOverhead
	total += VarIntLen(uint64(len(inputScriptSizes)))
	for _, s := range inputScriptSizes {
		sz, err := InputSize(s)
		if err != nil {
			return 0, err
		}
		total += sz
	}
	total += VarIntLen(uint64(len(outputScriptSizes)))
	for _, s := range outputScriptSizes {
		sz, err := OutputSize(s)
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

// EstimateFee returns ceil(size * feeRateSatPerByte).
func EstimateFee(size int, feeRateSatPerByte float64) int64 {
	fee := float64(size) * feeRateSatPerByte
	whole := int64(fee)
	if fee > float64(whole) {
		whole++
	}
	return whole
}

// Package beef assembles BEEF (Background Evaluation Extended Format)
// and AtomicBEEF binaries: a raw transaction plus the merkle paths (BUMPs)
// needed to validate it, optionally anchored to a single txid.
//
// The binary layout mirrors the little-endian, varint-length-prefixed
// conventions of the wire package, reusing btcsuite/btcd/wire for raw
// transaction (de)serialization the way the teacher's lnwallet reuses
// wire.MsgTx rather than hand-rolling transaction parsing.
package beef

import (
	"bytes"
	"context"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	wallwire "github.com/bsv-blockchain/brc100-wallet-core/wire"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// BEEFVersion2 is the 4-byte little-endian version prefix identifying a
// BEEF-v2 binary (as opposed to the legacy v1 layout this package does
// not produce).
const BEEFVersion2 uint32 = 0xEFBEF202

// AtomicBEEFMarker is the 4-byte prefix distinguishing an AtomicBEEF
// binary (the marker, then a 32-byte txid anchor, then the BEEF bytes)
// from a plain BEEF binary.
const AtomicBEEFMarker uint32 = 0x01010101

// MerkleLeaf is one step of a merkle path from a transaction's hash to a
// block's merkle root: the sibling hash at this level and whether the
// subject hash is the left or right child.
type MerkleLeaf struct {
	Hash       chainhash.Hash
	SubjectIsRight bool
}

// MerklePath ("BUMP") proves a transaction's inclusion in a block at
// BlockHeight via a sequence of sibling hashes from leaf to root.
type MerklePath struct {
	BlockHeight uint32
	Path        []MerkleLeaf
}

// ComputeRoot recomputes the merkle root implied by the path for the
// given transaction hash.
func (m *MerklePath) ComputeRoot(txid chainhash.Hash) chainhash.Hash {
	cur := txid
	for _, leaf := range m.Path {
		var concat [64]byte
		if leaf.SubjectIsRight {
			copy(concat[0:32], leaf.Hash[:])
			copy(concat[32:64], cur[:])
		} else {
			copy(concat[0:32], cur[:])
			copy(concat[32:64], leaf.Hash[:])
		}
		cur = chainhash.DoubleHashH(concat[:])
	}
	return cur
}

// Bundle is an assembled BEEF: one raw transaction and its (optional)
// merkle path.
type Bundle struct {
	RawTx      []byte
	MerklePath *MerklePath // nil when the transaction is unmined.
}

// TxID returns the transaction's id (double-SHA256 of the serialized
// transaction, byte-reversed) per property P-TX-ID.
func (b *Bundle) TxID() (chainhash.Hash, error) {
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(b.RawTx)); err != nil {
		return chainhash.Hash{}, walleterr.Newf(walleterr.InvalidArgument, "beef: invalid raw transaction: %v", err)
	}
	return tx.TxHash(), nil
}

// Assemble builds a BEEF-v2 binary carrying exactly one transaction and,
// if present, its merkle path. A nil merklePath is a valid, unmined BEEF;
// callers of AtomicBEEF-derived data must tolerate its absence.
func Assemble(rawTx []byte, merklePath *MerklePath) ([]byte, error) {
	var buf bytes.Buffer
	if err := wallwire.WriteUint32LE(&buf, BEEFVersion2); err != nil {
		return nil, err
	}

	if merklePath == nil {
		if err := wallwire.WriteVarInt(&buf, 0); err != nil {
			return nil, err
		}
	} else {
		if err := wallwire.WriteVarInt(&buf, 1); err != nil {
			return nil, err
		}
		if err := writeMerklePath(&buf, merklePath); err != nil {
			return nil, err
		}
	}

	if err := wallwire.WriteVarInt(&buf, 1); err != nil {
		return nil, err
	}
	hasBump := byte(0)
	if merklePath != nil {
		hasBump = 1
	}
	if err := wallwire.WriteVarBytes(&buf, rawTx); err != nil {
		return nil, err
	}
	if _, err := buf.Write([]byte{hasBump}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// AssembleAtomic prefixes a BEEF binary for rawTx with AtomicBEEFMarker
// and the transaction's txid anchor; nothing is appended after the BEEF
// bytes. The result is an AtomicBEEF: a BEEF that asserts a single specific
// transaction is the one of interest, for transport contexts that need
// an unambiguous subject txid.
func AssembleAtomic(rawTx []byte, merklePath *MerklePath) ([]byte, error) {
	beefBytes, err := Assemble(rawTx, merklePath)
	if err != nil {
		return nil, err
	}

	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return nil, walleterr.Newf(walleterr.InvalidArgument, "beef: invalid raw transaction: %v", err)
	}
	txid := tx.TxHash()

	var buf bytes.Buffer
	if err := wallwire.WriteUint32LE(&buf, AtomicBEEFMarker); err != nil {
		return nil, err
	}
	if _, err := buf.Write(txid[:]); err != nil {
		return nil, err
	}
	if _, err := buf.Write(beefBytes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMerklePath(w io.Writer, m *MerklePath) error {
	if err := wallwire.WriteUint32LE(w, m.BlockHeight); err != nil {
		return err
	}
	if err := wallwire.WriteVarInt(w, uint64(len(m.Path))); err != nil {
		return err
	}
	for _, leaf := range m.Path {
		side := byte(0)
		if leaf.SubjectIsRight {
			side = 1
		}
		if _, err := w.Write(leaf.Hash[:]); err != nil {
			return err
		}
		if _, err := w.Write([]byte{side}); err != nil {
			return err
		}
	}
	return nil
}

func readMerklePath(r io.Reader) (*MerklePath, error) {
	height, err := wallwire.ReadUint32LE(r)
	if err != nil {
		return nil, err
	}
	n, err := wallwire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	path := make([]MerkleLeaf, n)
	for i := range path {
		var hashBuf [32]byte
		if _, err := io.ReadFull(r, hashBuf[:]); err != nil {
			return nil, err
		}
		var side [1]byte
		if _, err := io.ReadFull(r, side[:]); err != nil {
			return nil, err
		}
		path[i] = MerkleLeaf{Hash: chainhash.Hash(hashBuf), SubjectIsRight: side[0] == 1}
	}
	return &MerklePath{BlockHeight: height, Path: path}, nil
}

// Disassemble parses a BEEF-v2 binary produced by Assemble back into its
// bundle.
func Disassemble(data []byte) (*Bundle, error) {
	r := bytes.NewReader(data)
	version, err := wallwire.ReadUint32LE(r)
	if err != nil {
		return nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}
	if version != BEEFVersion2 {
		return nil, walleterr.Newf(walleterr.MalformedFrame, "beef: unsupported version %#x", version)
	}

	nBumps, err := wallwire.ReadVarInt(r)
	if err != nil {
		return nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}
	var path *MerklePath
	if nBumps > 0 {
		path, err = readMerklePath(r)
		if err != nil {
			return nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
		}
	}

	nTx, err := wallwire.ReadVarInt(r)
	if err != nil || nTx != 1 {
		return nil, walleterr.New(walleterr.MalformedFrame, "beef: expected exactly one transaction")
	}
	rawTx, err := wallwire.ReadVarBytes(r, 0)
	if err != nil {
		return nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}
	var hasBump [1]byte
	if _, err := io.ReadFull(r, hasBump[:]); err != nil {
		return nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}

	return &Bundle{RawTx: rawTx, MerklePath: path}, nil
}

// RawTxFetcher and MerklePathFetcher are the narrow subset of the
// Services Facade that AssembleForTxID depends on, grounded on
// original_source's atomic_beef_utils.build_atomic_beef_for_txid: fetch
// the raw transaction (with retry, the caller's responsibility), then
// best-effort fetch the merkle path, then assemble.
type RawTxFetcher interface {
	GetRawTx(ctx context.Context, txid chainhash.Hash) ([]byte, error)
}

type MerklePathFetcher interface {
	GetMerklePathForTransaction(ctx context.Context, txid chainhash.Hash) (*MerklePath, error)
}

// Services is the combined dependency AssembleForTxID needs from the
// Services Facade.
type Services interface {
	RawTxFetcher
	MerklePathFetcher
}

// AssembleForTxID fetches a transaction's raw bytes and, best-effort, its
// merkle path from services, then assembles an AtomicBEEF. A failure to
// find the merkle path is not an error: the unmined case is represented
// by a nil MerklePath, per 4.D's contract.
func AssembleForTxID(ctx context.Context, services Services, txid chainhash.Hash) ([]byte, error) {
	rawTx, err := services.GetRawTx(ctx, txid)
	if err != nil {
		return nil, err
	}

	path, err := tryFetchMerklePath(ctx, services, txid)
	if err != nil {
		path = nil
	}

	return AssembleAtomic(rawTx, path)
}

func tryFetchMerklePath(ctx context.Context, services MerklePathFetcher, txid chainhash.Hash) (*MerklePath, error) {
	return services.GetMerklePathForTransaction(ctx, txid)
}

// DisassembleAtomic parses an AtomicBEEF binary, returning the subject
// txid and the underlying bundle.
func DisassembleAtomic(data []byte) (chainhash.Hash, *Bundle, error) {
	r := bytes.NewReader(data)
	marker, err := wallwire.ReadUint32LE(r)
	if err != nil {
		return chainhash.Hash{}, nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}
	if marker != AtomicBEEFMarker {
		return chainhash.Hash{}, nil, walleterr.New(walleterr.MalformedFrame, "beef: not an AtomicBEEF binary")
	}
	var txid [32]byte
	if _, err := io.ReadFull(r, txid[:]); err != nil {
		return chainhash.Hash{}, nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return chainhash.Hash{}, nil, walleterr.Newf(walleterr.MalformedFrame, "beef: %v", err)
	}
	bundle, err := Disassemble(rest)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}
	return chainhash.Hash(txid), bundle, nil
}

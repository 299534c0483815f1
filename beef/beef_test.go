package beef

import (
	"bytes"
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

func sampleRawTx(t *testing.T) []byte {
	t.Helper()
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0},
		SignatureScript:  []byte{0x00},
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{0x76, 0xa9, 0x14}})
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAssembleDisassembleRoundTripNoMerklePath(t *testing.T) {
	rawTx := sampleRawTx(t)

	encoded, err := Assemble(rawTx, nil)
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := Disassemble(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bundle.RawTx, rawTx) {
		t.Error("round-tripped raw tx differs")
	}
	if bundle.MerklePath != nil {
		t.Error("expected nil merkle path for unmined bundle")
	}
}

func TestAssembleDisassembleRoundTripWithMerklePath(t *testing.T) {
	rawTx := sampleRawTx(t)
	path := &MerklePath{
		BlockHeight: 850000,
		Path: []MerkleLeaf{
			{Hash: chainhash.Hash{0xaa}, SubjectIsRight: false},
			{Hash: chainhash.Hash{0xbb}, SubjectIsRight: true},
		},
	}

	encoded, err := Assemble(rawTx, path)
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := Disassemble(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if bundle.MerklePath == nil || bundle.MerklePath.BlockHeight != 850000 {
		t.Fatal("merkle path did not round-trip")
	}
	if len(bundle.MerklePath.Path) != 2 {
		t.Fatalf("expected 2 path elements, got %d", len(bundle.MerklePath.Path))
	}
}

func TestAtomicBEEFRoundTrip(t *testing.T) {
	rawTx := sampleRawTx(t)

	atomic, err := AssembleAtomic(rawTx, nil)
	if err != nil {
		t.Fatal(err)
	}
	txid, bundle, err := DisassembleAtomic(atomic)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bundle.RawTx, rawTx) {
		t.Error("round-tripped raw tx differs")
	}

	wantTxID, err := bundle.TxID()
	if err != nil {
		t.Fatal(err)
	}
	if txid != wantTxID {
		t.Error("anchored txid does not match the bundle's own txid")
	}
}

func TestMerklePathComputeRoot(t *testing.T) {
	leafHash := chainhash.Hash{0x01}
	sibling := chainhash.Hash{0x02}
	path := &MerklePath{
		BlockHeight: 1,
		Path:        []MerkleLeaf{{Hash: sibling, SubjectIsRight: false}},
	}
	root := path.ComputeRoot(leafHash)

	var concat [64]byte
	copy(concat[0:32], leafHash[:])
	copy(concat[32:64], sibling[:])
	want := chainhash.DoubleHashH(concat[:])

	if root != want {
		t.Error("ComputeRoot did not match manual double-SHA256 computation")
	}
}

type fakeServices struct {
	rawTx []byte
	path  *MerklePath
	err   error
}

func (f *fakeServices) GetRawTx(ctx context.Context, txid chainhash.Hash) ([]byte, error) {
	return f.rawTx, nil
}

func (f *fakeServices) GetMerklePathForTransaction(ctx context.Context, txid chainhash.Hash) (*MerklePath, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.path, nil
}

func TestAssembleForTxIDToleratesMissingMerklePath(t *testing.T) {
	rawTx := sampleRawTx(t)
	svc := &fakeServices{rawTx: rawTx, err: context.DeadlineExceeded}

	atomic, err := AssembleForTxID(context.Background(), svc, chainhash.Hash{})
	if err != nil {
		t.Fatal(err)
	}
	_, bundle, err := DisassembleAtomic(atomic)
	if err != nil {
		t.Fatal(err)
	}
	if bundle.MerklePath != nil {
		t.Error("expected nil merkle path when the service call fails")
	}
}

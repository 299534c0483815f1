package txsize

import "testing"

func TestVarIntLenBoundaries(t *testing.T) {
	cases := []struct {
		n    uint64
		want int
	}{
		{252, 1},
		{253, 3},
		{65535, 3},
		{65536, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, c := range cases {
		if got := VarIntLen(c.n); got != c.want {
			t.Errorf("VarIntLen(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestInputOutputSizeFormula(t *testing.T) {
	in, err := InputSize(P2PKHUnlockingScriptSize)
	if err != nil {
		t.Fatal(err)
	}
	want := 40 + P2PKHUnlockingScriptSize + VarIntLen(uint64(P2PKHUnlockingScriptSize))
	if in != want {
		t.Errorf("InputSize = %d, want %d", in, want)
	}

	out, err := OutputSize(P2PKHLockingScriptSize)
	if err != nil {
		t.Fatal(err)
	}
	wantOut := 8 + P2PKHLockingScriptSize + VarIntLen(uint64(P2PKHLockingScriptSize))
	if out != wantOut {
		t.Errorf("OutputSize = %d, want %d", out, wantOut)
	}
}

func TestTransactionSizeOneInOneOut(t *testing.T) {
	size, err := TransactionSize([]int{P2PKHUnlockingScriptSize}, []int{P2PKHLockingScriptSize})
	if err != nil {
		t.Fatal(err)
	}
	in, _ := InputSize(P2PKHUnlockingScriptSize)
	out, _ := OutputSize(P2PKHLockingScriptSize)
	want := TxFixedOverhead + VarIntLen(1) + in + VarIntLen(1) + out
	if size != want {
		t.Errorf("TransactionSize = %d, want %d", size, want)
	}
}

func TestNegativeScriptSizeRejected(t *testing.T) {
	if _, err := InputSize(-1); err == nil {
		t.Error("expected TransactionSize error for negative script size")
	}
}

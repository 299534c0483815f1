package wire

import (
	"bytes"
	"io"
	"testing"
)

func TestVarIntLenBoundaries(t *testing.T) {
	cases := []struct {
		n    uint64
		want int
	}{
		{0, 1},
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

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 252, 253, 65535, 65536, 0xffffffff, 0x100000000, 1 << 40}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		if buf.Len() != VarIntLen(v) {
			t.Errorf("encoded length %d != VarIntLen %d for %d", buf.Len(), VarIntLen(v), v)
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d got %d", v, got)
		}
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []byte("secret message")
	if err := WriteVarBytes(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadVarBytes(&buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOptionalRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOptional(&buf, true, func(w io.Writer) error {
		_, err := w.Write([]byte{0x42})
		return err
	}); err != nil {
		t.Fatal(err)
	}
	present, err := ReadOptional(&buf, func(r io.Reader) error {
		var b [1]byte
		_, err := io.ReadFull(r, b[:])
		if err == nil && b[0] != 0x42 {
			t.Errorf("got %x, want 0x42", b[0])
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Error("expected present")
	}

	buf.Reset()
	if err := WriteOptional(&buf, false, func(w io.Writer) error {
		t.Fatal("should not be called")
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	present, err = ReadOptional(&buf, func(r io.Reader) error {
		t.Fatal("should not be called")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Error("expected absent")
	}
}

func TestReadVarBytesRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarBytes(&buf, make([]byte, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadVarBytes(&buf, 10); err == nil {
		t.Fatal("expected error for oversize var bytes")
	}
}

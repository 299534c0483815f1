// Package wire implements the small set of binary encoding primitives
// shared by the ABI wire codec and the storage provider's on-disk row
// format: little-endian fixed-width integers, varint-length-prefixed byte
// strings, and one-byte presence flags for optional fields.
//
// The varint encoding follows the BRC-100 binary spec: values up to 252
// encode as a single byte; 253..65535 as 0xfd followed by a 2-byte LE
// length; 65536..2^32-1 as 0xfe followed by a 4-byte LE length; larger
// values as 0xff followed by an 8-byte LE length.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	varint16Prefix = 0xfd
	varint32Prefix = 0xfe
	varint64Prefix = 0xff
)

// VarIntLen returns the number of bytes needed to varint-encode n.
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

// WriteVarInt writes n using the BRC-100 varint encoding.
func WriteVarInt(w io.Writer, n uint64) error {
	switch {
	case n <= 252:
		_, err := w.Write([]byte{byte(n)})
		return err
	case n <= 0xffff:
		var buf [3]byte
		buf[0] = varint16Prefix
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		_, err := w.Write(buf[:])
		return err
	case n <= 0xffffffff:
		var buf [5]byte
		buf[0] = varint32Prefix
		binary.LittleEndian.PutUint32(buf[1:], uint32(n))
		_, err := w.Write(buf[:])
		return err
	default:
		var buf [9]byte
		buf[0] = varint64Prefix
		binary.LittleEndian.PutUint64(buf[1:], n)
		_, err := w.Write(buf[:])
		return err
	}
}

// ReadVarInt reads a BRC-100 varint-encoded value.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	switch prefix[0] {
	case varint16Prefix:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	case varint32Prefix:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	case varint64Prefix:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	default:
		return uint64(prefix[0]), nil
	}
}

// WriteUint32LE writes a little-endian uint32 (version, lockTime fields).
func WriteUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32LE reads a little-endian uint32.
func ReadUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64LE writes a little-endian uint64 (satoshi amounts).
func WriteUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64LE reads a little-endian uint64.
func ReadUint64LE(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteVarBytes writes a varint-length-prefixed byte slice.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a varint-length-prefixed byte slice. maxLen bounds
// the allowed length to guard against a corrupt/truncated frame claiming
// an unreasonable size; pass 0 for no bound.
func ReadVarBytes(r io.Reader, maxLen uint64) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if maxLen > 0 && n > maxLen {
		return nil, fmt.Errorf("wire: var bytes length %d exceeds max %d", n, maxLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarString writes a varint-length-prefixed UTF-8 string.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

// ReadVarString reads a varint-length-prefixed UTF-8 string.
func ReadVarString(r io.Reader, maxLen uint64) (string, error) {
	b, err := ReadVarBytes(r, maxLen)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteOptional writes a one-byte presence flag followed by write(w) when
// present is true. When present is false only the flag byte is written.
func WriteOptional(w io.Writer, present bool, write func(io.Writer) error) error {
	flag := byte(0)
	if present {
		flag = 1
	}
	if _, err := w.Write([]byte{flag}); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return write(w)
}

// ReadOptional reads a one-byte presence flag and, if set, invokes read(r).
// It reports whether the value was present.
func ReadOptional(r io.Reader, read func(io.Reader) error) (bool, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return false, err
	}
	if flag[0] == 0 {
		return false, nil
	}
	return true, read(r)
}

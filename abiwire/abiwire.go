// Package abiwire implements the BRC-100 binary ABI: a deterministic
// byte encoding for every wallet method's request and response, separate
// from the JSON surface.
//
// The framing and dispatch-by-type-byte shape is grounded directly on the
// teacher's lnwire package (lnwire/message.go's Message interface and
// makeEmptyMessage dispatch switch, lnwire/single_funding_request.go's
// per-field Encode/Decode convention): a one-byte method id prefixes the
// request payload; responses carry no method byte because the caller
// already knows which method it called.
package abiwire

import (
	"bytes"
	"io"
	"math"

	wallwire "github.com/bsv-blockchain/brc100-wallet-core/wire"
	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

// MethodID identifies a BRC-100 method on the wire.
type MethodID byte

const (
	MethodGetHeight MethodID = iota + 1
	MethodGetNetwork
	MethodGetPublicKey
	MethodEncrypt
	MethodDecrypt
	MethodCreateHmac
	MethodVerifyHmac
	MethodCreateSignature
	MethodVerifySignature
	MethodCreateAction
	MethodSignAction
	MethodAbortAction
	MethodListActions
	MethodListOutputs
	MethodInternalizeAction
	MethodRelinquishOutput
)

// Request is a decoded request payload that knows its own method id and
// how to re-encode itself; the ABI equivalent of lnwire.Message.
type Request interface {
	MethodID() MethodID
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

// Response is the response-side counterpart of Request; responses carry
// no method byte on the wire, matching the response-frame rule in §6.
type Response interface {
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

func makeEmptyRequest(id MethodID) (Request, error) {
	switch id {
	case MethodGetHeight:
		return &GetHeightRequest{}, nil
	case MethodGetNetwork:
		return &GetNetworkRequest{}, nil
	case MethodGetPublicKey:
		return &GetPublicKeyRequest{}, nil
	case MethodEncrypt:
		return &EncryptRequest{}, nil
	case MethodDecrypt:
		return &DecryptRequest{}, nil
	case MethodCreateHmac:
		return &CreateHmacRequest{}, nil
	case MethodVerifyHmac:
		return &VerifyHmacRequest{}, nil
	case MethodCreateSignature:
		return &CreateSignatureRequest{}, nil
	case MethodVerifySignature:
		return &VerifySignatureRequest{}, nil
	case MethodListActions:
		return &ListActionsRequest{}, nil
	case MethodListOutputs:
		return &ListOutputsRequest{}, nil
	case MethodAbortAction:
		return &AbortActionRequest{}, nil
	case MethodRelinquishOutput:
		return &RelinquishOutputRequest{}, nil
	case MethodCreateAction:
		return &CreateActionRequest{}, nil
	case MethodSignAction:
		return &SignActionRequest{}, nil
	case MethodInternalizeAction:
		return &InternalizeActionRequest{}, nil
	default:
		return nil, walleterr.Newf(walleterr.UnknownMethod, "abiwire: unknown method id %d", id)
	}
}

// EncodeRequestFrame writes `methodByte || argsPayload` for req.
func EncodeRequestFrame(req Request) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write([]byte{byte(req.MethodID())}); err != nil {
		return nil, err
	}
	if err := req.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequestFrame reads a method byte and dispatches to the matching
// Request's Decode. A truncated frame (no method byte, or a payload that
// underflows the method's Decode) yields MalformedFrame; an unrecognized
// method byte yields UnknownMethod.
func DecodeRequestFrame(frame []byte) (Request, error) {
	if len(frame) == 0 {
		return nil, walleterr.New(walleterr.MalformedFrame, "abiwire: empty frame")
	}
	req, err := makeEmptyRequest(MethodID(frame[0]))
	if err != nil {
		return nil, err
	}
	if err := req.Decode(bytes.NewReader(frame[1:])); err != nil {
		return nil, walleterr.Newf(walleterr.MalformedFrame, "abiwire: %v", err)
	}
	return req, nil
}

// EncodeResponse serializes resp with no method-byte prefix.
func EncodeResponse(resp Response) ([]byte, error) {
	var buf bytes.Buffer
	if err := resp.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeResponse deserializes payload into resp, whose concrete type the
// caller already knows from the method it invoked.
func DecodeResponse(payload []byte, resp Response) error {
	if err := resp.Decode(bytes.NewReader(payload)); err != nil {
		return walleterr.Newf(walleterr.MalformedFrame, "abiwire: %v", err)
	}
	return nil
}

// wire aliases: lowercase local names for the wallwire primitives, so
// method files call writeVarBytes, readUint32LE and the rest without a
// package prefix.
var (
	writeVarBytes  = wallwire.WriteVarBytes
	readVarBytes   = wallwire.ReadVarBytes
	writeVarString = wallwire.WriteVarString
	readVarString  = wallwire.ReadVarString
	writeUint32LE  = wallwire.WriteUint32LE
	readUint32LE   = wallwire.ReadUint32LE
	writeUint64LE  = wallwire.WriteUint64LE
	readUint64LE   = wallwire.ReadUint64LE
	writeOptional  = wallwire.WriteOptional
	readOptional   = wallwire.ReadOptional
	writeVarInt    = wallwire.WriteVarInt
	readVarInt     = wallwire.ReadVarInt
)

const maxFieldLen = 1 << 24

// writeFloat64LE/readFloat64LE encode a float64 (used only for
// FeeRateSatPerByte) as its IEEE-754 bit pattern over WriteUint64LE,
// since the wire package has no native float primitive and none of the
// pack's codecs carry one either.
func writeFloat64LE(w io.Writer, f float64) error {
	return writeUint64LE(w, math.Float64bits(f))
}

func readFloat64LE(r io.Reader) (float64, error) {
	bits, err := readUint64LE(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

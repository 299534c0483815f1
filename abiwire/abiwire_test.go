package abiwire

import "testing"

func ctx() KeyContext {
	return KeyContext{SecurityLevel: 2, ProtocolName: "ctx", KeyID: "default", Counterparty: "self"}
}

func TestGetHeightRoundTrip(t *testing.T) {
	req := &GetHeightRequest{}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.MethodID() != MethodGetHeight {
		t.Errorf("got method %d, want %d", decoded.MethodID(), MethodGetHeight)
	}

	resp := &GetHeightResponse{Height: 850000}
	payload, err := EncodeResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out GetHeightResponse
	if err := DecodeResponse(payload, &out); err != nil {
		t.Fatal(err)
	}
	if out.Height != 850000 {
		t.Errorf("got height %d, want 850000", out.Height)
	}
}

func TestGetNetworkMainnetEncoding(t *testing.T) {
	resp := &GetNetworkResponse{Network: NetworkMain}
	payload, err := EncodeResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 2 || payload[0] != 0x00 || payload[1] != 0x00 {
		t.Errorf("got %x, want 0x00 0x00", payload)
	}
}

func TestEncryptRequestRoundTrip(t *testing.T) {
	req := &EncryptRequest{Context: ctx(), Plaintext: []byte("secret message")}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := decoded.(*EncryptRequest)
	if !ok {
		t.Fatalf("unexpected type %T", decoded)
	}
	if string(got.Plaintext) != "secret message" {
		t.Errorf("got plaintext %q", got.Plaintext)
	}
	if got.Context != req.Context {
		t.Errorf("context mismatch: got %+v, want %+v", got.Context, req.Context)
	}
}

func TestVerifyHmacRoundTrip(t *testing.T) {
	req := &VerifyHmacRequest{Context: ctx(), Data: []byte("auth data"), Hmac: []byte{1, 2, 3, 4}}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(*VerifyHmacRequest)
	if string(got.Data) != "auth data" {
		t.Errorf("got data %q", got.Data)
	}

	resp := &VerifyHmacResponse{Valid: false}
	payload, err := EncodeResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out VerifyHmacResponse
	if err := DecodeResponse(payload, &out); err != nil {
		t.Fatal(err)
	}
	if out.Valid {
		t.Error("expected valid=false to round trip")
	}
}

func TestCreateSignatureOptionalHashField(t *testing.T) {
	withHash := &CreateSignatureRequest{Context: ctx(), Data: []byte("x"), HashToDirectlySign: []byte{0xaa, 0xbb}}
	frame, err := EncodeRequestFrame(withHash)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(*CreateSignatureRequest)
	if len(got.HashToDirectlySign) != 2 {
		t.Errorf("expected hash to round trip, got %v", got.HashToDirectlySign)
	}

	withoutHash := &CreateSignatureRequest{Context: ctx(), Data: []byte("x")}
	frame2, err := EncodeRequestFrame(withoutHash)
	if err != nil {
		t.Fatal(err)
	}
	decoded2, err := DecodeRequestFrame(frame2)
	if err != nil {
		t.Fatal(err)
	}
	got2 := decoded2.(*CreateSignatureRequest)
	if got2.HashToDirectlySign != nil {
		t.Errorf("expected absent hash to decode as nil, got %v", got2.HashToDirectlySign)
	}
}

func TestListActionsRoundTrip(t *testing.T) {
	req := &ListActionsRequest{Labels: []string{"a", "b"}, Limit: 10, Offset: 5, IncludeLabels: true}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(*ListActionsRequest)
	if len(got.Labels) != 2 || got.Labels[0] != "a" || got.Labels[1] != "b" {
		t.Errorf("labels mismatch: %v", got.Labels)
	}
	if got.Limit != 10 || got.Offset != 5 || !got.IncludeLabels {
		t.Errorf("fields mismatch: %+v", got)
	}
}

func TestCreateActionRoundTrip(t *testing.T) {
	req := &CreateActionRequest{
		Description: "pay someone",
		Outputs: []ActionOutput{
			{Satoshis: 1000, LockingScript: []byte{0x51}, OutputDescription: "payment"},
			{Satoshis: 500, LockingScript: []byte{0x52}},
		},
		Labels:                 []string{"invoice"},
		NoSend:                 true,
		AcceptDelayedBroadcast: false,
		FeeRateSatPerByte:      0.5,
	}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(*CreateActionRequest)
	if len(got.Outputs) != 2 || got.Outputs[0].Satoshis != 1000 || got.Outputs[1].Satoshis != 500 {
		t.Errorf("outputs mismatch: %+v", got.Outputs)
	}
	if got.FeeRateSatPerByte != 0.5 || !got.NoSend || got.AcceptDelayedBroadcast {
		t.Errorf("fields mismatch: %+v", got)
	}

	resp := &CreateActionResponse{Reference: "abc123"}
	payload, err := EncodeResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out CreateActionResponse
	if err := DecodeResponse(payload, &out); err != nil {
		t.Fatal(err)
	}
	if out.Reference != "abc123" {
		t.Errorf("got reference %q, want abc123", out.Reference)
	}
}

func TestSignActionRoundTrip(t *testing.T) {
	req := &SignActionRequest{Reference: "ref-1"}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.(*SignActionRequest).Reference != "ref-1" {
		t.Errorf("reference mismatch: %+v", decoded)
	}

	resp := &SignActionResponse{TxID: "deadbeef", RawTx: []byte{0x01, 0x02, 0x03}}
	payload, err := EncodeResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out SignActionResponse
	if err := DecodeResponse(payload, &out); err != nil {
		t.Fatal(err)
	}
	if out.TxID != "deadbeef" || len(out.RawTx) != 3 {
		t.Errorf("got %+v", out)
	}
}

func TestInternalizeActionRoundTrip(t *testing.T) {
	req := &InternalizeActionRequest{
		RawTx: []byte{0xde, 0xad},
		Outputs: []InternalizeOutput{
			{Vout: 0, Basket: "default", KeyID: "k1", Counterparty: "self"},
			{Vout: 1, Basket: "payments", KeyID: "k2"},
		},
		Description: "incoming payment",
	}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRequestFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(*InternalizeActionRequest)
	if len(got.Outputs) != 2 || got.Outputs[1].Basket != "payments" {
		t.Errorf("outputs mismatch: %+v", got.Outputs)
	}

	resp := &InternalizeActionResponse{Accepted: true}
	payload, err := EncodeResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	var out InternalizeActionResponse
	if err := DecodeResponse(payload, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Accepted {
		t.Error("expected accepted=true to round trip")
	}
}

func TestUnknownMethodByte(t *testing.T) {
	_, err := DecodeRequestFrame([]byte{0xff})
	if err == nil {
		t.Fatal("expected UnknownMethod error")
	}
}

func TestTruncatedFrameIsMalformed(t *testing.T) {
	req := &EncryptRequest{Context: ctx(), Plaintext: []byte("secret message")}
	frame, err := EncodeRequestFrame(req)
	if err != nil {
		t.Fatal(err)
	}
	truncated := frame[:len(frame)-3]
	if _, err := DecodeRequestFrame(truncated); err == nil {
		t.Fatal("expected MalformedFrame error for truncated frame")
	}
}

func TestEmptyFrameIsMalformed(t *testing.T) {
	if _, err := DecodeRequestFrame(nil); err == nil {
		t.Fatal("expected MalformedFrame error for empty frame")
	}
}

package abiwire

import "io"

// KeyContext is the (protocolID, keyID, counterparty) triple carried by
// every crypto-op and key-derivation method, encoded once and embedded
// in each request that needs it.
type KeyContext struct {
	SecurityLevel byte
	ProtocolName  string
	KeyID         string
	Counterparty  string
}

func (k *KeyContext) encode(w io.Writer) error {
	if _, err := w.Write([]byte{k.SecurityLevel}); err != nil {
		return err
	}
	if err := writeVarString(w, k.ProtocolName); err != nil {
		return err
	}
	if err := writeVarString(w, k.KeyID); err != nil {
		return err
	}
	return writeVarString(w, k.Counterparty)
}

func (k *KeyContext) decode(r io.Reader) error {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	k.SecurityLevel = b[0]

	var err error
	if k.ProtocolName, err = readVarString(r, maxFieldLen); err != nil {
		return err
	}
	if k.KeyID, err = readVarString(r, maxFieldLen); err != nil {
		return err
	}
	if k.Counterparty, err = readVarString(r, maxFieldLen); err != nil {
		return err
	}
	return nil
}

// --- getHeight ---

type GetHeightRequest struct{}

func (r *GetHeightRequest) MethodID() MethodID       { return MethodGetHeight }
func (r *GetHeightRequest) Encode(w io.Writer) error { return nil }
func (r *GetHeightRequest) Decode(r2 io.Reader) error { return nil }

type GetHeightResponse struct {
	Height uint32
}

func (r *GetHeightResponse) Encode(w io.Writer) error { return writeUint32LE(w, r.Height) }
func (r *GetHeightResponse) Decode(rd io.Reader) error {
	h, err := readUint32LE(rd)
	if err != nil {
		return err
	}
	r.Height = h
	return nil
}

// --- getNetwork ---

type GetNetworkRequest struct{}

func (r *GetNetworkRequest) MethodID() MethodID        { return MethodGetNetwork }
func (r *GetNetworkRequest) Encode(w io.Writer) error  { return nil }
func (r *GetNetworkRequest) Decode(r2 io.Reader) error { return nil }

// NetworkMain/NetworkTest are the two single-byte network codes; the
// concrete scenario in §8 fixes getNetwork's ABI encoding on mainnet to
// 0x00 0x00 — a two-byte response, MethodID-free, network code then a
// reserved zero byte for forward compatibility.
const (
	NetworkMain byte = 0x00
	NetworkTest byte = 0x01
)

type GetNetworkResponse struct {
	Network byte
}

func (r *GetNetworkResponse) Encode(w io.Writer) error {
	_, err := w.Write([]byte{r.Network, 0x00})
	return err
}

func (r *GetNetworkResponse) Decode(rd io.Reader) error {
	var b [2]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return err
	}
	r.Network = b[0]
	return nil
}

// --- getPublicKey ---

type GetPublicKeyRequest struct {
	Context     KeyContext
	ForIdentity bool
}

func (r *GetPublicKeyRequest) MethodID() MethodID { return MethodGetPublicKey }
func (r *GetPublicKeyRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	flag := byte(0)
	if r.ForIdentity {
		flag = 1
	}
	_, err := w.Write([]byte{flag})
	return err
}
func (r *GetPublicKeyRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return err
	}
	r.ForIdentity = b[0] == 1
	return nil
}

type GetPublicKeyResponse struct {
	PublicKey []byte
}

func (r *GetPublicKeyResponse) Encode(w io.Writer) error { return writeVarBytes(w, r.PublicKey) }
func (r *GetPublicKeyResponse) Decode(rd io.Reader) error {
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.PublicKey = b
	return nil
}

// --- encrypt / decrypt ---

type EncryptRequest struct {
	Context   KeyContext
	Plaintext []byte
}

func (r *EncryptRequest) MethodID() MethodID { return MethodEncrypt }
func (r *EncryptRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	return writeVarBytes(w, r.Plaintext)
}
func (r *EncryptRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Plaintext = b
	return nil
}

type EncryptResponse struct {
	Ciphertext []byte
}

func (r *EncryptResponse) Encode(w io.Writer) error { return writeVarBytes(w, r.Ciphertext) }
func (r *EncryptResponse) Decode(rd io.Reader) error {
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Ciphertext = b
	return nil
}

type DecryptRequest struct {
	Context    KeyContext
	Ciphertext []byte
}

func (r *DecryptRequest) MethodID() MethodID { return MethodDecrypt }
func (r *DecryptRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	return writeVarBytes(w, r.Ciphertext)
}
func (r *DecryptRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Ciphertext = b
	return nil
}

type DecryptResponse struct {
	Plaintext []byte
}

func (r *DecryptResponse) Encode(w io.Writer) error { return writeVarBytes(w, r.Plaintext) }
func (r *DecryptResponse) Decode(rd io.Reader) error {
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Plaintext = b
	return nil
}

// --- createHmac / verifyHmac ---

type CreateHmacRequest struct {
	Context KeyContext
	Data    []byte
}

func (r *CreateHmacRequest) MethodID() MethodID { return MethodCreateHmac }
func (r *CreateHmacRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	return writeVarBytes(w, r.Data)
}
func (r *CreateHmacRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Data = b
	return nil
}

type CreateHmacResponse struct {
	Hmac []byte
}

func (r *CreateHmacResponse) Encode(w io.Writer) error { return writeVarBytes(w, r.Hmac) }
func (r *CreateHmacResponse) Decode(rd io.Reader) error {
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Hmac = b
	return nil
}

type VerifyHmacRequest struct {
	Context KeyContext
	Data    []byte
	Hmac    []byte
}

func (r *VerifyHmacRequest) MethodID() MethodID { return MethodVerifyHmac }
func (r *VerifyHmacRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	if err := writeVarBytes(w, r.Data); err != nil {
		return err
	}
	return writeVarBytes(w, r.Hmac)
}
func (r *VerifyHmacRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	var err error
	if r.Data, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	if r.Hmac, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	return nil
}

type VerifyHmacResponse struct {
	Valid bool
}

func (r *VerifyHmacResponse) Encode(w io.Writer) error {
	b := byte(0)
	if r.Valid {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}
func (r *VerifyHmacResponse) Decode(rd io.Reader) error {
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return err
	}
	r.Valid = b[0] == 1
	return nil
}

// --- createSignature / verifySignature ---

type CreateSignatureRequest struct {
	Context             KeyContext
	Data                []byte
	HashToDirectlySign  []byte // optional; mutually exclusive with Data in practice
}

func (r *CreateSignatureRequest) MethodID() MethodID { return MethodCreateSignature }
func (r *CreateSignatureRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	if err := writeVarBytes(w, r.Data); err != nil {
		return err
	}
	return writeOptional(w, len(r.HashToDirectlySign) > 0, func(w io.Writer) error {
		return writeVarBytes(w, r.HashToDirectlySign)
	})
}
func (r *CreateSignatureRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	var err error
	if r.Data, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	_, err = readOptional(rd, func(rr io.Reader) error {
		b, err := readVarBytes(rr, maxFieldLen)
		if err != nil {
			return err
		}
		r.HashToDirectlySign = b
		return nil
	})
	return err
}

type CreateSignatureResponse struct {
	Signature []byte
}

func (r *CreateSignatureResponse) Encode(w io.Writer) error { return writeVarBytes(w, r.Signature) }
func (r *CreateSignatureResponse) Decode(rd io.Reader) error {
	b, err := readVarBytes(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Signature = b
	return nil
}

type VerifySignatureRequest struct {
	Context            KeyContext
	Data               []byte
	HashToDirectlySign []byte
	Signature          []byte
}

func (r *VerifySignatureRequest) MethodID() MethodID { return MethodVerifySignature }
func (r *VerifySignatureRequest) Encode(w io.Writer) error {
	if err := r.Context.encode(w); err != nil {
		return err
	}
	if err := writeVarBytes(w, r.Data); err != nil {
		return err
	}
	if err := writeOptional(w, len(r.HashToDirectlySign) > 0, func(w io.Writer) error {
		return writeVarBytes(w, r.HashToDirectlySign)
	}); err != nil {
		return err
	}
	return writeVarBytes(w, r.Signature)
}
func (r *VerifySignatureRequest) Decode(rd io.Reader) error {
	if err := r.Context.decode(rd); err != nil {
		return err
	}
	var err error
	if r.Data, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	if _, err = readOptional(rd, func(rr io.Reader) error {
		b, err := readVarBytes(rr, maxFieldLen)
		if err != nil {
			return err
		}
		r.HashToDirectlySign = b
		return nil
	}); err != nil {
		return err
	}
	if r.Signature, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	return nil
}

type VerifySignatureResponse struct {
	Valid bool
}

func (r *VerifySignatureResponse) Encode(w io.Writer) error {
	b := byte(0)
	if r.Valid {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}
func (r *VerifySignatureResponse) Decode(rd io.Reader) error {
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return err
	}
	r.Valid = b[0] == 1
	return nil
}

// --- listActions / listOutputs ---

type ListActionsRequest struct {
	Labels        []string
	Limit, Offset uint32
	IncludeLabels bool
}

func (r *ListActionsRequest) MethodID() MethodID { return MethodListActions }
func (r *ListActionsRequest) Encode(w io.Writer) error {
	if err := writeVarInt(w, uint64(len(r.Labels))); err != nil {
		return err
	}
	for _, l := range r.Labels {
		if err := writeVarString(w, l); err != nil {
			return err
		}
	}
	if err := writeUint32LE(w, r.Limit); err != nil {
		return err
	}
	if err := writeUint32LE(w, r.Offset); err != nil {
		return err
	}
	flag := byte(0)
	if r.IncludeLabels {
		flag = 1
	}
	_, err := w.Write([]byte{flag})
	return err
}
func (r *ListActionsRequest) Decode(rd io.Reader) error {
	n, err := readVarInt(rd)
	if err != nil {
		return err
	}
	r.Labels = make([]string, n)
	for i := range r.Labels {
		if r.Labels[i], err = readVarString(rd, maxFieldLen); err != nil {
			return err
		}
	}
	if r.Limit, err = readUint32LE(rd); err != nil {
		return err
	}
	if r.Offset, err = readUint32LE(rd); err != nil {
		return err
	}
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return err
	}
	r.IncludeLabels = b[0] == 1
	return nil
}

type ListOutputsRequest struct {
	Basket        string
	Limit, Offset uint32
}

func (r *ListOutputsRequest) MethodID() MethodID { return MethodListOutputs }
func (r *ListOutputsRequest) Encode(w io.Writer) error {
	if err := writeVarString(w, r.Basket); err != nil {
		return err
	}
	if err := writeUint32LE(w, r.Limit); err != nil {
		return err
	}
	return writeUint32LE(w, r.Offset)
}
func (r *ListOutputsRequest) Decode(rd io.Reader) error {
	var err error
	if r.Basket, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	if r.Limit, err = readUint32LE(rd); err != nil {
		return err
	}
	if r.Offset, err = readUint32LE(rd); err != nil {
		return err
	}
	return nil
}

// --- abortAction / relinquishOutput ---

type AbortActionRequest struct {
	Reference string
}

func (r *AbortActionRequest) MethodID() MethodID          { return MethodAbortAction }
func (r *AbortActionRequest) Encode(w io.Writer) error    { return writeVarString(w, r.Reference) }
func (r *AbortActionRequest) Decode(rd io.Reader) error {
	ref, err := readVarString(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Reference = ref
	return nil
}

type RelinquishOutputRequest struct {
	Basket string
	Output string // "txid.vout"
}

func (r *RelinquishOutputRequest) MethodID() MethodID { return MethodRelinquishOutput }
func (r *RelinquishOutputRequest) Encode(w io.Writer) error {
	if err := writeVarString(w, r.Basket); err != nil {
		return err
	}
	return writeVarString(w, r.Output)
}
func (r *RelinquishOutputRequest) Decode(rd io.Reader) error {
	var err error
	if r.Basket, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	if r.Output, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	return nil
}

// --- createAction / signAction / internalizeAction ---

// ActionOutput is one requested output of a createAction call.
type ActionOutput struct {
	Satoshis          int64
	LockingScript     []byte
	OutputDescription string
}

func (o *ActionOutput) encode(w io.Writer) error {
	if err := writeUint64LE(w, uint64(o.Satoshis)); err != nil {
		return err
	}
	if err := writeVarBytes(w, o.LockingScript); err != nil {
		return err
	}
	return writeVarString(w, o.OutputDescription)
}

func (o *ActionOutput) decode(rd io.Reader) error {
	sats, err := readUint64LE(rd)
	if err != nil {
		return err
	}
	o.Satoshis = int64(sats)
	if o.LockingScript, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	o.OutputDescription, err = readVarString(rd, maxFieldLen)
	return err
}

type CreateActionRequest struct {
	Description            string
	Outputs                []ActionOutput
	Labels                 []string
	NoSend                 bool
	AcceptDelayedBroadcast bool
	FeeRateSatPerByte      float64
}

func (r *CreateActionRequest) MethodID() MethodID { return MethodCreateAction }
func (r *CreateActionRequest) Encode(w io.Writer) error {
	if err := writeVarString(w, r.Description); err != nil {
		return err
	}
	if err := writeVarInt(w, uint64(len(r.Outputs))); err != nil {
		return err
	}
	for i := range r.Outputs {
		if err := r.Outputs[i].encode(w); err != nil {
			return err
		}
	}
	if err := writeVarInt(w, uint64(len(r.Labels))); err != nil {
		return err
	}
	for _, l := range r.Labels {
		if err := writeVarString(w, l); err != nil {
			return err
		}
	}
	flags := byte(0)
	if r.NoSend {
		flags |= 1
	}
	if r.AcceptDelayedBroadcast {
		flags |= 2
	}
	if _, err := w.Write([]byte{flags}); err != nil {
		return err
	}
	return writeFloat64LE(w, r.FeeRateSatPerByte)
}
func (r *CreateActionRequest) Decode(rd io.Reader) error {
	var err error
	if r.Description, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	n, err := readVarInt(rd)
	if err != nil {
		return err
	}
	r.Outputs = make([]ActionOutput, n)
	for i := range r.Outputs {
		if err := r.Outputs[i].decode(rd); err != nil {
			return err
		}
	}
	nLabels, err := readVarInt(rd)
	if err != nil {
		return err
	}
	r.Labels = make([]string, nLabels)
	for i := range r.Labels {
		if r.Labels[i], err = readVarString(rd, maxFieldLen); err != nil {
			return err
		}
	}
	var flags [1]byte
	if _, err := io.ReadFull(rd, flags[:]); err != nil {
		return err
	}
	r.NoSend = flags[0]&1 != 0
	r.AcceptDelayedBroadcast = flags[0]&2 != 0
	r.FeeRateSatPerByte, err = readFloat64LE(rd)
	return err
}

type CreateActionResponse struct {
	Reference string
}

func (r *CreateActionResponse) Encode(w io.Writer) error { return writeVarString(w, r.Reference) }
func (r *CreateActionResponse) Decode(rd io.Reader) error {
	ref, err := readVarString(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Reference = ref
	return nil
}

type SignActionRequest struct {
	Reference string
}

func (r *SignActionRequest) MethodID() MethodID       { return MethodSignAction }
func (r *SignActionRequest) Encode(w io.Writer) error { return writeVarString(w, r.Reference) }
func (r *SignActionRequest) Decode(rd io.Reader) error {
	ref, err := readVarString(rd, maxFieldLen)
	if err != nil {
		return err
	}
	r.Reference = ref
	return nil
}

type SignActionResponse struct {
	TxID  string
	RawTx []byte
}

func (r *SignActionResponse) Encode(w io.Writer) error {
	if err := writeVarString(w, r.TxID); err != nil {
		return err
	}
	return writeVarBytes(w, r.RawTx)
}
func (r *SignActionResponse) Decode(rd io.Reader) error {
	var err error
	if r.TxID, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	r.RawTx, err = readVarBytes(rd, maxFieldLen)
	return err
}

// InternalizeOutput describes one output of the externally-supplied
// transaction internalizeAction is asked to adopt.
type InternalizeOutput struct {
	Vout         uint32
	Basket       string
	KeyID        string
	Counterparty string
}

func (o *InternalizeOutput) encode(w io.Writer) error {
	if err := writeUint32LE(w, o.Vout); err != nil {
		return err
	}
	if err := writeVarString(w, o.Basket); err != nil {
		return err
	}
	if err := writeVarString(w, o.KeyID); err != nil {
		return err
	}
	return writeVarString(w, o.Counterparty)
}

func (o *InternalizeOutput) decode(rd io.Reader) error {
	vout, err := readUint32LE(rd)
	if err != nil {
		return err
	}
	o.Vout = vout
	if o.Basket, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	if o.KeyID, err = readVarString(rd, maxFieldLen); err != nil {
		return err
	}
	o.Counterparty, err = readVarString(rd, maxFieldLen)
	return err
}

type InternalizeActionRequest struct {
	RawTx       []byte
	Outputs     []InternalizeOutput
	Description string
}

func (r *InternalizeActionRequest) MethodID() MethodID { return MethodInternalizeAction }
func (r *InternalizeActionRequest) Encode(w io.Writer) error {
	if err := writeVarBytes(w, r.RawTx); err != nil {
		return err
	}
	if err := writeVarInt(w, uint64(len(r.Outputs))); err != nil {
		return err
	}
	for i := range r.Outputs {
		if err := r.Outputs[i].encode(w); err != nil {
			return err
		}
	}
	return writeVarString(w, r.Description)
}
func (r *InternalizeActionRequest) Decode(rd io.Reader) error {
	var err error
	if r.RawTx, err = readVarBytes(rd, maxFieldLen); err != nil {
		return err
	}
	n, err := readVarInt(rd)
	if err != nil {
		return err
	}
	r.Outputs = make([]InternalizeOutput, n)
	for i := range r.Outputs {
		if err := r.Outputs[i].decode(rd); err != nil {
			return err
		}
	}
	r.Description, err = readVarString(rd, maxFieldLen)
	return err
}

type InternalizeActionResponse struct {
	Accepted bool
}

func (r *InternalizeActionResponse) Encode(w io.Writer) error {
	b := byte(0)
	if r.Accepted {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}
func (r *InternalizeActionResponse) Decode(rd io.Reader) error {
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return err
	}
	r.Accepted = b[0] == 1
	return nil
}

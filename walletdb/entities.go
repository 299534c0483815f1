package walletdb

import (
	"bytes"
	"io"

	wallwire "github.com/bsv-blockchain/brc100-wallet-core/wire"
)

// ActionStatus is the Action.status enum from §3/§4.G's state machine.
type ActionStatus byte

const (
	StatusUnsigned ActionStatus = iota
	StatusUnprocessed
	StatusSigned
	StatusSending
	StatusUnproven
	StatusCompleted
	StatusFailed
	StatusNoSend
)

var statusNames = map[ActionStatus]string{
	StatusUnsigned:    "unsigned",
	StatusUnprocessed: "unprocessed",
	StatusSigned:      "signed",
	StatusSending:     "sending",
	StatusUnproven:    "unproven",
	StatusCompleted:   "completed",
	StatusFailed:      "failed",
	StatusNoSend:      "nosend",
}

func (s ActionStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// User is (userId, identityKey, activeStorage).
type User struct {
	UserID        uint64
	IdentityKey   string
	ActiveStorage string
}

func (u *User) encode(w io.Writer) error {
	if err := wallwire.WriteUint64LE(w, u.UserID); err != nil {
		return err
	}
	if err := wallwire.WriteVarString(w, u.IdentityKey); err != nil {
		return err
	}
	return wallwire.WriteVarString(w, u.ActiveStorage)
}

func (u *User) decode(r io.Reader) error {
	var err error
	if u.UserID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if u.IdentityKey, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	u.ActiveStorage, err = wallwire.ReadVarString(r, 0)
	return err
}

// Action is a transaction record per §3.
type Action struct {
	ActionID    uint64
	UserID      uint64
	TxID        string
	RawTx       []byte
	InputBEEF   []byte
	Status      ActionStatus
	Satoshis    int64
	Description string
	Version     uint32
	LockTime    uint32
	IsOutgoing  bool
	Reference   string
	CreatedAt   int64
	Labels      []string
	// InputOutputIDs is the ordered list of reserved output ids this
	// action's unsigned skeleton spends, recorded at createAction time
	// (in tx.TxIn order) so signAction can look up each input's
	// locking script and derivation key without a txid/vout reverse index.
	InputOutputIDs []uint64
	// ChangeVouts is the vout index of each change output generateChange
	// produced (§4.G step 5 may split change into several), empty if the
	// remainder was folded into the fee. ChangeKeyIDs is the parallel
	// derivation keyID used for each one, so signAction can record the
	// right DerivationKeyID on the resulting walletdb.Output.
	ChangeVouts  []uint32
	ChangeKeyIDs []string
	NoSend       bool
}

func (a *Action) encode(w io.Writer) error {
	fields := []func() error{
		func() error { return wallwire.WriteUint64LE(w, a.ActionID) },
		func() error { return wallwire.WriteUint64LE(w, a.UserID) },
		func() error { return wallwire.WriteVarString(w, a.TxID) },
		func() error { return wallwire.WriteVarBytes(w, a.RawTx) },
		func() error { return wallwire.WriteVarBytes(w, a.InputBEEF) },
		func() error { _, err := w.Write([]byte{byte(a.Status)}); return err },
		func() error { return wallwire.WriteUint64LE(w, uint64(a.Satoshis)) },
		func() error { return wallwire.WriteVarString(w, a.Description) },
		func() error { return wallwire.WriteUint32LE(w, a.Version) },
		func() error { return wallwire.WriteUint32LE(w, a.LockTime) },
		func() error { _, err := w.Write(boolByte(a.IsOutgoing)); return err },
		func() error { return wallwire.WriteVarString(w, a.Reference) },
		func() error { return wallwire.WriteUint64LE(w, uint64(a.CreatedAt)) },
		func() error {
			if err := wallwire.WriteVarInt(w, uint64(len(a.Labels))); err != nil {
				return err
			}
			for _, l := range a.Labels {
				if err := wallwire.WriteVarString(w, l); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if err := wallwire.WriteVarInt(w, uint64(len(a.InputOutputIDs))); err != nil {
				return err
			}
			for _, id := range a.InputOutputIDs {
				if err := wallwire.WriteUint64LE(w, id); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if err := wallwire.WriteVarInt(w, uint64(len(a.ChangeVouts))); err != nil {
				return err
			}
			for _, v := range a.ChangeVouts {
				if err := wallwire.WriteUint32LE(w, v); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if err := wallwire.WriteVarInt(w, uint64(len(a.ChangeKeyIDs))); err != nil {
				return err
			}
			for _, k := range a.ChangeKeyIDs {
				if err := wallwire.WriteVarString(w, k); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { _, err := w.Write(boolByte(a.NoSend)); return err },
	}
	for _, f := range fields {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Action) decode(r io.Reader) error {
	var err error
	if a.ActionID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if a.UserID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if a.TxID, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	if a.RawTx, err = wallwire.ReadVarBytes(r, 0); err != nil {
		return err
	}
	if a.InputBEEF, err = wallwire.ReadVarBytes(r, 0); err != nil {
		return err
	}
	var statusByte [1]byte
	if _, err = io.ReadFull(r, statusByte[:]); err != nil {
		return err
	}
	a.Status = ActionStatus(statusByte[0])
	sat, err := wallwire.ReadUint64LE(r)
	if err != nil {
		return err
	}
	a.Satoshis = int64(sat)
	if a.Description, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	if a.Version, err = wallwire.ReadUint32LE(r); err != nil {
		return err
	}
	if a.LockTime, err = wallwire.ReadUint32LE(r); err != nil {
		return err
	}
	var outgoingByte [1]byte
	if _, err = io.ReadFull(r, outgoingByte[:]); err != nil {
		return err
	}
	a.IsOutgoing = outgoingByte[0] == 1
	if a.Reference, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	created, err := wallwire.ReadUint64LE(r)
	if err != nil {
		return err
	}
	a.CreatedAt = int64(created)
	n, err := wallwire.ReadVarInt(r)
	if err != nil {
		return err
	}
	a.Labels = make([]string, n)
	for i := range a.Labels {
		if a.Labels[i], err = wallwire.ReadVarString(r, 0); err != nil {
			return err
		}
	}
	nInputs, err := wallwire.ReadVarInt(r)
	if err != nil {
		return err
	}
	a.InputOutputIDs = make([]uint64, nInputs)
	for i := range a.InputOutputIDs {
		if a.InputOutputIDs[i], err = wallwire.ReadUint64LE(r); err != nil {
			return err
		}
	}
	nChangeVouts, err := wallwire.ReadVarInt(r)
	if err != nil {
		return err
	}
	a.ChangeVouts = make([]uint32, nChangeVouts)
	for i := range a.ChangeVouts {
		if a.ChangeVouts[i], err = wallwire.ReadUint32LE(r); err != nil {
			return err
		}
	}
	nChangeKeyIDs, err := wallwire.ReadVarInt(r)
	if err != nil {
		return err
	}
	a.ChangeKeyIDs = make([]string, nChangeKeyIDs)
	for i := range a.ChangeKeyIDs {
		if a.ChangeKeyIDs[i], err = wallwire.ReadVarString(r, 0); err != nil {
			return err
		}
	}
	var noSendByte [1]byte
	if _, err = io.ReadFull(r, noSendByte[:]); err != nil {
		return err
	}
	a.NoSend = noSendByte[0] == 1
	return nil
}

// Output is a UTXO record per §3.
type Output struct {
	OutputID        uint64
	UserID          uint64
	ActionID        uint64
	Vout            uint32
	Satoshis        int64
	LockingScript   []byte
	Spendable       bool
	Change          bool
	BasketID        uint64
	Type            string
	Purpose         string
	SpentByActionID uint64 // 0 means null
	CreatedAt       int64
	// DerivationKeyID is the BRC-42 keyID (under the wallet's fixed
	// "wallet payment" protocol, counterparty "self") used to lock this
	// output: the creating action's reference for change outputs, or
	// the caller-supplied keyID for outputs adopted via internalizeAction.
	DerivationKeyID string
}

func (o *Output) encode(w io.Writer) error {
	fields := []func() error{
		func() error { return wallwire.WriteUint64LE(w, o.OutputID) },
		func() error { return wallwire.WriteUint64LE(w, o.UserID) },
		func() error { return wallwire.WriteUint64LE(w, o.ActionID) },
		func() error { return wallwire.WriteUint32LE(w, o.Vout) },
		func() error { return wallwire.WriteUint64LE(w, uint64(o.Satoshis)) },
		func() error { return wallwire.WriteVarBytes(w, o.LockingScript) },
		func() error { _, err := w.Write(boolByte(o.Spendable)); return err },
		func() error { _, err := w.Write(boolByte(o.Change)); return err },
		func() error { return wallwire.WriteUint64LE(w, o.BasketID) },
		func() error { return wallwire.WriteVarString(w, o.Type) },
		func() error { return wallwire.WriteVarString(w, o.Purpose) },
		func() error { return wallwire.WriteUint64LE(w, o.SpentByActionID) },
		func() error { return wallwire.WriteUint64LE(w, uint64(o.CreatedAt)) },
		func() error { return wallwire.WriteVarString(w, o.DerivationKeyID) },
	}
	for _, f := range fields {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func (o *Output) decode(r io.Reader) error {
	var err error
	if o.OutputID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if o.UserID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if o.ActionID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if o.Vout, err = wallwire.ReadUint32LE(r); err != nil {
		return err
	}
	sat, err := wallwire.ReadUint64LE(r)
	if err != nil {
		return err
	}
	o.Satoshis = int64(sat)
	if o.LockingScript, err = wallwire.ReadVarBytes(r, 0); err != nil {
		return err
	}
	var spendableByte, changeByte [1]byte
	if _, err = io.ReadFull(r, spendableByte[:]); err != nil {
		return err
	}
	o.Spendable = spendableByte[0] == 1
	if _, err = io.ReadFull(r, changeByte[:]); err != nil {
		return err
	}
	o.Change = changeByte[0] == 1
	if o.BasketID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if o.Type, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	if o.Purpose, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	if o.SpentByActionID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	created, err := wallwire.ReadUint64LE(r)
	if err != nil {
		return err
	}
	o.CreatedAt = int64(created)
	o.DerivationKeyID, err = wallwire.ReadVarString(r, 0)
	return err
}

// Basket is a named output grouping per §3.
type Basket struct {
	BasketID                uint64
	UserID                  uint64
	Name                    string
	NumberOfDesiredUTXOs    uint32
	MinimumDesiredUTXOValue int64
}

func (b *Basket) encode(w io.Writer) error {
	if err := wallwire.WriteUint64LE(w, b.BasketID); err != nil {
		return err
	}
	if err := wallwire.WriteUint64LE(w, b.UserID); err != nil {
		return err
	}
	if err := wallwire.WriteVarString(w, b.Name); err != nil {
		return err
	}
	if err := wallwire.WriteUint32LE(w, b.NumberOfDesiredUTXOs); err != nil {
		return err
	}
	return wallwire.WriteUint64LE(w, uint64(b.MinimumDesiredUTXOValue))
}

func (b *Basket) decode(r io.Reader) error {
	var err error
	if b.BasketID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if b.UserID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if b.Name, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	if b.NumberOfDesiredUTXOs, err = wallwire.ReadUint32LE(r); err != nil {
		return err
	}
	v, err := wallwire.ReadUint64LE(r)
	if err != nil {
		return err
	}
	b.MinimumDesiredUTXOValue = int64(v)
	return nil
}

// BroadcastRequest is a queued/in-flight broadcast per §3/§4.G.
type BroadcastRequest struct {
	ReqID      uint64
	ActionID   uint64
	RawTx      []byte
	BumpRefs   []string
	Attempts   uint32
	LastStatus string
	LastError  string
}

func (b *BroadcastRequest) encode(w io.Writer) error {
	if err := wallwire.WriteUint64LE(w, b.ReqID); err != nil {
		return err
	}
	if err := wallwire.WriteUint64LE(w, b.ActionID); err != nil {
		return err
	}
	if err := wallwire.WriteVarBytes(w, b.RawTx); err != nil {
		return err
	}
	if err := wallwire.WriteVarInt(w, uint64(len(b.BumpRefs))); err != nil {
		return err
	}
	for _, ref := range b.BumpRefs {
		if err := wallwire.WriteVarString(w, ref); err != nil {
			return err
		}
	}
	if err := wallwire.WriteUint32LE(w, b.Attempts); err != nil {
		return err
	}
	if err := wallwire.WriteVarString(w, b.LastStatus); err != nil {
		return err
	}
	return wallwire.WriteVarString(w, b.LastError)
}

func (b *BroadcastRequest) decode(r io.Reader) error {
	var err error
	if b.ReqID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if b.ActionID, err = wallwire.ReadUint64LE(r); err != nil {
		return err
	}
	if b.RawTx, err = wallwire.ReadVarBytes(r, 0); err != nil {
		return err
	}
	n, err := wallwire.ReadVarInt(r)
	if err != nil {
		return err
	}
	b.BumpRefs = make([]string, n)
	for i := range b.BumpRefs {
		if b.BumpRefs[i], err = wallwire.ReadVarString(r, 0); err != nil {
			return err
		}
	}
	if b.Attempts, err = wallwire.ReadUint32LE(r); err != nil {
		return err
	}
	if b.LastStatus, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	b.LastError, err = wallwire.ReadVarString(r, 0)
	return err
}

// ProvenTx records a confirmed merkle path for a txid.
type ProvenTx struct {
	TxID        string
	BlockHeight uint32
	MerklePath  []byte // an encoded beef.MerklePath; opaque here to avoid an import cycle.
}

func (p *ProvenTx) encode(w io.Writer) error {
	if err := wallwire.WriteVarString(w, p.TxID); err != nil {
		return err
	}
	if err := wallwire.WriteUint32LE(w, p.BlockHeight); err != nil {
		return err
	}
	return wallwire.WriteVarBytes(w, p.MerklePath)
}

func (p *ProvenTx) decode(r io.Reader) error {
	var err error
	if p.TxID, err = wallwire.ReadVarString(r, 0); err != nil {
		return err
	}
	if p.BlockHeight, err = wallwire.ReadUint32LE(r); err != nil {
		return err
	}
	p.MerklePath, err = wallwire.ReadVarBytes(r, 0)
	return err
}

func encodeToBytes(enc func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFromBytes(b []byte, dec func(io.Reader) error) error {
	return dec(bytes.NewReader(b))
}

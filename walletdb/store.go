package walletdb

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/bsv-blockchain/brc100-wallet-core/walleterr"
)

func nextID(tx *bolt.Tx, bucket []byte) (uint64, error) {
	b := tx.Bucket(bucket)
	return b.NextSequence()
}

// InsertUser creates a new user row keyed by a fresh userID, indexed by
// identityKey for FindUserByIdentityKey.
func (db *DB) InsertUser(identityKey, activeStorage string) (*User, error) {
	var u User
	err := db.Update(func(tx *bolt.Tx) error {
		id, err := nextID(tx, bucketUsers)
		if err != nil {
			return err
		}
		u = User{UserID: id, IdentityKey: identityKey, ActiveStorage: activeStorage}
		data, err := encodeToBytes(u.encode)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsers).Put(idKey(id), data); err != nil {
			return err
		}
		return tx.Bucket(bucketUsersByIdentity).Put(stringBytes(identityKey), idKey(id))
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByIdentityKey looks up a user by identity key, returning nil
// (no error) if absent.
func (db *DB) FindUserByIdentityKey(identityKey string) (*User, error) {
	var u *User
	err := db.View(func(tx *bolt.Tx) error {
		idBytes := tx.Bucket(bucketUsersByIdentity).Get(stringBytes(identityKey))
		if idBytes == nil {
			return nil
		}
		data := tx.Bucket(bucketUsers).Get(idBytes)
		if data == nil {
			return nil
		}
		var found User
		if err := decodeFromBytes(data, found.decode); err != nil {
			return err
		}
		u = &found
		return nil
	})
	return u, err
}

// FindOrCreateDefaultBasketAndLabel returns the user's "default" basket,
// creating the basket row on first call, per §3's "the 'default' basket
// is auto-created per user on first action." Only the basket is created;
// no label row is written.
func (db *DB) FindOrCreateDefaultBasketAndLabel(userID uint64) (*Basket, error) {
	const defaultName = "default"

	baskets, err := db.FindOutputBaskets(userID, defaultName)
	if err != nil {
		return nil, err
	}
	if len(baskets) > 0 {
		return baskets[0], nil
	}

	var created Basket
	err = db.Update(func(tx *bolt.Tx) error {
		id, err := nextID(tx, bucketBaskets)
		if err != nil {
			return err
		}
		created = Basket{BasketID: id, UserID: userID, Name: defaultName}
		data, err := encodeToBytes(created.encode)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBaskets).Put(idKey(id), data)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindOutputBaskets returns the user's baskets matching name (all
// baskets when name is empty).
func (db *DB) FindOutputBaskets(userID uint64, name string) ([]*Basket, error) {
	var out []*Basket
	err := db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBaskets).ForEach(func(k, v []byte) error {
			var b Basket
			if err := decodeFromBytes(v, b.decode); err != nil {
				return err
			}
			if b.UserID != userID {
				return nil
			}
			if name != "" && b.Name != name {
				return nil
			}
			out = append(out, &b)
			return nil
		})
	})
	return out, err
}

// InsertOutput inserts a new output row and maintains the
// (userId,spendable,satoshis) secondary index.
func (db *DB) InsertOutput(o *Output) (*Output, error) {
	var result Output
	err := db.Update(func(tx *bolt.Tx) error {
		id, err := nextID(tx, bucketOutputs)
		if err != nil {
			return err
		}
		result = *o
		result.OutputID = id
		data, err := encodeToBytes(result.encode)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketOutputs).Put(idKey(id), data); err != nil {
			return err
		}
		return putOutputIndex(tx, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func putOutputIndex(tx *bolt.Tx, o *Output) error {
	key := outputIndexKey(o.UserID, o.Spendable, o.Satoshis, o.OutputID)
	return tx.Bucket(bucketOutputsByUserSpend).Put(key, nil)
}

func delOutputIndex(tx *bolt.Tx, o *Output) error {
	key := outputIndexKey(o.UserID, o.Spendable, o.Satoshis, o.OutputID)
	return tx.Bucket(bucketOutputsByUserSpend).Delete(key)
}

func outputIndexKey(userID uint64, spendable bool, satoshis int64, outputID uint64) []byte {
	key := make([]byte, 0, 8+1+8+8)
	key = append(key, uint64Bytes(userID)...)
	key = append(key, boolByte(spendable)...)
	var satBuf [8]byte
	binary.BigEndian.PutUint64(satBuf[:], uint64(satoshis))
	key = append(key, satBuf[:]...)
	key = append(key, uint64Bytes(outputID)...)
	return key
}

// GetOutput fetches an output by id.
func (db *DB) GetOutput(outputID uint64) (*Output, error) {
	var o *Output
	err := db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketOutputs).Get(idKey(outputID))
		if data == nil {
			return nil
		}
		var found Output
		if err := decodeFromBytes(data, found.decode); err != nil {
			return err
		}
		o = &found
		return nil
	})
	return o, err
}

// SpendableOutputsForUser returns the user's spendable outputs ordered by
// satoshis ascending, the candidate pool §4.G's generateChange selects
// from. Reserved outputs are included; reservations are not checked here.
func (db *DB) SpendableOutputsForUser(userID uint64) ([]*Output, error) {
	var out []*Output
	prefix := append(uint64Bytes(userID), boolByte(true)...)
	err := db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOutputsByUserSpend).Cursor()
		outputsBucket := tx.Bucket(bucketOutputs)
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			outputID := byteOrder.Uint64(k[len(k)-8:])
			data := outputsBucket.Get(idKey(outputID))
			if data == nil {
				continue
			}
			var o Output
			if err := decodeFromBytes(data, o.decode); err != nil {
				return err
			}
			out = append(out, &o)
		}
		return nil
	})
	return out, err
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

// FindOutputsByIDs fetches outputs by id, preserving the order of ids and
// failing if any is missing.
func (db *DB) FindOutputsByIDs(outputIDs []uint64) ([]*Output, error) {
	out := make([]*Output, len(outputIDs))
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOutputs)
		for i, id := range outputIDs {
			data := b.Get(idKey(id))
			if data == nil {
				return walleterr.Newf(walleterr.StorageConflict, "walletdb: output %d no longer exists", id)
			}
			var o Output
			if err := decodeFromBytes(data, o.decode); err != nil {
				return err
			}
			out[i] = &o
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOutput overwrites an output row, re-indexing if spendable or
// satoshis changed.
func (db *DB) UpdateOutput(o *Output) error {
	return db.Update(func(tx *bolt.Tx) error {
		old := tx.Bucket(bucketOutputs).Get(idKey(o.OutputID))
		if old != nil {
			var prev Output
			if err := decodeFromBytes(old, prev.decode); err != nil {
				return err
			}
			if err := delOutputIndex(tx, &prev); err != nil {
				return err
			}
		}
		data, err := encodeToBytes(o.encode)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketOutputs).Put(idKey(o.OutputID), data); err != nil {
			return err
		}
		return putOutputIndex(tx, o)
	})
}

// InsertAction inserts a new action row, indexed by (userId,status) and
// by reference.
func (db *DB) InsertAction(a *Action) (*Action, error) {
	var result Action
	err := db.Update(func(tx *bolt.Tx) error {
		id, err := nextID(tx, bucketActions)
		if err != nil {
			return err
		}
		result = *a
		result.ActionID = id
		data, err := encodeToBytes(result.encode)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketActions).Put(idKey(id), data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketActionsByRef).Put(stringBytes(result.Reference), idKey(id)); err != nil {
			return err
		}
		return putActionIndex(tx, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func putActionIndex(tx *bolt.Tx, a *Action) error {
	return tx.Bucket(bucketActionsByUserStat).Put(actionIndexKey(a.UserID, a.Status, a.CreatedAt, a.ActionID), nil)
}

func delActionIndex(tx *bolt.Tx, a *Action) error {
	return tx.Bucket(bucketActionsByUserStat).Delete(actionIndexKey(a.UserID, a.Status, a.CreatedAt, a.ActionID))
}

func actionIndexKey(userID uint64, status ActionStatus, createdAt int64, actionID uint64) []byte {
	key := make([]byte, 0, 8+1+8+8)
	key = append(key, uint64Bytes(userID)...)
	key = append(key, byte(status))
	var createdBuf [8]byte
	binary.BigEndian.PutUint64(createdBuf[:], uint64(createdAt))
	key = append(key, createdBuf[:]...)
	key = append(key, uint64Bytes(actionID)...)
	return key
}

// GetAction fetches an action by id.
func (db *DB) GetAction(actionID uint64) (*Action, error) {
	var a *Action
	err := db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketActions).Get(idKey(actionID))
		if data == nil {
			return nil
		}
		var found Action
		if err := decodeFromBytes(data, found.decode); err != nil {
			return err
		}
		a = &found
		return nil
	})
	return a, err
}

// GetActionByReference fetches an action by its caller-visible reference
// token.
func (db *DB) GetActionByReference(reference string) (*Action, error) {
	var a *Action
	err := db.View(func(tx *bolt.Tx) error {
		idBytes := tx.Bucket(bucketActionsByRef).Get(stringBytes(reference))
		if idBytes == nil {
			return nil
		}
		data := tx.Bucket(bucketActions).Get(idBytes)
		if data == nil {
			return nil
		}
		var found Action
		if err := decodeFromBytes(data, found.decode); err != nil {
			return err
		}
		a = &found
		return nil
	})
	return a, err
}

// ActionsForUser returns all of the user's actions in insertion order
// (ascending action id); callers that need another order, such as
// listActions' newest-first, sort the slice themselves.
func (db *DB) ActionsForUser(userID uint64) ([]*Action, error) {
	var out []*Action
	err := db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketActions).ForEach(func(k, v []byte) error {
			var a Action
			if err := decodeFromBytes(v, a.decode); err != nil {
				return err
			}
			if a.UserID != userID {
				return nil
			}
			out = append(out, &a)
			return nil
		})
	})
	return out, err
}

// UpdateAction overwrites an action row, re-indexing if status changed.
func (db *DB) UpdateAction(a *Action) error {
	return db.Update(func(tx *bolt.Tx) error {
		old := tx.Bucket(bucketActions).Get(idKey(a.ActionID))
		if old != nil {
			var prev Action
			if err := decodeFromBytes(old, prev.decode); err != nil {
				return err
			}
			if err := delActionIndex(tx, &prev); err != nil {
				return err
			}
		}
		data, err := encodeToBytes(a.encode)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketActions).Put(idKey(a.ActionID), data); err != nil {
			return err
		}
		return putActionIndex(tx, a)
	})
}

// DeleteAction removes an action row and its indexes, used by purgeData.
func (db *DB) DeleteAction(actionID uint64) error {
	return db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketActions).Get(idKey(actionID))
		if data == nil {
			return nil
		}
		var a Action
		if err := decodeFromBytes(data, a.decode); err != nil {
			return err
		}
		if err := delActionIndex(tx, &a); err != nil {
			return err
		}
		if err := tx.Bucket(bucketActionsByRef).Delete(stringBytes(a.Reference)); err != nil {
			return err
		}
		return tx.Bucket(bucketActions).Delete(idKey(actionID))
	})
}

// DeleteOutput removes an output row and its index, used by purgeData.
func (db *DB) DeleteOutput(outputID uint64) error {
	return db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketOutputs).Get(idKey(outputID))
		if data == nil {
			return nil
		}
		var o Output
		if err := decodeFromBytes(data, o.decode); err != nil {
			return err
		}
		if err := delOutputIndex(tx, &o); err != nil {
			return err
		}
		return tx.Bucket(bucketOutputs).Delete(idKey(outputID))
	})
}

// ReserveOutputs atomically marks the given outputs as reserved by
// reservedBy, failing with ReservationConflict if any is already held by
// a different live reservation. This is the sole serialization point for
// concurrent action construction (§4.F/§5).
func (db *DB) ReserveOutputs(outputIDs []uint64, reservedBy string) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReservations)
		for _, id := range outputIDs {
			existing := b.Get(idKey(id))
			if existing != nil && string(existing) != reservedBy {
				return walleterr.Newf(walleterr.ReservationConflict,
					"walletdb: output %d already reserved by %q", id, existing)
			}
		}
		for _, id := range outputIDs {
			if err := b.Put(idKey(id), []byte(reservedBy)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReleaseOutputs releases every output reserved by reservedBy; idempotent.
func (db *DB) ReleaseOutputs(reservedBy string) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReservations)
		var toDelete [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if string(v) == reservedBy {
				toDelete = append(toDelete, append([]byte{}, k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsReserved reports whether outputID currently carries a live
// reservation, and by whom.
func (db *DB) IsReserved(outputID uint64) (string, bool, error) {
	var reservedBy string
	var found bool
	err := db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketReservations).Get(idKey(outputID))
		if v != nil {
			reservedBy = string(v)
			found = true
		}
		return nil
	})
	return reservedBy, found, err
}

// InsertBroadcastRequest inserts a new broadcast request row.
func (db *DB) InsertBroadcastRequest(r *BroadcastRequest) (*BroadcastRequest, error) {
	var result BroadcastRequest
	err := db.Update(func(tx *bolt.Tx) error {
		id, err := nextID(tx, bucketBroadcastReqs)
		if err != nil {
			return err
		}
		result = *r
		result.ReqID = id
		data, err := encodeToBytes(result.encode)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBroadcastReqs).Put(idKey(id), data)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateBroadcastRequest overwrites a broadcast request row.
func (db *DB) UpdateBroadcastRequest(r *BroadcastRequest) error {
	return db.Update(func(tx *bolt.Tx) error {
		data, err := encodeToBytes(r.encode)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBroadcastReqs).Put(idKey(r.ReqID), data)
	})
}

// BroadcastRequestsByStatus returns every broadcast request whose
// LastStatus matches status.
func (db *DB) BroadcastRequestsByStatus(status string) ([]*BroadcastRequest, error) {
	var out []*BroadcastRequest
	err := db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBroadcastReqs).ForEach(func(k, v []byte) error {
			var r BroadcastRequest
			if err := decodeFromBytes(v, r.decode); err != nil {
				return err
			}
			if r.LastStatus == status {
				out = append(out, &r)
			}
			return nil
		})
	})
	return out, err
}

// InsertProvenTx records a confirmed merkle path for txid.
func (db *DB) InsertProvenTx(p *ProvenTx) error {
	return db.Update(func(tx *bolt.Tx) error {
		data, err := encodeToBytes(p.encode)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketProvenTx).Put(stringBytes(p.TxID), data)
	})
}

// FindProvenTx looks up a previously-recorded merkle path by txid.
func (db *DB) FindProvenTx(txid string) (*ProvenTx, error) {
	var p *ProvenTx
	err := db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketProvenTx).Get(stringBytes(txid))
		if data == nil {
			return nil
		}
		var found ProvenTx
		if err := decodeFromBytes(data, found.decode); err != nil {
			return err
		}
		p = &found
		return nil
	})
	return p, err
}

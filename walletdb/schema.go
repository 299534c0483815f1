// Package walletdb is the Storage Provider: a transactional, embedded
// key/value store over the wallet's entity set (users, outputs, actions,
// baskets, labels, tags, broadcast requests, proven transactions).
//
// It follows the teacher's channeldb/db.go bucket-per-entity model almost
// exactly — a *bolt.DB wrapped in a typed DB, big-endian uint64 row keys
// so bucket cursors scan in id order, and bucket creation driven from a
// fixed version list — but built on go.etcd.io/bbolt rather than the
// teacher's archived boltdb/bolt fork, and with secondary index buckets
// for (userId,status) and (userId,spendable,satoshis) as required by §6's
// indexing note instead of channeldb's graph/channel indexes.
package walletdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName       = "wallet.db"
	dbFilePermission = 0600
)

var byteOrder = binary.BigEndian

// Bucket names, one per entity plus the secondary indexes §6 requires.
var (
	bucketUsers             = []byte("users")
	bucketUsersByIdentity   = []byte("usersByIdentityKey")
	bucketOutputs           = []byte("outputs")
	bucketOutputsByUserSpend = []byte("outputsByUserSpendableSatoshis")
	bucketActions           = []byte("actions")
	bucketActionsByUserStat = []byte("actionsByUserStatus")
	bucketActionsByRef      = []byte("actionsByReference")
	bucketBaskets           = []byte("baskets")
	bucketLabels            = []byte("labels")
	bucketTags              = []byte("tags")
	bucketBroadcastReqs     = []byte("broadcastReqs")
	bucketProvenTx          = []byte("provenTx")
	bucketReservations      = []byte("reservations")
)

var allBuckets = [][]byte{
	bucketUsers, bucketUsersByIdentity,
	bucketOutputs, bucketOutputsByUserSpend,
	bucketActions, bucketActionsByUserStat, bucketActionsByRef,
	bucketBaskets, bucketLabels, bucketTags,
	bucketBroadcastReqs, bucketProvenTx, bucketReservations,
}

// DB is the primary datastore for the wallet core. It embeds *bolt.DB so
// callers needing a raw transaction (e.g. for atomicity spanning several
// Storage Methods calls) can still get one.
type DB struct {
	*bolt.DB
	dbPath string
}

// Open opens (creating if necessary) the wallet database at dbPath,
// ensuring every required bucket exists.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, err
	}
	path := filepath.Join(dbPath, dbFileName)

	bdb, err := bolt.Open(path, dbFilePermission, nil)
	if err != nil {
		return nil, err
	}

	db := &DB{DB: bdb, dbPath: dbPath}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("walletdb: creating bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		bdb.Close()
		return nil, err
	}

	return db, nil
}

// Wipe deletes and recreates every bucket, for test setup; it never
// deletes the underlying file.
func (db *DB) Wipe() error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func idKey(id uint64) []byte {
	var b [8]byte
	byteOrder.PutUint64(b[:], id)
	return b[:]
}

func idFromKey(b []byte) uint64 {
	return byteOrder.Uint64(b)
}

// compositeKey builds a secondary-index key as a concatenation of
// big-endian-encoded numeric/string components followed by the primary
// id, so that bucket.ForEach over a prefix yields rows in a stable,
// cursor-friendly order.
func compositeKey(parts ...[]byte) []byte {
	total := 0
	for _, p := range parts {
		total += len(p) + 1
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
		out = append(out, 0x00)
	}
	return out
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	byteOrder.PutUint64(b[:], v)
	return b[:]
}

func stringBytes(s string) []byte {
	return []byte(s)
}

func boolByte(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package storage

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("not found")

// KeyLength is the fixed length of a storage key.
const KeyLength = 32

// Key is a fixed-length storage key.
type Key [KeyLength]byte

// TX is one staged write of a batch.
type TX struct {
	Key   Key
	Value []byte
}

// KeyValueStore is a key-value database. Stores must apply PutBatch
// atomically: either every write lands or none do.
type KeyValueStore interface {
	Get(key Key) ([]byte, error)
	Put(key Key, value []byte) error
	PutBatch(txs []TX) error
	Close() error
}

// MakeKey builds a key by hashing the given parts.
func MakeKey(parts ...interface{}) Key {
	h := sha256.New()
	for _, p := range parts {
		switch p := p.(type) {
		case nil:
			h.Write([]byte{0})
		case []byte:
			h.Write(p)
		case [32]byte:
			h.Write(p[:])
		case string:
			h.Write([]byte(p))
		case uint64:
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], p)
			h.Write(b[:])
		case interface{ AccountID() []byte }:
			h.Write(p.AccountID())
		default:
			panic(fmt.Errorf("cannot use %T as a key part", p))
		}
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// String returns a short hex prefix of the key, for logging.
func (k Key) String() string { return fmt.Sprintf("%x", k[:4]) }

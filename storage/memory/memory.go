// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"sync"

	"gitlab.com/heirloomnetwork/heirloom/storage"
)

// DB is an in-memory key-value store, used for tests and ephemeral
// engines.
type DB struct {
	mu      sync.RWMutex
	entries map[storage.Key][]byte
}

var _ storage.KeyValueStore = (*DB)(nil)

// New returns an empty in-memory store.
func New() *DB {
	return &DB{entries: map[storage.Key][]byte{}}
}

// Get returns the value for the key, or storage.ErrNotFound.
func (d *DB) Get(key storage.Key) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.entries[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := make([]byte, len(v))
	copy(u, v)
	return u, nil
}

// Put stores the value for the key.
func (d *DB) Put(key storage.Key, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	d.entries[key] = v
	return nil
}

// PutBatch applies all writes under a single lock acquisition.
func (d *DB) PutBatch(txs []storage.TX) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, tx := range txs {
		v := make([]byte, len(tx.Value))
		copy(v, tx.Value)
		d.entries[tx.Key] = v
	}
	return nil
}

// Close releases the store's memory.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = nil
	return nil
}

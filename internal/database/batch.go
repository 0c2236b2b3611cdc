// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package database

import (
	"encoding/json"

	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/storage"
)

// Batch stages writes in memory. Either Commit lands every write on the
// backend or Discard drops them all; there is no partial effect.
type Batch struct {
	store  storage.KeyValueStore
	staged map[storage.Key][]byte
	order  []storage.Key
	done   bool
}

func (b *Batch) getValue(key storage.Key) ([]byte, error) {
	if v, ok := b.staged[key]; ok {
		return v, nil
	}
	return b.store.Get(key)
}

func (b *Batch) putValue(key storage.Key, value []byte) {
	if _, ok := b.staged[key]; !ok {
		b.order = append(b.order, key)
	}
	b.staged[key] = value
}

func (b *Batch) getAs(key storage.Key, v interface{}) error {
	data, err := b.getValue(key)
	if err != nil {
		return err
	}
	err = json.Unmarshal(data, v)
	if err != nil {
		return errors.EncodingError.Wrap(err)
	}
	return nil
}

func (b *Batch) putAs(key storage.Key, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.EncodingError.Wrap(err)
	}
	b.putValue(key, data)
	return nil
}

// Commit applies the staged writes to the backend.
func (b *Batch) Commit() error {
	if b.done {
		return errors.InternalError.With("batch is already committed or discarded")
	}
	b.done = true

	txs := make([]storage.TX, 0, len(b.order))
	for _, key := range b.order {
		txs = append(txs, storage.TX{Key: key, Value: b.staged[key]})
	}
	return b.store.PutBatch(txs)
}

// Discard drops the staged writes.
func (b *Batch) Discard() {
	b.done = true
	b.staged = nil
	b.order = nil
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"errors"
	"os"

	"github.com/dgraph-io/badger"

	"gitlab.com/heirloomnetwork/heirloom/storage"
)

// DB is a Badger-backed key-value store.
type DB struct {
	DBHome   string
	badgerDB *badger.DB
}

var _ storage.KeyValueStore = (*DB)(nil)

// Open opens the database at the given directory, creating it if
// necessary.
func Open(filepath string) (*DB, error) {
	err := os.MkdirAll(filepath, 0700)
	if err != nil {
		return nil, errors.New("failed to create database directory")
	}

	d := new(DB)
	d.DBHome = filepath
	opts := badger.DefaultOptions(d.DBHome)
	opts.Logger = nil
	d.badgerDB, err = badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.badgerDB.Close()
}

// Get looks up the value for the given key. Returns storage.ErrNotFound
// if no value is present.
func (d *DB) Get(key storage.Key) ([]byte, error) {
	var value []byte
	err := d.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key[:])
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append(value, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put writes a key/value pair.
func (d *DB) Put(key storage.Key, value []byte) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(key[:], value)
	})
}

// PutBatch writes all of the staged writes in a single Badger
// transaction.
func (d *DB) PutBatch(txs []storage.TX) error {
	txn := d.badgerDB.NewTransaction(true)
	defer txn.Discard()

	for _, e := range txs {
		if err := txn.Set(e.Key[:], e.Value); err != nil {
			return err
		}
	}
	return txn.Commit()
}

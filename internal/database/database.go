// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package database

import (
	"gitlab.com/heirloomnetwork/heirloom/internal/logging"
	"gitlab.com/heirloomnetwork/heirloom/storage"
	"gitlab.com/heirloomnetwork/heirloom/storage/badger"
	"gitlab.com/heirloomnetwork/heirloom/storage/memory"
)

// Database is a vault record store over a key-value backend.
type Database struct {
	store  storage.KeyValueStore
	logger logging.OptionalLogger
}

// New creates a database over the given backend.
func New(store storage.KeyValueStore, logger logging.Logger) *Database {
	d := new(Database)
	d.store = store
	d.logger.Set(logger, "module", "database")
	return d
}

// Open opens the database at the given path, or an in-memory database
// if inMemory is set.
func Open(path string, inMemory bool, logger logging.Logger) (*Database, error) {
	if inMemory {
		return New(memory.New(), logger), nil
	}

	store, err := badger.Open(path)
	if err != nil {
		return nil, err
	}
	return New(store, logger), nil
}

// Close closes the backend.
func (d *Database) Close() error { return d.store.Close() }

// Begin starts a new batch. Writes are staged in memory and land on the
// backend only on Commit.
func (d *Database) Begin() *Batch {
	b := new(Batch)
	b.store = d.store
	b.staged = map[storage.Key][]byte{}
	return b
}

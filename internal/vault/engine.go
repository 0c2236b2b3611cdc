// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package vault implements the inheritance vault state machine: per-owner
// vaults with deadman-switch timing, beneficiary allocations, custody of
// native, fungible, and non-fungible assets, vesting schedules, and
// exactly-once claim accounting.
package vault

import (
	"sync"
	"time"

	"gitlab.com/heirloomnetwork/heirloom/config"
	"gitlab.com/heirloomnetwork/heirloom/internal/database"
	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/internal/logging"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// Options configures an Engine.
type Options struct {
	Database  *database.Database
	Transfers TransferProvider
	Events    *events.Bus
	Logger    logging.Logger
	Config    *config.Config

	// Now supplies the wall clock. Defaults to time.Now. Expiry and
	// vesting are pure functions of this clock; the engine keeps no
	// background timers.
	Now func() time.Time
}

// Engine is the inheritance vault state machine. All mutating calls on
// one vault execute with mutual exclusion; different vaults proceed in
// parallel.
type Engine struct {
	db        *database.Database
	transfers TransferProvider
	bus       *events.Bus
	logger    logging.OptionalLogger
	conf      *config.Config
	custody   *url.URL
	admin     *url.URL
	now       func() time.Time

	mu     sync.Mutex
	locks  map[[32]byte]*sync.Mutex
	tokens map[[32]byte]*sync.Mutex
}

// NewEngine creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Database == nil {
		return nil, errors.BadRequest.With("missing database")
	}
	if opts.Transfers == nil {
		return nil, errors.BadRequest.With("missing transfer provider")
	}

	e := new(Engine)
	e.db = opts.Database
	e.transfers = opts.Transfers
	e.bus = opts.Events
	e.logger.Set(opts.Logger, "module", "vault")
	e.locks = map[[32]byte]*sync.Mutex{}
	e.tokens = map[[32]byte]*sync.Mutex{}

	e.conf = opts.Config
	if e.conf == nil {
		e.conf = config.Default()
	}
	if err := e.conf.Validate(); err != nil {
		return nil, errors.BadRequest.WithCauseAndFormat(err, "invalid config")
	}

	var err error
	e.custody, err = url.Parse(e.conf.Custody)
	if err != nil {
		return nil, errors.BadRequest.WithCauseAndFormat(err, "invalid custody identity")
	}
	if e.conf.Admin != "" {
		e.admin, err = url.Parse(e.conf.Admin)
		if err != nil {
			return nil, errors.BadRequest.WithCauseAndFormat(err, "invalid admin identity")
		}
	}

	e.now = opts.Now
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Custody returns the identity that holds deposited assets.
func (e *Engine) Custody() *url.URL { return e.custody }

// acquire takes the vault's transaction lock without blocking. A vault
// that is mid-transaction - including a re-entrant call from inside a
// transfer callback - yields VaultBusy instead of a deadlock.
func (e *Engine) acquire(owner *url.URL) (func(), error) {
	if owner == nil {
		return nil, errors.BadRequest.With("missing owner identity")
	}

	e.mu.Lock()
	lock, ok := e.locks[owner.AccountID32()]
	if !ok {
		lock = new(sync.Mutex)
		e.locks[owner.AccountID32()] = lock
	}
	e.mu.Unlock()

	if !lock.TryLock() {
		return nil, errors.VaultBusy.WithFormat("a transaction is in progress for %v", owner)
	}
	return lock.Unlock, nil
}

// acquireToken takes the token's deposit lock without blocking. The
// custody balance is shared across vaults, so the measurement window of
// a fungible deposit must not interleave with another deposit of the
// same token.
func (e *Engine) acquireToken(token *url.URL) (func(), error) {
	e.mu.Lock()
	lock, ok := e.tokens[token.AccountID32()]
	if !ok {
		lock = new(sync.Mutex)
		e.tokens[token.AccountID32()] = lock
	}
	e.mu.Unlock()

	if !lock.TryLock() {
		return nil, errors.VaultBusy.WithFormat("a deposit of %v is in progress", token)
	}
	return lock.Unlock, nil
}

// execute runs fn inside the vault's transaction: state changes are
// staged in a batch and either committed in full or discarded. Events
// recorded by fn are published only after a successful commit.
func (e *Engine) execute(owner *url.URL, fn func(st *stateManager) error) error {
	release, err := e.acquire(owner)
	if err != nil {
		return err
	}
	defer release()

	st := new(stateManager)
	st.batch = e.db.Begin()
	st.vaults = st.batch.Vault(owner)
	st.owner = owner
	st.now = e.now()

	err = fn(st)
	if err != nil {
		st.batch.Discard()
		return err
	}

	err = st.batch.Commit()
	if err != nil {
		return errors.InternalError.WithCauseAndFormat(err, "commit")
	}

	for _, event := range st.events {
		e.publish(event)
	}
	return nil
}

// publish logs and publishes an event whose transaction has committed.
func (e *Engine) publish(event events.Event) {
	e.logger.Debug("Committed", "event", event.EventType(), "vault", event.EventVault())
	if e.bus != nil {
		e.bus.Publish(event)
	}
}

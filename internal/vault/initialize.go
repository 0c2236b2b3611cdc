// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"
	"time"

	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// InitializeOptions are the optional settings of a new vault.
type InitializeOptions struct {
	Executor             *url.URL
	RequiresConfirmation bool
	TimeLock             *protocol.TimeLock
}

// Initialize creates a vault for the caller with a first beneficiary and
// an initial deadline. An identity may own at most one vault.
func (e *Engine) Initialize(ctx context.Context, caller, beneficiary *url.URL, shareBps uint64, deadline time.Time, opts InitializeOptions) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	return e.execute(caller, func(st *stateManager) error {
		ok, err := st.vaults.Exists()
		if err != nil {
			return err
		}
		if ok {
			return errors.VaultAlreadyExists.WithFormat("%v already owns a vault", caller)
		}

		if err := e.checkDeadline(deadline, st.now); err != nil {
			return err
		}
		if err := opts.TimeLock.Validate(); err != nil {
			return err
		}

		// A vault nobody can trigger would strand custody forever once
		// the deadline passes
		if opts.Executor == nil {
			if !e.conf.AnyoneMayTrigger {
				return errors.BadRequest.With("an executor is required when only the executor may trigger")
			}
			if opts.RequiresConfirmation {
				return errors.BadRequest.With("requiring confirmation needs an executor to confirm")
			}
		}

		v := new(protocol.Vault)
		v.Url = caller
		v.Status = protocol.VaultStatusActive
		v.CreatedAt = st.now
		v.LastCheckIn = st.now
		v.Deadline = deadline
		v.Executor = opts.Executor
		v.RequiresConfirmation = opts.RequiresConfirmation
		v.TimeLock = opts.TimeLock

		if err := v.AddBeneficiary(beneficiary, shareBps); err != nil {
			return err
		}
		if err := st.vaults.PutMain(v); err != nil {
			return err
		}

		st.Record(events.VaultInitialized{
			Base:        st.base(caller),
			Beneficiary: beneficiary,
			ShareBps:    shareBps,
			Deadline:    deadline,
		})
		return nil
	})
}

// checkDeadline verifies that a deadline lies within the configured
// extension window, measured from now.
func (e *Engine) checkDeadline(deadline, now time.Time) error {
	ext := deadline.Sub(now)
	if ext < e.conf.MinCheckInExtension {
		return errors.InvalidDeadline.WithFormat("deadline %v is less than %v from now", deadline, e.conf.MinCheckInExtension)
	}
	if ext > e.conf.MaxCheckInExtension {
		return errors.InvalidDeadline.WithFormat("deadline %v is more than %v from now", deadline, e.conf.MaxCheckInExtension)
	}
	return nil
}

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

// CheckIn proves the owner's activity and moves the deadline. The new
// deadline must lie within the configured extension window from now -
// neither so soon that the switch could be re-triggered immediately,
// nor so far that the vault is locked up indefinitely.
func (e *Engine) CheckIn(ctx context.Context, caller *url.URL, newDeadline time.Time) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	return e.execute(caller, func(st *stateManager) error {
		v, err := st.vaults.Main()
		if err != nil {
			return err
		}
		if _, err := e.authorize(v, caller, protocol.ActionCheckIn); err != nil {
			return err
		}
		if v.IsExpired(st.now) {
			return errors.DeadlineExpired.WithFormat("cannot check in after the deadline %v", v.Deadline)
		}
		if err := e.checkDeadline(newDeadline, st.now); err != nil {
			return err
		}

		v.LastCheckIn = st.now
		v.Deadline = newDeadline
		if err := st.vaults.PutMain(v); err != nil {
			return err
		}

		st.Record(events.CheckedIn{Base: st.base(caller), NewDeadline: newDeadline})
		return nil
	})
}

// TimeRemaining returns max(0, deadline − now) for the given vault.
func (e *Engine) TimeRemaining(owner *url.URL) (time.Duration, error) {
	v, err := e.GetVault(owner)
	if err != nil {
		return 0, err
	}
	return v.TimeRemaining(e.now()), nil
}

// IsExpired returns true if the vault's deadline has passed.
func (e *Engine) IsExpired(owner *url.URL) (bool, error) {
	v, err := e.GetVault(owner)
	if err != nil {
		return false, err
	}
	return v.IsExpired(e.now()), nil
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"

	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// Trigger fires the deadman switch. The Active→Triggered transition
// happens exactly once; calling Trigger on an already-triggered vault
// reports SwitchAlreadyTriggered and changes nothing, so repeated calls
// leave the same observable state as one.
func (e *Engine) Trigger(ctx context.Context, owner, caller *url.URL) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	return e.execute(owner, func(st *stateManager) error {
		v, err := st.vaults.Main()
		if err != nil {
			return err
		}

		switch v.Status {
		case protocol.VaultStatusActive:
			// ok
		case protocol.VaultStatusTriggered, protocol.VaultStatusPartiallyClaimed, protocol.VaultStatusClaimed:
			return errors.SwitchAlreadyTriggered.WithFormat("the switch for %v fired at %v", v.Url, v.TriggeredAt)
		default:
			return errors.WrongStatus.WithFormat("cannot trigger a %v vault", v.Status)
		}

		if _, err := e.authorize(v, caller, protocol.ActionTrigger); err != nil {
			return err
		}
		if !v.IsExpired(st.now) {
			return errors.DeadlineNotExpired.WithFormat("the deadline %v has not passed", v.Deadline)
		}

		v.Status = protocol.VaultStatusTriggered
		v.TriggeredAt = st.now
		if err := st.vaults.PutMain(v); err != nil {
			return err
		}

		st.Record(events.SwitchTriggered{Base: st.base(caller), Deadline: v.Deadline})
		return nil
	})
}

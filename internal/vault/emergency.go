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

// SetPaused freezes or unfreezes a vault. While paused, every mutating
// operation except the emergency ones is rejected. Requires the
// emergency capability.
func (e *Engine) SetPaused(ctx context.Context, owner, caller *url.URL, paused bool) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	return e.execute(owner, func(st *stateManager) error {
		v, err := st.vaults.Main()
		if err != nil {
			return err
		}
		if _, err := e.authorize(v, caller, protocol.ActionEmergencyPause); err != nil {
			return err
		}
		if v.Status.IsTerminal() {
			return errors.WrongStatus.WithFormat("cannot pause a %v vault", v.Status)
		}
		if v.Paused == paused {
			return errors.BadRequest.WithFormat("vault %v paused is already %v", v.Url, paused)
		}

		v.Paused = paused
		if err := st.vaults.PutMain(v); err != nil {
			return err
		}

		st.Record(events.PauseChanged{Base: st.base(caller), Paused: paused})
		return nil
	})
}

// EmergencyWithdraw returns all custody to the owner and retires the
// vault, regardless of its deadline. Requires the emergency capability,
// and is refused once any claim has been processed - partial asset
// withdrawal after distribution began would break the claim accounting.
// Custody returns commit per asset, the same as Cancel.
func (e *Engine) EmergencyWithdraw(ctx context.Context, owner, caller *url.URL) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	release, err := e.acquire(owner)
	if err != nil {
		return err
	}
	defer release()
	now := e.now()

	batch := e.db.Begin()
	v, err := batch.Vault(owner).Main()
	if err != nil {
		batch.Discard()
		return err
	}
	if _, err := e.authorize(v, caller, protocol.ActionEmergencyWithdraw); err != nil {
		batch.Discard()
		return err
	}
	if v.Status.IsTerminal() {
		batch.Discard()
		return errors.WrongStatus.WithFormat("cannot withdraw from a %v vault", v.Status)
	}

	claims, err := batch.Vault(owner).Claims()
	if err != nil {
		batch.Discard()
		return err
	}
	batch.Discard()
	for _, c := range claims {
		if c.Released.Sign() > 0 || len(c.Ranges) > 0 {
			return errors.WrongStatus.WithFormat("%v has processed claims, custody can no longer be withdrawn", v.Url)
		}
	}

	releases, err := e.returnCustody(ctx, owner, v.Url)
	if err != nil {
		return err
	}

	batch = e.db.Begin()
	v, err = batch.Vault(owner).Main()
	if err != nil {
		batch.Discard()
		return err
	}
	v.Status = protocol.VaultStatusCancelled
	v.Paused = false
	if err := batch.Vault(owner).PutMain(v); err != nil {
		batch.Discard()
		return err
	}
	if err := batch.Commit(); err != nil {
		return errors.InternalError.WithCauseAndFormat(err, "commit")
	}

	e.publish(events.EmergencyWithdrawn{
		Base:     events.Base{Vault: owner, Actor: caller, Time: now},
		Releases: releases,
	})
	return nil
}

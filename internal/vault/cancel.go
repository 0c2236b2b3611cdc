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

// Cancel returns all custodied assets to the owner and retires the
// vault. Only an active vault whose deadline has not passed can be
// cancelled; once the switch is triggerable the owner can no longer
// front-run the executor.
//
// Custody returns commit per asset, so a transfer failure leaves the
// already-returned assets recorded and the vault active. Retrying skips
// what was returned and picks up where the failure happened.
func (e *Engine) Cancel(ctx context.Context, caller *url.URL) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	release, err := e.acquire(caller)
	if err != nil {
		return err
	}
	defer release()
	now := e.now()

	batch := e.db.Begin()
	v, err := batch.Vault(caller).Main()
	if err != nil {
		batch.Discard()
		return err
	}
	if _, err := e.authorize(v, caller, protocol.ActionCancel); err != nil {
		batch.Discard()
		return err
	}
	if v.IsExpired(now) {
		batch.Discard()
		return errors.DeadlineExpired.WithFormat("cannot cancel after the deadline %v", v.Deadline)
	}
	batch.Discard()

	releases, err := e.returnCustody(ctx, caller, caller)
	if err != nil {
		return err
	}

	batch = e.db.Begin()
	v, err = batch.Vault(caller).Main()
	if err != nil {
		batch.Discard()
		return err
	}
	v.Status = protocol.VaultStatusCancelled
	if err := batch.Vault(caller).PutMain(v); err != nil {
		batch.Discard()
		return err
	}
	if err := batch.Commit(); err != nil {
		return errors.InternalError.WithCauseAndFormat(err, "commit")
	}

	e.publish(events.VaultCancelled{
		Base:     events.Base{Vault: caller, Actor: caller, Time: now},
		Releases: releases,
	})
	return nil
}

// returnCustody transfers every remaining asset of the vault to the
// recipient. Each asset's custody record commits in its own transaction,
// immediately after that asset's transfer, so a failure cannot roll back
// a transfer that already executed. The caller must hold the vault lock.
func (e *Engine) returnCustody(ctx context.Context, owner, recipient *url.URL) ([]events.Release, error) {
	batch := e.db.Begin()
	assets, err := batch.Vault(owner).Assets()
	batch.Discard()
	if err != nil {
		return nil, err
	}

	var releases []events.Release
	for i := range assets {
		release, err := e.releaseRemaining(ctx, owner, recipient, uint64(i))
		if err != nil {
			return nil, err
		}
		if release != nil {
			releases = append(releases, *release)
		}
	}
	return releases, nil
}

// releaseRemaining returns the unreleased remainder of one asset to the
// recipient in its own transaction.
func (e *Engine) releaseRemaining(ctx context.Context, owner, recipient *url.URL, index uint64) (*events.Release, error) {
	batch := e.db.Begin()
	defer batch.Discard()
	vaults := batch.Vault(owner)

	assets, err := vaults.Assets()
	if err != nil {
		return nil, err
	}
	asset := assets[index]

	var release *events.Release
	switch asset.Type {
	case protocol.AssetTypeNative, protocol.AssetTypeFungible:
		remaining := asset.Residual()
		if remaining.Sign() <= 0 {
			return nil, nil
		}

		if asset.Type == protocol.AssetTypeNative {
			err = e.transfers.TransferNative(ctx, e.custody, recipient, remaining)
		} else {
			err = e.transfers.TransferFungible(ctx, asset.Token, e.custody, recipient, remaining)
		}
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}

		asset.Released.Add(&asset.Released, remaining)
		release = &events.Release{AssetType: asset.Type, Token: asset.Token, Amount: remaining}

	case protocol.AssetTypeNonFungible:
		if asset.Cursor >= uint64(len(asset.TokenIDs)) {
			return nil, nil
		}
		ids := asset.TokenIDs[asset.Cursor:]

		err := e.transfers.TransferNonFungible(ctx, asset.Token, e.custody, recipient, ids)
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}

		asset.Cursor = uint64(len(asset.TokenIDs))
		release = &events.Release{AssetType: asset.Type, Token: asset.Token, TokenIDs: ids}
	}

	if err := vaults.PutAssets(assets); err != nil {
		return nil, err
	}
	if err := batch.Commit(); err != nil {
		return nil, errors.InternalError.WithCauseAndFormat(err, "commit")
	}
	return release, nil
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"

	"gitlab.com/heirloomnetwork/heirloom/config"
	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// Sweep reclaims the flooring residue left after every beneficiary has
// claimed in full. Entitlements are floored, so up to one unit per
// beneficiary per asset can remain in custody; rather than spraying
// micro-transfers during claims, the residue is swept in one pass. The
// recipient is set by policy: the owner's estate or the last claimant.
//
// Residue returns commit per asset, so a transfer failure leaves the
// already-swept assets recorded and the rest sweepable on retry.
func (e *Engine) Sweep(ctx context.Context, owner, caller *url.URL) error {
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
	if _, err := e.authorize(v, caller, protocol.ActionSweep); err != nil {
		batch.Discard()
		return err
	}
	batch.Discard()

	recipient := v.Url
	if e.conf.SweepPolicy == config.SweepToLastClaimant && v.LastClaimant != nil {
		recipient = v.LastClaimant
	}
	if !caller.Equal(recipient) {
		return errors.NotAuthorized.WithFormat("dust goes to %v under the %v policy", recipient, e.conf.SweepPolicy)
	}

	releases, err := e.returnCustody(ctx, owner, recipient)
	if err != nil {
		return err
	}
	if len(releases) == 0 {
		return errors.NothingToSweep.WithFormat("no residue remains in %v", v.Url)
	}

	e.publish(events.DustSwept{
		Base:      events.Base{Vault: owner, Actor: caller, Time: now},
		Recipient: recipient,
		Releases:  releases,
	})
	return nil
}

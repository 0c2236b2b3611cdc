// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"
	"math/big"
	"time"

	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// Claim releases the caller's entitlement of every asset in the vault,
// gated by the vesting schedule. Claims are exactly-once per asset unit:
// a fungible entitlement is tracked as a cumulative released amount, and
// non-fungible tokens are assigned through the distribution cursor, so
// repeated claims release only the incremental vested delta.
//
// Each asset's claim-state mutation commits in its own transaction,
// immediately after that asset's transfer. A transfer failure part way
// through therefore leaves the earlier releases durably recorded, and a
// retry releases only the assets that have not moved yet.
func (e *Engine) Claim(ctx context.Context, owner, caller *url.URL) error {
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
	if _, err := e.authorize(v, caller, protocol.ActionClaim); err != nil {
		batch.Discard()
		return err
	}
	alloc, _ := v.Beneficiary(caller)
	assets, err := batch.Vault(owner).Assets()
	if err != nil {
		batch.Discard()
		return err
	}
	batch.Discard()

	vestBps := v.TimeLock.ClaimableBps(v.TriggeredAt, now)

	var claimed bool
	for i := range assets {
		released, err := e.claimAsset(ctx, owner, caller, uint64(i), alloc.ShareBps, vestBps, now)
		if err != nil {
			return err
		}
		if released {
			claimed = true
		}
	}

	if !claimed {
		if vestBps < protocol.ShareTotalBps {
			return errors.NothingVested.WithFormat("nothing further is vested for %v at %d bps", caller, vestBps)
		}
		return errors.AlreadyClaimed.WithFormat("%v has claimed its full entitlement", caller)
	}
	return nil
}

// claimAsset releases the vested delta of one asset to the caller in its
// own transaction. The transfer runs against the staged claim state and
// the commit follows before the next asset is touched.
func (e *Engine) claimAsset(ctx context.Context, owner, caller *url.URL, index, shareBps, vestBps uint64, now time.Time) (bool, error) {
	batch := e.db.Begin()
	defer batch.Discard()
	vaults := batch.Vault(owner)

	v, err := vaults.Main()
	if err != nil {
		return false, err
	}
	assets, err := vaults.Assets()
	if err != nil {
		return false, err
	}
	claims, err := vaults.Claims()
	if err != nil {
		return false, err
	}
	if index >= uint64(len(assets)) {
		return false, errors.InternalError.WithFormat("asset index %d exceeds %d assets", index, len(assets))
	}
	asset := assets[index]
	record, claims := findOrAddClaim(claims, caller, index)

	var release *events.Release
	switch asset.Type {
	case protocol.AssetTypeNative, protocol.AssetTypeFungible:
		release, err = e.claimFungible(ctx, asset, record, shareBps, vestBps, caller)
	case protocol.AssetTypeNonFungible:
		release, err = e.claimNonFungible(ctx, asset, record, shareBps, vestBps, caller)
	default:
		return false, errors.InternalError.WithFormat("unknown asset type %v", asset.Type)
	}
	if err != nil {
		return false, err
	}
	if release == nil {
		return false, nil
	}

	v.LastClaimant = caller
	if allEntitlementsReleased(v, assets, claims) {
		v.Status = protocol.VaultStatusClaimed
	} else {
		v.Status = protocol.VaultStatusPartiallyClaimed
	}

	if err := vaults.PutMain(v); err != nil {
		return false, err
	}
	if err := vaults.PutAssets(assets); err != nil {
		return false, err
	}
	if err := vaults.PutClaims(claims); err != nil {
		return false, err
	}
	if err := batch.Commit(); err != nil {
		return false, errors.InternalError.WithCauseAndFormat(err, "commit")
	}

	e.publish(events.AssetsClaimed{
		Base:        events.Base{Vault: owner, Actor: caller, Time: now},
		Beneficiary: caller,
		Releases:    []events.Release{*release},
	})
	return true, nil
}

func (e *Engine) claimFungible(ctx context.Context, asset *protocol.AssetRecord, record *protocol.ClaimRecord, shareBps, vestBps uint64, to *url.URL) (*events.Release, error) {
	full := asset.Entitlement(shareBps)
	if full.Sign() == 0 {
		record.Complete = true
		return nil, nil
	}

	vested := mulBps(full, vestBps)
	delta := new(big.Int).Sub(vested, &record.Released)
	if delta.Sign() < 0 {
		return nil, errors.InternalError.WithFormat("released %v exceeds vested %v", &record.Released, vested)
	}
	if delta.Sign() == 0 {
		return nil, nil
	}
	if delta.Cmp(asset.Residual()) > 0 {
		return nil, errors.InsufficientBalance.WithFormat("release %v exceeds remaining custody %v", delta, asset.Residual())
	}

	var err error
	if asset.Type == protocol.AssetTypeNative {
		err = e.transfers.TransferNative(ctx, e.custody, to, delta)
	} else {
		err = e.transfers.TransferFungible(ctx, asset.Token, e.custody, to, delta)
	}
	if err != nil {
		return nil, errors.TransferFailed.Wrap(err)
	}

	record.Released.Add(&record.Released, delta)
	asset.Released.Add(&asset.Released, delta)
	if vestBps == protocol.ShareTotalBps && record.Released.Cmp(full) == 0 {
		record.Complete = true
	}

	return &events.Release{AssetType: asset.Type, Token: asset.Token, Amount: delta}, nil
}

func (e *Engine) claimNonFungible(ctx context.Context, asset *protocol.AssetRecord, record *protocol.ClaimRecord, shareBps, vestBps uint64, to *url.URL) (*events.Release, error) {
	full := asset.TokenEntitlement(shareBps)
	if full == 0 {
		record.Complete = true
		return nil, nil
	}

	vested := full * vestBps / protocol.ShareTotalBps
	released := record.ReleasedCount()
	if released > vested {
		return nil, errors.InternalError.WithFormat("released %d tokens exceeds vested %d", released, vested)
	}
	delta := vested - released
	if delta == 0 {
		return nil, nil
	}

	// The cursor is the only assignment path, so successive claims get
	// disjoint ranges and the first claimer gets the lowest identifiers.
	start := asset.Cursor
	end := start + delta
	if end > uint64(len(asset.TokenIDs)) {
		return nil, errors.InternalError.WithFormat("cursor %d exceeds collection size %d", end, len(asset.TokenIDs))
	}
	ids := asset.TokenIDs[start:end]

	err := e.transfers.TransferNonFungible(ctx, asset.Token, e.custody, to, ids)
	if err != nil {
		return nil, errors.TransferFailed.Wrap(err)
	}

	record.AddRange(start, end)
	asset.Cursor = end
	if vestBps == protocol.ShareTotalBps && record.ReleasedCount() == full {
		record.Complete = true
	}

	return &events.Release{AssetType: asset.Type, Token: asset.Token, TokenIDs: ids}, nil
}

func findOrAddClaim(claims []*protocol.ClaimRecord, beneficiary *url.URL, assetIndex uint64) (*protocol.ClaimRecord, []*protocol.ClaimRecord) {
	for _, c := range claims {
		if c.AssetIndex == assetIndex && c.Beneficiary.Equal(beneficiary) {
			return c, claims
		}
	}
	c := &protocol.ClaimRecord{Beneficiary: beneficiary, AssetIndex: assetIndex}
	return c, append(claims, c)
}

func findClaim(claims []*protocol.ClaimRecord, beneficiary *url.URL, assetIndex uint64) (*protocol.ClaimRecord, bool) {
	for _, c := range claims {
		if c.AssetIndex == assetIndex && c.Beneficiary.Equal(beneficiary) {
			return c, true
		}
	}
	return nil, false
}

// allEntitlementsReleased reports whether every beneficiary has fully
// claimed every asset.
func allEntitlementsReleased(v *protocol.Vault, assets []*protocol.AssetRecord, claims []*protocol.ClaimRecord) bool {
	for _, b := range v.Beneficiaries {
		for i, asset := range assets {
			var zero bool
			switch asset.Type {
			case protocol.AssetTypeNonFungible:
				zero = asset.TokenEntitlement(b.ShareBps) == 0
			default:
				zero = asset.Entitlement(b.ShareBps).Sign() == 0
			}
			if zero {
				continue
			}

			record, ok := findClaim(claims, b.Url, uint64(i))
			if !ok || !record.Complete {
				return false
			}
		}
	}
	return true
}

// mulBps returns floor(x × bps / 10000).
func mulBps(x *big.Int, bps uint64) *big.Int {
	v := new(big.Int).Mul(x, new(big.Int).SetUint64(bps))
	return v.Div(v, big.NewInt(protocol.ShareTotalBps))
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"
	"math/big"

	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// DepositNative deposits native value into the caller's vault.
func (e *Engine) DepositNative(ctx context.Context, caller *url.URL, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.InvalidAmount.WithFormat("deposit amount must be positive, got %v", amount)
	}

	return e.deposit(caller, func(st *stateManager, assets []*protocol.AssetRecord) ([]*protocol.AssetRecord, error) {
		err := e.transfers.TransferNative(ctx, caller, e.custody, amount)
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}

		record, assets := findOrAddAsset(assets, protocol.AssetTypeNative, nil)
		record.CreditTokens(amount)

		st.Record(events.AssetDeposited{
			Base:      st.base(caller),
			AssetType: protocol.AssetTypeNative,
			Amount:    new(big.Int).Set(amount),
		})
		return assets, nil
	})
}

// DepositFungible deposits fungible tokens into the caller's vault. The
// recorded amount is what custody actually received, measured around the
// transfer, so fee-on-transfer tokens are credited at their delivered
// value. Deposits of one token are serialized across vaults; the custody
// balance is shared, and an interleaved measurement window would credit
// another vault's delivery.
func (e *Engine) DepositFungible(ctx context.Context, caller, token *url.URL, amount *big.Int) error {
	if token == nil {
		return errors.UnknownAsset.With("missing token reference")
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.InvalidAmount.WithFormat("deposit amount must be positive, got %v", amount)
	}

	return e.deposit(caller, func(st *stateManager, assets []*protocol.AssetRecord) ([]*protocol.AssetRecord, error) {
		unlock, err := e.acquireToken(token)
		if err != nil {
			return nil, err
		}
		defer unlock()

		before, err := e.transfers.BalanceOf(ctx, token, e.custody)
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}
		err = e.transfers.TransferFungible(ctx, token, caller, e.custody, amount)
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}
		after, err := e.transfers.BalanceOf(ctx, token, e.custody)
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}

		actual := new(big.Int).Sub(after, before)
		if actual.Sign() <= 0 {
			return nil, errors.InvalidAmount.WithFormat("transfer of %v delivered nothing", amount)
		}

		record, assets := findOrAddAsset(assets, protocol.AssetTypeFungible, token)
		record.CreditTokens(actual)

		st.Record(events.AssetDeposited{
			Base:      st.base(caller),
			AssetType: protocol.AssetTypeFungible,
			Token:     token,
			Amount:    actual,
		})
		return assets, nil
	})
}

// DepositNonFungible deposits tokens of a collection into the caller's
// vault. Token identifiers must not repeat within a collection.
func (e *Engine) DepositNonFungible(ctx context.Context, caller, collection *url.URL, tokenIDs []uint64) error {
	if collection == nil {
		return errors.UnknownAsset.With("missing collection reference")
	}
	if len(tokenIDs) == 0 {
		return errors.InvalidAmount.With("no token identifiers")
	}

	return e.deposit(caller, func(st *stateManager, assets []*protocol.AssetRecord) ([]*protocol.AssetRecord, error) {
		// Check for duplicates before moving anything, so a rejected
		// deposit leaves custody untouched
		record, assets := findOrAddAsset(assets, protocol.AssetTypeNonFungible, collection)
		if !record.AddTokenIDs(tokenIDs) {
			return nil, errors.DuplicateToken.WithFormat("a token of %v is already deposited", collection)
		}

		err := e.transfers.TransferNonFungible(ctx, collection, caller, e.custody, tokenIDs)
		if err != nil {
			return nil, errors.TransferFailed.Wrap(err)
		}

		st.Record(events.AssetDeposited{
			Base:      st.base(caller),
			AssetType: protocol.AssetTypeNonFungible,
			Token:     collection,
			TokenIDs:  tokenIDs,
		})
		return assets, nil
	})
}

func (e *Engine) deposit(caller *url.URL, fn func(st *stateManager, assets []*protocol.AssetRecord) ([]*protocol.AssetRecord, error)) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	return e.execute(caller, func(st *stateManager) error {
		v, err := st.vaults.Main()
		if err != nil {
			return err
		}
		if _, err := e.authorize(v, caller, protocol.ActionDeposit); err != nil {
			return err
		}
		if v.IsExpired(st.now) {
			return errors.DeadlineExpired.WithFormat("the deadline %v has passed", v.Deadline)
		}

		assets, err := st.vaults.Assets()
		if err != nil {
			return err
		}
		assets, err = fn(st, assets)
		if err != nil {
			return err
		}
		return st.vaults.PutAssets(assets)
	})
}

func findOrAddAsset(assets []*protocol.AssetRecord, typ protocol.AssetType, token *url.URL) (*protocol.AssetRecord, []*protocol.AssetRecord) {
	for _, a := range assets {
		if a.Matches(typ, token) {
			return a, assets
		}
	}
	a := &protocol.AssetRecord{Type: typ, Token: token}
	return a, append(assets, a)
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"
	"math/big"

	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// TransferProvider is the external account system that actually moves
// assets. The engine treats every transfer as fallible: if a transfer
// fails, the operation that requested it is rolled back in full.
//
// The provider is also the source of verified caller identities; the
// engine never trusts a caller-supplied identity claim, so embedders
// must resolve callers through the provider (or an equivalent) before
// invoking the engine.
type TransferProvider interface {
	// BalanceOf reports the holder's balance of the given token. A nil
	// token means the native unit.
	BalanceOf(ctx context.Context, token, holder *url.URL) (*big.Int, error)

	// TransferNative moves native value.
	TransferNative(ctx context.Context, from, to *url.URL, amount *big.Int) error

	// TransferFungible moves fungible tokens. The amount delivered may
	// be less than requested for fee-on-transfer tokens; callers must
	// measure with BalanceOf.
	TransferFungible(ctx context.Context, token, from, to *url.URL, amount *big.Int) error

	// TransferNonFungible moves the given tokens of a collection.
	TransferNonFungible(ctx context.Context, collection, from, to *url.URL, tokenIDs []uint64) error
}

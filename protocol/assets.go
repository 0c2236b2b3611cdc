// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"math/big"

	"golang.org/x/exp/slices"

	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// AssetRecord is one custodied asset of a vault. Native and fungible
// assets track a balance; non-fungible assets track an ordered token
// identifier set and the distribution cursor.
type AssetRecord struct {
	Type  AssetType `json:"type"`
	Token *url.URL  `json:"token,omitempty"` // contract or collection; nil for native

	// Balance is the amount actually received, not the nominal deposit.
	Balance  big.Int `json:"balance"`
	Released big.Int `json:"released"` // total released across all beneficiaries

	TokenIDs []uint64 `json:"tokenIds,omitempty"`
	// Cursor is the next unassigned token offset. Claims are the only
	// mutation path and only ever advance it.
	Cursor uint64 `json:"cursor,omitempty"`
}

// Matches returns true if the record is for the given asset reference.
func (a *AssetRecord) Matches(typ AssetType, token *url.URL) bool {
	if a.Type != typ {
		return false
	}
	if a.Type == AssetTypeNative {
		return true
	}
	return a.Token.Equal(token)
}

// CreditTokens adds to the balance. Returns false for nil or negative
// amounts.
func (a *AssetRecord) CreditTokens(amount *big.Int) bool {
	if amount == nil || amount.Sign() < 0 {
		return false
	}
	a.Balance.Add(&a.Balance, amount)
	return true
}

// CanDebitTokens returns true if the balance covers the amount.
func (a *AssetRecord) CanDebitTokens(amount *big.Int) bool {
	return amount != nil && a.Balance.Cmp(amount) >= 0
}

// DebitTokens subtracts from the balance if it covers the amount.
func (a *AssetRecord) DebitTokens(amount *big.Int) bool {
	if !a.CanDebitTokens(amount) {
		return false
	}
	a.Balance.Sub(&a.Balance, amount)
	return true
}

// AddTokenIDs appends token identifiers to the collection. Returns false
// if any identifier is already present.
func (a *AssetRecord) AddTokenIDs(ids []uint64) bool {
	for i, id := range ids {
		if slices.Contains(a.TokenIDs, id) || slices.Contains(ids[:i], id) {
			return false
		}
	}
	a.TokenIDs = append(a.TokenIDs, ids...)
	return true
}

// Entitlement returns floor(balance × shareBps / 10000).
func (a *AssetRecord) Entitlement(shareBps uint64) *big.Int {
	e := new(big.Int).Mul(&a.Balance, new(big.Int).SetUint64(shareBps))
	return e.Div(e, big.NewInt(ShareTotalBps))
}

// TokenEntitlement returns floor(collection size × shareBps / 10000).
func (a *AssetRecord) TokenEntitlement(shareBps uint64) uint64 {
	return uint64(len(a.TokenIDs)) * shareBps / ShareTotalBps
}

// Residual returns balance − released, the dust left after flooring.
func (a *AssetRecord) Residual() *big.Int {
	return new(big.Int).Sub(&a.Balance, &a.Released)
}

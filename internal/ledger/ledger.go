// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package ledger provides an in-process account book that satisfies the
// engine's transfer provider contract. It backs the local CLI and the
// engine tests; production embedders supply their own provider.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

type key = [32]byte

// Book is an in-memory account ledger: native balances, fungible token
// balances by contract, and non-fungible ownership by collection.
type Book struct {
	mu       sync.Mutex
	native   map[key]*big.Int
	fungible map[key]map[key]*big.Int
	nft      map[key]map[uint64]key
	feeBps   map[key]uint64
}

// NewBook returns an empty account book.
func NewBook() *Book {
	return &Book{
		native:   map[key]*big.Int{},
		fungible: map[key]map[key]*big.Int{},
		nft:      map[key]map[uint64]key{},
		feeBps:   map[key]uint64{},
	}
}

// CreditNative mints native value to the holder.
func (b *Book) CreditNative(holder *url.URL, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(b.native, holder.AccountID32(), amount)
}

// CreditFungible mints fungible tokens to the holder.
func (b *Book) CreditFungible(token, holder *url.URL, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(b.balancesOf(token), holder.AccountID32(), amount)
}

// MintNonFungible mints tokens of a collection to the holder.
func (b *Book) MintNonFungible(collection, holder *url.URL, ids []uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	owners := b.ownersOf(collection)
	for _, id := range ids {
		owners[id] = holder.AccountID32()
	}
}

// SetTransferFee makes the token deflationary: every transfer delivers
// amount − floor(amount × bps / 10000).
func (b *Book) SetTransferFee(token *url.URL, bps uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feeBps[token.AccountID32()] = bps
}

func (b *Book) balancesOf(token *url.URL) map[key]*big.Int {
	k := token.AccountID32()
	m, ok := b.fungible[k]
	if !ok {
		m = map[key]*big.Int{}
		b.fungible[k] = m
	}
	return m
}

func (b *Book) ownersOf(collection *url.URL) map[uint64]key {
	k := collection.AccountID32()
	m, ok := b.nft[k]
	if !ok {
		m = map[uint64]key{}
		b.nft[k] = m
	}
	return m
}

func (b *Book) credit(balances map[key]*big.Int, holder key, amount *big.Int) {
	bal, ok := balances[holder]
	if !ok {
		bal = new(big.Int)
		balances[holder] = bal
	}
	bal.Add(bal, amount)
}

func (b *Book) debit(balances map[key]*big.Int, holder key, amount *big.Int) error {
	bal, ok := balances[holder]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance: have %v, want %v", bal, amount)
	}
	bal.Sub(bal, amount)
	return nil
}

// BalanceOf reports the holder's balance. A nil token means native.
func (b *Book) BalanceOf(_ context.Context, token, holder *url.URL) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	balances := b.native
	if token != nil {
		balances = b.balancesOf(token)
	}
	bal, ok := balances[holder.AccountID32()]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(bal), nil
}

// TransferNative moves native value.
func (b *Book) TransferNative(_ context.Context, from, to *url.URL, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %v", amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.debit(b.native, from.AccountID32(), amount); err != nil {
		return err
	}
	b.credit(b.native, to.AccountID32(), amount)
	return nil
}

// TransferFungible moves fungible tokens, deducting any transfer fee
// from the delivered amount.
func (b *Book) TransferFungible(_ context.Context, token, from, to *url.URL, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %v", amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balances := b.balancesOf(token)
	if err := b.debit(balances, from.AccountID32(), amount); err != nil {
		return err
	}

	delivered := new(big.Int).Set(amount)
	if bps := b.feeBps[token.AccountID32()]; bps > 0 {
		fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
		fee.Div(fee, big.NewInt(protocol.ShareTotalBps))
		delivered.Sub(delivered, fee)
	}
	b.credit(balances, to.AccountID32(), delivered)
	return nil
}

// TransferNonFungible moves tokens of a collection.
func (b *Book) TransferNonFungible(_ context.Context, collection, from, to *url.URL, tokenIDs []uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	owners := b.ownersOf(collection)
	fromKey := from.AccountID32()
	for _, id := range tokenIDs {
		if owners[id] != fromKey {
			return fmt.Errorf("%v does not own token %d of %v", from, id, collection)
		}
	}
	toKey := to.AccountID32()
	for _, id := range tokenIDs {
		owners[id] = toKey
	}
	return nil
}

// Owner reports the holder key of a collection token, if any.
func (b *Book) Owner(collection *url.URL, id uint64) (key, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k, ok := b.ownersOf(collection)[id]
	return k, ok
}

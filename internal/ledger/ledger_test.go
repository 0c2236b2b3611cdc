// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	. "gitlab.com/heirloomnetwork/heirloom/internal/ledger"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

func TestNativeTransfers(t *testing.T) {
	book := NewBook()
	alice := url.MustParse("heir://alice")
	bob := url.MustParse("heir://bob")

	book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, book.TransferNative(context.Background(), alice, bob, big.NewInt(40)))

	bal, err := book.BalanceOf(context.Background(), nil, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(60), bal)
	bal, err = book.BalanceOf(context.Background(), nil, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(40), bal)

	require.Error(t, book.TransferNative(context.Background(), alice, bob, big.NewInt(61)))
	require.Error(t, book.TransferNative(context.Background(), alice, bob, big.NewInt(0)))
}

func TestFungibleFee(t *testing.T) {
	book := NewBook()
	alice := url.MustParse("heir://alice")
	bob := url.MustParse("heir://bob")
	token := url.MustParse("heir://usdx")

	book.CreditFungible(token, alice, big.NewInt(1000))
	book.SetTransferFee(token, 250) // 2.5%
	require.NoError(t, book.TransferFungible(context.Background(), token, alice, bob, big.NewInt(1000)))

	bal, err := book.BalanceOf(context.Background(), token, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(975), bal)
}

func TestNonFungibleOwnership(t *testing.T) {
	book := NewBook()
	alice := url.MustParse("heir://alice")
	bob := url.MustParse("heir://bob")
	collection := url.MustParse("heir://punks")

	book.MintNonFungible(collection, alice, []uint64{1, 2, 3})
	require.NoError(t, book.TransferNonFungible(context.Background(), collection, alice, bob, []uint64{1, 3}))

	holder, ok := book.Owner(collection, 1)
	require.True(t, ok)
	require.Equal(t, bob.AccountID32(), holder)
	holder, ok = book.Owner(collection, 2)
	require.True(t, ok)
	require.Equal(t, alice.AccountID32(), holder)

	// bob does not own token 2
	require.Error(t, book.TransferNonFungible(context.Background(), collection, bob, alice, []uint64{2}))
	_, ok = book.Owner(collection, 9)
	require.False(t, ok)
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	. "gitlab.com/heirloomnetwork/heirloom/protocol"
)

func TestBeneficiaryAllocations(t *testing.T) {
	owner := url.MustParse("heir://owner")
	b1 := url.MustParse("heir://one")
	b2 := url.MustParse("heir://two")

	v := &Vault{Url: owner, Status: VaultStatusActive}
	require.NoError(t, v.AddBeneficiary(b1, 6000))
	require.NoError(t, v.AddBeneficiary(b2, 4000))
	require.Equal(t, uint64(10000), v.ShareTotal)
	require.Equal(t, v.ComputeShareTotal(), v.ShareTotal)

	// the pot is full
	err := v.AddBeneficiary(url.MustParse("heir://three"), 1)
	require.ErrorIs(t, err, errors.OverAllocated)

	// the owner, duplicates, and zero shares are rejected
	require.ErrorIs(t, v.AddBeneficiary(owner, 100), errors.InvalidBeneficiary)
	require.ErrorIs(t, v.AddBeneficiary(b1, 100), errors.InvalidBeneficiary)
	require.ErrorIs(t, v.UpdateShare(b1, 0), errors.InvalidBeneficiary)

	require.NoError(t, v.UpdateShare(b1, 1000))
	require.Equal(t, uint64(5000), v.ShareTotal)
	require.Equal(t, v.ComputeShareTotal(), v.ShareTotal)

	require.ErrorIs(t, v.UpdateShare(b2, 9001), errors.OverAllocated)

	require.NoError(t, v.RemoveBeneficiary(b2))
	require.Equal(t, uint64(1000), v.ShareTotal)
	require.Equal(t, v.ComputeShareTotal(), v.ShareTotal)
	require.ErrorIs(t, v.RemoveBeneficiary(b2), errors.InvalidBeneficiary)

	_, ok := v.Beneficiary(b1)
	require.True(t, ok)
	_, ok = v.Beneficiary(b2)
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	v := &Vault{Deadline: now.Add(time.Hour)}

	require.False(t, v.IsExpired(now))
	require.Equal(t, time.Hour, v.TimeRemaining(now))

	// the deadline instant itself counts as expired
	require.True(t, v.IsExpired(now.Add(time.Hour)))
	require.Zero(t, v.TimeRemaining(now.Add(time.Hour)))
	require.Zero(t, v.TimeRemaining(now.Add(2*time.Hour)))
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, VaultStatusActive.CanTransitionTo(VaultStatusTriggered))
	require.True(t, VaultStatusActive.CanTransitionTo(VaultStatusCancelled))
	require.True(t, VaultStatusTriggered.CanTransitionTo(VaultStatusPartiallyClaimed))
	require.True(t, VaultStatusTriggered.CanTransitionTo(VaultStatusClaimed))
	require.True(t, VaultStatusPartiallyClaimed.CanTransitionTo(VaultStatusClaimed))

	require.False(t, VaultStatusTriggered.CanTransitionTo(VaultStatusActive))
	require.False(t, VaultStatusTriggered.CanTransitionTo(VaultStatusCancelled))
	require.False(t, VaultStatusClaimed.CanTransitionTo(VaultStatusTriggered))
	require.False(t, VaultStatusCancelled.CanTransitionTo(VaultStatusActive))

	require.True(t, VaultStatusClaimed.IsTerminal())
	require.True(t, VaultStatusCancelled.IsTerminal())
	require.False(t, VaultStatusActive.IsTerminal())
	require.False(t, VaultStatusPartiallyClaimed.IsTerminal())
}

func TestAssetArithmetic(t *testing.T) {
	a := &AssetRecord{Type: AssetTypeNative}
	require.False(t, a.CreditTokens(big.NewInt(-5)))
	require.True(t, a.CreditTokens(big.NewInt(100)))

	// floor(100 × 3333 / 10000) = 33
	require.Equal(t, big.NewInt(33), a.Entitlement(3333))
	require.Equal(t, big.NewInt(100), a.Entitlement(10000))
	require.Zero(t, a.Entitlement(0).Sign())

	require.False(t, a.CanDebitTokens(big.NewInt(101)))
	require.True(t, a.DebitTokens(big.NewInt(40)))
	require.False(t, a.DebitTokens(big.NewInt(61)))

	a.Released.SetInt64(50)
	require.Equal(t, big.NewInt(10), a.Residual())
}

func TestAssetTokenIDs(t *testing.T) {
	a := &AssetRecord{Type: AssetTypeNonFungible, Token: url.MustParse("heir://punks")}
	require.True(t, a.AddTokenIDs([]uint64{1, 2, 3}))
	require.False(t, a.AddTokenIDs([]uint64{4, 2}))
	require.False(t, a.AddTokenIDs([]uint64{5, 5}))
	require.Len(t, a.TokenIDs, 3)

	require.Equal(t, uint64(1), a.TokenEntitlement(6000))
	require.Equal(t, uint64(3), a.TokenEntitlement(10000))
}

func TestClaimRanges(t *testing.T) {
	c := new(ClaimRecord)
	require.Zero(t, c.ReleasedCount())

	c.AddRange(0, 3)
	c.AddRange(3, 5) // adjacent, merges
	c.AddRange(7, 9)
	require.Equal(t, []TokenRange{{Start: 0, End: 5}, {Start: 7, End: 9}}, c.Ranges)
	require.Equal(t, uint64(7), c.ReleasedCount())
}

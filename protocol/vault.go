// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"time"

	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// ShareTotalBps is the share denominator, 100% in basis points.
const ShareTotalBps = 10000

// Vault is the per-owner record of beneficiaries, timing rules, and
// custody state. Exactly one vault may exist per owner identity.
type Vault struct {
	Url                  *url.URL    `json:"url"`
	Status               VaultStatus `json:"status"`
	CreatedAt            time.Time   `json:"createdAt"`
	LastCheckIn          time.Time   `json:"lastCheckIn"`
	Deadline             time.Time   `json:"deadline"`
	TriggeredAt          time.Time   `json:"triggeredAt"`
	Executor             *url.URL    `json:"executor,omitempty"`
	RequiresConfirmation bool        `json:"requiresConfirmation,omitempty"`
	Paused               bool        `json:"paused,omitempty"`
	LastClaimant         *url.URL    `json:"lastClaimant,omitempty"`

	// ShareTotal caches the sum of beneficiary shares in basis points.
	// It must always equal ComputeShareTotal().
	ShareTotal    uint64                   `json:"shareTotal"`
	Beneficiaries []*BeneficiaryAllocation `json:"beneficiaries"`
	TimeLock      *TimeLock                `json:"timeLock,omitempty"`
}

// BeneficiaryAllocation is one beneficiary's share of a vault.
type BeneficiaryAllocation struct {
	Url      *url.URL `json:"url"`
	ShareBps uint64   `json:"shareBps"`
}

// Beneficiary returns the allocation for the given identity.
func (v *Vault) Beneficiary(u *url.URL) (*BeneficiaryAllocation, bool) {
	for _, b := range v.Beneficiaries {
		if b.Url.Equal(u) {
			return b, true
		}
	}
	return nil, false
}

// ComputeShareTotal sums the beneficiary shares by full scan. The cached
// ShareTotal must always agree with this value.
func (v *Vault) ComputeShareTotal() uint64 {
	var total uint64
	for _, b := range v.Beneficiaries {
		total += b.ShareBps
	}
	return total
}

// AddBeneficiary adds a beneficiary allocation, maintaining the cached
// share total.
func (v *Vault) AddBeneficiary(u *url.URL, shareBps uint64) error {
	if u == nil || u.Equal(v.Url) {
		return errors.InvalidBeneficiary.WithFormat("beneficiary %v must not be the owner", u)
	}
	if shareBps == 0 {
		return errors.InvalidBeneficiary.WithFormat("share must be positive")
	}
	if _, ok := v.Beneficiary(u); ok {
		return errors.InvalidBeneficiary.WithFormat("%v is already a beneficiary", u)
	}
	if v.ShareTotal+shareBps > ShareTotalBps {
		return errors.OverAllocated.WithFormat("share total %d + %d exceeds %d bps", v.ShareTotal, shareBps, ShareTotalBps)
	}

	v.Beneficiaries = append(v.Beneficiaries, &BeneficiaryAllocation{Url: u, ShareBps: shareBps})
	v.ShareTotal += shareBps
	return nil
}

// RemoveBeneficiary removes a beneficiary allocation, maintaining the
// cached share total.
func (v *Vault) RemoveBeneficiary(u *url.URL) error {
	for i, b := range v.Beneficiaries {
		if !b.Url.Equal(u) {
			continue
		}
		v.ShareTotal -= b.ShareBps
		v.Beneficiaries = append(v.Beneficiaries[:i], v.Beneficiaries[i+1:]...)
		return nil
	}
	return errors.InvalidBeneficiary.WithFormat("%v is not a beneficiary", u)
}

// UpdateShare changes a beneficiary's share, maintaining the cached
// share total.
func (v *Vault) UpdateShare(u *url.URL, shareBps uint64) error {
	b, ok := v.Beneficiary(u)
	if !ok {
		return errors.InvalidBeneficiary.WithFormat("%v is not a beneficiary", u)
	}
	if shareBps == 0 {
		return errors.InvalidBeneficiary.WithFormat("share must be positive")
	}
	if v.ShareTotal-b.ShareBps+shareBps > ShareTotalBps {
		return errors.OverAllocated.WithFormat("share total %d - %d + %d exceeds %d bps", v.ShareTotal, b.ShareBps, shareBps, ShareTotalBps)
	}
	v.ShareTotal = v.ShareTotal - b.ShareBps + shareBps
	b.ShareBps = shareBps
	return nil
}

// IsExpired returns true if the deadline has passed. Expiry is a pure
// function of the supplied time; there are no background timers.
func (v *Vault) IsExpired(now time.Time) bool {
	return !v.Deadline.After(now)
}

// TimeRemaining returns max(0, deadline − now).
func (v *Vault) TimeRemaining(now time.Time) time.Duration {
	if v.IsExpired(now) {
		return 0
	}
	return v.Deadline.Sub(now)
}

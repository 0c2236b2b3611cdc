// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package events

import (
	"math/big"
	"time"

	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// Event is an audit record of one committed vault state transition.
// The event stream is the vault engine's sole durable audit trail.
type Event interface {
	EventType() string
	EventVault() *url.URL
}

// Base carries the fields every event has.
type Base struct {
	Vault *url.URL  `json:"vault"`
	Actor *url.URL  `json:"actor"`
	Time  time.Time `json:"time"`
}

// EventVault returns the vault the event belongs to.
func (b Base) EventVault() *url.URL { return b.Vault }

// VaultInitialized records vault creation.
type VaultInitialized struct {
	Base
	Beneficiary *url.URL  `json:"beneficiary"`
	ShareBps    uint64    `json:"shareBps"`
	Deadline    time.Time `json:"deadline"`
}

func (VaultInitialized) EventType() string { return "vaultInitialized" }

// BeneficiaryAdded records a new allocation.
type BeneficiaryAdded struct {
	Base
	Beneficiary *url.URL `json:"beneficiary"`
	ShareBps    uint64   `json:"shareBps"`
}

func (BeneficiaryAdded) EventType() string { return "beneficiaryAdded" }

// BeneficiaryRemoved records a removed allocation.
type BeneficiaryRemoved struct {
	Base
	Beneficiary *url.URL `json:"beneficiary"`
}

func (BeneficiaryRemoved) EventType() string { return "beneficiaryRemoved" }

// ShareUpdated records a changed allocation.
type ShareUpdated struct {
	Base
	Beneficiary *url.URL `json:"beneficiary"`
	ShareBps    uint64   `json:"shareBps"`
}

func (ShareUpdated) EventType() string { return "shareUpdated" }

// AssetDeposited records a deposit. Amount is the actually received
// amount, after any transfer fees.
type AssetDeposited struct {
	Base
	AssetType protocol.AssetType `json:"assetType"`
	Token     *url.URL           `json:"token,omitempty"`
	Amount    *big.Int           `json:"amount,omitempty"`
	TokenIDs  []uint64           `json:"tokenIds,omitempty"`
}

func (AssetDeposited) EventType() string { return "assetDeposited" }

// CheckedIn records a deadline extension.
type CheckedIn struct {
	Base
	NewDeadline time.Time `json:"newDeadline"`
}

func (CheckedIn) EventType() string { return "checkedIn" }

// SwitchTriggered records the deadman switch firing.
type SwitchTriggered struct {
	Base
	Deadline time.Time `json:"deadline"`
}

func (SwitchTriggered) EventType() string { return "switchTriggered" }

// Release is one asset release within a claim.
type Release struct {
	AssetType protocol.AssetType `json:"assetType"`
	Token     *url.URL           `json:"token,omitempty"`
	Amount    *big.Int           `json:"amount,omitempty"`
	TokenIDs  []uint64           `json:"tokenIds,omitempty"`
}

// AssetsClaimed records a beneficiary claim.
type AssetsClaimed struct {
	Base
	Beneficiary *url.URL  `json:"beneficiary"`
	Releases    []Release `json:"releases"`
}

func (AssetsClaimed) EventType() string { return "assetsClaimed" }

// DustSwept records the reclamation of flooring residue.
type DustSwept struct {
	Base
	Recipient *url.URL  `json:"recipient"`
	Releases  []Release `json:"releases"`
}

func (DustSwept) EventType() string { return "dustSwept" }

// VaultCancelled records an owner cancellation with full return of
// custody.
type VaultCancelled struct {
	Base
	Releases []Release `json:"releases"`
}

func (VaultCancelled) EventType() string { return "vaultCancelled" }

// PauseChanged records an emergency pause or unpause.
type PauseChanged struct {
	Base
	Paused bool `json:"paused"`
}

func (PauseChanged) EventType() string { return "pauseChanged" }

// EmergencyWithdrawn records an administrative withdrawal back to the
// owner.
type EmergencyWithdrawn struct {
	Base
	Releases []Release `json:"releases"`
}

func (EmergencyWithdrawn) EventType() string { return "emergencyWithdrawn" }

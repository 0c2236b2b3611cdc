// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VaultStatus is the lifecycle status of a vault.
type VaultStatus uint64

const (
	// VaultStatusActive means the owner is alive and in control.
	VaultStatusActive VaultStatus = 1
	// VaultStatusTriggered means the deadman switch fired.
	VaultStatusTriggered VaultStatus = 2
	// VaultStatusPartiallyClaimed means at least one claim was released.
	VaultStatusPartiallyClaimed VaultStatus = 3
	// VaultStatusClaimed means every beneficiary fully claimed every asset.
	VaultStatusClaimed VaultStatus = 4
	// VaultStatusCancelled means the owner reclaimed the vault.
	VaultStatusCancelled VaultStatus = 5
)

// AssetType is the class of a custodied asset.
type AssetType uint64

const (
	// AssetTypeNative is the chain's native value unit.
	AssetTypeNative AssetType = 1
	// AssetTypeFungible is a fungible token identified by contract.
	AssetTypeFungible AssetType = 2
	// AssetTypeNonFungible is a token collection identified by contract.
	AssetTypeNonFungible AssetType = 3
)

// TimeLockType is the kind of a vesting schedule.
type TimeLockType uint64

const (
	// TimeLockTypeImmediate releases everything once triggered.
	TimeLockTypeImmediate TimeLockType = 1
	// TimeLockTypeLinear vests linearly after a cliff.
	TimeLockTypeLinear TimeLockType = 2
	// TimeLockTypeMilestones vests in steps at fixed timestamps.
	TimeLockTypeMilestones TimeLockType = 3
)

// Action is an operation subject to authorization.
type Action uint64

const (
	ActionCreateVault Action = iota + 1
	ActionModifyBeneficiaries
	ActionDeposit
	ActionCheckIn
	ActionTrigger
	ActionClaim
	ActionSweep
	ActionCancel
	ActionEmergencyPause
	ActionEmergencyWithdraw
)

// Capability is the role under which an action was authorized.
type Capability uint64

const (
	CapabilityOwner Capability = iota + 1
	CapabilityBeneficiary
	CapabilityExecutor
	CapabilityAdmin
	CapabilityAnyone
)

// IsTerminal returns true if no further status transition is possible.
func (s VaultStatus) IsTerminal() bool {
	return s == VaultStatusClaimed || s == VaultStatusCancelled
}

// CanTransitionTo returns true if the transition is a legal forward move.
func (s VaultStatus) CanTransitionTo(t VaultStatus) bool {
	switch s {
	case VaultStatusActive:
		return t == VaultStatusTriggered || t == VaultStatusCancelled
	case VaultStatusTriggered:
		return t == VaultStatusPartiallyClaimed || t == VaultStatusClaimed
	case VaultStatusPartiallyClaimed:
		return t == VaultStatusClaimed
	default:
		return false
	}
}

// GetEnumValue implements the enumeration encoding interface.
func (s VaultStatus) GetEnumValue() uint64 { return uint64(s) }

// SetEnumValue implements the enumeration encoding interface.
func (s *VaultStatus) SetEnumValue(u uint64) bool { *s = VaultStatus(u); return true }

// String returns the name of the status.
func (s VaultStatus) String() string {
	switch s {
	case VaultStatusActive:
		return "active"
	case VaultStatusTriggered:
		return "triggered"
	case VaultStatusPartiallyClaimed:
		return "partiallyClaimed"
	case VaultStatusClaimed:
		return "claimed"
	case VaultStatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("VaultStatus:%d", uint64(s))
	}
}

// VaultStatusByName returns the status with the given name.
func VaultStatusByName(name string) (VaultStatus, bool) {
	for _, s := range []VaultStatus{VaultStatusActive, VaultStatusTriggered, VaultStatusPartiallyClaimed, VaultStatusClaimed, VaultStatusCancelled} {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return 0, false
}

// MarshalJSON marshals the status as a string.
func (s VaultStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// UnmarshalJSON unmarshals the status from a string.
func (s *VaultStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := VaultStatusByName(name)
	if !ok {
		return fmt.Errorf("invalid vault status %q", name)
	}
	*s = v
	return nil
}

// GetEnumValue implements the enumeration encoding interface.
func (t AssetType) GetEnumValue() uint64 { return uint64(t) }

// SetEnumValue implements the enumeration encoding interface.
func (t *AssetType) SetEnumValue(u uint64) bool { *t = AssetType(u); return true }

// String returns the name of the asset type.
func (t AssetType) String() string {
	switch t {
	case AssetTypeNative:
		return "native"
	case AssetTypeFungible:
		return "fungible"
	case AssetTypeNonFungible:
		return "nonFungible"
	default:
		return fmt.Sprintf("AssetType:%d", uint64(t))
	}
}

// AssetTypeByName returns the asset type with the given name.
func AssetTypeByName(name string) (AssetType, bool) {
	for _, t := range []AssetType{AssetTypeNative, AssetTypeFungible, AssetTypeNonFungible} {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	return 0, false
}

// MarshalJSON marshals the asset type as a string.
func (t AssetType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// UnmarshalJSON unmarshals the asset type from a string.
func (t *AssetType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := AssetTypeByName(name)
	if !ok {
		return fmt.Errorf("invalid asset type %q", name)
	}
	*t = v
	return nil
}

// GetEnumValue implements the enumeration encoding interface.
func (t TimeLockType) GetEnumValue() uint64 { return uint64(t) }

// SetEnumValue implements the enumeration encoding interface.
func (t *TimeLockType) SetEnumValue(u uint64) bool { *t = TimeLockType(u); return true }

// String returns the name of the timelock type.
func (t TimeLockType) String() string {
	switch t {
	case TimeLockTypeImmediate:
		return "immediate"
	case TimeLockTypeLinear:
		return "linear"
	case TimeLockTypeMilestones:
		return "milestones"
	default:
		return fmt.Sprintf("TimeLockType:%d", uint64(t))
	}
}

// TimeLockTypeByName returns the timelock type with the given name.
func TimeLockTypeByName(name string) (TimeLockType, bool) {
	for _, t := range []TimeLockType{TimeLockTypeImmediate, TimeLockTypeLinear, TimeLockTypeMilestones} {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	return 0, false
}

// MarshalJSON marshals the timelock type as a string.
func (t TimeLockType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// UnmarshalJSON unmarshals the timelock type from a string.
func (t *TimeLockType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := TimeLockTypeByName(name)
	if !ok {
		return fmt.Errorf("invalid timelock type %q", name)
	}
	*t = v
	return nil
}

// String returns the name of the action.
func (a Action) String() string {
	switch a {
	case ActionCreateVault:
		return "createVault"
	case ActionModifyBeneficiaries:
		return "modifyBeneficiaries"
	case ActionDeposit:
		return "deposit"
	case ActionCheckIn:
		return "checkIn"
	case ActionTrigger:
		return "trigger"
	case ActionClaim:
		return "claim"
	case ActionSweep:
		return "sweep"
	case ActionCancel:
		return "cancel"
	case ActionEmergencyPause:
		return "emergencyPause"
	case ActionEmergencyWithdraw:
		return "emergencyWithdraw"
	default:
		return fmt.Sprintf("Action:%d", uint64(a))
	}
}

// String returns the name of the capability.
func (c Capability) String() string {
	switch c {
	case CapabilityOwner:
		return "owner"
	case CapabilityBeneficiary:
		return "beneficiary"
	case CapabilityExecutor:
		return "executor"
	case CapabilityAdmin:
		return "admin"
	case CapabilityAnyone:
		return "anyone"
	default:
		return fmt.Sprintf("Capability:%d", uint64(c))
	}
}

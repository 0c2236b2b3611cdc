// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// authorize is the single access-policy entry point. Every mutating
// operation resolves its caller into a capability here; a denial names
// the violated rule, never a generic failure.
func (e *Engine) authorize(v *protocol.Vault, caller *url.URL, action protocol.Action) (protocol.Capability, error) {
	if caller == nil {
		return 0, errors.NotAuthorized.With("missing caller identity")
	}

	// The emergency capability is held outside any vault.
	switch action {
	case protocol.ActionEmergencyPause, protocol.ActionEmergencyWithdraw:
		if e.admin == nil || !caller.Equal(e.admin) {
			return 0, errors.NotAuthorized.WithFormat("%v does not hold the emergency capability", caller)
		}
		return protocol.CapabilityAdmin, nil
	}

	if v.Paused {
		return 0, errors.VaultPaused.WithFormat("vault %v is paused", v.Url)
	}

	switch action {
	case protocol.ActionModifyBeneficiaries, protocol.ActionDeposit, protocol.ActionCheckIn, protocol.ActionCancel:
		if !caller.Equal(v.Url) {
			return 0, errors.NotOwner.WithFormat("%v is not the owner of %v", caller, v.Url)
		}
		if v.Status != protocol.VaultStatusActive {
			return 0, errors.WrongStatus.WithFormat("%v requires an active vault, status is %v", action, v.Status)
		}
		return protocol.CapabilityOwner, nil

	case protocol.ActionTrigger:
		if v.Executor != nil && caller.Equal(v.Executor) {
			return protocol.CapabilityExecutor, nil
		}
		// A vault that requires confirmation accepts only its executor,
		// regardless of the trigger policy
		if e.conf.AnyoneMayTrigger && !v.RequiresConfirmation {
			return protocol.CapabilityAnyone, nil
		}
		return 0, errors.NotAuthorized.WithFormat("%v is not the executor of %v", caller, v.Url)

	case protocol.ActionClaim:
		switch v.Status {
		case protocol.VaultStatusTriggered, protocol.VaultStatusPartiallyClaimed:
			// ok
		case protocol.VaultStatusActive:
			return 0, errors.SwitchNotTriggered.WithFormat("the switch for %v has not been triggered", v.Url)
		default:
			return 0, errors.WrongStatus.WithFormat("cannot claim from a %v vault", v.Status)
		}
		if _, ok := v.Beneficiary(caller); !ok {
			return 0, errors.NotBeneficiary.WithFormat("%v is not a beneficiary of %v", caller, v.Url)
		}
		return protocol.CapabilityBeneficiary, nil

	case protocol.ActionSweep:
		if v.Status != protocol.VaultStatusClaimed {
			return 0, errors.WrongStatus.WithFormat("dust can be swept only once all claims are complete, status is %v", v.Status)
		}
		if caller.Equal(v.Url) {
			return protocol.CapabilityOwner, nil
		}
		if _, ok := v.Beneficiary(caller); ok {
			return protocol.CapabilityBeneficiary, nil
		}
		return 0, errors.NotAuthorized.WithFormat("%v may not sweep %v", caller, v.Url)

	default:
		return 0, errors.InternalError.WithFormat("no policy for action %v", action)
	}
}

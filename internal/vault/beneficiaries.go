// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"context"

	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// AddBeneficiary adds a beneficiary allocation to the caller's vault.
func (e *Engine) AddBeneficiary(ctx context.Context, caller, beneficiary *url.URL, shareBps uint64) error {
	return e.modifyBeneficiaries(caller, func(st *stateManager, v *protocol.Vault) error {
		if err := v.AddBeneficiary(beneficiary, shareBps); err != nil {
			return err
		}
		st.Record(events.BeneficiaryAdded{Base: st.base(caller), Beneficiary: beneficiary, ShareBps: shareBps})
		return nil
	})
}

// RemoveBeneficiary removes a beneficiary allocation from the caller's
// vault.
func (e *Engine) RemoveBeneficiary(ctx context.Context, caller, beneficiary *url.URL) error {
	return e.modifyBeneficiaries(caller, func(st *stateManager, v *protocol.Vault) error {
		if err := v.RemoveBeneficiary(beneficiary); err != nil {
			return err
		}
		st.Record(events.BeneficiaryRemoved{Base: st.base(caller), Beneficiary: beneficiary})
		return nil
	})
}

// UpdateShare changes a beneficiary's share of the caller's vault.
func (e *Engine) UpdateShare(ctx context.Context, caller, beneficiary *url.URL, shareBps uint64) error {
	return e.modifyBeneficiaries(caller, func(st *stateManager, v *protocol.Vault) error {
		if err := v.UpdateShare(beneficiary, shareBps); err != nil {
			return err
		}
		st.Record(events.ShareUpdated{Base: st.base(caller), Beneficiary: beneficiary, ShareBps: shareBps})
		return nil
	})
}

func (e *Engine) modifyBeneficiaries(caller *url.URL, fn func(st *stateManager, v *protocol.Vault) error) error {
	if caller == nil {
		return errors.NotAuthorized.With("missing caller identity")
	}

	return e.execute(caller, func(st *stateManager) error {
		v, err := st.vaults.Main()
		if err != nil {
			return err
		}
		if _, err := e.authorize(v, caller, protocol.ActionModifyBeneficiaries); err != nil {
			return err
		}
		if v.IsExpired(st.now) {
			return errors.DeadlineExpired.WithFormat("the deadline %v has passed", v.Deadline)
		}

		if err := fn(st, v); err != nil {
			return err
		}
		return st.vaults.PutMain(v)
	})
}

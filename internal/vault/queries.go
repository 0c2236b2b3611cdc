// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"math/big"

	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// GetVault returns the vault owned by the given identity.
func (e *Engine) GetVault(owner *url.URL) (*protocol.Vault, error) {
	if owner == nil {
		return nil, errors.BadRequest.With("missing owner identity")
	}
	return e.db.Begin().Vault(owner).Main()
}

// GetStatus returns the vault's lifecycle status.
func (e *Engine) GetStatus(owner *url.URL) (protocol.VaultStatus, error) {
	v, err := e.GetVault(owner)
	if err != nil {
		return 0, err
	}
	return v.Status, nil
}

// GetBeneficiaries returns the vault's beneficiary allocations.
func (e *Engine) GetBeneficiaries(owner *url.URL) ([]*protocol.BeneficiaryAllocation, error) {
	v, err := e.GetVault(owner)
	if err != nil {
		return nil, err
	}
	return v.Beneficiaries, nil
}

// GetAssets returns the vault's custody records.
func (e *Engine) GetAssets(owner *url.URL) ([]*protocol.AssetRecord, error) {
	if owner == nil {
		return nil, errors.BadRequest.With("missing owner identity")
	}
	record := e.db.Begin().Vault(owner)
	if _, err := record.Main(); err != nil {
		return nil, err
	}
	return record.Assets()
}

// GetBalance returns the vault's holding of the given asset: the
// remaining balance for native and fungible assets, the unassigned
// token count for collections.
func (e *Engine) GetBalance(owner *url.URL, typ protocol.AssetType, token *url.URL) (*big.Int, error) {
	assets, err := e.GetAssets(owner)
	if err != nil {
		return nil, err
	}

	for _, a := range assets {
		if !a.Matches(typ, token) {
			continue
		}
		if a.Type == protocol.AssetTypeNonFungible {
			return big.NewInt(int64(len(a.TokenIDs)) - int64(a.Cursor)), nil
		}
		return a.Residual(), nil
	}
	return nil, errors.UnknownAsset.WithFormat("%v holds no %v %v", owner, typ, token)
}

// GetClaimStatus returns what has been released to the beneficiary for
// the given asset. A beneficiary that has not claimed yet has an empty
// record.
func (e *Engine) GetClaimStatus(owner, beneficiary *url.URL, typ protocol.AssetType, token *url.URL) (*protocol.ClaimRecord, error) {
	if owner == nil || beneficiary == nil {
		return nil, errors.BadRequest.With("missing identity")
	}

	record := e.db.Begin().Vault(owner)
	v, err := record.Main()
	if err != nil {
		return nil, err
	}
	if _, ok := v.Beneficiary(beneficiary); !ok {
		return nil, errors.NotBeneficiary.WithFormat("%v is not a beneficiary of %v", beneficiary, owner)
	}

	assets, err := record.Assets()
	if err != nil {
		return nil, err
	}
	index := -1
	for i, a := range assets {
		if a.Matches(typ, token) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.UnknownAsset.WithFormat("%v holds no %v %v", owner, typ, token)
	}

	claims, err := record.Claims()
	if err != nil {
		return nil, err
	}
	if c, ok := findClaim(claims, beneficiary, uint64(index)); ok {
		return c, nil
	}
	return &protocol.ClaimRecord{Beneficiary: beneficiary, AssetIndex: uint64(index)}, nil
}

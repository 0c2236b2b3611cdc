// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package database

import (
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
	"gitlab.com/heirloomnetwork/heirloom/storage"
)

// Vault returns the record accessor for the vault owned by the given
// identity.
func (b *Batch) Vault(owner *url.URL) *VaultRecord {
	return &VaultRecord{batch: b, owner: owner}
}

// VaultRecord accesses the stored records of one vault.
type VaultRecord struct {
	batch *Batch
	owner *url.URL
}

func (r *VaultRecord) key(name string) storage.Key {
	return storage.MakeKey("Vault", r.owner.AccountID(), name)
}

// Exists returns true if the vault has a main record.
func (r *VaultRecord) Exists() (bool, error) {
	_, err := r.batch.getValue(r.key("Main"))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, errors.InternalError.Wrap(err)
	}
}

// Main loads the vault's main record.
func (r *VaultRecord) Main() (*protocol.Vault, error) {
	v := new(protocol.Vault)
	err := r.batch.getAs(r.key("Main"), v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, errors.VaultNotInitialized.WithFormat("%v has no vault", r.owner)
	default:
		return nil, errors.InternalError.Wrap(err)
	}
}

// PutMain stages the vault's main record.
func (r *VaultRecord) PutMain(v *protocol.Vault) error {
	return r.batch.putAs(r.key("Main"), v)
}

// Assets loads the vault's asset records. A vault without deposits has
// an empty list.
func (r *VaultRecord) Assets() ([]*protocol.AssetRecord, error) {
	var assets []*protocol.AssetRecord
	err := r.batch.getAs(r.key("Assets"), &assets)
	switch {
	case err == nil:
		return assets, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	default:
		return nil, errors.InternalError.Wrap(err)
	}
}

// PutAssets stages the vault's asset records.
func (r *VaultRecord) PutAssets(assets []*protocol.AssetRecord) error {
	return r.batch.putAs(r.key("Assets"), assets)
}

// Claims loads the vault's claim records.
func (r *VaultRecord) Claims() ([]*protocol.ClaimRecord, error) {
	var claims []*protocol.ClaimRecord
	err := r.batch.getAs(r.key("Claims"), &claims)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	default:
		return nil, errors.InternalError.Wrap(err)
	}
}

// PutClaims stages the vault's claim records.
func (r *VaultRecord) PutClaims(claims []*protocol.ClaimRecord) error {
	return r.batch.putAs(r.key("Claims"), claims)
}

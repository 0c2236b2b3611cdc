// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is an operation status code.
type Status uint64

const (
	// OK means the operation succeeded.
	OK Status = 200

	// BadRequest means the request was invalid.
	BadRequest Status = 400

	// NotAuthorized means the caller lacks the capability for the action.
	NotAuthorized Status = 403

	// VaultNotInitialized means no vault exists for the identity.
	VaultNotInitialized Status = 404

	// VaultAlreadyExists means the identity already owns a vault.
	VaultAlreadyExists Status = 409

	// InvalidBeneficiary means the beneficiary identity is not acceptable.
	InvalidBeneficiary Status = 420

	// InvalidDeadline means the deadline is in the past or outside the
	// configured extension window.
	InvalidDeadline Status = 421

	// NotOwner means the caller is not the vault owner.
	NotOwner Status = 422

	// NotBeneficiary means the caller is not a registered beneficiary.
	NotBeneficiary Status = 423

	// SwitchNotTriggered means the deadman switch has not fired yet.
	SwitchNotTriggered Status = 424

	// SwitchAlreadyTriggered means the deadman switch already fired.
	SwitchAlreadyTriggered Status = 425

	// DeadlineNotExpired means the deadline has not passed yet.
	DeadlineNotExpired Status = 426

	// DeadlineExpired means the deadline has passed and the operation is
	// no longer permitted.
	DeadlineExpired Status = 427

	// OverAllocated means beneficiary shares would exceed 100%.
	OverAllocated Status = 428

	// AlreadyClaimed means the asset unit was already released.
	AlreadyClaimed Status = 429

	// InsufficientBalance means the vault does not hold enough of the asset.
	InsufficientBalance Status = 430

	// InvalidTimeLock means the vesting schedule is structurally invalid.
	InvalidTimeLock Status = 431

	// VaultBusy means another operation holds the vault transaction lock.
	VaultBusy Status = 432

	// VaultPaused means the vault is under an emergency pause.
	VaultPaused Status = 433

	// NothingToSweep means no residual dust is reclaimable.
	NothingToSweep Status = 434

	// InvalidAmount means the amount is zero, negative, or nil.
	InvalidAmount Status = 435

	// DuplicateToken means a token identifier is already held by the vault.
	DuplicateToken Status = 436

	// UnknownAsset means the asset reference does not match a deposit.
	UnknownAsset Status = 437

	// WrongStatus means the vault is not in a status that permits the
	// operation.
	WrongStatus Status = 438

	// NothingVested means the vesting schedule has released nothing new
	// at the current time.
	NothingVested Status = 439

	// UnknownError means the error is unknown.
	UnknownError Status = 500

	// InternalError means an internal invariant was violated.
	InternalError Status = 501

	// TransferFailed means the external asset transfer did not complete.
	TransferFailed Status = 502

	// EncodingError means a record could not be encoded or decoded.
	EncodingError Status = 503
)

// Success returns true if the status represents success.
func (s Status) Success() bool { return s < 300 }

// IsKnownError returns true if the status is non-zero and not UnknownError.
func (s Status) IsKnownError() bool { return s != 0 && s != UnknownError }

// IsClientError returns true if the status is a client error.
func (s Status) IsClientError() bool { return s >= 400 && s < 500 }

// IsServerError returns true if the status is a server error.
func (s Status) IsServerError() bool { return s >= 500 }

// GetEnumValue implements the enumeration encoding interface.
func (s Status) GetEnumValue() uint64 { return uint64(s) }

// SetEnumValue implements the enumeration encoding interface.
func (s *Status) SetEnumValue(u uint64) bool {
	*s = Status(u)
	return true
}

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case BadRequest:
		return "badRequest"
	case NotAuthorized:
		return "notAuthorized"
	case VaultNotInitialized:
		return "vaultNotInitialized"
	case VaultAlreadyExists:
		return "vaultAlreadyExists"
	case InvalidBeneficiary:
		return "invalidBeneficiary"
	case InvalidDeadline:
		return "invalidDeadline"
	case NotOwner:
		return "notOwner"
	case NotBeneficiary:
		return "notBeneficiary"
	case SwitchNotTriggered:
		return "switchNotTriggered"
	case SwitchAlreadyTriggered:
		return "switchAlreadyTriggered"
	case DeadlineNotExpired:
		return "deadlineNotExpired"
	case DeadlineExpired:
		return "deadlineExpired"
	case OverAllocated:
		return "overAllocated"
	case AlreadyClaimed:
		return "alreadyClaimed"
	case InsufficientBalance:
		return "insufficientBalance"
	case InvalidTimeLock:
		return "invalidTimeLock"
	case VaultBusy:
		return "vaultBusy"
	case VaultPaused:
		return "vaultPaused"
	case NothingToSweep:
		return "nothingToSweep"
	case InvalidAmount:
		return "invalidAmount"
	case DuplicateToken:
		return "duplicateToken"
	case UnknownAsset:
		return "unknownAsset"
	case WrongStatus:
		return "wrongStatus"
	case NothingVested:
		return "nothingVested"
	case UnknownError:
		return "unknownError"
	case InternalError:
		return "internalError"
	case TransferFailed:
		return "transferFailed"
	case EncodingError:
		return "encodingError"
	default:
		return fmt.Sprintf("Status:%d", uint64(s))
	}
}

// StatusByName returns the status with the given name.
func StatusByName(name string) (Status, bool) {
	for _, s := range allStatuses {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return 0, false
}

var allStatuses = []Status{
	OK, BadRequest, NotAuthorized, VaultNotInitialized, VaultAlreadyExists,
	InvalidBeneficiary, InvalidDeadline, NotOwner, NotBeneficiary,
	SwitchNotTriggered, SwitchAlreadyTriggered, DeadlineNotExpired,
	DeadlineExpired, OverAllocated, AlreadyClaimed, InsufficientBalance,
	InvalidTimeLock, VaultBusy, VaultPaused, NothingToSweep, InvalidAmount,
	DuplicateToken, UnknownAsset, WrongStatus, NothingVested, UnknownError,
	InternalError, TransferFailed, EncodingError,
}

// MarshalJSON marshals the status as a string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON unmarshals the status from a string or a number.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v, ok := StatusByName(name)
		if !ok {
			return fmt.Errorf("invalid status %q", name)
		}
		*s = v
		return nil
	}

	var num uint64
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = Status(num)
	return nil
}

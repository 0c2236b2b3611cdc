// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"time"

	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
)

// TimeLock is a vault's vesting schedule. A nil TimeLock is equivalent
// to an immediate release.
type TimeLock struct {
	Type     TimeLockType `json:"type"`
	Cliff    time.Duration `json:"cliff,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// Milestone is one step of a milestone-based schedule. CumulativeBps is
// the total fraction claimable once the timestamp has passed.
type Milestone struct {
	Time          time.Time `json:"time"`
	CumulativeBps uint64    `json:"cumulativeBps"`
}

// Validate checks the schedule for structural errors. These are setup
// errors, not runtime ones.
func (t *TimeLock) Validate() error {
	if t == nil {
		return nil
	}
	switch t.Type {
	case TimeLockTypeImmediate:
		return nil

	case TimeLockTypeLinear:
		if t.Duration <= 0 {
			return errors.InvalidTimeLock.WithFormat("duration %v must be positive", t.Duration)
		}
		if t.Cliff < 0 || t.Cliff > t.Duration {
			return errors.InvalidTimeLock.WithFormat("cliff %v exceeds duration %v", t.Cliff, t.Duration)
		}
		return nil

	case TimeLockTypeMilestones:
		if len(t.Milestones) == 0 {
			return errors.InvalidTimeLock.With("milestone schedule is empty")
		}
		var prev Milestone
		for i, m := range t.Milestones {
			if i > 0 && !m.Time.After(prev.Time) {
				return errors.InvalidTimeLock.WithFormat("milestone %d timestamp %v does not follow %v", i, m.Time, prev.Time)
			}
			if m.CumulativeBps < prev.CumulativeBps {
				return errors.InvalidTimeLock.WithFormat("milestone %d share %d bps decreases from %d", i, m.CumulativeBps, prev.CumulativeBps)
			}
			if m.CumulativeBps > ShareTotalBps {
				return errors.InvalidTimeLock.WithFormat("milestone %d share %d bps exceeds %d", i, m.CumulativeBps, ShareTotalBps)
			}
			prev = m
		}
		return nil

	default:
		return errors.InvalidTimeLock.WithFormat("unknown timelock type %v", t.Type)
	}
}

// ClaimableBps returns the fraction of an entitlement, in basis points,
// that is claimable at the given time. The schedule starts at the
// trigger time.
func (t *TimeLock) ClaimableBps(triggeredAt, now time.Time) uint64 {
	if t == nil {
		return ShareTotalBps
	}
	switch t.Type {
	case TimeLockTypeLinear:
		start := triggeredAt.Add(t.Cliff)
		if now.Before(start) {
			return 0
		}
		vesting := t.Duration - t.Cliff
		if vesting <= 0 {
			return ShareTotalBps
		}
		elapsed := now.Sub(start)
		if elapsed >= vesting {
			return ShareTotalBps
		}
		// Microsecond resolution keeps the product within int64 for any
		// realistic vesting window
		if vesting.Microseconds() == 0 {
			return ShareTotalBps
		}
		return uint64(ShareTotalBps * elapsed.Microseconds() / vesting.Microseconds())

	case TimeLockTypeMilestones:
		var bps uint64
		for _, m := range t.Milestones {
			if now.Before(m.Time) {
				break
			}
			bps = m.CumulativeBps
		}
		return bps

	default:
		return ShareTotalBps
	}
}

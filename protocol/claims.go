// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"math/big"

	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// ClaimRecord tracks what has been released to one beneficiary for one
// asset. Records are written by the distribution engine and never
// rewound.
type ClaimRecord struct {
	Beneficiary *url.URL `json:"beneficiary"`
	AssetIndex  uint64   `json:"assetIndex"`

	// Released is the cumulative amount released (native/fungible).
	Released big.Int `json:"released"`

	// Ranges are the cursor ranges assigned (non-fungible). A vesting
	// schedule can leave a beneficiary with several disjoint ranges.
	Ranges []TokenRange `json:"ranges,omitempty"`

	// Complete means the full entitlement has been released.
	Complete bool `json:"complete"`
}

// TokenRange is a half-open range [Start, End) of token offsets.
type TokenRange struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Count returns the number of offsets in the range.
func (r TokenRange) Count() uint64 { return r.End - r.Start }

// ReleasedCount returns the total number of tokens released.
func (c *ClaimRecord) ReleasedCount() uint64 {
	var n uint64
	for _, r := range c.Ranges {
		n += r.Count()
	}
	return n
}

// AddRange appends a cursor range. Adjacent ranges are merged.
func (c *ClaimRecord) AddRange(start, end uint64) {
	if n := len(c.Ranges); n > 0 && c.Ranges[n-1].End == start {
		c.Ranges[n-1].End = end
		return
	}
	c.Ranges = append(c.Ranges, TokenRange{Start: start, End: end})
}

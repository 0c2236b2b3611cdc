// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package events_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

func TestSubscribeByType(t *testing.T) {
	bus := NewBus(nil)
	owner := url.MustParse("heir://alice")

	var triggered []SwitchTriggered
	var claimed []AssetsClaimed
	SubscribeSync(bus, func(e SwitchTriggered) { triggered = append(triggered, e) })
	SubscribeSync(bus, func(e AssetsClaimed) { claimed = append(claimed, e) })

	bus.Publish(SwitchTriggered{Base: Base{Vault: owner}})
	bus.Publish(SwitchTriggered{Base: Base{Vault: owner}})
	bus.Publish(CheckedIn{Base: Base{Vault: owner}})

	require.Len(t, triggered, 2)
	require.Empty(t, claimed)
	require.True(t, triggered[0].EventVault().Equal(owner))
}

func TestSubscriberPanicIsContained(t *testing.T) {
	bus := NewBus(nil)
	owner := url.MustParse("heir://alice")

	var after int
	SubscribeSync(bus, func(CheckedIn) { panic("boom") })
	SubscribeSync(bus, func(CheckedIn) { after++ })

	require.NotPanics(t, func() {
		bus.Publish(CheckedIn{Base: Base{Vault: owner}})
	})
	require.Equal(t, 1, after)
}

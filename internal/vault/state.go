// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault

import (
	"time"

	"gitlab.com/heirloomnetwork/heirloom/internal/database"
	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// stateManager carries the state of one vault transaction: the staged
// batch, the transaction time, and the events to publish on commit.
type stateManager struct {
	batch  *database.Batch
	vaults *database.VaultRecord
	owner  *url.URL
	now    time.Time
	events []events.Event
}

// Record records an event to publish if the transaction commits.
func (st *stateManager) Record(event events.Event) {
	st.events = append(st.events, event)
}

func (st *stateManager) base(actor *url.URL) events.Base {
	return events.Base{Vault: st.owner, Actor: actor, Time: st.now}
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vault_test

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/heirloomnetwork/heirloom/config"
	"gitlab.com/heirloomnetwork/heirloom/internal/database"
	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/internal/ledger"
	. "gitlab.com/heirloomnetwork/heirloom/internal/vault"
	"gitlab.com/heirloomnetwork/heirloom/pkg/errors"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

var (
	alice = url.MustParse("heir://alice")
	bob   = url.MustParse("heir://bob")
	carol = url.MustParse("heir://carol")
	dave  = url.MustParse("heir://dave")
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	engine *Engine
	book   *ledger.Book
	clock  *clock
	bus    *events.Bus
	events []events.Event
}

func setup(t *testing.T, fn func(c *config.Config)) *testEnv {
	t.Helper()

	db, err := database.Open("", true, nil)
	require.NoError(t, err)

	c := config.Default()
	c.AnyoneMayTrigger = true
	if fn != nil {
		fn(c)
	}

	env := new(testEnv)
	env.book = ledger.NewBook()
	env.clock = &clock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	env.bus = events.NewBus(nil)
	events.SubscribeSync(env.bus, func(e events.Event) {
		env.events = append(env.events, e)
	})

	env.engine, err = NewEngine(Options{
		Database:  db,
		Transfers: env.book,
		Events:    env.bus,
		Config:    c,
		Now:       env.clock.Now,
	})
	require.NoError(t, err)
	return env
}

// initVault creates a vault for alice with bob at the given share and a
// deadline one day out.
func (env *testEnv) initVault(t *testing.T, shareBps uint64) {
	t.Helper()
	deadline := env.clock.Now().Add(24 * time.Hour)
	require.NoError(t, env.engine.Initialize(context.Background(), alice, bob, shareBps, deadline, InitializeOptions{}))
}

func (env *testEnv) nativeBalance(t *testing.T, holder *url.URL) *big.Int {
	t.Helper()
	bal, err := env.book.BalanceOf(context.Background(), nil, holder)
	require.NoError(t, err)
	return bal
}

func TestInitialize(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	v, err := env.engine.GetVault(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusActive, v.Status)
	require.Equal(t, uint64(10000), v.ShareTotal)

	// one vault per owner
	err = env.engine.Initialize(context.Background(), alice, carol, 1000, env.clock.Now().Add(48*time.Hour), InitializeOptions{})
	require.ErrorIs(t, err, errors.VaultAlreadyExists)

	// unknown vault
	_, err = env.engine.GetVault(carol)
	require.ErrorIs(t, err, errors.VaultNotInitialized)
}

func TestInitializeRejectsBadDeadline(t *testing.T) {
	env := setup(t, nil)

	// inside the minimum extension
	err := env.engine.Initialize(context.Background(), alice, bob, 10000, env.clock.Now().Add(5*time.Second), InitializeOptions{})
	require.ErrorIs(t, err, errors.InvalidDeadline)

	// beyond the maximum extension
	err = env.engine.Initialize(context.Background(), alice, bob, 10000, env.clock.Now().Add(366*24*time.Hour), InitializeOptions{})
	require.ErrorIs(t, err, errors.InvalidDeadline)
}

func TestCheckIn(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	// too soon - minimum extension is one day
	err := env.engine.CheckIn(context.Background(), alice, env.clock.Now().Add(5*time.Second))
	require.ErrorIs(t, err, errors.InvalidDeadline)

	// not the owner
	err = env.engine.CheckIn(context.Background(), bob, env.clock.Now().Add(48*time.Hour))
	require.ErrorIs(t, err, errors.VaultNotInitialized)

	newDeadline := env.clock.Now().Add(72 * time.Hour)
	require.NoError(t, env.engine.CheckIn(context.Background(), alice, newDeadline))

	remaining, err := env.engine.TimeRemaining(alice)
	require.NoError(t, err)
	require.Equal(t, 72*time.Hour, remaining)

	// once expired, checking in is no longer possible
	env.clock.Advance(73 * time.Hour)
	err = env.engine.CheckIn(context.Background(), alice, env.clock.Now().Add(48*time.Hour))
	require.ErrorIs(t, err, errors.DeadlineExpired)
}

func TestDeadmanScenario(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	env.book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(100)))

	// before expiry the switch cannot fire and bob cannot claim
	err := env.engine.Trigger(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.DeadlineNotExpired)
	err = env.engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.SwitchNotTriggered)

	// the owner never checks in
	env.clock.Advance(86401 * time.Second)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))

	// a second trigger is an explicit signal, not a re-execution
	err = env.engine.Trigger(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.SwitchAlreadyTriggered)
	status, err := env.engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusTriggered, status)

	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.Equal(t, big.NewInt(100), env.nativeBalance(t, bob))

	err = env.engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.AlreadyClaimed)
	require.Equal(t, big.NewInt(100), env.nativeBalance(t, bob))

	status, err = env.engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusClaimed, status)
}

func TestNonFungibleRanges(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 6000)
	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, carol, 4000))

	collection := url.MustParse("heir://punks")
	ids := []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	env.book.MintNonFungible(collection, alice, ids)
	require.NoError(t, env.engine.DepositNonFungible(context.Background(), alice, collection, ids))

	// duplicates within a collection are rejected
	err := env.engine.DepositNonFungible(context.Background(), alice, collection, []uint64{3})
	require.ErrorIs(t, err, errors.DuplicateToken)

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))

	// first claimer gets the lowest identifiers
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.NoError(t, env.engine.Claim(context.Background(), alice, carol))

	for id := uint64(0); id < 6; id++ {
		holder, ok := env.book.Owner(collection, id)
		require.True(t, ok)
		require.Equal(t, bob.AccountID32(), holder, "token %d", id)
	}
	for id := uint64(6); id < 10; id++ {
		holder, ok := env.book.Owner(collection, id)
		require.True(t, ok)
		require.Equal(t, carol.AccountID32(), holder, "token %d", id)
	}

	status, err := env.engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusClaimed, status)
}

func TestFeeOnTransferDeposit(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	token := url.MustParse("heir://usdx")
	env.book.CreditFungible(token, alice, big.NewInt(1000))
	env.book.SetTransferFee(token, 100) // 1%

	require.NoError(t, env.engine.DepositFungible(context.Background(), alice, token, big.NewInt(1000)))

	// the custody ledger records what actually arrived
	bal, err := env.engine.GetBalance(alice, protocol.AssetTypeFungible, token)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(990), bal)
}

func TestFlooringResidualAndSweep(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 3333)
	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, carol, 3333))
	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, dave, 3334))

	env.book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(100)))

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))

	// sweeping before all claims are complete is refused
	err := env.engine.Sweep(context.Background(), alice, alice)
	require.ErrorIs(t, err, errors.WrongStatus)

	for _, b := range []*url.URL{bob, carol, dave} {
		require.NoError(t, env.engine.Claim(context.Background(), alice, b))
	}
	require.Equal(t, big.NewInt(33), env.nativeBalance(t, bob))
	require.Equal(t, big.NewInt(33), env.nativeBalance(t, carol))
	require.Equal(t, big.NewInt(33), env.nativeBalance(t, dave))

	// residual from flooring stays in custody until swept
	residual, err := env.engine.GetBalance(alice, protocol.AssetTypeNative, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), residual)
	require.LessOrEqual(t, residual.Int64(), int64(2), "residual must not exceed beneficiaries-1")

	require.NoError(t, env.engine.Sweep(context.Background(), alice, alice))
	require.Equal(t, big.NewInt(1), env.nativeBalance(t, alice))

	err = env.engine.Sweep(context.Background(), alice, alice)
	require.ErrorIs(t, err, errors.NothingToSweep)
}

func TestSweepToLastClaimant(t *testing.T) {
	env := setup(t, func(c *config.Config) { c.SweepPolicy = config.SweepToLastClaimant })
	env.initVault(t, 5000)
	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, carol, 4999))

	env.book.CreditNative(alice, big.NewInt(1001))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(1001)))

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.NoError(t, env.engine.Claim(context.Background(), alice, carol))

	// dust goes to carol, the last claimant, and nobody else may take it
	err := env.engine.Sweep(context.Background(), alice, alice)
	require.ErrorIs(t, err, errors.NotAuthorized)
	require.NoError(t, env.engine.Sweep(context.Background(), alice, carol))
}

func TestLinearVesting(t *testing.T) {
	env := setup(t, nil)
	deadline := env.clock.Now().Add(24 * time.Hour)
	lock := &protocol.TimeLock{
		Type:     protocol.TimeLockTypeLinear,
		Cliff:    10 * 24 * time.Hour,
		Duration: 30 * 24 * time.Hour,
	}
	require.NoError(t, env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{TimeLock: lock}))

	env.book.CreditNative(alice, big.NewInt(1000))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(1000)))

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))

	// before the cliff nothing is vested
	err := env.engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.NothingVested)
	require.Equal(t, big.NewInt(0), env.nativeBalance(t, bob))

	// halfway between cliff and duration, half is vested
	env.clock.Advance(20 * 24 * time.Hour)
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.Equal(t, big.NewInt(500), env.nativeBalance(t, bob))

	// a repeat claim at the same instant has no new delta
	err = env.engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.NothingVested)

	// after the full duration the rest is released incrementally
	env.clock.Advance(10 * 24 * time.Hour)
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.Equal(t, big.NewInt(1000), env.nativeBalance(t, bob))

	status, err := env.engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusClaimed, status)
}

func TestMilestoneVesting(t *testing.T) {
	env := setup(t, nil)
	deadline := env.clock.Now().Add(24 * time.Hour)
	m1 := env.clock.Now().Add(10 * 24 * time.Hour)
	m2 := env.clock.Now().Add(20 * 24 * time.Hour)
	lock := &protocol.TimeLock{
		Type: protocol.TimeLockTypeMilestones,
		Milestones: []protocol.Milestone{
			{Time: m1, CumulativeBps: 2500},
			{Time: m2, CumulativeBps: 10000},
		},
	}
	require.NoError(t, env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{TimeLock: lock}))

	env.book.CreditNative(alice, big.NewInt(400))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(400)))

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))

	env.clock.Advance(10 * 24 * time.Hour)
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.Equal(t, big.NewInt(100), env.nativeBalance(t, bob))

	env.clock.Advance(10 * 24 * time.Hour)
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	require.Equal(t, big.NewInt(400), env.nativeBalance(t, bob))
}

func TestCancelReturnsCustody(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	env.book.CreditNative(alice, big.NewInt(500))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(500)))
	require.Equal(t, big.NewInt(0), env.nativeBalance(t, alice))

	require.NoError(t, env.engine.Cancel(context.Background(), alice))
	require.Equal(t, big.NewInt(500), env.nativeBalance(t, alice))

	status, err := env.engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusCancelled, status)

	// a cancelled vault accepts nothing further
	env.book.CreditNative(alice, big.NewInt(1))
	err = env.engine.DepositNative(context.Background(), alice, big.NewInt(1))
	require.ErrorIs(t, err, errors.WrongStatus)
}

func TestCancelAfterExpiryIsRefused(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	env.clock.Advance(25 * time.Hour)
	err := env.engine.Cancel(context.Background(), alice)
	require.ErrorIs(t, err, errors.DeadlineExpired)
}

func TestExecutorOnlyTrigger(t *testing.T) {
	env := setup(t, func(c *config.Config) { c.AnyoneMayTrigger = false })
	deadline := env.clock.Now().Add(24 * time.Hour)
	require.NoError(t, env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{Executor: dave}))

	env.clock.Advance(25 * time.Hour)
	err := env.engine.Trigger(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.NotAuthorized)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, dave))
}

func TestConfirmationRequiredTrigger(t *testing.T) {
	env := setup(t, nil) // AnyoneMayTrigger is on
	deadline := env.clock.Now().Add(24 * time.Hour)
	opts := InitializeOptions{Executor: dave, RequiresConfirmation: true}
	require.NoError(t, env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, opts))

	// confirmation overrides the open trigger policy
	env.clock.Advance(25 * time.Hour)
	err := env.engine.Trigger(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.NotAuthorized)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, dave))
}

func TestEmergencyOperations(t *testing.T) {
	env := setup(t, func(c *config.Config) { c.Admin = "heir://ops" })
	admin := url.MustParse("heir://ops")
	env.initVault(t, 10000)

	// the emergency capability is not a vault role
	err := env.engine.SetPaused(context.Background(), alice, alice, true)
	require.ErrorIs(t, err, errors.NotAuthorized)

	require.NoError(t, env.engine.SetPaused(context.Background(), alice, admin, true))
	err = env.engine.CheckIn(context.Background(), alice, env.clock.Now().Add(48*time.Hour))
	require.ErrorIs(t, err, errors.VaultPaused)

	require.NoError(t, env.engine.SetPaused(context.Background(), alice, admin, false))

	env.book.CreditNative(alice, big.NewInt(70))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(70)))

	require.NoError(t, env.engine.EmergencyWithdraw(context.Background(), alice, admin))
	require.Equal(t, big.NewInt(70), env.nativeBalance(t, alice))

	status, err := env.engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusCancelled, status)
}

func TestEmergencyWithdrawAfterClaimIsRefused(t *testing.T) {
	env := setup(t, func(c *config.Config) { c.Admin = "heir://ops" })
	admin := url.MustParse("heir://ops")
	env.initVault(t, 5000)
	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, carol, 4000))

	env.book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(100)))

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))

	err := env.engine.EmergencyWithdraw(context.Background(), alice, admin)
	require.ErrorIs(t, err, errors.WrongStatus)
}

// failingTransfers wraps a provider and fails chosen calls.
type failingTransfers struct {
	TransferProvider
	failNative   bool
	failFungible bool
}

func (f *failingTransfers) TransferNative(ctx context.Context, from, to *url.URL, amount *big.Int) error {
	if f.failNative {
		return fmt.Errorf("ledger unavailable")
	}
	return f.TransferProvider.TransferNative(ctx, from, to, amount)
}

func (f *failingTransfers) TransferFungible(ctx context.Context, token, from, to *url.URL, amount *big.Int) error {
	if f.failFungible {
		return fmt.Errorf("ledger unavailable")
	}
	return f.TransferProvider.TransferFungible(ctx, token, from, to, amount)
}

func setupFailing(t *testing.T) (*Engine, *ledger.Book, *failingTransfers, *clock) {
	t.Helper()

	db, err := database.Open("", true, nil)
	require.NoError(t, err)

	book := ledger.NewBook()
	transfers := &failingTransfers{TransferProvider: book}
	clk := &clock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}

	c := config.Default()
	c.AnyoneMayTrigger = true
	engine, err := NewEngine(Options{Database: db, Transfers: transfers, Config: c, Now: clk.Now})
	require.NoError(t, err)
	return engine, book, transfers, clk
}

func TestFailedTransferRollsBack(t *testing.T) {
	engine, book, transfers, clk := setupFailing(t)

	deadline := clk.Now().Add(24 * time.Hour)
	require.NoError(t, engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{}))
	book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, engine.DepositNative(context.Background(), alice, big.NewInt(100)))

	clk.Advance(25 * time.Hour)
	require.NoError(t, engine.Trigger(context.Background(), alice, bob))

	// the transfer fails, so nothing may be marked claimed
	transfers.failNative = true
	err := engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.TransferFailed)

	record, err := engine.GetClaimStatus(alice, bob, protocol.AssetTypeNative, nil)
	require.NoError(t, err)
	require.Zero(t, record.Released.Sign())
	require.False(t, record.Complete)

	// once the ledger recovers the claim goes through
	transfers.failNative = false
	require.NoError(t, engine.Claim(context.Background(), alice, bob))
	bal, err := book.BalanceOf(context.Background(), nil, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)
}

func TestPartialClaimFailureIsDurable(t *testing.T) {
	engine, book, transfers, clk := setupFailing(t)
	token := url.MustParse("heir://usdx")

	deadline := clk.Now().Add(24 * time.Hour)
	require.NoError(t, engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{}))
	book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, engine.DepositNative(context.Background(), alice, big.NewInt(100)))
	book.CreditFungible(token, alice, big.NewInt(100))
	require.NoError(t, engine.DepositFungible(context.Background(), alice, token, big.NewInt(100)))

	clk.Advance(25 * time.Hour)
	require.NoError(t, engine.Trigger(context.Background(), alice, bob))

	// the native asset claims first and its transfer executes, then the
	// fungible transfer fails; the native release must survive the error
	transfers.failFungible = true
	err := engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.TransferFailed)

	bal, err := book.BalanceOf(context.Background(), nil, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)

	record, err := engine.GetClaimStatus(alice, bob, protocol.AssetTypeNative, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), record.Released.Int64())
	require.True(t, record.Complete)

	status, err := engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusPartiallyClaimed, status)

	// retrying while the ledger is still down must not release the
	// native asset twice
	err = engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.TransferFailed)
	bal, err = book.BalanceOf(context.Background(), nil, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)

	// once the ledger recovers, only the fungible asset moves
	transfers.failFungible = false
	require.NoError(t, engine.Claim(context.Background(), alice, bob))

	bal, err = book.BalanceOf(context.Background(), nil, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)
	bal, err = book.BalanceOf(context.Background(), token, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)

	status, err = engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusClaimed, status)
}

func TestPartialCancelFailureIsDurable(t *testing.T) {
	engine, book, transfers, clk := setupFailing(t)
	token := url.MustParse("heir://usdx")

	deadline := clk.Now().Add(24 * time.Hour)
	require.NoError(t, engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{}))
	book.CreditNative(alice, big.NewInt(100))
	require.NoError(t, engine.DepositNative(context.Background(), alice, big.NewInt(100)))
	book.CreditFungible(token, alice, big.NewInt(100))
	require.NoError(t, engine.DepositFungible(context.Background(), alice, token, big.NewInt(100)))

	// the native return executes, then the fungible return fails; the
	// vault stays active with the native return on record
	transfers.failFungible = true
	err := engine.Cancel(context.Background(), alice)
	require.ErrorIs(t, err, errors.TransferFailed)

	bal, err := book.BalanceOf(context.Background(), nil, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)

	status, err := engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusActive, status)

	// the retry skips the returned asset instead of re-transferring it
	transfers.failFungible = false
	require.NoError(t, engine.Cancel(context.Background(), alice))

	bal, err = book.BalanceOf(context.Background(), nil, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)
	bal, err = book.BalanceOf(context.Background(), token, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)

	status, err = engine.GetStatus(alice)
	require.NoError(t, err)
	require.Equal(t, protocol.VaultStatusCancelled, status)
}

// interleavingTransfers starts a second deposit of the same token from
// inside the first one's transfer.
type interleavingTransfers struct {
	TransferProvider
	engine *Engine
	owner  *url.URL
	token  *url.URL
	amount *big.Int
	nested error
	armed  bool
}

func (p *interleavingTransfers) TransferFungible(ctx context.Context, token, from, to *url.URL, amount *big.Int) error {
	if p.armed {
		p.armed = false
		p.nested = p.engine.DepositFungible(ctx, p.owner, p.token, p.amount)
	}
	return p.TransferProvider.TransferFungible(ctx, token, from, to, amount)
}

func TestDepositMeasurementWindowIsExclusive(t *testing.T) {
	db, err := database.Open("", true, nil)
	require.NoError(t, err)

	book := ledger.NewBook()
	token := url.MustParse("heir://usdx")
	transfers := &interleavingTransfers{TransferProvider: book, owner: carol, token: token, amount: big.NewInt(70)}
	clk := &clock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}

	c := config.Default()
	c.AnyoneMayTrigger = true
	engine, err := NewEngine(Options{Database: db, Transfers: transfers, Config: c, Now: clk.Now})
	require.NoError(t, err)
	transfers.engine = engine

	deadline := clk.Now().Add(24 * time.Hour)
	require.NoError(t, engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{}))
	require.NoError(t, engine.Initialize(context.Background(), carol, dave, 10000, deadline, InitializeOptions{}))
	book.CreditFungible(token, alice, big.NewInt(100))
	book.CreditFungible(token, carol, big.NewInt(70))

	// custody's token balance is shared across vaults, so a deposit that
	// lands inside another deposit's measurement window would be
	// credited to the wrong vault; it is refused instead
	transfers.armed = true
	require.NoError(t, engine.DepositFungible(context.Background(), alice, token, big.NewInt(100)))
	require.ErrorIs(t, transfers.nested, errors.VaultBusy)

	bal, err := engine.GetBalance(alice, protocol.AssetTypeFungible, token)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), bal)

	// once the window closes the second deposit goes through
	require.NoError(t, engine.DepositFungible(context.Background(), carol, token, big.NewInt(70)))
	bal, err = engine.GetBalance(carol, protocol.AssetTypeFungible, token)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(70), bal)
}

func TestInitializeRequiresTriggerPath(t *testing.T) {
	env := setup(t, func(c *config.Config) { c.AnyoneMayTrigger = false })
	deadline := env.clock.Now().Add(24 * time.Hour)

	// without an executor nobody could ever fire the switch and custody
	// would be stranded once the deadline passes
	err := env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{})
	require.ErrorIs(t, err, errors.BadRequest)
	require.NoError(t, env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{Executor: dave}))

	// requiring confirmation without anyone to confirm is the same trap
	env = setup(t, nil)
	err = env.engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{RequiresConfirmation: true})
	require.ErrorIs(t, err, errors.BadRequest)
}

// reentrantTransfers calls back into the engine mid-transfer.
type reentrantTransfers struct {
	TransferProvider
	engine *Engine
	owner  *url.URL
	caller *url.URL
	nested error
	armed  bool
}

func (r *reentrantTransfers) TransferNative(ctx context.Context, from, to *url.URL, amount *big.Int) error {
	if r.armed {
		r.armed = false
		r.nested = r.engine.Claim(ctx, r.owner, r.caller)
	}
	return r.TransferProvider.TransferNative(ctx, from, to, amount)
}

func TestReentrantClaimIsRejected(t *testing.T) {
	db, err := database.Open("", true, nil)
	require.NoError(t, err)

	book := ledger.NewBook()
	transfers := &reentrantTransfers{TransferProvider: book, owner: alice, caller: bob}
	clk := &clock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}

	c := config.Default()
	c.AnyoneMayTrigger = true
	engine, err := NewEngine(Options{Database: db, Transfers: transfers, Config: c, Now: clk.Now})
	require.NoError(t, err)
	transfers.engine = engine

	deadline := clk.Now().Add(24 * time.Hour)
	require.NoError(t, engine.Initialize(context.Background(), alice, bob, 10000, deadline, InitializeOptions{}))
	book.CreditNative(alice, big.NewInt(50))
	require.NoError(t, engine.DepositNative(context.Background(), alice, big.NewInt(50)))

	clk.Advance(25 * time.Hour)
	require.NoError(t, engine.Trigger(context.Background(), alice, bob))

	// the nested claim from inside the transfer callback is refused,
	// the outer claim commits normally
	transfers.armed = true
	require.NoError(t, engine.Claim(context.Background(), alice, bob))
	require.ErrorIs(t, transfers.nested, errors.VaultBusy)

	bal, err := book.BalanceOf(context.Background(), nil, bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(50), bal)
}

func TestEventsEmittedExactlyOncePerCommit(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 10000)

	env.book.CreditNative(alice, big.NewInt(10))
	require.NoError(t, env.engine.DepositNative(context.Background(), alice, big.NewInt(10)))

	// a failed operation emits nothing
	err := env.engine.DepositNative(context.Background(), alice, big.NewInt(0))
	require.ErrorIs(t, err, errors.InvalidAmount)

	env.clock.Advance(25 * time.Hour)
	require.NoError(t, env.engine.Trigger(context.Background(), alice, bob))
	require.NoError(t, env.engine.Claim(context.Background(), alice, bob))
	err = env.engine.Claim(context.Background(), alice, bob)
	require.ErrorIs(t, err, errors.AlreadyClaimed)

	var kinds []string
	for _, e := range env.events {
		kinds = append(kinds, e.EventType())
	}
	require.Equal(t, []string{"vaultInitialized", "assetDeposited", "switchTriggered", "assetsClaimed"}, kinds)
}

func TestShareTotalConsistency(t *testing.T) {
	env := setup(t, nil)
	env.initVault(t, 1000)

	check := func() {
		v, err := env.engine.GetVault(alice)
		require.NoError(t, err)
		require.Equal(t, v.ComputeShareTotal(), v.ShareTotal)
		require.LessOrEqual(t, v.ShareTotal, uint64(protocol.ShareTotalBps))
	}

	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, carol, 4000))
	check()
	require.NoError(t, env.engine.UpdateShare(context.Background(), alice, carol, 8000))
	check()

	// over-allocation is rejected and changes nothing
	err := env.engine.AddBeneficiary(context.Background(), alice, dave, 2000)
	require.ErrorIs(t, err, errors.OverAllocated)
	check()
	err = env.engine.UpdateShare(context.Background(), alice, carol, 9500)
	require.ErrorIs(t, err, errors.OverAllocated)
	check()

	require.NoError(t, env.engine.RemoveBeneficiary(context.Background(), alice, carol))
	check()
	require.NoError(t, env.engine.AddBeneficiary(context.Background(), alice, dave, 9000))
	check()

	// the owner and duplicates are not acceptable beneficiaries
	err = env.engine.AddBeneficiary(context.Background(), alice, alice, 100)
	require.ErrorIs(t, err, errors.InvalidBeneficiary)
	err = env.engine.AddBeneficiary(context.Background(), alice, dave, 100)
	require.ErrorIs(t, err, errors.InvalidBeneficiary)
	check()
}

// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gitlab.com/heirloomnetwork/heirloom/config"
	"gitlab.com/heirloomnetwork/heirloom/internal/database"
	"gitlab.com/heirloomnetwork/heirloom/internal/events"
	"gitlab.com/heirloomnetwork/heirloom/internal/ledger"
	"gitlab.com/heirloomnetwork/heirloom/internal/logging"
	"gitlab.com/heirloomnetwork/heirloom/internal/vault"
	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

var cmdVault = &cobra.Command{
	Use:   "vault",
	Short: "Operate on a local vault store",
	Run:   printUsageAndExit1,
}

var cmdVaultInit = &cobra.Command{
	Use:   "init [owner] [beneficiary] [share-bps] [deadline-duration]",
	Short: "Create a vault",
	Args:  cobra.ExactArgs(4),
	Run:   vaultInit,
}

var cmdVaultStatus = &cobra.Command{
	Use:   "status [owner]",
	Short: "Show a vault",
	Args:  cobra.ExactArgs(1),
	Run:   vaultStatus,
}

var cmdVaultCheckIn = &cobra.Command{
	Use:   "check-in [owner] [deadline-duration]",
	Short: "Check in and extend the deadline",
	Args:  cobra.ExactArgs(2),
	Run:   vaultCheckIn,
}

var cmdVaultDeposit = &cobra.Command{
	Use:   "deposit [owner] [amount]",
	Short: "Deposit native value from the local book",
	Args:  cobra.ExactArgs(2),
	Run:   vaultDeposit,
}

var cmdVaultTrigger = &cobra.Command{
	Use:   "trigger [owner] [caller]",
	Short: "Fire the deadman switch",
	Args:  cobra.ExactArgs(2),
	Run:   vaultTrigger,
}

var cmdVaultClaim = &cobra.Command{
	Use:   "claim [owner] [beneficiary]",
	Short: "Claim a beneficiary's entitlement",
	Args:  cobra.ExactArgs(2),
	Run:   vaultClaim,
}

var flagVaultInit = struct {
	Executor string
}{}

func init() {
	cmdMain.AddCommand(cmdVault)
	cmdVault.AddCommand(cmdVaultInit, cmdVaultStatus, cmdVaultCheckIn, cmdVaultDeposit, cmdVaultTrigger, cmdVaultClaim)
	cmdVaultInit.Flags().StringVar(&flagVaultInit.Executor, "executor", "", "Identity allowed to fire the switch")
}

func openEngine() (*vault.Engine, *ledger.Book) {
	c, err := config.Load(configFile())
	checkf(err, "load config")

	logger, err := logging.New(os.Stderr, c.LogLevel, false)
	checkf(err, "create logger")

	db, err := database.Open(databaseDir(), false, logger)
	checkf(err, "open database")

	book := ledger.NewBook()
	bus := events.NewBus(logger)
	events.SubscribeSync(bus, func(e events.Event) {
		logger.Info("Vault event", "type", e.EventType(), "vault", e.EventVault())
	})

	engine, err := vault.NewEngine(vault.Options{
		Database:  db,
		Transfers: book,
		Events:    bus,
		Logger:    logger,
		Config:    c,
	})
	checkf(err, "create engine")
	return engine, book
}

func parseUrl(s string) *url.URL {
	u, err := url.Parse(s)
	checkf(err, "parse %q", s)
	return u
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	checkf(err, "parse duration %q", s)
	return d
}

func parseAmount(s string) *big.Int {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		fatalf("invalid amount %q", s)
	}
	return amount
}

func vaultInit(_ *cobra.Command, args []string) {
	engine, _ := openEngine()
	owner, beneficiary := parseUrl(args[0]), parseUrl(args[1])
	shareBps := parseAmount(args[2]).Uint64()
	deadline := time.Now().Add(parseDuration(args[3]))

	var opts vault.InitializeOptions
	if flagVaultInit.Executor != "" {
		opts.Executor = parseUrl(flagVaultInit.Executor)
	}
	check(engine.Initialize(context.Background(), owner, beneficiary, shareBps, deadline, opts))
	color.Green("Vault %v created, deadline %v", owner, deadline.Format(time.RFC3339))
}

func vaultStatus(_ *cobra.Command, args []string) {
	engine, _ := openEngine()
	owner := parseUrl(args[0])

	v, err := engine.GetVault(owner)
	check(err)
	remaining, err := engine.TimeRemaining(owner)
	check(err)

	fmt.Printf("Vault      %v\n", v.Url)
	fmt.Printf("Status     %v\n", v.Status)
	fmt.Printf("Deadline   %v (%v remaining)\n", v.Deadline.Format(time.RFC3339), remaining)
	fmt.Printf("Shares     %d bps across %d beneficiaries\n", v.ShareTotal, len(v.Beneficiaries))
	for _, b := range v.Beneficiaries {
		fmt.Printf("  %v  %d bps\n", b.Url, b.ShareBps)
	}

	assets, err := engine.GetAssets(owner)
	check(err)
	for _, a := range assets {
		switch a.Type {
		case protocol.AssetTypeNonFungible:
			fmt.Printf("Asset      %v %v, %d tokens, cursor %d\n", a.Type, a.Token, len(a.TokenIDs), a.Cursor)
		default:
			fmt.Printf("Asset      %v %v, balance %v\n", a.Type, a.Token, &a.Balance)
		}
	}
}

func vaultCheckIn(_ *cobra.Command, args []string) {
	engine, _ := openEngine()
	owner := parseUrl(args[0])
	deadline := time.Now().Add(parseDuration(args[1]))

	check(engine.CheckIn(context.Background(), owner, deadline))
	color.Green("Checked in, new deadline %v", deadline.Format(time.RFC3339))
}

func vaultDeposit(_ *cobra.Command, args []string) {
	engine, book := openEngine()
	owner := parseUrl(args[0])
	amount := parseAmount(args[1])

	// The local book has no external funding source.
	book.CreditNative(owner, amount)
	check(engine.DepositNative(context.Background(), owner, amount))
	color.Green("Deposited %v", amount)
}

func vaultTrigger(_ *cobra.Command, args []string) {
	engine, _ := openEngine()
	owner, caller := parseUrl(args[0]), parseUrl(args[1])

	check(engine.Trigger(context.Background(), owner, caller))
	color.Yellow("Switch triggered for %v", owner)
}

func vaultClaim(_ *cobra.Command, args []string) {
	engine, _ := openEngine()
	owner, beneficiary := parseUrl(args[0]), parseUrl(args[1])

	check(engine.Claim(context.Background(), owner, beneficiary))
	color.Green("Claimed for %v", beneficiary)
}

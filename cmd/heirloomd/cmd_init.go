// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitlab.com/heirloomnetwork/heirloom/config"
)

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration to the working directory",
	Args:  cobra.NoArgs,
	Run:   initWorkDir,
}

func init() {
	cmdMain.AddCommand(cmdInit)
}

func configFile() string {
	return filepath.Join(flagMain.WorkDir, "heirloom.toml")
}

func databaseDir() string {
	return filepath.Join(flagMain.WorkDir, "data")
}

func initWorkDir(*cobra.Command, []string) {
	c := config.Default()
	checkf(c.Store(configFile()), "store config")
	fmt.Printf("Wrote %s\n", configFile())
}

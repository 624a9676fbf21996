// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/consts"
)

var rootCmd = &cobra.Command{
	Use:     consts.Name,
	Short:   "Run a modevm node",
	Long:    `Runs a single modevm node: accepts transactions over JSON-RPC, orders them into blocks, and applies them to the account store.`,
	Version: consts.Version.String(),
	RunE:    runNode,
}

func init() {
	rootCmd.Flags().String("config", "", "Path to a JSON or YAML node config")
	rootCmd.Flags().String("genesis", "", "Path to a JSON genesis (defaults are used when empty)")
	rootCmd.Flags().String("replay", "", "Journal directory to replay before serving")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

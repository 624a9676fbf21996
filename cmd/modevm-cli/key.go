// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/auth"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/crypto/ed25519"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new ED25519 key and make it the default",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		return storeKey(cmd, key)
	},
}

var keyImportCmd = &cobra.Command{
	Use:   "import [hex]",
	Short: "Import a hex encoded ED25519 key and make it the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := privateKeyFromString(args[0])
		if err != nil {
			return fmt.Errorf("failed to decode key: %w", err)
		}
		return storeKey(cmd, key)
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address of the default key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		factory, err := loadFactory(cmd)
		if err != nil {
			return err
		}
		return printValue(cmd, keyCmdResponse{
			Address: codec.MustAddressBech32(consts.HRP, factory.Address()),
		})
	},
}

func storeKey(cmd *cobra.Command, key ed25519.PrivateKey) error {
	if err := setConfigValue("key", key.Hex()); err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}
	addr := auth.NewED25519Address(key.PublicKey())
	return printValue(cmd, keyCmdResponse{
		Address: codec.MustAddressBech32(consts.HRP, addr),
	})
}

type keyCmdResponse struct {
	Address string `json:"address"`
}

func (r keyCmdResponse) String() string {
	return r.Address
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd, keyImportCmd, keyAddressCmd)
	rootCmd.AddCommand(keyCmd)
}

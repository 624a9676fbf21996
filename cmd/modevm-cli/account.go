// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/storage"
)

// resolveAddress parses [args[0]] when present and falls back to the
// default key's address.
func resolveAddress(cmd *cobra.Command, args []string) (codec.Address, error) {
	if len(args) > 0 {
		return codec.ParseAddressBech32(consts.HRP, args[0])
	}
	factory, err := loadFactory(cmd)
	if err != nil {
		return codec.EmptyAddress, err
	}
	return factory.Address(), nil
}

var accountCmd = &cobra.Command{
	Use:   "account [address]",
	Short: "Read the value and mode of an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := resolveAddress(cmd, args)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		account, exists, err := client.Account(ctx, addr)
		if err != nil {
			return fmt.Errorf("failed to fetch account: %w", err)
		}
		return printValue(cmd, accountCmdResponse{
			Address: codec.MustAddressBech32(consts.HRP, addr),
			Exists:  exists,
			Value:   account.Value,
			Mode:    account.Mode,
		})
	},
}

type accountCmdResponse struct {
	Address string       `json:"address"`
	Exists  bool         `json:"exists"`
	Value   uint32       `json:"value"`
	Mode    storage.Mode `json:"mode"`
}

func (r accountCmdResponse) String() string {
	if !r.Exists {
		return r.Address + ": not initialized"
	}
	return fmt.Sprintf("%s: value=%d mode=%s", r.Address, r.Value, r.Mode)
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

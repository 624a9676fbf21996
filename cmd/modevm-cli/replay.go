// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/config"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/vm"
)

var replayCmd = &cobra.Command{
	Use:   "replay [journal-dir]",
	Short: "Rebuild state from a block journal in memory and report the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		genesisPath, err := cmd.Flags().GetString("genesis")
		if err != nil {
			return err
		}
		accounts, err := cmd.Flags().GetStringSlice("account")
		if err != nil {
			return err
		}
		g := genesis.Default()
		if len(genesisPath) > 0 {
			b, err := os.ReadFile(genesisPath)
			if err != nil {
				return fmt.Errorf("failed to read genesis: %w", err)
			}
			if g, err = genesis.Load(b); err != nil {
				return fmt.Errorf("failed to load genesis: %w", err)
			}
		}
		resp, err := replay(context.Background(), g, args[0], accounts)
		if err != nil {
			return err
		}
		return printValue(cmd, resp)
	},
}

// replay executes the journal in [dir] on top of [g] without touching disk.
func replay(ctx context.Context, g *genesis.Genesis, dir string, accounts []string) (*replayCmdResponse, error) {
	cfg, err := config.New(nil)
	if err != nil {
		return nil, err
	}
	replica, err := vm.New(
		ctx,
		logging.NoLog{},
		trace.Noop,
		prometheus.NewRegistry(),
		cfg,
		g,
		storage.NewMemory(),
		vm.WithManualBuilder(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = replica.Shutdown(ctx) }()

	blocks, err := replica.ReplayJournal(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	lastAccepted := replica.LastAccepted()
	resp := &replayCmdResponse{
		Blocks:  blocks,
		Height:  lastAccepted.Height,
		BlockID: lastAccepted.BlockID,
	}
	for _, account := range accounts {
		addr, err := codec.ParseAddressBech32(consts.HRP, account)
		if err != nil {
			return nil, err
		}
		state, exists, err := replica.GetAccount(ctx, addr)
		if err != nil {
			return nil, err
		}
		resp.Accounts = append(resp.Accounts, accountCmdResponse{
			Address: account,
			Exists:  exists,
			Value:   state.Value,
			Mode:    state.Mode,
		})
	}
	return resp, nil
}

type replayCmdResponse struct {
	Blocks   int                  `json:"blocks"`
	Height   uint64               `json:"height"`
	BlockID  ids.ID               `json:"blockId"`
	Accounts []accountCmdResponse `json:"accounts,omitempty"`
}

func (r *replayCmdResponse) String() string {
	s := fmt.Sprintf("replayed %d blocks: height=%d blockID=%s", r.Blocks, r.Height, r.BlockID)
	for _, account := range r.Accounts {
		s += "\n" + account.String()
	}
	return s
}

func init() {
	replayCmd.Flags().String("genesis", "", "Path to the genesis the journal was produced from")
	replayCmd.Flags().StringSlice("account", nil, "Accounts to report after replay")
	rootCmd.AddCommand(replayCmd)
}

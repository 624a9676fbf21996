// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/rpc"
)

const requestTimeout = 10 * time.Second

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show the configured endpoint and the chain it serves",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp := endpointCmdResponse{Endpoint: endpoint}
		cli := rpc.NewJSONRPCClient(endpoint)
		if resp.NetworkID, resp.ChainID, err = cli.Network(ctx); err == nil {
			resp.Reachable = true
		}
		return printValue(cmd, resp)
	},
}

type endpointCmdResponse struct {
	Endpoint  string `json:"endpoint"`
	Reachable bool   `json:"reachable"`
	NetworkID uint32 `json:"networkId"`
	ChainID   ids.ID `json:"chainId"`
}

func (r endpointCmdResponse) String() string {
	if !r.Reachable {
		return r.Endpoint + " (unreachable)"
	}
	return fmt.Sprintf("%s (networkID=%d chainID=%s)", r.Endpoint, r.NetworkID, r.ChainID)
}

var endpointSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Set the endpoint URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := strings.TrimSuffix(strings.TrimSpace(args[0]), "/")
		if endpoint == "" {
			return errors.New("endpoint is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if ok, err := rpc.NewJSONRPCClient(endpoint).Ping(ctx); err != nil || !ok {
			return fmt.Errorf("endpoint %s did not answer ping: %w", endpoint, err)
		}

		if err := setConfigValue("endpoint", endpoint); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, endpointSetCmdResponse{Endpoint: endpoint})
	},
}

type endpointSetCmdResponse struct {
	Endpoint string `json:"endpoint"`
}

func (r endpointSetCmdResponse) String() string {
	return "Endpoint set to: " + r.Endpoint
}

func init() {
	endpointCmd.AddCommand(endpointSetCmd)
	rootCmd.AddCommand(endpointCmd)
}

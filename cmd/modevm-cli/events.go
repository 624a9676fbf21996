// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/registry"
	"github.com/ava-labs/modevm/rpc"
)

var eventsCmd = &cobra.Command{
	Use:   "events [address]",
	Short: "List the most recent results for an account, oldest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		addr, err := resolveAddress(cmd, args)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		r, err := registry.New()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		results, err := client.Events(ctx, addr, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch events: %w", err)
		}
		resp := eventsCmdResponse{Results: make([]*resultResponse, 0, len(results))}
		for _, result := range results {
			rr, err := newResultResponse(r, result)
			if err != nil {
				return err
			}
			resp.Results = append(resp.Results, rr)
		}
		return printValue(cmd, resp)
	},
}

type eventsCmdResponse struct {
	Results []*resultResponse `json:"results"`
}

func (r eventsCmdResponse) String() string {
	if len(r.Results) == 0 {
		return "no events"
	}
	lines := make([]string, len(r.Results))
	for i, result := range r.Results {
		lines[i] = result.String()
	}
	return strings.Join(lines, "\n")
}

var txCmd = &cobra.Command{
	Use:   "tx [txID]",
	Short: "Look up the result of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := ids.FromString(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse txID: %w", err)
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		r, err := registry.New()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, found, err := client.Tx(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to fetch tx: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: %s", rpc.ErrTxNotFound, txID)
		}
		resp, err := newResultResponse(r, result)
		if err != nil {
			return err
		}
		return printValue(cmd, resp)
	},
}

func init() {
	eventsCmd.Flags().Int("limit", rpc.DefaultEventsLimit, "Maximum number of results to return")
	rootCmd.AddCommand(eventsCmd, txCmd)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/cli/prompt"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/registry"
)

const txTimeout = 30 * time.Second

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Issue an action signed by the default key",
}

var setValueCmd = &cobra.Command{
	Use:   "set-value [value]",
	Short: "Initialize the account with a value in idle mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			value uint32
			err   error
		)
		if len(args) == 1 {
			value, err = prompt.ParseUint32(args[0])
		} else {
			value, err = prompt.Uint32("value")
		}
		if err != nil {
			return err
		}
		return issueAction(cmd, &actions.SetValue{Value: value})
	},
}

var switchModeCmd = &cobra.Command{
	Use:   "switch-mode [idle|increasing|decreasing|code]",
	Short: "Switch the account to another mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var code uint32
		if len(args) == 1 {
			var err error
			code, err = prompt.ParseModeCode(args[0])
			if err != nil {
				return err
			}
		} else {
			mode, err := prompt.Mode("mode")
			if err != nil {
				return err
			}
			code = uint32(mode)
		}
		return issueAction(cmd, &actions.SwitchMode{Mode: code})
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Step the account value according to its mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return issueAction(cmd, &actions.ExecuteAction{})
	},
}

func issueAction(cmd *cobra.Command, action chain.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)
	defer cancel()

	factory, err := loadFactory(cmd)
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

	tx, err := client.GenerateTransaction(ctx, r, action, factory)
	if err != nil {
		return fmt.Errorf("failed to generate transaction: %w", err)
	}
	if _, err := client.SubmitTx(ctx, tx.Bytes()); err != nil {
		return fmt.Errorf("failed to submit transaction: %w", err)
	}
	result, err := client.WaitForTx(ctx, tx.ID())
	if err != nil {
		return fmt.Errorf("failed to wait for transaction: %w", err)
	}
	resp, err := newResultResponse(r, result)
	if err != nil {
		return err
	}
	return printValue(cmd, resp)
}

type resultResponse struct {
	TxID    ids.ID          `json:"txId"`
	Height  uint64          `json:"height"`
	Action  string          `json:"action"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Code    uint16          `json:"code,omitempty"`
	Event   codec.Marshaler `json:"event,omitempty"`
	Units   uint64          `json:"units"`
}

func newResultResponse(r *registry.Registry, result *chain.Result) (*resultResponse, error) {
	resp := &resultResponse{
		TxID:    result.TxID,
		Height:  result.Height,
		Action:  actionName(result.ActionID),
		Success: result.Success,
		Error:   result.Error,
		Code:    result.Code,
		Units:   result.Units,
	}
	if len(result.Output) > 0 {
		event, err := r.OutputCodec().Unmarshal(codec.NewReader(result.Output, consts.NetworkSizeLimit))
		if err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		resp.Event = event
	}
	return resp, nil
}

func actionName(typeID uint8) string {
	switch typeID {
	case consts.SetValueID:
		return "set-value"
	case consts.SwitchModeID:
		return "switch-mode"
	case consts.ExecuteActionID:
		return "execute"
	default:
		return fmt.Sprintf("unknown(%d)", typeID)
	}
}

func (r *resultResponse) String() string {
	var b strings.Builder
	if r.Success {
		fmt.Fprintf(&b, "✅ %s succeeded in tx %s at height %d", r.Action, r.TxID, r.Height)
	} else {
		fmt.Fprintf(&b, "❌ %s failed in tx %s at height %d: %s (code=%d)", r.Action, r.TxID, r.Height, r.Error, r.Code)
	}
	if r.Event != nil {
		fmt.Fprintf(&b, "\nevent: %s", describeEvent(r.Event))
	}
	return b.String()
}

func describeEvent(event codec.Marshaler) string {
	switch e := event.(type) {
	case *actions.ValueSet:
		return fmt.Sprintf("ValueSet account=%s", codec.MustAddressBech32(consts.HRP, e.Account))
	case *actions.StateSwitched:
		return fmt.Sprintf("StateSwitched account=%s", codec.MustAddressBech32(consts.HRP, e.Account))
	case *actions.StateExecuted:
		return fmt.Sprintf("StateExecuted account=%s value=%d", codec.MustAddressBech32(consts.HRP, e.Account), e.Value)
	default:
		return fmt.Sprintf("%T", event)
	}
}

func init() {
	actionCmd.AddCommand(setValueCmd, switchModeCmd, executeCmd)
	rootCmd.AddCommand(actionCmd)
}

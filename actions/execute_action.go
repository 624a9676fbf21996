// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"
)

var _ chain.Action = (*ExecuteAction)(nil)

// ExecuteAction applies the actor's current mode to its value.
type ExecuteAction struct{}

func (*ExecuteAction) GetTypeID() uint8 {
	return consts.ExecuteActionID
}

func (*ExecuteAction) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.AccountKey(actor)): state.Read | state.Write,
	}
}

func (*ExecuteAction) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Marshaler, error) {
	account, exists, err := storage.GetAccount(ctx, mu, actor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrExecuteOnNone
	}
	next, err := Step(overflowPolicy(r), account.Value, account.Mode)
	if err != nil {
		return nil, err
	}
	account.Value = next
	if err := storage.PutAccount(ctx, mu, actor, account); err != nil {
		return nil, err
	}
	return &StateExecuted{Account: actor, Value: next}, nil
}

func (*ExecuteAction) ComputeUnits(r chain.Rules) uint64 {
	return computeUnits(r, ExecuteActionUnitsKey, DefaultExecuteActionUnits)
}

func (*ExecuteAction) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (*ExecuteAction) Size() int {
	return 0
}

func (*ExecuteAction) Marshal(*codec.Packer) {}

func UnmarshalExecuteAction(p *codec.Packer) (chain.Action, error) {
	return &ExecuteAction{}, p.Err()
}

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

var _ chain.Action = (*SetValue)(nil)

// SetValue initializes the actor's account with [Value] in [storage.Idle].
type SetValue struct {
	Value uint32 `json:"value"`
}

func (*SetValue) GetTypeID() uint8 {
	return consts.SetValueID
}

func (*SetValue) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.AccountKey(actor)): state.Read | state.Allocate | state.Write,
	}
}

func (s *SetValue) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Marshaler, error) {
	if s.Value == 0 {
		return nil, ErrCannotBeZero
	}
	_, exists, err := storage.GetAccount(ctx, mu, actor)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSetOnSome
	}
	if err := storage.PutAccount(ctx, mu, actor, storage.AccountState{
		Value: s.Value,
		Mode:  storage.Idle,
	}); err != nil {
		return nil, err
	}
	return &ValueSet{Account: actor}, nil
}

func (*SetValue) ComputeUnits(r chain.Rules) uint64 {
	return computeUnits(r, SetValueUnitsKey, DefaultSetValueUnits)
}

func (*SetValue) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}

func (*SetValue) Size() int {
	return consts.Uint32Len
}

func (s *SetValue) Marshal(p *codec.Packer) {
	p.PackUint32(s.Value)
}

func UnmarshalSetValue(p *codec.Packer) (chain.Action, error) {
	var s SetValue
	// Zero is a valid encoding; it is rejected on execution.
	s.Value = p.UnpackUint32(false)
	return &s, p.Err()
}

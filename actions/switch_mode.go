// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"
)

var _ chain.Action = (*SwitchMode)(nil)

// SwitchMode moves the actor's account to the mode encoded by [Mode].
type SwitchMode struct {
	// Mode is the raw requested code. Codes outside of the known modes are
	// accepted on the wire and rejected on execution.
	Mode uint32 `json:"mode"`
}

func (*SwitchMode) GetTypeID() uint8 {
	return consts.SwitchModeID
}

func (*SwitchMode) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.AccountKey(actor)): state.Read | state.Write,
	}
}

func (s *SwitchMode) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Marshaler, error) {
	requested, ok := storage.ParseMode(s.Mode)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStateInt, s.Mode)
	}
	account, exists, err := storage.GetAccount(ctx, mu, actor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSwitchOnNone
	}
	if err := CheckSwitch(account, requested); err != nil {
		return nil, err
	}
	account.Mode = requested
	if err := storage.PutAccount(ctx, mu, actor, account); err != nil {
		return nil, err
	}
	return &StateSwitched{Account: actor}, nil
}

// CheckSwitch reports whether [account] may move to [requested].
func CheckSwitch(account storage.AccountState, requested storage.Mode) error {
	switch {
	case account.Mode == requested:
		return ErrRedundantSwitch
	case account.Value == 1 && requested == storage.Decreasing:
		return ErrCannotDecreaseToZero
	case account.Value == consts.MaxUint32 && requested == storage.Increasing:
		return ErrCannotIncreasePastMax
	default:
		return nil
	}
}

func (*SwitchMode) ComputeUnits(r chain.Rules) uint64 {
	return computeUnits(r, SwitchModeUnitsKey, DefaultSwitchModeUnits)
}

func (*SwitchMode) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (*SwitchMode) Size() int {
	return consts.Uint32Len
}

func (s *SwitchMode) Marshal(p *codec.Packer) {
	p.PackUint32(s.Mode)
}

func UnmarshalSwitchMode(p *codec.Packer) (chain.Action, error) {
	var s SwitchMode
	s.Mode = p.UnpackUint32(false)
	return &s, p.Err()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/consts"
)

const DefaultNetworkID uint32 = 1

var _ chain.Rules = (*Rules)(nil)

type Rules struct {
	NetworkID uint32 `json:"networkID"`
	ChainID   ids.ID `json:"chainID"`

	ValidityWindow int64 `json:"validityWindow"` // ms

	BaseComputeUnits   uint64 `json:"baseComputeUnits"`
	SetValueUnits      uint64 `json:"setValueUnits"`
	SwitchModeUnits    uint64 `json:"switchModeUnits"`
	ExecuteActionUnits uint64 `json:"executeActionUnits"`

	ExecuteOverflow actions.OverflowPolicy `json:"executeOverflow"`
}

// DefaultChainID is the chain id a network uses unless its genesis names
// one. Transactions never carry an empty chain id.
func DefaultChainID(networkID uint32) ids.ID {
	b := make([]byte, len(consts.Name)+consts.Uint32Len)
	copy(b, consts.Name)
	binary.BigEndian.PutUint32(b[len(consts.Name):], networkID)
	return hashing.ComputeHash256Array(b)
}

func NewDefaultRules() *Rules {
	return &Rules{
		NetworkID:          DefaultNetworkID,
		ChainID:            DefaultChainID(DefaultNetworkID),
		ValidityWindow:     60 * 1000, // 60 Seconds
		BaseComputeUnits:   1,
		SetValueUnits:      actions.DefaultSetValueUnits,
		SwitchModeUnits:    actions.DefaultSwitchModeUnits,
		ExecuteActionUnits: actions.DefaultExecuteActionUnits,
		ExecuteOverflow:    actions.DefaultOverflowPolicy,
	}
}

func (r *Rules) GetNetworkID() uint32 {
	return r.NetworkID
}

func (r *Rules) GetChainID() ids.ID {
	return r.ChainID
}

func (r *Rules) GetValidityWindow() int64 {
	return r.ValidityWindow
}

func (r *Rules) GetBaseComputeUnits() uint64 {
	return r.BaseComputeUnits
}

func (r *Rules) FetchCustom(k string) (any, bool) {
	switch k {
	case actions.SetValueUnitsKey:
		return r.SetValueUnits, true
	case actions.SwitchModeUnitsKey:
		return r.SwitchModeUnits, true
	case actions.ExecuteActionUnitsKey:
		return r.ExecuteActionUnits, true
	case actions.ExecuteOverflowKey:
		return r.ExecuteOverflow, true
	default:
		return nil, false
	}
}

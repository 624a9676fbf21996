// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/chain"
)

var _ chain.Rules = (*Rules)(nil)

// ChainID is the chain id of [NewRules].
var ChainID = ids.ID{'c', 'h', 'a', 'i', 'n', 't', 'e', 's', 't'}

// Rules is a fixed [chain.Rules] for tests. Custom values are served from
// [Custom].
type Rules struct {
	NetworkID        uint32
	ChainID          ids.ID
	ValidityWindow   int64
	BaseComputeUnits uint64
	Custom           map[string]any
}

func NewRules() *Rules {
	return &Rules{
		NetworkID:        1,
		ChainID:          ChainID,
		ValidityWindow:   60_000,
		BaseComputeUnits: 1,
		Custom:           map[string]any{},
	}
}

func (r *Rules) GetNetworkID() uint32 { return r.NetworkID }

func (r *Rules) GetChainID() ids.ID { return r.ChainID }

func (r *Rules) GetValidityWindow() int64 { return r.ValidityWindow }

func (r *Rules) GetBaseComputeUnits() uint64 { return r.BaseComputeUnits }

func (r *Rules) FetchCustom(k string) (any, bool) {
	v, ok := r.Custom[k]
	return v, ok
}

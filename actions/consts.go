// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "github.com/ava-labs/modevm/chain"

// Keys served by [chain.Rules.FetchCustom].
const (
	SetValueUnitsKey      = "setValueUnits"
	SwitchModeUnitsKey    = "switchModeUnits"
	ExecuteActionUnitsKey = "executeActionUnits"
	ExecuteOverflowKey    = "executeOverflow"
)

const (
	DefaultSetValueUnits      = 1
	DefaultSwitchModeUnits    = 1
	DefaultExecuteActionUnits = 1
)

func computeUnits(r chain.Rules, key string, def uint64) uint64 {
	if v, ok := r.FetchCustom(key); ok {
		if units, ok := v.(uint64); ok {
			return units
		}
	}
	return def
}

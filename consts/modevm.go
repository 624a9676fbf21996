// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"
)

const (
	HRP  = "mode"
	Name = "modevm"
)

// Note: type ids are part of the wire format. They are assigned explicitly
// so that reordering registrations can never remap an existing id.
const (
	// Action TypeIDs
	SetValueID      uint8 = 0
	SwitchModeID    uint8 = 1
	ExecuteActionID uint8 = 2

	// Auth TypeIDs
	ED25519ID uint8 = 0
)

var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}

var Version = &version.Semantic{
	Major: 0,
	Minor: 1,
	Patch: 0,
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
)

var (
	_ codec.Marshaler = (*ValueSet)(nil)
	_ codec.Marshaler = (*StateSwitched)(nil)
	_ codec.Marshaler = (*StateExecuted)(nil)
)

// ValueSet is emitted when an account is initialized.
type ValueSet struct {
	Account codec.Address `json:"account"`
}

func (*ValueSet) GetTypeID() uint8 {
	return consts.SetValueID // Common practice is to use the action ID
}

func (*ValueSet) Size() int {
	return codec.AddressLen
}

func (e *ValueSet) Marshal(p *codec.Packer) {
	p.PackAddress(e.Account)
}

func UnmarshalValueSet(p *codec.Packer) (codec.Marshaler, error) {
	var e ValueSet
	p.UnpackAddress(&e.Account)
	return &e, p.Err()
}

// StateSwitched is emitted when an account changes mode.
type StateSwitched struct {
	Account codec.Address `json:"account"`
}

func (*StateSwitched) GetTypeID() uint8 {
	return consts.SwitchModeID
}

func (*StateSwitched) Size() int {
	return codec.AddressLen
}

func (e *StateSwitched) Marshal(p *codec.Packer) {
	p.PackAddress(e.Account)
}

func UnmarshalStateSwitched(p *codec.Packer) (codec.Marshaler, error) {
	var e StateSwitched
	p.UnpackAddress(&e.Account)
	return &e, p.Err()
}

// StateExecuted is emitted on every execution, carrying the value after it
// was applied.
type StateExecuted struct {
	Account codec.Address `json:"account"`
	Value   uint32        `json:"value"`
}

func (*StateExecuted) GetTypeID() uint8 {
	return consts.ExecuteActionID
}

func (*StateExecuted) Size() int {
	return codec.AddressLen + consts.Uint32Len
}

func (e *StateExecuted) Marshal(p *codec.Packer) {
	p.PackAddress(e.Account)
	p.PackUint32(e.Value)
}

func UnmarshalStateExecuted(p *codec.Packer) (codec.Marshaler, error) {
	var e StateExecuted
	p.UnpackAddress(&e.Account)
	e.Value = p.UnpackUint32(false)
	return &e, p.Err()
}

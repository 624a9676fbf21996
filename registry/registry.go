// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/auth"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
)

var _ chain.Parser = (*Registry)(nil)

// Registry holds the decoders of every action, auth and output the chain
// understands.
type Registry struct {
	actions *codec.TypeParser[chain.Action]
	auths   *codec.TypeParser[chain.Auth]
	outputs *codec.TypeParser[codec.Marshaler]
}

func New() (*Registry, error) {
	r := &Registry{
		actions: codec.NewTypeParser[chain.Action](),
		auths:   codec.NewTypeParser[chain.Auth](),
		outputs: codec.NewTypeParser[codec.Marshaler](),
	}

	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		r.actions.Register(&actions.SetValue{}, actions.UnmarshalSetValue),
		r.actions.Register(&actions.SwitchMode{}, actions.UnmarshalSwitchMode),
		r.actions.Register(&actions.ExecuteAction{}, actions.UnmarshalExecuteAction),

		// When registering new auth, ALWAYS make sure to append at the end.
		r.auths.Register(&auth.ED25519{}, auth.UnmarshalED25519),

		r.outputs.Register(&actions.ValueSet{}, actions.UnmarshalValueSet),
		r.outputs.Register(&actions.StateSwitched{}, actions.UnmarshalStateSwitched),
		r.outputs.Register(&actions.StateExecuted{}, actions.UnmarshalStateExecuted),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return r, nil
}

func (r *Registry) ActionCodec() *codec.TypeParser[chain.Action] { return r.actions }

func (r *Registry) AuthCodec() *codec.TypeParser[chain.Auth] { return r.auths }

func (r *Registry) OutputCodec() *codec.TypeParser[codec.Marshaler] { return r.outputs }

// ErrorCode maps any transaction failure to its stable code.
func ErrorCode(err error) uint16 {
	if code, ok := actions.ErrorCode(err); ok {
		return code
	}
	return chain.ErrorCode(err)
}

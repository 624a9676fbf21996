// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/state"
)

type Rules interface {
	GetNetworkID() uint32
	GetChainID() ids.ID

	GetValidityWindow() int64 // in milliseconds
	GetBaseComputeUnits() uint64

	FetchCustom(string) (any, bool)
}

type Parser interface {
	ActionCodec() *codec.TypeParser[Action]
	AuthCodec() *codec.TypeParser[Auth]
	OutputCodec() *codec.TypeParser[codec.Marshaler]
}

type Action interface {
	codec.Marshaler

	// ValidRange is the timestamp range (in ms) that this [Action] is
	// considered valid. -1 means no start/end.
	ValidRange(Rules) (start int64, end int64)

	// ComputeUnits is the amount of compute required to call [Execute]. It
	// is charged before [Execute] runs and never depends on state.
	ComputeUnits(Rules) uint64

	// StateKeys is a full enumeration of all database keys that could be
	// touched during execution. Accessing any other key fails.
	StateKeys(actor codec.Address) state.Keys

	// Execute applies the action to [mu]. If an error is returned, any
	// changes it made are discarded.
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		timestamp int64,
		actor codec.Address,
		txID ids.ID,
	) (codec.Marshaler, error)
}

type Auth interface {
	codec.Marshaler

	ValidRange(Rules) (start int64, end int64)
	ComputeUnits(Rules) uint64

	// Verify checks the signature over [msg]. It must not access state.
	Verify(ctx context.Context, msg []byte) error

	// Actor is the account the action is executed on behalf of.
	Actor() codec.Address
}

type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address

	// ComputeUnits is the cost of any [Auth] this factory signs.
	ComputeUnits(Rules) uint64
}

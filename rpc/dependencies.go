// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/registry"
	"github.com/ava-labs/modevm/storage"
)

type VM interface {
	Genesis() *genesis.Genesis
	GenesisID() ids.ID
	Rules() *genesis.Rules
	Registry() *registry.Registry
	Logger() logging.Logger
	Tracer() trace.Tracer

	Submit(ctx context.Context, txs []*chain.Transaction) []error
	LastAccepted() storage.LastAccepted
	ReadState(ctx context.Context, keys [][]byte) ([][]byte, []error)
	GetResult(txID ids.ID) (*chain.Result, bool)
	RecentResults(addr codec.Address, limit int) []*chain.Result
}

// ResultIndex serves results that have left the VM's recent window.
type ResultIndex interface {
	EventsByAccount(ctx context.Context, addr codec.Address, limit int) ([]*chain.Result, error)
	GetResult(ctx context.Context, txID ids.ID) (*chain.Result, error)
}

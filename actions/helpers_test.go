// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/chain/chaintest"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"
)

var (
	alice = codec.CreateAddress(consts.ED25519ID, ids.ID{1})
	bob   = codec.CreateAddress(consts.ED25519ID, ids.ID{2})
)

func storeWith(addr codec.Address, value uint32, mode storage.Mode) *chaintest.InMemoryStore {
	st := chaintest.NewInMemoryStore()
	st.Storage[string(storage.AccountKey(addr))] = storage.EncodeAccount(storage.AccountState{
		Value: value,
		Mode:  mode,
	})
	return st
}

func requireAccount(value uint32, mode storage.Mode) func(context.Context, *testing.T, state.Mutable) {
	return requireAccountOf(alice, value, mode)
}

func requireAccountOf(addr codec.Address, value uint32, mode storage.Mode) func(context.Context, *testing.T, state.Mutable) {
	return func(ctx context.Context, t *testing.T, m state.Mutable) {
		require := require.New(t)
		account, ok, err := storage.GetAccount(ctx, m, addr)
		require.NoError(err)
		require.True(ok)
		require.Equal(storage.AccountState{Value: value, Mode: mode}, account)
	}
}

func requireNoAccount(ctx context.Context, t *testing.T, m state.Mutable) {
	require := require.New(t)
	_, ok, err := storage.GetAccount(ctx, m, alice)
	require.NoError(err)
	require.False(ok)
}

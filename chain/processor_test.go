// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/chain/chaintest"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/registry"
	"github.com/ava-labs/modevm/storage"
)

func TestProcessorExecute(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newSigner(t)
	rules := chaintest.NewRules()
	actor := s.factory.Address()

	base := func() *chain.Base {
		return &chain.Base{Timestamp: 5_000, ChainID: chaintest.ChainID, MaxUnits: 10}
	}
	setOne := s.sign(t, base(), &actions.SetValue{Value: 1})
	txs := []*chain.Transaction{
		setOne,
		s.sign(t, base(), &actions.SwitchMode{Mode: 2}),   // fails: CannotDecreaseToZero
		s.sign(t, base(), &actions.SwitchMode{Mode: 1}),   // ok
		setOne,                                            // duplicate
		s.sign(t, &chain.Base{Timestamp: 5_000, ChainID: chaintest.ChainID, MaxUnits: 1}, &actions.ExecuteAction{}), // insufficient units
		s.sign(t, base(), &actions.ExecuteAction{}), // ok: 2
	}
	blk, err := chain.NewBlock(ids.Empty, 1, 5_000, txs)
	require.NoError(err)

	store := chaintest.NewInMemoryStore()
	p := chain.NewProcessor(trace.Noop, logging.NoLog{}, registry.ErrorCode)
	ts, results, err := p.Execute(ctx, rules, store, blk, nil)
	require.NoError(err)
	require.Len(results, len(txs))

	expected := []struct {
		success bool
		code    uint16
	}{
		{true, chain.CodeOK},
		{false, actions.CodeCannotDecreaseToZero},
		{true, chain.CodeOK},
		{false, chain.CodeDuplicateTx},
		{false, chain.CodeInsufficientUnits},
		{true, chain.CodeOK},
	}
	for i, e := range expected {
		require.Equal(e.success, results[i].Success, "tx %d", i)
		require.Equal(e.code, results[i].Code, "tx %d", i)
		require.Equal(txs[i].ID(), results[i].TxID)
		require.Equal(actor, results[i].Actor)
		require.Equal(uint64(1), results[i].Height)
	}
	require.Equal(actions.ErrCannotDecreaseToZero.Error(), results[1].Error)

	// last result carries the event
	event, err := s.parser.OutputCodec().Unmarshal(codec.NewReader(results[5].Output, consts.NetworkSizeLimit))
	require.NoError(err)
	require.Equal(&actions.StateExecuted{Account: actor, Value: 2}, event)

	// base store is untouched until changes are committed
	require.Empty(store.Storage)
	changes := ts.ChangedKeys()
	require.Len(changes, 1)
	account, err := storage.DecodeAccount(changes[string(storage.AccountKey(actor))])
	require.NoError(err)
	require.Equal(storage.AccountState{Value: 2, Mode: storage.Increasing}, account)
}

// A failing transaction leaves the block state exactly as it found it.
func TestProcessorRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newSigner(t)
	rules := chaintest.NewRules()
	rules.Custom[actions.ExecuteOverflowKey] = actions.OverflowReject

	store := chaintest.NewInMemoryStore()
	require.NoError(storage.PutAccount(ctx, store, s.factory.Address(), storage.AccountState{
		Value: consts.MaxUint32,
		Mode:  storage.Increasing,
	}))
	before := store.Snapshot()

	tx := s.sign(t, &chain.Base{Timestamp: 1_000, ChainID: chaintest.ChainID, MaxUnits: 10}, &actions.ExecuteAction{})
	blk, err := chain.NewBlock(ids.Empty, 1, 1_000, []*chain.Transaction{tx})
	require.NoError(err)

	p := chain.NewProcessor(trace.Noop, logging.NoLog{}, registry.ErrorCode)
	ts, results, err := p.Execute(ctx, rules, store, blk, nil)
	require.NoError(err)
	require.False(results[0].Success)
	require.Equal(actions.CodeValueOutOfRange, results[0].Code)
	require.Empty(ts.ChangedKeys())
	require.Equal(before, store.Storage)
}

type acceptedSet map[ids.ID]struct{}

func (a acceptedSet) Has(id ids.ID) bool {
	_, ok := a[id]
	return ok
}

func TestProcessorAlreadyAccepted(t *testing.T) {
	require := require.New(t)
	s := newSigner(t)

	tx := s.sign(t, &chain.Base{Timestamp: 2_000, ChainID: chaintest.ChainID, MaxUnits: 10}, &actions.SetValue{Value: 3})
	blk, err := chain.NewBlock(ids.Empty, 2, 2_000, []*chain.Transaction{tx})
	require.NoError(err)

	p := chain.NewProcessor(trace.Noop, logging.NoLog{}, registry.ErrorCode)
	ts, results, err := p.Execute(context.Background(), chaintest.NewRules(), chaintest.NewInMemoryStore(), blk, acceptedSet{tx.ID(): {}})
	require.NoError(err)
	require.False(results[0].Success)
	require.Equal(chain.CodeDuplicateTx, results[0].Code)
	require.Empty(ts.ChangedKeys())
}

func TestBlockRoundTrip(t *testing.T) {
	require := require.New(t)
	s := newSigner(t)

	tx := s.sign(t, &chain.Base{Timestamp: 3_000, ChainID: chaintest.ChainID, MaxUnits: 10}, &actions.SetValue{Value: 4})
	blk, err := chain.NewBlock(ids.GenerateTestID(), 9, 3_000, []*chain.Transaction{tx})
	require.NoError(err)

	parsed, err := chain.UnmarshalBlock(blk.Bytes(), 8, s.parser)
	require.NoError(err)
	require.Equal(blk.ID(), parsed.ID())
	require.Equal(blk.Parent, parsed.Parent)
	require.Equal(uint64(9), parsed.Height)
	require.Len(parsed.Txs, 1)
	require.Equal(tx.ID(), parsed.Txs[0].ID())

	require.NoError(parsed.Verify(blk.Parent, 8, 2_000))
	require.ErrorIs(parsed.Verify(ids.Empty, 8, 2_000), chain.ErrParentMismatch)
	require.ErrorIs(parsed.Verify(blk.Parent, 9, 2_000), chain.ErrInvalidHeight)
	require.ErrorIs(parsed.Verify(blk.Parent, 8, 4_000), chain.ErrTimestampOrder)
}

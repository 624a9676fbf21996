// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/auth"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/config"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/crypto/ed25519"
	"github.com/ava-labs/modevm/event"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/internal/mempool"
	"github.com/ava-labs/modevm/journal"
	"github.com/ava-labs/modevm/pebble"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"
)

func newFactory(t *testing.T) *auth.ED25519Factory {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return auth.NewED25519Factory(priv)
}

func newTestVM(t *testing.T, g *genesis.Genesis, db state.Database, options ...Option) *VM {
	require := require.New(t)
	cfg, err := config.New(nil)
	require.NoError(err)
	vm, err := New(
		context.Background(),
		logging.NoLog{},
		trace.Noop,
		prometheus.NewRegistry(),
		cfg,
		g,
		db,
		append([]Option{WithManualBuilder()}, options...)...,
	)
	require.NoError(err)
	vm.Start()
	return vm
}

// expiry is a valid transaction expiry a few seconds from now.
func expiry() int64 {
	return (time.Now().UnixMilli()/consts.MillisecondsPerSecond + 10) * consts.MillisecondsPerSecond
}

func sign(t *testing.T, vm *VM, f chain.AuthFactory, base *chain.Base, action chain.Action) *chain.Transaction {
	tx, err := chain.NewTx(base, action).Sign(f, vm.Registry().ActionCodec(), vm.Registry().AuthCodec())
	require.NoError(t, err)
	return tx
}

func validBase(vm *VM) *chain.Base {
	return &chain.Base{Timestamp: expiry(), ChainID: vm.Rules().ChainID, MaxUnits: 10}
}

func TestGenesisInitialization(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	f := newFactory(t)
	g := genesis.Default()
	g.Accounts = []*genesis.Allocation{{
		Address: codec.MustAddressBech32(consts.HRP, f.Address()),
		Value:   7,
		Mode:    storage.Increasing,
	}}
	vm := newTestVM(t, g, storage.NewMemory())
	defer func() { require.NoError(vm.Shutdown(ctx)) }()

	genesisID, err := g.ID()
	require.NoError(err)
	require.Equal(storage.LastAccepted{BlockID: genesisID}, vm.LastAccepted())

	account, ok, err := vm.GetAccount(ctx, f.Address())
	require.NoError(err)
	require.True(ok)
	require.Equal(storage.AccountState{Value: 7, Mode: storage.Increasing}, account)

	_, ok, err = vm.GetAccount(ctx, newFactory(t).Address())
	require.NoError(err)
	require.False(ok)
}

func TestProduceAppliesInOrder(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	results := event.NewRecent[*chain.Result](16)
	var blocks []*chain.Block
	vm := newTestVM(t, genesis.Default(), storage.NewMemory(),
		WithResultSubscription(results),
		WithBlockSubscription(event.SubscriptionFunc[*chain.Block]{
			AcceptF: func(_ context.Context, blk *chain.Block) error {
				blocks = append(blocks, blk)
				return nil
			},
		}),
	)
	defer func() { require.NoError(vm.Shutdown(ctx)) }()

	f := newFactory(t)
	txs := []*chain.Transaction{
		sign(t, vm, f, validBase(vm), &actions.SetValue{Value: 5}),
		sign(t, vm, f, validBase(vm), &actions.SwitchMode{Mode: uint32(storage.Increasing)}),
		sign(t, vm, f, validBase(vm), &actions.ExecuteAction{}),
	}
	for _, err := range vm.Submit(ctx, txs) {
		require.NoError(err)
	}
	require.Equal(3, vm.MempoolLen(ctx))

	require.NoError(vm.builder.Force(ctx))
	require.Zero(vm.MempoolLen(ctx))
	require.Equal(uint64(1), vm.LastAccepted().Height)
	require.Len(blocks, 1)
	require.Equal(blocks[0].ID(), vm.LastAccepted().BlockID)

	account, ok, err := vm.GetAccount(ctx, f.Address())
	require.NoError(err)
	require.True(ok)
	require.Equal(storage.AccountState{Value: 6, Mode: storage.Increasing}, account)

	items := results.Items()
	require.Len(items, 3)
	for i, r := range items {
		require.True(r.Success)
		require.Equal(txs[i].ID(), r.TxID)
	}
	output, err := vm.Registry().OutputCodec().Unmarshal(codec.NewReader(items[2].Output, consts.NetworkSizeLimit))
	require.NoError(err)
	require.Equal(&actions.StateExecuted{Account: f.Address(), Value: 6}, output)

	r, ok := vm.GetResult(txs[1].ID())
	require.True(ok)
	require.Equal(items[1], r)
	require.Equal(items, vm.RecentResults(f.Address(), 10))
	require.Equal(items[1:], vm.RecentResults(f.Address(), 2))

	// nothing pending, nothing built
	require.NoError(vm.builder.Force(ctx))
	require.Equal(uint64(1), vm.LastAccepted().Height)
}

func TestSubmitRejects(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm := newTestVM(t, genesis.Default(), storage.NewMemory())
	defer func() { require.NoError(vm.Shutdown(ctx)) }()
	f := newFactory(t)

	accepted := sign(t, vm, f, validBase(vm), &actions.SetValue{Value: 1})
	require.NoError(vm.Submit(ctx, []*chain.Transaction{accepted})[0])
	require.NoError(vm.builder.Force(ctx))

	pending := sign(t, vm, f, validBase(vm), &actions.SetValue{Value: 2})
	require.NoError(vm.Submit(ctx, []*chain.Transaction{pending})[0])

	// reuse a valid signature over a different action
	forged := chain.NewTx(validBase(vm), &actions.SetValue{Value: 3})
	forged.Auth = pending.Auth
	p := codec.NewWriter(0, consts.NetworkSizeLimit)
	require.NoError(forged.Marshal(p))
	forged, err := chain.UnmarshalTx(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit), vm.Registry().ActionCodec(), vm.Registry().AuthCodec())
	require.NoError(err)

	tests := []struct {
		name    string
		tx      *chain.Transaction
		wantErr error
	}{
		{
			name:    "already accepted",
			tx:      accepted,
			wantErr: chain.ErrDuplicateTx,
		},
		{
			name:    "already pending",
			tx:      pending,
			wantErr: mempool.ErrDuplicate,
		},
		{
			name:    "wrong chain",
			tx:      sign(t, vm, f, &chain.Base{Timestamp: expiry(), ChainID: ids.GenerateTestID(), MaxUnits: 10}, &actions.ExecuteAction{}),
			wantErr: chain.ErrInvalidChainID,
		},
		{
			name:    "expired",
			tx:      sign(t, vm, f, &chain.Base{Timestamp: 1_000, ChainID: vm.Rules().ChainID, MaxUnits: 10}, &actions.ExecuteAction{}),
			wantErr: chain.ErrTimestampTooLate,
		},
		{
			name:    "too far ahead",
			tx:      sign(t, vm, f, &chain.Base{Timestamp: expiry() + vm.Rules().ValidityWindow, ChainID: vm.Rules().ChainID, MaxUnits: 10}, &actions.ExecuteAction{}),
			wantErr: chain.ErrTimestampTooEarly,
		},
		{
			name:    "insufficient units",
			tx:      sign(t, vm, f, &chain.Base{Timestamp: expiry(), ChainID: vm.Rules().ChainID, MaxUnits: 1}, &actions.ExecuteAction{}),
			wantErr: chain.ErrInsufficientUnits,
		},
		{
			name:    "bad signature",
			tx:      forged,
			wantErr: chain.ErrAuthFailed,
		},
	}
	for _, tt := range tests {
		errs := vm.Submit(ctx, []*chain.Transaction{tt.tx})
		require.ErrorIs(errs[0], tt.wantErr, tt.name)
	}
	require.Equal(1, vm.MempoolLen(ctx))
}

func TestSubmitBatchIsolatesBadSignature(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm := newTestVM(t, genesis.Default(), storage.NewMemory())
	defer func() { require.NoError(vm.Shutdown(ctx)) }()

	txs := make([]*chain.Transaction, 0, ed25519.MinBatchSize+1)
	for i := 0; i < ed25519.MinBatchSize; i++ {
		txs = append(txs, sign(t, vm, newFactory(t), validBase(vm), &actions.SetValue{Value: uint32(i + 1)}))
	}
	forged := chain.NewTx(validBase(vm), &actions.SetValue{Value: 99})
	forged.Auth = txs[0].Auth
	p := codec.NewWriter(0, consts.NetworkSizeLimit)
	require.NoError(forged.Marshal(p))
	forged, err := chain.UnmarshalTx(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit), vm.Registry().ActionCodec(), vm.Registry().AuthCodec())
	require.NoError(err)
	txs = append(txs, forged)

	errs := vm.Submit(ctx, txs)
	for i := 0; i < ed25519.MinBatchSize; i++ {
		require.NoError(errs[i])
	}
	require.ErrorIs(errs[ed25519.MinBatchSize], chain.ErrAuthFailed)
	require.Equal(ed25519.MinBatchSize, vm.MempoolLen(ctx))
}

func TestFailedActionKeepsState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	f := newFactory(t)
	g := genesis.Default()
	g.Accounts = []*genesis.Allocation{{
		Address: codec.MustAddressBech32(consts.HRP, f.Address()),
		Value:   1,
		Mode:    storage.Idle,
	}}
	results := event.NewRecent[*chain.Result](4)
	vm := newTestVM(t, g, storage.NewMemory(), WithResultSubscription(results))
	defer func() { require.NoError(vm.Shutdown(ctx)) }()

	tx := sign(t, vm, f, validBase(vm), &actions.SwitchMode{Mode: uint32(storage.Decreasing)})
	require.NoError(vm.Submit(ctx, []*chain.Transaction{tx})[0])
	require.NoError(vm.builder.Force(ctx))

	require.Equal(uint64(1), vm.LastAccepted().Height)
	items := results.Items()
	require.Len(items, 1)
	require.False(items[0].Success)
	require.Equal(actions.CodeCannotDecreaseToZero, items[0].Code)

	account, ok, err := vm.GetAccount(ctx, f.Address())
	require.NoError(err)
	require.True(ok)
	require.Equal(storage.AccountState{Value: 1, Mode: storage.Idle}, account)
}

func TestAcceptVerifiesParent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm := newTestVM(t, genesis.Default(), storage.NewMemory())
	defer func() { require.NoError(vm.Shutdown(ctx)) }()

	blk, err := chain.NewBlock(ids.GenerateTestID(), 1, time.Now().UnixMilli(), nil)
	require.NoError(err)
	_, err = vm.Accept(ctx, blk)
	require.ErrorIs(err, chain.ErrParentMismatch)

	blk, err = chain.NewBlock(vm.LastAccepted().BlockID, 2, time.Now().UnixMilli(), nil)
	require.NoError(err)
	_, err = vm.Accept(ctx, blk)
	require.ErrorIs(err, chain.ErrInvalidHeight)
}

func TestRestartResumes(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	open := func() state.Database {
		db, err := storage.New(storage.PebbleBackend, dir, pebble.NewDefaultConfig(), prometheus.NewRegistry())
		require.NoError(err)
		return db
	}

	f := newFactory(t)
	vm := newTestVM(t, genesis.Default(), open())
	tx := sign(t, vm, f, validBase(vm), &actions.SetValue{Value: 9})
	require.NoError(vm.Submit(ctx, []*chain.Transaction{tx})[0])
	require.NoError(vm.builder.Force(ctx))
	lastAccepted := vm.LastAccepted()
	require.NoError(vm.Shutdown(ctx))

	vm = newTestVM(t, genesis.Default(), open())
	defer func() { require.NoError(vm.Shutdown(ctx)) }()
	require.Equal(lastAccepted, vm.LastAccepted())
	account, ok, err := vm.GetAccount(ctx, f.Address())
	require.NoError(err)
	require.True(ok)
	require.Equal(storage.AccountState{Value: 9, Mode: storage.Idle}, account)
}

func TestGenesisMismatch(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := storage.NewMemory()
	vm := newTestVM(t, genesis.Default(), db)
	require.Equal(uint64(0), vm.LastAccepted().Height)

	other := genesis.Default()
	other.Rules.ExecuteOverflow = actions.OverflowSaturate
	cfg, err := config.New(nil)
	require.NoError(err)
	_, err = New(ctx, logging.NoLog{}, trace.Noop, prometheus.NewRegistry(), cfg, other, db)
	require.ErrorIs(err, ErrGenesisMismatch)
	require.NoError(vm.Shutdown(ctx))
}

func TestReplayJournal(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	w, err := journal.NewWriter(dir)
	require.NoError(err)
	vm := newTestVM(t, genesis.Default(), storage.NewMemory(), WithBlockSubscription(w))

	f := newFactory(t)
	for _, action := range []chain.Action{
		&actions.SetValue{Value: 3},
		&actions.SwitchMode{Mode: uint32(storage.Decreasing)},
		&actions.ExecuteAction{},
	} {
		tx := sign(t, vm, f, validBase(vm), action)
		require.NoError(vm.Submit(ctx, []*chain.Transaction{tx})[0])
		require.NoError(vm.builder.Force(ctx))
	}
	lastAccepted := vm.LastAccepted()
	require.Equal(uint64(3), lastAccepted.Height)
	require.NoError(vm.Shutdown(ctx))

	replayed := newTestVM(t, genesis.Default(), storage.NewMemory())
	defer func() { require.NoError(replayed.Shutdown(ctx)) }()
	n, err := replayed.ReplayJournal(ctx, dir)
	require.NoError(err)
	require.Equal(3, n)
	require.Equal(lastAccepted, replayed.LastAccepted())

	account, ok, err := replayed.GetAccount(ctx, f.Address())
	require.NoError(err)
	require.True(ok)
	require.Equal(storage.AccountState{Value: 2, Mode: storage.Decreasing}, account)

	// already applied
	n, err = replayed.ReplayJournal(ctx, dir)
	require.NoError(err)
	require.Zero(n)
}

func TestShutdown(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm := newTestVM(t, genesis.Default(), storage.NewMemory())
	require.NoError(vm.Shutdown(ctx))
	require.NoError(vm.Shutdown(ctx))

	tx := sign(t, vm, newFactory(t), validBase(vm), &actions.ExecuteAction{})
	require.ErrorIs(vm.Submit(ctx, []*chain.Transaction{tx})[0], ErrClosed)
}

func TestActionName(t *testing.T) {
	require := require.New(t)
	require.Equal("set_value", actionName(consts.SetValueID))
	require.Equal("switch_mode", actionName(consts.SwitchModeID))
	require.Equal("execute_action", actionName(consts.ExecuteActionID))
	require.Equal("7", actionName(7))
}

func TestRestartRejectsAcceptedTx(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()
	journalDir := t.TempDir()

	open := func() state.Database {
		db, err := storage.New(storage.PebbleBackend, dir, pebble.NewDefaultConfig(), prometheus.NewRegistry())
		require.NoError(err)
		return db
	}

	w, err := journal.NewWriter(journalDir)
	require.NoError(err)
	f := newFactory(t)
	live := newTestVM(t, genesis.Default(), open(), WithBlockSubscription(w))
	var execute *chain.Transaction
	for _, action := range []chain.Action{
		&actions.SetValue{Value: 5},
		&actions.SwitchMode{Mode: uint32(storage.Increasing)},
		&actions.ExecuteAction{},
	} {
		tx := sign(t, live, f, validBase(live), action)
		require.NoError(live.Submit(ctx, []*chain.Transaction{tx})[0])
		require.NoError(live.builder.Force(ctx))
		execute = tx
	}
	require.NoError(live.Shutdown(ctx))

	live = newTestVM(t, genesis.Default(), open())
	defer func() { require.NoError(live.Shutdown(ctx)) }()
	require.ErrorIs(live.Submit(ctx, []*chain.Transaction{execute})[0], chain.ErrDuplicateTx)

	replica := newTestVM(t, genesis.Default(), storage.NewMemory())
	defer func() { require.NoError(replica.Shutdown(ctx)) }()
	n, err := replica.ReplayJournal(ctx, journalDir)
	require.NoError(err)
	require.Equal(3, n)
	require.Equal(live.LastAccepted(), replica.LastAccepted())

	// A block carrying the same bytes again has the same outcome on both.
	last := live.LastAccepted()
	blk, err := chain.NewBlock(last.BlockID, last.Height+1, last.Timestamp+1, []*chain.Transaction{execute})
	require.NoError(err)
	for _, vm := range []*VM{live, replica} {
		results, err := vm.Accept(ctx, blk)
		require.NoError(err)
		require.Len(results, 1)
		require.False(results[0].Success)
		require.Equal(chain.CodeDuplicateTx, results[0].Code)

		account, ok, err := vm.GetAccount(ctx, f.Address())
		require.NoError(err)
		require.True(ok)
		require.Equal(storage.AccountState{Value: 6, Mode: storage.Increasing}, account)
	}
	require.Equal(live.LastAccepted(), replica.LastAccepted())
}

var errCommit = errors.New("commit failed")

type failingDB struct {
	state.Database
	fail bool
}

func (d *failingDB) Commit(ctx context.Context, changes map[string][]byte) error {
	if d.fail {
		return errCommit
	}
	return d.Database.Commit(ctx, changes)
}

func TestProduceRequeuesOnFailedAccept(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := &failingDB{Database: storage.NewMemory()}
	vm := newTestVM(t, genesis.Default(), db)
	defer func() { require.NoError(vm.Shutdown(ctx)) }()

	f := newFactory(t)
	tx := sign(t, vm, f, validBase(vm), &actions.SetValue{Value: 4})
	require.NoError(vm.Submit(ctx, []*chain.Transaction{tx})[0])

	db.fail = true
	require.ErrorIs(vm.builder.Force(ctx), errCommit)
	require.Equal(1, vm.MempoolLen(ctx))
	require.False(vm.seen.Has(tx.ID()))
	require.Zero(vm.LastAccepted().Height)

	db.fail = false
	require.NoError(vm.builder.Force(ctx))
	require.Zero(vm.MempoolLen(ctx))
	require.True(vm.seen.Has(tx.ID()))
	account, ok, err := vm.GetAccount(ctx, f.Address())
	require.NoError(err)
	require.True(ok)
	require.Equal(storage.AccountState{Value: 4, Mode: storage.Idle}, account)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/modevm/auth"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/config"
	"github.com/ava-labs/modevm/event"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/internal/builder"
	"github.com/ava-labs/modevm/internal/emap"
	"github.com/ava-labs/modevm/internal/mempool"
	"github.com/ava-labs/modevm/journal"
	"github.com/ava-labs/modevm/registry"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/tstate"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// VM orders submitted transactions into blocks and applies them to the
// account store one at a time.
type VM struct {
	config    *config.Config
	genesis   *genesis.Genesis
	genesisID ids.ID
	rules     *genesis.Rules
	registry  *registry.Registry

	log     logging.Logger
	tracer  trace.Tracer
	db      state.Database
	metrics *Metrics

	processor *chain.Processor
	mempool   *mempool.Mempool[*chain.Transaction]
	seen      *emap.EMap[*chain.Transaction]
	builder   builder.Builder

	recent     *event.Recent[*chain.Result]
	resultSubs []event.Subscription[*chain.Result]
	blockSubs  []event.Subscription[*chain.Block]

	// buildLock serializes block production so two builds never race for
	// the same parent.
	buildLock sync.Mutex

	l            sync.RWMutex
	lastAccepted storage.LastAccepted

	started atomic.Bool
	closed  atomic.Bool
}

func New(
	ctx context.Context,
	log logging.Logger,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
	cfg *config.Config,
	g *genesis.Genesis,
	db state.Database,
	options ...Option,
) (*VM, error) {
	reg, err := registry.New()
	if err != nil {
		return nil, err
	}
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	genesisID, err := g.ID()
	if err != nil {
		return nil, err
	}

	vm := &VM{
		config:    cfg,
		genesis:   g,
		genesisID: genesisID,
		rules:     g.Rules,
		registry:  reg,
		log:       log,
		tracer:    tracer,
		db:        db,
		metrics:   metrics,
		processor: chain.NewProcessor(tracer, log, registry.ErrorCode),
		mempool:   mempool.New[*chain.Transaction](tracer, cfg.MempoolSize),
		seen:      emap.New[*chain.Transaction](),
		recent:    event.NewRecent[*chain.Result](cfg.RecentResults),
	}
	vm.resultSubs = []event.Subscription[*chain.Result]{vm.recent}
	vm.builder = builder.NewTime(log, vm.mempool, vm.Produce, vm.lastTimestampAndBlockGap)
	for _, option := range options {
		option(vm)
	}

	if err := vm.initialize(ctx); err != nil {
		return nil, err
	}
	return vm, nil
}

// initialize writes genesis on first start or resumes from the stored last
// accepted block.
func (vm *VM) initialize(ctx context.Context) error {
	ctx, span := vm.tracer.Start(ctx, "VM.initialize")
	defer span.End()

	lastAccepted, ok, err := storage.GetLastAccepted(ctx, vm.db)
	if err != nil {
		return err
	}
	if ok {
		if lastAccepted.Height == 0 && lastAccepted.BlockID != vm.genesisID {
			return fmt.Errorf("%w: stored=%s loaded=%s", ErrGenesisMismatch, lastAccepted.BlockID, vm.genesisID)
		}
		accepted, err := storage.GetAcceptedTxs(ctx, vm.db)
		if err != nil {
			return err
		}
		vm.seen.Reset(accepted)
		vm.lastAccepted = lastAccepted
		vm.metrics.height.Set(float64(lastAccepted.Height))
		vm.log.Info("resuming from last accepted block",
			zap.Uint64("height", lastAccepted.Height),
			zap.Stringer("blockID", lastAccepted.BlockID),
			zap.Int("acceptedTxs", len(accepted)),
		)
		return nil
	}

	keys, err := vm.genesis.StateKeys()
	if err != nil {
		return err
	}
	ts := tstate.New(vm.db, len(keys)+1)
	view := ts.NewView(keys)
	if err := vm.genesis.InitializeState(ctx, vm.tracer, view); err != nil {
		return err
	}
	view.Commit()

	vm.lastAccepted = storage.LastAccepted{BlockID: vm.genesisID}
	changes := ts.ChangedKeys()
	changes[string(storage.LastAcceptedKey())] = storage.EncodeLastAccepted(vm.lastAccepted)
	if err := vm.db.Commit(ctx, changes); err != nil {
		return err
	}
	vm.log.Info("initialized genesis",
		zap.Stringer("genesisID", vm.genesisID),
		zap.Int("accounts", len(vm.genesis.Accounts)),
	)
	return nil
}

// Start begins timed block production.
func (vm *VM) Start() {
	if !vm.started.CompareAndSwap(false, true) {
		return
	}
	vm.builder.Start()
}

// Submit validates [txs] and adds the valid ones to the mempool. The
// returned slice has one entry per transaction.
func (vm *VM) Submit(ctx context.Context, txs []*chain.Transaction) []error {
	ctx, span := vm.tracer.Start(ctx, "VM.Submit", oteltrace.WithAttributes(
		attribute.Int("txs", len(txs)),
	))
	defer span.End()

	errs := make([]error, len(txs))
	if vm.closed.Load() {
		for i := range errs {
			errs[i] = ErrClosed
		}
		return errs
	}

	now := time.Now().UnixMilli()
	valid := make([]*chain.Transaction, 0, len(txs))
	validIdx := make([]int, 0, len(txs))
	for i, tx := range txs {
		switch {
		case vm.seen.Has(tx.ID()):
			errs[i] = chain.ErrDuplicateTx
		case vm.mempool.Has(ctx, tx.ID()):
			errs[i] = mempool.ErrDuplicate
		default:
			if _, err := tx.PreVerify(vm.rules, now); err != nil {
				errs[i] = err
				continue
			}
			valid = append(valid, tx)
			validIdx = append(validIdx, i)
		}
	}

	// Verify signatures together, only falling back to one at a time to find
	// the offenders.
	if err := auth.VerifyBatch(ctx, valid); err != nil {
		for j, tx := range valid {
			errs[validIdx[j]] = tx.VerifyAuth(ctx)
		}
	}

	for j, tx := range valid {
		i := validIdx[j]
		if errs[i] != nil {
			continue
		}
		errs[i] = vm.mempool.Add(ctx, tx)
	}

	var added int
	for _, err := range errs {
		if err == nil {
			added++
		}
	}
	vm.metrics.txsSubmitted.Add(float64(added))
	vm.metrics.txsRejected.Add(float64(len(txs) - added))
	vm.metrics.mempoolSize.Set(float64(vm.mempool.Len(ctx)))
	if added > 0 {
		vm.builder.Queue(ctx)
	}
	return errs
}

// BuildBlock takes pending transactions from the mempool and puts them in a
// block on top of the last accepted one.
func (vm *VM) BuildBlock(ctx context.Context, timestamp int64) (*chain.Block, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.BuildBlock")
	defer span.End()

	start := time.Now()
	parent := vm.LastAccepted()
	if timestamp < parent.Timestamp {
		timestamp = parent.Timestamp
	}
	expired := vm.mempool.SetMinTimestamp(ctx, timestamp)
	vm.metrics.txsExpired.Add(float64(len(expired)))
	if len(expired) > 0 {
		vm.log.Debug("dropped expired transactions", zap.Int("count", len(expired)))
	}
	txs := vm.mempool.Take(ctx, vm.config.MaxBlockTxs)
	vm.metrics.mempoolSize.Set(float64(vm.mempool.Len(ctx)))

	blk, err := chain.NewBlock(parent.BlockID, parent.Height+1, timestamp, txs)
	if err != nil {
		return nil, err
	}
	vm.metrics.blockBuild.Observe(float64(time.Since(start)))
	return blk, nil
}

// Produce builds a block at [timestamp] and accepts it. Nothing is produced
// when the mempool is empty.
func (vm *VM) Produce(ctx context.Context, timestamp int64) error {
	vm.buildLock.Lock()
	defer vm.buildLock.Unlock()

	if vm.mempool.Len(ctx) == 0 {
		return nil
	}
	blk, err := vm.BuildBlock(ctx, timestamp)
	if err != nil {
		return err
	}
	if len(blk.Txs) == 0 {
		return nil
	}
	if _, err := vm.Accept(ctx, blk); err != nil {
		vm.mempool.Restore(ctx, blk.Txs)
		vm.metrics.mempoolSize.Set(float64(vm.mempool.Len(ctx)))
		vm.log.Warn("requeued transactions of rejected block",
			zap.Uint64("height", blk.Height),
			zap.Int("txs", len(blk.Txs)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Accept applies [blk] on top of the last accepted block and commits the
// resulting state. Subscribers see every result before the block itself.
func (vm *VM) Accept(ctx context.Context, blk *chain.Block) ([]*chain.Result, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Accept", oteltrace.WithAttributes(
		attribute.Int64("height", int64(blk.Height)),
		attribute.Int("txs", len(blk.Txs)),
	))
	defer span.End()

	start := time.Now()
	vm.l.Lock()
	defer vm.l.Unlock()

	if vm.closed.Load() {
		return nil, ErrClosed
	}
	if err := blk.Verify(vm.lastAccepted.BlockID, vm.lastAccepted.Height, vm.lastAccepted.Timestamp); err != nil {
		return nil, err
	}
	if len(blk.Txs) > vm.config.MaxBlockTxs {
		return nil, fmt.Errorf("%w: %d > %d", chain.ErrTooManyTxs, len(blk.Txs), vm.config.MaxBlockTxs)
	}

	ts, results, err := vm.processor.Execute(ctx, vm.rules, vm.db, blk, vm.seen)
	if err != nil {
		return nil, err
	}
	lastAccepted := storage.LastAccepted{
		Height:    blk.Height,
		BlockID:   blk.ID(),
		Timestamp: blk.Timestamp,
	}
	// The accepted set is committed with the block so a restarted node
	// rejects the same duplicates a replica replaying from genesis does.
	prevSeen := vm.seen.Entries()
	vm.seen.Add(blk.Txs)
	vm.seen.SetMin(blk.Timestamp)

	changes := ts.ChangedKeys()
	changes[string(storage.LastAcceptedKey())] = storage.EncodeLastAccepted(lastAccepted)
	changes[string(storage.AcceptedTxsKey())] = storage.EncodeAcceptedTxs(vm.seen.Entries())
	if err := vm.db.Commit(ctx, changes); err != nil {
		vm.seen.Reset(prevSeen)
		return nil, err
	}
	vm.lastAccepted = lastAccepted

	var succeeded int
	for _, r := range results {
		if r.Success {
			succeeded++
		}
		vm.metrics.recordResult(r.ActionID, r.Success)
	}
	vm.metrics.txsSucceeded.Add(float64(succeeded))
	vm.metrics.txsFailed.Add(float64(len(results) - succeeded))
	vm.metrics.blocksAccepted.Inc()
	vm.metrics.height.Set(float64(blk.Height))
	vm.metrics.blockAccept.Observe(float64(time.Since(start)))
	vm.log.Info("accepted block",
		zap.Uint64("height", blk.Height),
		zap.Stringer("blockID", blk.ID()),
		zap.Int("txs", len(blk.Txs)),
		zap.Int("succeeded", succeeded),
		zap.Int("changes", len(changes)),
	)

	for _, r := range results {
		if err := event.NotifyAll(ctx, r, vm.resultSubs...); err != nil {
			vm.log.Error("result subscription failed", zap.Stringer("txID", r.TxID), zap.Error(err))
		}
	}
	if err := event.NotifyAll(ctx, blk, vm.blockSubs...); err != nil {
		vm.log.Error("block subscription failed", zap.Uint64("height", blk.Height), zap.Error(err))
	}
	return results, nil
}

// ReplayJournal accepts every block journaled in [dir] above the last
// accepted height and returns how many were applied.
func (vm *VM) ReplayJournal(ctx context.Context, dir string) (int, error) {
	var applied int
	_, err := journal.Replay(ctx, dir, vm.config.MaxBlockTxs, vm.registry, func(ctx context.Context, blk *chain.Block) error {
		if blk.Height <= vm.LastAccepted().Height {
			return nil
		}
		if _, err := vm.Accept(ctx, blk); err != nil {
			return err
		}
		applied++
		return nil
	})
	return applied, err
}

func (vm *VM) lastTimestampAndBlockGap(context.Context) (int64, int64, error) {
	return vm.LastAccepted().Timestamp, vm.config.BlockIntervalMs, nil
}

func (vm *VM) LastAccepted() storage.LastAccepted {
	vm.l.RLock()
	defer vm.l.RUnlock()

	return vm.lastAccepted
}

// GetAccount returns the committed state of [addr].
func (vm *VM) GetAccount(ctx context.Context, addr codec.Address) (storage.AccountState, bool, error) {
	return storage.GetAccount(ctx, vm.db, addr)
}

// ReadState reads committed values for [keys].
func (vm *VM) ReadState(ctx context.Context, keys [][]byte) ([][]byte, []error) {
	values := make([][]byte, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		values[i], errs[i] = vm.db.GetValue(ctx, key)
	}
	return values, errs
}

// GetResult looks [txID] up among recent results.
func (vm *VM) GetResult(txID ids.ID) (*chain.Result, bool) {
	items := vm.recent.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].TxID == txID {
			return items[i], true
		}
	}
	return nil, false
}

// RecentResults returns up to [limit] recent results of [addr], oldest first.
func (vm *VM) RecentResults(addr codec.Address, limit int) []*chain.Result {
	var out []*chain.Result
	items := vm.recent.Items()
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		if items[i].Actor == addr {
			out = append(out, items[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (vm *VM) Genesis() *genesis.Genesis { return vm.genesis }

func (vm *VM) GenesisID() ids.ID { return vm.genesisID }

func (vm *VM) Rules() *genesis.Rules { return vm.rules }

func (vm *VM) Registry() *registry.Registry { return vm.registry }

func (vm *VM) MempoolLen(ctx context.Context) int { return vm.mempool.Len(ctx) }

func (vm *VM) Logger() logging.Logger { return vm.log }

func (vm *VM) Tracer() trace.Tracer { return vm.tracer }

// Shutdown stops block production, closes every subscription and then the
// store.
func (vm *VM) Shutdown(context.Context) error {
	if !vm.closed.CompareAndSwap(false, true) {
		return nil
	}
	if vm.started.Load() {
		vm.builder.Done()
	}

	vm.buildLock.Lock()
	defer vm.buildLock.Unlock()
	vm.l.Lock()
	defer vm.l.Unlock()

	return errors.Join(
		event.CloseAll(vm.resultSubs...),
		event.CloseAll(vm.blockSubs...),
		vm.db.Close(),
	)
}

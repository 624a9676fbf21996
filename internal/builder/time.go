// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package builder

import (
	"context"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// minBuildGap ensures we don't build blocks back to back.
const minBuildGap int64 = 25 // ms

var _ Builder = (*Time)(nil)

// GetLastTimestampAndBlockGap returns the timestamp of the last accepted
// block and the target gap between blocks.
type GetLastTimestampAndBlockGap func(ctx context.Context) (last int64, gap int64, err error)

// Time builds a block once [gap] has passed since the last one, as long as
// there are pending transactions.
type Time struct {
	logger                      logging.Logger
	mempool                     Mempool
	build                       BuildFunc
	getLastTimestampAndBlockGap GetLastTimestampAndBlockGap
	cancelCtxFunc               context.CancelFunc

	timer     *timer.Timer
	lastQueue atomic.Int64
	waiting   atomic.Bool
}

func NewTime(
	logger logging.Logger,
	mempool Mempool,
	build BuildFunc,
	getLastTimestampAndBlockGap GetLastTimestampAndBlockGap,
) *Time {
	cancelCtx, cancelCtxFunc := context.WithCancel(context.Background())
	b := &Time{
		logger:                      logger,
		mempool:                     mempool,
		build:                       build,
		getLastTimestampAndBlockGap: getLastTimestampAndBlockGap,
		cancelCtxFunc:               cancelCtxFunc,
	}
	b.timer = timer.NewTimer(func() {
		b.handleTimerNotify(cancelCtx)
	})
	return b
}

func (b *Time) Start() {
	b.Queue(context.TODO()) // pick up anything already pending
	go b.timer.Dispatch()
}

func (b *Time) handleTimerNotify(ctx context.Context) {
	if err := b.Force(ctx); err != nil {
		b.logger.Warn("unable to build", zap.Error(err))
	}
	b.waiting.Store(false)
	if b.mempool.Len(ctx) > 0 {
		b.Queue(ctx)
	}
}

func (b *Time) nextTime(now, last, gap int64) int64 {
	next := max(b.lastQueue.Load()+minBuildGap, last+gap)
	if next < now {
		return -1
	}
	return next
}

func (b *Time) Queue(ctx context.Context) {
	if b.mempool.Len(ctx) == 0 {
		return
	}
	if !b.waiting.CompareAndSwap(false, true) {
		b.logger.Debug("build already scheduled")
		return
	}
	now := time.Now().UnixMilli()
	last, gap, err := b.getLastTimestampAndBlockGap(ctx)
	if err != nil {
		b.waiting.Store(false)
		b.logger.Warn("unable to get last timestamp and block gap", zap.Error(err))
		return
	}
	next := b.nextTime(now, last, gap)
	if next < 0 {
		next = now
	}
	sleepDur := time.Duration(next-now) * time.Millisecond
	b.timer.SetTimeoutIn(sleepDur)
	b.logger.Debug("waiting to build", zap.Duration("t", sleepDur))
}

func (b *Time) Force(ctx context.Context) error {
	now := time.Now().UnixMilli()
	b.lastQueue.Store(now)
	txs := b.mempool.Len(ctx)
	if err := b.build(ctx, now); err != nil {
		return err
	}
	b.logger.Debug("built block", zap.Int("pending", txs))
	return nil
}

func (b *Time) Done() {
	b.cancelCtxFunc()
	b.timer.Stop()
}

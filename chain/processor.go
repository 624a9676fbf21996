// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/tstate"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Seen reports transactions that were already accepted in an earlier block.
type Seen interface {
	Has(ids.ID) bool
}

// Processor applies the transactions of a block, in order, on top of a
// read-only base state.
type Processor struct {
	tracer    trace.Tracer
	log       logging.Logger
	errorCode func(error) uint16
}

// NewProcessor returns a [Processor]. [errorCode] maps a failed action to the
// code recorded in its [Result].
func NewProcessor(tracer trace.Tracer, log logging.Logger, errorCode func(error) uint16) *Processor {
	return &Processor{
		tracer:    tracer,
		log:       log,
		errorCode: errorCode,
	}
}

// Execute runs every transaction in [blk] against [im]. The returned
// [tstate.TState] holds only the changes of successful transactions.
// [accepted] may be nil.
func (p *Processor) Execute(
	ctx context.Context,
	r Rules,
	im state.Immutable,
	blk *Block,
	accepted Seen,
) (*tstate.TState, []*Result, error) {
	ctx, span := p.tracer.Start(ctx, "Processor.Execute", oteltrace.WithAttributes(
		attribute.Int64("height", int64(blk.Height)),
		attribute.Int("txs", len(blk.Txs)),
	))
	defer span.End()

	var (
		ts      = tstate.New(im, len(blk.Txs))
		results = make([]*Result, 0, len(blk.Txs))
		seen    = make(map[ids.ID]struct{}, len(blk.Txs))
	)
	for _, tx := range blk.Txs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		result := &Result{
			TxID:     tx.ID(),
			Height:   blk.Height,
			Actor:    tx.Auth.Actor(),
			ActionID: tx.Action.GetTypeID(),
		}
		results = append(results, result)

		if _, ok := seen[tx.ID()]; ok || (accepted != nil && accepted.Has(tx.ID())) {
			p.fail(result, ErrDuplicateTx)
			continue
		}
		seen[tx.ID()] = struct{}{}

		units, err := tx.SyntacticVerify(ctx, r, blk.Timestamp)
		if err != nil {
			p.fail(result, err)
			continue
		}
		result.Units = units

		output, err := p.executeAction(ctx, r, ts, blk.Timestamp, tx)
		if err != nil {
			p.fail(result, err)
			continue
		}
		result.Success = true
		result.Output = output
	}
	return ts, results, nil
}

// executeAction runs the action inside its own view. On error the view is
// rolled back and never committed, so [ts] is untouched.
func (p *Processor) executeAction(
	ctx context.Context,
	r Rules,
	ts *tstate.TState,
	timestamp int64,
	tx *Transaction,
) ([]byte, error) {
	actor := tx.Auth.Actor()
	view := ts.NewView(tx.Action.StateKeys(actor))
	output, err := tx.Action.Execute(ctx, r, view, timestamp, actor, tx.ID())
	if err != nil {
		view.Rollback(ctx, 0)
		return nil, err
	}
	b, err := codec.MarshalTyped(output)
	if err != nil {
		view.Rollback(ctx, 0)
		return nil, err
	}
	view.Commit()
	return b, nil
}

func (p *Processor) fail(result *Result, err error) {
	result.Success = false
	result.Error = err.Error()
	result.Code = p.errorCode(err)
	p.log.Debug("transaction failed",
		zap.Stringer("txID", result.TxID),
		zap.Uint8("actionID", result.ActionID),
		zap.Uint16("code", result.Code),
		zap.Error(err),
	)
}

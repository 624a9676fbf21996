// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/modevm/state"
)

// TState defines a struct for storing temporary state on top of a base
// [state.Immutable]. Nothing reaches the base until the caller exports
// [ChangedKeys] and commits them.
type TState struct {
	l           sync.RWMutex
	base        state.Immutable
	changedKeys map[string]maybe.Maybe[[]byte]
	ops         int
}

// New returns a new instance of TState.
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(base state.Immutable, changedSize int) *TState {
	return &TState{
		base:        base,
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

// GetValue returns the latest value of [key], either from pending changes or
// from the base state.
func (ts *TState) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, changed, exists := ts.getChangedValue(ctx, string(key))
	if changed {
		if !exists {
			return nil, database.ErrNotFound
		}
		return v, nil
	}
	return ts.base.GetValue(ctx, key)
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// getBase reads [key] from the base state, folding [database.ErrNotFound]
// into the exists flag.
func (ts *TState) getBase(ctx context.Context, key []byte) ([]byte, bool, error) {
	v, err := ts.base.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// OpIndex returns the number of operations committed into [TState] by views.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// ChangedKeys returns every key changed since [TState] was created. A nil
// value marks a removed key.
func (ts *TState) ChangedKeys() map[string][]byte {
	ts.l.RLock()
	defer ts.l.RUnlock()

	changes := make(map[string][]byte, len(ts.changedKeys))
	for k, v := range ts.changedKeys {
		if v.IsNothing() {
			changes[k] = nil
			continue
		}
		changes[k] = v.Value()
	}
	return changes
}

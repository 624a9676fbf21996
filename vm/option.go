// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/event"
	"github.com/ava-labs/modevm/internal/builder"
)

type Option func(*VM)

// WithManualBuilder disables timed block production. Blocks are only built
// by [VM.Produce].
func WithManualBuilder() Option {
	return func(vm *VM) {
		vm.builder = builder.NewManual(vm.Produce)
	}
}

// WithResultSubscription is notified of every transaction result, in block
// order.
func WithResultSubscription(sub event.Subscription[*chain.Result]) Option {
	return func(vm *VM) {
		vm.resultSubs = append(vm.resultSubs, sub)
	}
}

// WithBlockSubscription is notified of every accepted block after its
// results.
func WithBlockSubscription(sub event.Subscription[*chain.Block]) Option {
	return func(vm *VM) {
		vm.blockSubs = append(vm.blockSubs, sub)
	}
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "context"

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Database is a [Mutable] that can durably apply a set of changes at once.
// A nil value in [changes] removes the key.
type Database interface {
	Immutable

	Commit(ctx context.Context, changes map[string][]byte) error
	Close() error
}

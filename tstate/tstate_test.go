// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/keys"
	"github.com/ava-labs/modevm/state"
)

var (
	key1    = keys.EncodeChunks([]byte("key1"), 1)
	key1str = string(key1)
	key2    = keys.EncodeChunks([]byte("key2"), 1)
	key2str = string(key2)
	testVal = []byte("value")
)

type testDB struct {
	storage map[string][]byte
}

func newTestDB() *testDB {
	return &testDB{storage: make(map[string][]byte)}
}

func (db *testDB) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := db.storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func TestScope(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(newTestDB(), 10)

	// No Scope
	tsv := ts.NewView(state.Keys{})
	val, err := tsv.GetValue(ctx, key1)
	require.ErrorIs(err, ErrInvalidKeyOrPermission)
	require.Nil(val)
	require.ErrorIs(tsv.Insert(ctx, key1, testVal), ErrInvalidKeyOrPermission)
	require.ErrorIs(tsv.Remove(ctx, key1), ErrInvalidKeyOrPermission)
}

func TestGetValueFromBase(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	db.storage[key1str] = testVal
	ts := New(db, 10)

	tsv := ts.NewView(state.Keys{key1str: state.Read, key2str: state.Read})
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)

	_, err = tsv.GetValue(ctx, key2)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestInsertPermissions(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	db.storage[key1str] = testVal
	ts := New(db, 10)

	// Overwriting an existing key only needs Write, creating one needs Allocate
	tsv := ts.NewView(state.Keys{key1str: state.Write, key2str: state.Write})
	require.NoError(tsv.Insert(ctx, key1, []byte("new")))
	require.ErrorIs(tsv.Insert(ctx, key2, testVal), ErrInvalidKeyOrPermission)

	tsv = ts.NewView(state.Keys{key2str: state.All})
	require.NoError(tsv.Insert(ctx, key2, testVal))
}

func TestInsertInvalidValue(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(newTestDB(), 10)

	tsv := ts.NewView(state.Keys{key1str: state.All})
	require.ErrorIs(tsv.Insert(ctx, key1, make([]byte, 128)), ErrInvalidKeyValue)
}

func TestRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	db.storage[key1str] = testVal
	ts := New(db, 10)

	tsv := ts.NewView(state.Keys{key1str: state.All, key2str: state.All})
	restore := tsv.OpIndex()
	require.NoError(tsv.Insert(ctx, key1, []byte("changed")))
	require.NoError(tsv.Insert(ctx, key2, testVal))
	require.NoError(tsv.Remove(ctx, key1))
	require.Equal(3, tsv.OpIndex())

	tsv.Rollback(ctx, restore)
	require.Zero(tsv.OpIndex())
	require.Zero(tsv.PendingChanges())

	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)
	_, err = tsv.GetValue(ctx, key2)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestRollbackPartial(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(newTestDB(), 10)

	tsv := ts.NewView(state.Keys{key1str: state.All})
	require.NoError(tsv.Insert(ctx, key1, []byte("first")))
	restore := tsv.OpIndex()
	require.NoError(tsv.Insert(ctx, key1, []byte("second")))

	tsv.Rollback(ctx, restore)
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal([]byte("first"), val)
}

func TestCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	db.storage[key1str] = testVal
	ts := New(db, 10)

	tsv := ts.NewView(state.Keys{key1str: state.All, key2str: state.All})
	require.NoError(tsv.Remove(ctx, key1))
	require.NoError(tsv.Insert(ctx, key2, testVal))
	tsv.Commit()
	require.Equal(2, ts.OpIndex())

	// A later view observes committed changes
	next := ts.NewView(state.Keys{key1str: state.Read, key2str: state.Read})
	_, err := next.GetValue(ctx, key1)
	require.ErrorIs(err, database.ErrNotFound)
	val, err := next.GetValue(ctx, key2)
	require.NoError(err)
	require.Equal(testVal, val)

	changes := ts.ChangedKeys()
	require.Len(changes, 2)
	require.Nil(changes[key1str])
	require.Equal(testVal, changes[key2str])

	// Base state is untouched until the caller commits the changes
	require.Equal(testVal, db.storage[key1str])
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dbtest holds the behavior every [state.Database] backend must
// share.
package dbtest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/state"
)

var Tests = map[string]func(t *testing.T, db state.Database){
	"missing key":           TestMissingKey,
	"commit inserts":        TestCommitInserts,
	"commit overwrites":     TestCommitOverwrites,
	"nil value removes":     TestNilValueRemoves,
	"empty commit":          TestEmptyCommit,
	"values are not reused": TestValuesNotReused,
}

// Run executes every test in [Tests] against a fresh database.
func Run(t *testing.T, newDB func(*testing.T) state.Database) {
	for name, test := range Tests {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			test(t, db)
			require.NoError(t, db.Close())
		})
	}
}

func TestMissingKey(t *testing.T, db state.Database) {
	_, err := db.GetValue(context.Background(), []byte("missing"))
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestCommitInserts(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Commit(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}))
	for k, want := range map[string][]byte{"a": []byte("1"), "b": []byte("2")} {
		v, err := db.GetValue(ctx, []byte(k))
		require.NoError(err)
		require.Equal(want, v)
	}
}

func TestCommitOverwrites(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Commit(ctx, map[string][]byte{"a": []byte("1")}))
	require.NoError(db.Commit(ctx, map[string][]byte{"a": []byte("2")}))
	v, err := db.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte("2"), v)
}

func TestNilValueRemoves(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(db.Commit(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}))
	require.NoError(db.Commit(ctx, map[string][]byte{
		"a": nil,
		"c": []byte("3"),
	}))

	_, err := db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err := db.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)
	v, err = db.GetValue(ctx, []byte("c"))
	require.NoError(err)
	require.Equal([]byte("3"), v)

	// Removing a key that was never written is not an error.
	require.NoError(db.Commit(ctx, map[string][]byte{"never": nil}))
}

func TestEmptyCommit(t *testing.T, db state.Database) {
	require.NoError(t, db.Commit(context.Background(), map[string][]byte{}))
	require.NoError(t, db.Commit(context.Background(), nil))
}

// The database must not retain the caller's slices.
func TestValuesNotReused(t *testing.T, db state.Database) {
	require := require.New(t)
	ctx := context.Background()

	value := []byte("1")
	require.NoError(db.Commit(ctx, map[string][]byte{"a": value}))
	value[0] = '9'
	v, err := db.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)
}

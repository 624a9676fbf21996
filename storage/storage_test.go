// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/internal/emap"
	"github.com/ava-labs/modevm/pebble"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/state/dbtest"
)

func TestMemoryDatabase(t *testing.T) {
	dbtest.Run(t, func(*testing.T) state.Database {
		return NewMemory()
	})
}

func TestAccountEncoding(t *testing.T) {
	tests := []struct {
		name    string
		bytes   []byte
		want    AccountState
		wantErr error
	}{
		{
			name:  "idle",
			bytes: []byte{0, 0, 0, 5, 0},
			want:  AccountState{Value: 5, Mode: Idle},
		},
		{
			name:  "decreasing max",
			bytes: []byte{0xff, 0xff, 0xff, 0xff, 2},
			want:  AccountState{Value: consts.MaxUint32, Mode: Decreasing},
		},
		{
			name:    "unknown discriminant",
			bytes:   []byte{0, 0, 0, 5, 3},
			wantErr: ErrInvalidMode,
		},
		{
			name:    "short",
			bytes:   []byte{0, 0, 5, 0},
			wantErr: ErrInvalidAccountBytes,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			a, err := DecodeAccount(tt.bytes)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr != nil {
				return
			}
			require.Equal(tt.want, a)
			require.Equal(tt.bytes, EncodeAccount(a))
		})
	}
}

func TestGetPutAccount(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	mem := NewMemory()
	addr := codec.CreateAddress(0, ids.GenerateTestID())

	_, ok, err := GetAccount(ctx, mem, addr)
	require.NoError(err)
	require.False(ok)

	want := AccountState{Value: 7, Mode: Increasing}
	require.NoError(mem.Commit(ctx, map[string][]byte{
		string(AccountKey(addr)): EncodeAccount(want),
	}))
	got, ok, err := GetAccount(ctx, mem, addr)
	require.NoError(err)
	require.True(ok)
	require.Equal(want, got)

	read := func(ctx context.Context, keys [][]byte) ([][]byte, []error) {
		values := make([][]byte, len(keys))
		errs := make([]error, len(keys))
		for i, k := range keys {
			values[i], errs[i] = mem.GetValue(ctx, k)
		}
		return values, errs
	}
	got, ok, err = GetAccountFromState(ctx, read, addr)
	require.NoError(err)
	require.True(ok)
	require.Equal(want, got)
}

func TestLastAccepted(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	mem := NewMemory()

	_, ok, err := GetLastAccepted(ctx, mem)
	require.NoError(err)
	require.False(ok)

	want := LastAccepted{Height: 3, BlockID: ids.GenerateTestID(), Timestamp: 1_000}
	require.NoError(mem.Commit(ctx, map[string][]byte{
		string(LastAcceptedKey()): EncodeLastAccepted(want),
	}))
	got, ok, err := GetLastAccepted(ctx, mem)
	require.NoError(err)
	require.True(ok)
	require.Equal(want, got)
}

func TestAcceptedTxs(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	mem := NewMemory()

	entries, err := GetAcceptedTxs(ctx, mem)
	require.NoError(err)
	require.Empty(entries)

	want := []emap.Entry{
		{ID: ids.GenerateTestID(), Expiry: 1_000},
		{ID: ids.GenerateTestID(), Expiry: 2_000},
	}
	require.NoError(mem.Commit(ctx, map[string][]byte{
		string(AcceptedTxsKey()): EncodeAcceptedTxs(want),
	}))
	entries, err = GetAcceptedTxs(ctx, mem)
	require.NoError(err)
	require.Equal(want, entries)

	require.NoError(mem.Commit(ctx, map[string][]byte{
		string(AcceptedTxsKey()): {1, 2, 3},
	}))
	_, err = GetAcceptedTxs(ctx, mem)
	require.ErrorIs(err, ErrInvalidMetadata)
}

func TestModeJSON(t *testing.T) {
	require := require.New(t)

	var m Mode
	require.NoError(m.UnmarshalJSON([]byte("2")))
	require.Equal(Decreasing, m)
	require.ErrorIs(m.UnmarshalJSON([]byte("3")), ErrInvalidMode)

	b, err := Increasing.MarshalJSON()
	require.NoError(err)
	require.Equal("1", string(b))

	parsed, err := ModeFromString(Decreasing.String())
	require.NoError(err)
	require.Equal(Decreasing, parsed)
}

func TestNewBackend(t *testing.T) {
	require := require.New(t)

	db, err := New(MemoryBackend, "", pebble.NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	require.NoError(db.Close())

	db, err = New(PebbleBackend, t.TempDir(), pebble.NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	_, err = db.GetValue(context.TODO(), []byte{0})
	require.ErrorIs(err, database.ErrNotFound)
	require.NoError(db.Close())

	_, err = New("leveldb", "", pebble.NewDefaultConfig(), prometheus.NewRegistry())
	require.ErrorIs(err, ErrUnknownBackend)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/storage"
)

func TestNewDefaults(t *testing.T) {
	require := require.New(t)

	c, err := New(nil)
	require.NoError(err)
	require.Equal(storage.MemoryBackend, c.StoreBackend)
	require.Equal(time.Second, c.GetBlockInterval())
	level, err := c.GetLogLevel()
	require.NoError(err)
	require.Equal(logging.Info, level)
	require.True(c.Pebble.Sync)
}

func TestNewOverrides(t *testing.T) {
	require := require.New(t)

	c, err := New([]byte(`{"logLevel":"debug","storeBackend":"pebble","blockInterval":250,"pebble":{"sync":false}}`))
	require.NoError(err)
	require.Equal(storage.PebbleBackend, c.StoreBackend)
	require.Equal(250*time.Millisecond, c.GetBlockInterval())
	require.False(c.Pebble.Sync)
	// untouched fields keep defaults
	require.Equal(defaultMempoolSize, c.MempoolSize)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{"backend", `{"storeBackend":"leveldb"}`, storage.ErrUnknownBackend},
		{"interval", `{"blockInterval":0}`, ErrInvalidBlockInterval},
		{"block txs", `{"maxBlockTxs":-1}`, ErrInvalidMaxBlockTxs},
		{"mempool", `{"mempoolSize":0}`, ErrInvalidMempoolSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.json))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte(`
logLevel: warn
dataDir: /tmp/modevm
indexerEnabled: true
pebble:
  maxOpenFiles: 16
`), 0o600))

	c, err := Load(path)
	require.NoError(err)
	require.Equal("/tmp/modevm", c.DataDir)
	require.True(c.IndexerEnabled)
	require.Equal(16, c.Pebble.MaxOpenFiles)
	level, err := c.GetLogLevel()
	require.NoError(err)
	require.Equal(logging.Warn, level)
}

func TestLoadJSON(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{"journalEnabled":true}`), 0o600))

	c, err := Load(path)
	require.NoError(err)
	require.True(c.JournalEnabled)
}

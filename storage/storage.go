// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/modevm/pebble"
	"github.com/ava-labs/modevm/state"
)

const (
	MemoryBackend = "memory"
	PebbleBackend = "pebble"

	stateNamespace = "state"
)

// New opens the account store selected by [backend]. [dataDir] is only used
// by on-disk backends.
func New(
	backend string,
	dataDir string,
	cfg pebble.Config,
	registerer prometheus.Registerer,
) (state.Database, error) {
	switch backend {
	case MemoryBackend:
		return NewMemory(), nil
	case PebbleBackend:
		path := filepath.Join(dataDir, stateNamespace)
		if err := os.MkdirAll(path, perms.ReadWriteExecute); err != nil {
			return nil, err
		}
		return pebble.New(path, cfg, registerer)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

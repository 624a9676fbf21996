// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"

	"github.com/ava-labs/modevm/state"
)

var _ state.Database = (*Memory)(nil)

// Memory is a [state.Database] that never touches disk.
type Memory struct {
	db database.Database
}

func NewMemory() *Memory {
	return &Memory{db: memdb.New()}
}

func (m *Memory) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return m.db.Get(key)
}

func (m *Memory) Commit(_ context.Context, changes map[string][]byte) error {
	batch := m.db.NewBatch()
	for k, v := range changes {
		var err error
		if v == nil {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return err
		}
	}
	return batch.Write()
}

func (m *Memory) Close() error {
	return m.db.Close()
}

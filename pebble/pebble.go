// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/modevm/state"
)

var _ state.Database = (*Database)(nil)

type Config struct {
	Sync                        bool `json:"sync" yaml:"sync"`
	BytesPerSync                int  `json:"bytesPerSync" yaml:"bytesPerSync"`
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MaxOpenFiles                int  `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions" yaml:"concurrentCompactions"`
}

func NewDefaultConfig() Config {
	return Config{
		Sync:                        true,
		BytesPerSync:                1024 * 1024,
		MemTableStopWritesThreshold: 8,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
	}
}

// Database stores account state on disk. Writes only happen through
// [Database.Commit], which applies a whole block of changes atomically.
type Database struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
	metrics   *metrics

	closeOnce sync.Once
	closing   chan struct{}
}

func New(file string, cfg Config, reg prometheus.Registerer) (*Database, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	d := &Database{
		writeOpts: pebble.NoSync,
		metrics:   m,
		closing:   make(chan struct{}),
	}
	if cfg.Sync {
		d.writeOpts = pebble.Sync
	}
	opts := &pebble.Options{
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
	}
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, err
	}
	d.db = db
	go d.collectMetrics()
	return d, nil
}

func (db *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	v, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	value := make([]byte, len(v))
	copy(value, v)
	return value, closer.Close()
}

// Commit writes [changes] in a single batch. A nil value deletes the key.
func (db *Database) Commit(_ context.Context, changes map[string][]byte) error {
	start := time.Now()
	batch := db.db.NewBatch()
	defer batch.Close()

	var deleted int
	for k, v := range changes {
		var err error
		if v == nil {
			deleted++
			err = batch.Delete([]byte(k), nil)
		} else {
			err = batch.Set([]byte(k), v, nil)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Commit(db.writeOpts); err != nil {
		return err
	}
	db.metrics.recordCommit(len(changes)-deleted, deleted, start)
	return nil
}

func (db *Database) Close() error {
	db.closeOnce.Do(func() {
		close(db.closing)
	})
	return db.db.Close()
}

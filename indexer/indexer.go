// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/perms"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/event"

	_ "modernc.org/sqlite"
)

const (
	DBFile = "results.db"

	MaxLimit = 1_000
)

var (
	ErrNotFound = errors.New("result not found")

	_ event.Subscription[*chain.Result] = (*SQLiteIndex)(nil)
)

// SQLiteIndex records every accepted [chain.Result] so results and events
// can be queried by account after the fact.
type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLite(dir string) (*SQLiteIndex, error) {
	if err := os.MkdirAll(dir, perms.ReadWriteExecute); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, err
	}
	// sqlite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			tx_id TEXT NOT NULL UNIQUE,
			height INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action_id INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL,
			code INTEGER NOT NULL,
			output BLOB,
			units INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS results_actor ON results(actor, seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Accept(ctx context.Context, r *chain.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results
			(tx_id, height, actor, action_id, success, error, code, output, units)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TxID.String(),
		int64(r.Height),
		r.Actor.String(),
		int(r.ActionID),
		r.Success,
		r.Error,
		int(r.Code),
		r.Output,
		int64(r.Units),
	)
	return err
}

const selectResult = `SELECT tx_id, height, actor, action_id, success, error, code, output, units FROM results`

// EventsByAccount returns the most recent results of [addr], oldest first.
func (s *SQLiteIndex) EventsByAccount(ctx context.Context, addr codec.Address, limit int) ([]*chain.Result, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	rows, err := s.db.QueryContext(ctx,
		selectResult+` WHERE actor = ? ORDER BY seq DESC LIMIT ?`,
		addr.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*chain.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

func (s *SQLiteIndex) GetResult(ctx context.Context, txID ids.ID) (*chain.Result, error) {
	row := s.db.QueryRowContext(ctx, selectResult+` WHERE tx_id = ?`, txID.String())
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, txID)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*chain.Result, error) {
	var (
		txID, actor    string
		height, units  int64
		actionID, code int
		r              chain.Result
	)
	if err := row.Scan(&txID, &height, &actor, &actionID, &r.Success, &r.Error, &code, &r.Output, &units); err != nil {
		return nil, err
	}
	id, err := ids.FromString(txID)
	if err != nil {
		return nil, err
	}
	addr, err := codec.StringToAddress(actor)
	if err != nil {
		return nil, err
	}
	if len(r.Output) == 0 {
		r.Output = nil
	}
	r.TxID = id
	r.Height = uint64(height)
	r.Actor = addr
	r.ActionID = uint8(actionID)
	r.Code = uint16(code)
	r.Units = uint64(units)
	return &r, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

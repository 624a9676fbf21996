// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/internal/emap"
	"github.com/ava-labs/modevm/keys"
	"github.com/ava-labs/modevm/state"
)

const (
	lastAcceptedLen = consts.Uint64Len + ids.IDLen + consts.Uint64Len
	acceptedTxLen   = ids.IDLen + consts.Uint64Len

	acceptedTxsSuffix byte = 1
)

// LastAccepted is the host's record of the most recently committed block.
type LastAccepted struct {
	Height    uint64 `json:"height"`
	BlockID   ids.ID `json:"blockId"`
	Timestamp int64  `json:"timestamp"`
}

func LastAcceptedKey() []byte {
	return keys.EncodeChunks([]byte{metadataPrefix}, 1)
}

func EncodeLastAccepted(l LastAccepted) []byte {
	v := make([]byte, lastAcceptedLen)
	binary.BigEndian.PutUint64(v, l.Height)
	copy(v[consts.Uint64Len:], l.BlockID[:])
	binary.BigEndian.PutUint64(v[consts.Uint64Len+ids.IDLen:], uint64(l.Timestamp))
	return v
}

// GetLastAccepted returns false if no block has been accepted yet.
func GetLastAccepted(ctx context.Context, im state.Immutable) (LastAccepted, bool, error) {
	v, err := im.GetValue(ctx, LastAcceptedKey())
	if errors.Is(err, database.ErrNotFound) {
		return LastAccepted{}, false, nil
	}
	if err != nil {
		return LastAccepted{}, false, err
	}
	if len(v) != lastAcceptedLen {
		return LastAccepted{}, false, fmt.Errorf("%w: last accepted length=%d", ErrInvalidMetadata, len(v))
	}
	var l LastAccepted
	l.Height = binary.BigEndian.Uint64(v)
	copy(l.BlockID[:], v[consts.Uint64Len:])
	l.Timestamp = int64(binary.BigEndian.Uint64(v[consts.Uint64Len+ids.IDLen:]))
	return l, true, nil
}

// AcceptedTxsKey holds the ids of accepted transactions that have not
// expired yet, as of the last accepted block.
func AcceptedTxsKey() []byte {
	return keys.EncodeChunks([]byte{metadataPrefix, acceptedTxsSuffix}, consts.MaxUint16)
}

func EncodeAcceptedTxs(entries []emap.Entry) []byte {
	v := make([]byte, 0, len(entries)*acceptedTxLen)
	for _, entry := range entries {
		v = append(v, entry.ID[:]...)
		v = binary.BigEndian.AppendUint64(v, uint64(entry.Expiry))
	}
	return v
}

// GetAcceptedTxs returns the entries stored under [AcceptedTxsKey], if any.
func GetAcceptedTxs(ctx context.Context, im state.Immutable) ([]emap.Entry, error) {
	v, err := im.GetValue(ctx, AcceptedTxsKey())
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(v)%acceptedTxLen != 0 {
		return nil, fmt.Errorf("%w: accepted txs length=%d", ErrInvalidMetadata, len(v))
	}
	entries := make([]emap.Entry, len(v)/acceptedTxLen)
	for i := range entries {
		b := v[i*acceptedTxLen:]
		copy(entries[i].ID[:], b)
		entries[i].Expiry = int64(binary.BigEndian.Uint64(b[ids.IDLen:]))
	}
	return entries, nil
}

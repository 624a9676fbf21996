// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/state"
)

type ReadState func(context.Context, [][]byte) ([][]byte, []error)

// State
// 0x0/ (account)
//   -> [address] => value|mode
// 0x1/ (metadata)
//   -> height => height|blockID

const (
	accountPrefix byte = iota
	metadataPrefix
)

const (
	AccountChunks uint16 = 1

	// AccountLen is the encoded size of an [AccountState]:
	// value (uint32) | mode (1 byte)
	AccountLen = consts.Uint32Len + consts.ByteLen
)

// AccountState is the only entity the dispatcher persists.
type AccountState struct {
	Value uint32 `json:"value"`
	Mode  Mode   `json:"mode"`
}

// AccountKey returns [accountPrefix] + [address] + [chunks]
func AccountKey(addr codec.Address) []byte {
	k := make([]byte, consts.ByteLen+codec.AddressLen+consts.Uint16Len)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], AccountChunks)
	return k
}

func EncodeAccount(a AccountState) []byte {
	v := make([]byte, AccountLen)
	binary.BigEndian.PutUint32(v, a.Value)
	v[consts.Uint32Len] = byte(a.Mode)
	return v
}

func DecodeAccount(v []byte) (AccountState, error) {
	if len(v) != AccountLen {
		return AccountState{}, fmt.Errorf("%w: length=%d", ErrInvalidAccountBytes, len(v))
	}
	mode := Mode(v[consts.Uint32Len])
	if !mode.Valid() {
		return AccountState{}, fmt.Errorf("%w: discriminant=%d", ErrInvalidMode, v[consts.Uint32Len])
	}
	return AccountState{
		Value: binary.BigEndian.Uint32(v),
		Mode:  mode,
	}, nil
}

// GetAccount returns the state of [addr] and whether it has been initialized.
func GetAccount(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) (AccountState, bool, error) {
	return innerGetAccount(im.GetValue(ctx, AccountKey(addr)))
}

// Used to serve RPC queries
func GetAccountFromState(
	ctx context.Context,
	f ReadState,
	addr codec.Address,
) (AccountState, bool, error) {
	values, errs := f(ctx, [][]byte{AccountKey(addr)})
	return innerGetAccount(values[0], errs[0])
}

func innerGetAccount(v []byte, err error) (AccountState, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return AccountState{}, false, nil
	}
	if err != nil {
		return AccountState{}, false, err
	}
	a, err := DecodeAccount(v)
	if err != nil {
		return AccountState{}, false, err
	}
	return a, true, nil
}

// PutAccount overwrites the state of [addr] unconditionally.
func PutAccount(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	a AccountState,
) error {
	return mu.Insert(ctx, AccountKey(addr), EncodeAccount(a))
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
)

// Block is an ordered batch of transactions. Transactions are applied one at
// a time in the order they appear.
type Block struct {
	Parent    ids.ID         `json:"parent"`
	Height    uint64         `json:"height"`
	Timestamp int64          `json:"timestamp"`
	Txs       []*Transaction `json:"txs"`

	bytes []byte
	id    ids.ID
}

func NewBlock(parent ids.ID, height uint64, timestamp int64, txs []*Transaction) (*Block, error) {
	b := &Block{
		Parent:    parent,
		Height:    height,
		Timestamp: timestamp,
		Txs:       txs,
	}
	bytes, err := b.Marshal()
	if err != nil {
		return nil, err
	}
	b.bytes = bytes
	b.id = hashing.ComputeHash256Array(bytes)
	return b, nil
}

func (b *Block) ID() ids.ID { return b.id }

func (b *Block) Bytes() []byte { return b.bytes }

func (b *Block) Marshal() ([]byte, error) {
	txs, err := MarshalTxs(b.Txs)
	if err != nil {
		return nil, err
	}
	size := consts.IDLen + consts.Uint64Len*2 + len(txs)
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	p.PackID(b.Parent)
	p.PackUint64(b.Height)
	p.PackInt64(b.Timestamp)
	p.PackFixedBytes(txs)
	return p.Bytes(), p.Err()
}

func UnmarshalBlock(raw []byte, maxTxs int, parser Parser) (*Block, error) {
	p := codec.NewReader(raw, consts.NetworkSizeLimit)
	var b Block
	p.UnpackID(false, &b.Parent)
	b.Height = p.UnpackUint64(false)
	b.Timestamp = p.UnpackInt64(false)
	if err := p.Err(); err != nil {
		return nil, err
	}
	txs, err := UnmarshalTxs(raw[p.Offset():], maxTxs, parser.ActionCodec(), parser.AuthCodec())
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal txs", err)
	}
	b.Txs = txs
	b.bytes = raw
	b.id = hashing.ComputeHash256Array(raw)
	return &b, nil
}

// Verify checks that [b] extends [parent].
func (b *Block) Verify(parentID ids.ID, parentHeight uint64, parentTimestamp int64) error {
	switch {
	case b.Parent != parentID:
		return fmt.Errorf("%w: expected=%s found=%s", ErrParentMismatch, parentID, b.Parent)
	case b.Height != parentHeight+1:
		return fmt.Errorf("%w: expected=%d found=%d", ErrInvalidHeight, parentHeight+1, b.Height)
	case b.Timestamp < parentTimestamp:
		return ErrTimestampOrder
	default:
		return nil
	}
}

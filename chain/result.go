// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
)

// Result is the outcome of a single transaction in an accepted block. A
// failed transaction has no effect on state.
type Result struct {
	TxID     ids.ID        `json:"txId"`
	Height   uint64        `json:"height"`
	Actor    codec.Address `json:"actor"`
	ActionID uint8         `json:"actionId"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Code     uint16        `json:"code"`

	// Output is the typed event emitted on success.
	Output []byte `json:"output,omitempty"`

	Units uint64 `json:"units"`
}

func (r *Result) Size() int {
	return consts.IDLen + consts.Uint64Len + codec.AddressLen + consts.ByteLen + consts.BoolLen +
		codec.StringLen(r.Error) + consts.Uint16Len + codec.BytesLen(r.Output) + consts.Uint64Len
}

func (r *Result) Marshal(p *codec.Packer) {
	p.PackID(r.TxID)
	p.PackUint64(r.Height)
	p.PackAddress(r.Actor)
	p.PackByte(r.ActionID)
	p.PackBool(r.Success)
	p.PackString(r.Error)
	p.PackUint32(uint32(r.Code))
	p.PackBytes(r.Output)
	p.PackUint64(r.Units)
}

func UnmarshalResult(p *codec.Packer) (*Result, error) {
	var r Result
	p.UnpackID(true, &r.TxID)
	r.Height = p.UnpackUint64(false)
	p.UnpackAddress(&r.Actor)
	r.ActionID = p.UnpackByte()
	r.Success = p.UnpackBool()
	r.Error = p.UnpackString(false)
	code := p.UnpackUint32(false)
	if code > uint32(consts.MaxUint16) {
		return nil, ErrInvalidObject
	}
	r.Code = uint16(code)
	p.UnpackBytes(consts.NetworkSizeLimit, false, &r.Output)
	r.Units = p.UnpackUint64(false)
	return &r, p.Err()
}

func MarshalResults(src []*Result) ([]byte, error) {
	size := consts.IntLen
	for _, r := range src {
		size += r.Size()
	}
	p := codec.NewWriter(size, consts.MaxInt) // could be much larger than [NetworkSizeLimit]
	p.PackUint32(uint32(len(src)))
	for _, result := range src {
		result.Marshal(p)
	}
	return p.Bytes(), p.Err()
}

func UnmarshalResults(src []byte) ([]*Result, error) {
	p := codec.NewReader(src, consts.MaxInt) // could be much larger than [NetworkSizeLimit]
	items := p.UnpackUint32(false)
	results := make([]*Result, items)
	for i := 0; i < int(items); i++ {
		result, err := UnmarshalResult(p)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return results, p.Err()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen        = 1
	IDLen          = 32
	BoolLen        = 1
	IntLen         = 4
	Uint16Len      = 2
	Uint32Len      = 4
	Uint64Len      = 8
	MaxUint8       = ^uint8(0)
	MaxUint8Offset = 7
	MaxUint16      = ^uint16(0)
	MaxUint32      = ^uint32(0)
	MaxUint        = ^uint(0)
	MaxInt         = int(MaxUint >> 1)
	MaxUint64      = ^uint64(0)

	// NetworkSizeLimit bounds any single message we will decode from a peer or
	// an RPC caller.
	NetworkSizeLimit = 2_044_723 // 1.95 MiB
)

const MillisecondsPerSecond = 1000

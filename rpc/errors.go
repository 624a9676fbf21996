// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "errors"

var (
	ErrTxExtraBytes = errors.New("tx has extra bytes")
	ErrTxNotFound   = errors.New("tx not found")
)

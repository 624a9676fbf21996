// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidMode         = errors.New("invalid mode")
	ErrInvalidAccountBytes = errors.New("invalid account bytes")
	ErrInvalidMetadata     = errors.New("invalid metadata")
	ErrUnknownBackend      = errors.New("unknown store backend")
)

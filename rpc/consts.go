// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "github.com/ava-labs/modevm/consts"

const (
	Name            = consts.Name
	JSONRPCEndpoint = "/ext/bc/" + consts.Name + "/rpc"

	DefaultEventsLimit = 100
	MaxEventsLimit     = 1_000
)

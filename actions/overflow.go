// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"fmt"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/storage"
)

// OverflowPolicy decides what ExecuteAction does when a step would leave
// the range [1, MaxUint32].
type OverflowPolicy string

const (
	// OverflowWrap applies unchecked uint32 arithmetic: 1 decreases to 0
	// and MaxUint32 increases to 0.
	OverflowWrap OverflowPolicy = "wrap"
	// OverflowSaturate clamps the result to [1, MaxUint32].
	OverflowSaturate OverflowPolicy = "saturate"
	// OverflowReject fails with [ErrValueOutOfRange] and leaves the account
	// untouched.
	OverflowReject OverflowPolicy = "reject"

	DefaultOverflowPolicy = OverflowWrap
)

func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch p := OverflowPolicy(s); p {
	case OverflowWrap, OverflowSaturate, OverflowReject:
		return p, nil
	case "":
		return DefaultOverflowPolicy, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q", s)
	}
}

func overflowPolicy(r chain.Rules) OverflowPolicy {
	if v, ok := r.FetchCustom(ExecuteOverflowKey); ok {
		if p, ok := v.(OverflowPolicy); ok {
			return p
		}
	}
	return DefaultOverflowPolicy
}

// Step returns the value that follows [value] in [mode].
func Step(policy OverflowPolicy, value uint32, mode storage.Mode) (uint32, error) {
	switch mode {
	case storage.Increasing:
		if value == consts.MaxUint32 {
			switch policy {
			case OverflowSaturate:
				return value, nil
			case OverflowReject:
				return 0, fmt.Errorf("%w: %d + 1", ErrValueOutOfRange, value)
			}
		}
		return value + 1, nil
	case storage.Decreasing:
		if value <= 1 {
			switch policy {
			case OverflowSaturate:
				if value == 0 {
					return 1, nil
				}
				return value, nil
			case OverflowReject:
				return 0, fmt.Errorf("%w: %d - 1", ErrValueOutOfRange, value)
			}
		}
		return value - 1, nil
	default:
		return value, nil
	}
}

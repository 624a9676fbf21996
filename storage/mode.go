// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/json"
	"fmt"
)

// Mode governs how ExecuteAction moves an account's value.
//
// The discriminants are part of the storage format and must never change.
type Mode uint8

const (
	Idle       Mode = 0
	Increasing Mode = 1
	Decreasing Mode = 2
)

// ParseMode decodes a requested mode code. Any code outside of the known
// discriminants is rejected.
func ParseMode(code uint32) (Mode, bool) {
	switch code {
	case uint32(Idle):
		return Idle, true
	case uint32(Increasing):
		return Increasing, true
	case uint32(Decreasing):
		return Decreasing, true
	default:
		return 0, false
	}
}

func (m Mode) Valid() bool {
	_, ok := ParseMode(uint32(m))
	return ok
}

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ModeFromString is the inverse of [Mode.String].
func ModeFromString(s string) (Mode, error) {
	switch s {
	case "idle":
		return Idle, nil
	case "increasing":
		return Increasing, nil
	case "decreasing":
		return Decreasing, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// MarshalJSON encodes the numeric discriminant so JSON and the storage format
// agree.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(m))
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var code uint32
	if err := json.Unmarshal(b, &code); err != nil {
		return err
	}
	parsed, ok := ParseMode(code)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidMode, code)
	}
	*m = parsed
	return nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrCannotBeZero          = errors.New("value cannot be zero")
	ErrSetOnSome             = errors.New("value already set")
	ErrSwitchOnNone          = errors.New("cannot switch mode of unset value")
	ErrInvalidStateInt       = errors.New("invalid mode code")
	ErrRedundantSwitch       = errors.New("already in requested mode")
	ErrCannotDecreaseToZero  = errors.New("cannot decrease value to zero")
	ErrCannotIncreasePastMax = errors.New("cannot increase value past max")
	ErrExecuteOnNone         = errors.New("cannot execute on unset value")

	// ErrValueOutOfRange is only returned under [OverflowReject].
	ErrValueOutOfRange = errors.New("value out of range")
)

// Error codes are part of the result format and must never change.
const (
	CodeOK uint16 = iota
	CodeCannotBeZero
	CodeSetOnSome
	CodeSwitchOnNone
	CodeInvalidStateInt
	CodeRedundantSwitch
	CodeCannotDecreaseToZero
	CodeCannotIncreasePastMax
	CodeExecuteOnNone
	CodeValueOutOfRange
)

var codes = map[error]uint16{
	ErrCannotBeZero:          CodeCannotBeZero,
	ErrSetOnSome:             CodeSetOnSome,
	ErrSwitchOnNone:          CodeSwitchOnNone,
	ErrInvalidStateInt:       CodeInvalidStateInt,
	ErrRedundantSwitch:       CodeRedundantSwitch,
	ErrCannotDecreaseToZero:  CodeCannotDecreaseToZero,
	ErrCannotIncreasePastMax: CodeCannotIncreasePastMax,
	ErrExecuteOnNone:         CodeExecuteOnNone,
	ErrValueOutOfRange:       CodeValueOutOfRange,
}

// ErrorCode returns the stable code of a dispatcher error and false for any
// other error.
func ErrorCode(err error) (uint16, bool) {
	if err == nil {
		return CodeOK, true
	}
	for target, code := range codes {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return 0, false
}

// ErrorFromCode is the inverse of [ErrorCode].
func ErrorFromCode(code uint16) (error, bool) {
	for err, c := range codes {
		if c == code {
			return err, true
		}
	}
	return nil, false
}

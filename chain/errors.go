// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	// Parsing
	ErrInvalidObject = errors.New("invalid object")
	ErrMissingAuth   = errors.New("missing auth")

	// Tx validity
	ErrMisalignedTime     = errors.New("misaligned time")
	ErrTimestampTooLate   = errors.New("timestamp too late")
	ErrTimestampTooEarly  = errors.New("timestamp too early")
	ErrInvalidChainID     = errors.New("invalid chain id")
	ErrInsufficientUnits  = errors.New("insufficient units")
	ErrActionNotActivated = errors.New("action not activated")
	ErrAuthNotActivated   = errors.New("auth not activated")
	ErrAuthFailed         = errors.New("auth failed")
	ErrDuplicateTx        = errors.New("duplicate transaction")

	// Block
	ErrParentMismatch = errors.New("parent mismatch")
	ErrInvalidHeight  = errors.New("invalid height")
	ErrTimestampOrder = errors.New("block timestamp before parent")
	ErrTooManyTxs     = errors.New("too many transactions")
)

// Codes for transaction-level failures. Action failures carry their own
// codes; these start high enough not to collide with them.
const CodeOK uint16 = 0

const (
	CodeUnknown uint16 = 100 + iota
	CodeMisalignedTime
	CodeTimestampTooLate
	CodeTimestampTooEarly
	CodeInvalidChainID
	CodeInsufficientUnits
	CodeActionNotActivated
	CodeAuthNotActivated
	CodeAuthFailed
	CodeDuplicateTx
)

var codes = []struct {
	err  error
	code uint16
}{
	{ErrMisalignedTime, CodeMisalignedTime},
	{ErrTimestampTooLate, CodeTimestampTooLate},
	{ErrTimestampTooEarly, CodeTimestampTooEarly},
	{ErrInvalidChainID, CodeInvalidChainID},
	{ErrInsufficientUnits, CodeInsufficientUnits},
	{ErrActionNotActivated, CodeActionNotActivated},
	{ErrAuthNotActivated, CodeAuthNotActivated},
	{ErrAuthFailed, CodeAuthFailed},
	{ErrDuplicateTx, CodeDuplicateTx},
}

// ErrorCode returns the code of a transaction-level failure, or [CodeUnknown].
func ErrorCode(err error) uint16 {
	if err == nil {
		return CodeOK
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

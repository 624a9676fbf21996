// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/manifoldco/promptui"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/utils"
)

var (
	ErrInputEmpty    = errors.New("input is empty")
	ErrInvalidChoice = errors.New("invalid choice")
)

func parseAddress(input string) (codec.Address, error) {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return codec.EmptyAddress, ErrInputEmpty
	}
	return codec.ParseAddressBech32(consts.HRP, input)
}

func Address(label string) (codec.Address, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := parseAddress(input)
			return err
		},
	}
	rawAddress, err := promptText.Run()
	if err != nil {
		return codec.EmptyAddress, err
	}
	return parseAddress(rawAddress)
}

// ParseUint32 accepts any decimal in [0, MaxUint32].
func ParseUint32(input string) (uint32, error) {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return 0, ErrInputEmpty
	}
	v, err := strconv.ParseUint(input, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func Uint32(label string) (uint32, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := ParseUint32(input)
			return err
		},
	}
	rawValue, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return ParseUint32(rawValue)
}

// ParseModeCode accepts a mode name or a raw numeric code. Unknown numeric
// codes are returned as-is so they can be rejected on-chain.
func ParseModeCode(input string) (uint32, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) == 0 {
		return 0, ErrInputEmpty
	}
	if mode, err := storage.ModeFromString(input); err == nil {
		return uint32(mode), nil
	}
	code, err := ParseUint32(input)
	if err != nil {
		return 0, ErrInvalidChoice
	}
	return code, nil
}

// Mode asks the user to pick one of the known modes.
func Mode(label string) (storage.Mode, error) {
	modes := []storage.Mode{storage.Idle, storage.Increasing, storage.Decreasing}
	items := make([]string, len(modes))
	for i, m := range modes {
		items[i] = m.String()
	}
	promptSelect := promptui.Select{
		Label: label,
		Items: items,
	}
	index, _, err := promptSelect.Run()
	if err != nil {
		return 0, err
	}
	return modes[index], nil
}

func Int(label string, maxValue int) (int, error) {
	stringToInt := func(input string) (int, error) {
		input = strings.TrimSpace(input)
		if len(input) == 0 {
			return 0, ErrInputEmpty
		}
		amount, err := strconv.Atoi(input)
		if err != nil {
			return 0, err
		}
		if amount <= 0 || amount > maxValue {
			return 0, ErrInvalidChoice
		}
		return amount, nil
	}

	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := stringToInt(input)
			return err
		},
	}
	rawAmount, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return stringToInt(rawAmount)
}

func Continue() (bool, error) {
	promptText := promptui.Prompt{
		Label:     "continue",
		IsConfirm: true,
	}
	if _, err := promptText.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			utils.Outf("{{red}}exiting...{{/}}\n")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func ID(label string) (ids.ID, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			_, err := ids.FromString(strings.TrimSpace(input))
			return err
		},
	}
	rawID, err := promptText.Run()
	if err != nil {
		return ids.Empty, err
	}
	return ids.FromString(strings.TrimSpace(rawID))
}


// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"testing"

	"github.com/ava-labs/modevm/chain/chaintest"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"
)

func TestSetValueAction(t *testing.T) {
	tests := []chaintest.ActionTest{
		{
			Name:        "ZeroValue",
			Actor:       alice,
			Action:      &SetValue{Value: 0},
			State:       chaintest.NewInMemoryStore(),
			ExpectedErr: ErrCannotBeZero,
			Assertion:   requireNoAccount,
		},
		{
			Name:        "ZeroValueOnExisting",
			Actor:       alice,
			Action:      &SetValue{Value: 0},
			State:       storeWith(alice, 3, storage.Increasing),
			ExpectedErr: ErrCannotBeZero,
			Assertion:   requireAccount(3, storage.Increasing),
		},
		{
			Name:           "SetOne",
			Actor:          alice,
			Action:         &SetValue{Value: 1},
			State:          chaintest.NewInMemoryStore(),
			ExpectedOutput: &ValueSet{Account: alice},
			Assertion:      requireAccount(1, storage.Idle),
		},
		{
			Name:           "SetMax",
			Actor:          alice,
			Action:         &SetValue{Value: consts.MaxUint32},
			State:          chaintest.NewInMemoryStore(),
			ExpectedOutput: &ValueSet{Account: alice},
			Assertion:      requireAccount(consts.MaxUint32, storage.Idle),
		},
		{
			Name:        "AlreadySet",
			Actor:       alice,
			Action:      &SetValue{Value: 2},
			State:       storeWith(alice, 1, storage.Idle),
			ExpectedErr: ErrSetOnSome,
			Assertion:   requireAccount(1, storage.Idle),
		},
		{
			Name:           "OtherAccountUntouched",
			Actor:          alice,
			Action:         &SetValue{Value: 9},
			State:          storeWith(bob, 4, storage.Decreasing),
			ExpectedOutput: &ValueSet{Account: alice},
			Assertion: func(ctx context.Context, t *testing.T, m state.Mutable) {
				requireAccount(9, storage.Idle)(ctx, t, m)
				requireAccountOf(bob, 4, storage.Decreasing)(ctx, t, m)
			},
		},
	}

	ctx := context.Background()
	for _, tt := range tests {
		tt.Rules = chaintest.NewRules()
		tt.Run(ctx, t)
	}
}

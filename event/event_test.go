// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/modevm/event"
	"github.com/ava-labs/modevm/event/eventmock"
)

func TestNotifyAllJoinsErrors(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	errFirst := errors.New("first")
	first := eventmock.NewMockSubscription[int](ctrl)
	first.EXPECT().Accept(ctx, 7).Return(errFirst)
	second := eventmock.NewMockSubscription[int](ctrl)
	second.EXPECT().Accept(ctx, 7).Return(nil)

	err := event.NotifyAll[int](ctx, 7, first, second)
	require.ErrorIs(err, errFirst)
}

func TestCloseAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := eventmock.NewMockSubscription[int](ctrl)
	sub.EXPECT().Close().Return(nil).Times(1)
	require.NoError(t, event.CloseAll[int](sub, event.NewRecent[int](1)))
}

func TestRecent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	r := event.NewRecent[int](2)
	require.Empty(r.Items())
	for i := 1; i <= 3; i++ {
		require.NoError(r.Accept(ctx, i))
	}
	require.Equal([]int{2, 3}, r.Items())
}

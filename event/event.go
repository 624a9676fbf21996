// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"context"
	"errors"
	"sync"
)

var (
	_ Subscription[struct{}] = (*SubscriptionFunc[struct{}])(nil)
	_ Subscription[struct{}] = (*Recent[struct{}])(nil)
)

// Subscription defines how to consume events
type Subscription[T any] interface {
	// Accept returns fatal errors
	Accept(ctx context.Context, t T) error
	// Close returns fatal errors
	Close() error
}

type SubscriptionFunc[T any] struct {
	AcceptF func(ctx context.Context, t T) error
}

func (s SubscriptionFunc[T]) Accept(ctx context.Context, t T) error {
	return s.AcceptF(ctx, t)
}

func (SubscriptionFunc[_]) Close() error {
	return nil
}

// NotifyAll delivers [e] to every subscription, even if some of them fail.
func NotifyAll[T any](ctx context.Context, e T, subs ...Subscription[T]) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Accept(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CloseAll closes every subscription and joins their errors.
func CloseAll[T any](subs ...Subscription[T]) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recent keeps the last [size] events it accepted.
type Recent[T any] struct {
	l     sync.RWMutex
	size  int
	items []T
}

func NewRecent[T any](size int) *Recent[T] {
	return &Recent[T]{
		size:  size,
		items: make([]T, 0, size),
	}
}

func (r *Recent[T]) Accept(_ context.Context, t T) error {
	r.l.Lock()
	defer r.l.Unlock()

	if r.size <= 0 {
		return nil
	}
	if len(r.items) == r.size {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, t)
	return nil
}

// Items returns the retained events, oldest first.
func (r *Recent[T]) Items() []T {
	r.l.RLock()
	defer r.l.RUnlock()

	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (*Recent[_]) Close() error {
	return nil
}

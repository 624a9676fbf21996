// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"context"
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ava-labs/modevm/internal/list"

	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	ErrDuplicate = errors.New("item already in mempool")
	ErrFull      = errors.New("mempool full")
)

// Mempool is a FIFO queue of pending items, deduplicated by id.
type Mempool[T list.Item] struct {
	tracer  trace.Tracer
	maxSize int

	l     sync.RWMutex
	queue *list.List[T]
	index map[ids.ID]*list.Element[T]
}

func New[T list.Item](tracer trace.Tracer, maxSize int) *Mempool[T] {
	return &Mempool[T]{
		tracer:  tracer,
		maxSize: maxSize,
		queue:   &list.List[T]{},
		index:   make(map[ids.ID]*list.Element[T]),
	}
}

// Add queues [item] at the back.
func (m *Mempool[T]) Add(ctx context.Context, item T) error {
	_, span := m.tracer.Start(ctx, "Mempool.Add")
	defer span.End()

	m.l.Lock()
	defer m.l.Unlock()

	id := item.GetID()
	if _, ok := m.index[id]; ok {
		return ErrDuplicate
	}
	if m.queue.Size() >= m.maxSize {
		return ErrFull
	}
	m.index[id] = m.queue.PushBack(item)
	return nil
}

// Restore puts [items] back at the front in their original order, ahead of
// anything queued since they were taken. Items already present are skipped
// and the size limit is not applied.
func (m *Mempool[T]) Restore(ctx context.Context, items []T) {
	_, span := m.tracer.Start(ctx, "Mempool.Restore", oteltrace.WithAttributes(
		attribute.Int("count", len(items)),
	))
	defer span.End()

	m.l.Lock()
	defer m.l.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		id := items[i].GetID()
		if _, ok := m.index[id]; ok {
			continue
		}
		m.index[id] = m.queue.PushFront(items[i])
	}
}

func (m *Mempool[T]) Has(_ context.Context, id ids.ID) bool {
	m.l.RLock()
	defer m.l.RUnlock()

	_, ok := m.index[id]
	return ok
}

func (m *Mempool[T]) Len(context.Context) int {
	m.l.RLock()
	defer m.l.RUnlock()

	return m.queue.Size()
}

// Take removes and returns up to [count] items, oldest first.
func (m *Mempool[T]) Take(ctx context.Context, count int) []T {
	_, span := m.tracer.Start(ctx, "Mempool.Take", oteltrace.WithAttributes(
		attribute.Int("count", count),
	))
	defer span.End()

	m.l.Lock()
	defer m.l.Unlock()

	items := make([]T, 0, count)
	for len(items) < count {
		e := m.queue.Front()
		if e == nil {
			break
		}
		item := m.queue.Remove(e)
		delete(m.index, item.GetID())
		items = append(items, item)
	}
	return items
}

// SetMinTimestamp removes and returns every item that expires before [t].
func (m *Mempool[T]) SetMinTimestamp(ctx context.Context, t int64) []T {
	_, span := m.tracer.Start(ctx, "Mempool.SetMinTimestamp")
	defer span.End()

	m.l.Lock()
	defer m.l.Unlock()

	var removed []T
	for e := m.queue.Front(); e != nil; {
		next := e.Next()
		if e.Value().GetExpiry() < t {
			item := m.queue.Remove(e)
			delete(m.index, item.GetID())
			removed = append(removed, item)
		}
		e = next
	}
	return removed
}

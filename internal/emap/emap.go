// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"bytes"
	"container/heap"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
	"golang.org/x/exp/slices"
)

type Item interface {
	GetID() ids.ID
	GetExpiry() int64
}

// Entry is a remembered id and its expiry.
type Entry struct {
	ID     ids.ID
	Expiry int64
}

func (e Entry) GetID() ids.ID    { return e.ID }
func (e Entry) GetExpiry() int64 { return e.Expiry }

type bucket struct {
	t     int64
	items []ids.ID
}

type bucketHeap []*bucket

func (h bucketHeap) Len() int           { return len(h) }
func (h bucketHeap) Less(i, j int) bool { return h[i].t < h[j].t }
func (h bucketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *bucketHeap) Push(x any)        { *h = append(*h, x.(*bucket)) }

func (h *bucketHeap) Pop() any {
	old := *h
	n := len(old)
	b := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return b
}

// EMap remembers item ids until their expiry passes. It is used to reject
// transactions that were already accepted while they could still be valid.
type EMap[T Item] struct {
	mu sync.RWMutex

	bh    bucketHeap
	seen  set.Set[ids.ID]
	times map[int64]*bucket
}

func New[T Item]() *EMap[T] {
	return &EMap[T]{
		seen:  set.Set[ids.ID]{},
		times: make(map[int64]*bucket),
	}
}

func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		e.add(item.GetID(), item.GetExpiry())
	}
}

func (e *EMap[T]) add(id ids.ID, t int64) {
	if e.seen.Contains(id) {
		return
	}
	e.seen.Add(id)

	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return
	}
	b := &bucket{t: t, items: []ids.ID{id}}
	e.times[t] = b
	heap.Push(&e.bh, b)
}

// Entries returns every remembered id ordered by expiry, then id.
func (e *EMap[T]) Entries() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries := make([]Entry, 0, e.seen.Len())
	for t, b := range e.times {
		for _, id := range b.items {
			entries = append(entries, Entry{ID: id, Expiry: t})
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Expiry < b.Expiry:
			return -1
		case a.Expiry > b.Expiry:
			return 1
		default:
			return bytes.Compare(a.ID[:], b.ID[:])
		}
	})
	return entries
}

// Reset replaces the contents of the map with [entries].
func (e *EMap[T]) Reset(entries []Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bh = nil
	e.seen = set.Set[ids.ID]{}
	e.times = make(map[int64]*bucket)
	for _, entry := range entries {
		e.add(entry.ID, entry.Expiry)
	}
}

// SetMin forgets every id that expires before [t].
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	var evicted []ids.ID
	for e.bh.Len() > 0 && e.bh[0].t < t {
		b := heap.Pop(&e.bh).(*bucket)
		for _, id := range b.items {
			e.seen.Remove(id)
		}
		evicted = append(evicted, b.items...)
		delete(e.times, b.t)
	}
	return evicted
}

func (e *EMap[T]) Has(id ids.ID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Contains(id)
}

func (e *EMap[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Len()
}

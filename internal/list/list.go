// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package list

import "github.com/ava-labs/avalanchego/ids"

// Item is anything that can be queued by id and dropped once expired.
type Item interface {
	GetID() ids.ID
	GetExpiry() int64
}

// List is a generic doubly-linked list supporting removal of any
// element in constant time. The zero value is ready to use.
type List[T Item] struct {
	root Element[T] // sentinel; root.next is the front
	size int
}

type Element[T Item] struct {
	prev, next *Element[T]
	list       *List[T]

	value T
}

func (e *Element[T]) Value() T {
	return e.value
}

// Next returns nil at the end of the list.
func (e *Element[T]) Next() *Element[T] {
	if e.list == nil || e.next == &e.list.root {
		return nil
	}
	return e.next
}

func (l *List[T]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

func (l *List[T]) Front() *Element[T] {
	if l.size == 0 {
		return nil
	}
	return l.root.next
}

func (l *List[T]) PushBack(v T) *Element[T] {
	l.lazyInit()
	return l.insertAfter(v, l.root.prev)
}

func (l *List[T]) PushFront(v T) *Element[T] {
	l.lazyInit()
	return l.insertAfter(v, &l.root)
}

func (l *List[T]) insertAfter(v T, at *Element[T]) *Element[T] {
	e := &Element[T]{
		prev:  at,
		next:  at.next,
		list:  l,
		value: v,
	}
	at.next.prev = e
	at.next = e
	l.size++
	return e
}

// Remove unlinks [e] if it belongs to [l] and returns its value.
func (l *List[T]) Remove(e *Element[T]) T {
	if e.list == l {
		e.prev.next = e.next
		e.next.prev = e.prev
		e.prev, e.next, e.list = nil, nil, nil
		l.size--
	}
	return e.value
}

func (l *List[T]) Size() int {
	return l.size
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	id     ids.ID
	expiry int64
}

func (i *testItem) GetID() ids.ID    { return i.id }
func (i *testItem) GetExpiry() int64 { return i.expiry }

func TestEMap(t *testing.T) {
	require := require.New(t)
	e := New[*testItem]()

	a := &testItem{ids.GenerateTestID(), 3}
	b := &testItem{ids.GenerateTestID(), 1}
	c := &testItem{ids.GenerateTestID(), 3}
	e.Add([]*testItem{a, b, c, a})
	require.Equal(3, e.Len())
	require.True(e.Has(a.id))

	require.Equal([]ids.ID{b.id}, e.SetMin(2))
	require.False(e.Has(b.id))
	require.True(e.Has(c.id))

	// nothing left below 3
	require.Empty(e.SetMin(3))
	require.ElementsMatch([]ids.ID{a.id, c.id}, e.SetMin(4))
	require.Zero(e.Len())
}

func TestEMapEntriesReset(t *testing.T) {
	require := require.New(t)
	e := New[*testItem]()

	a := &testItem{ids.ID{2}, 5}
	b := &testItem{ids.ID{1}, 5}
	c := &testItem{ids.ID{3}, 4}
	e.Add([]*testItem{a, b, c})

	entries := e.Entries()
	require.Equal([]Entry{
		{ID: c.id, Expiry: 4},
		{ID: b.id, Expiry: 5},
		{ID: a.id, Expiry: 5},
	}, entries)

	restored := New[*testItem]()
	restored.Reset(entries)
	require.Equal(entries, restored.Entries())
	require.True(restored.Has(a.id))
	require.Equal([]ids.ID{c.id}, restored.SetMin(5))

	restored.Reset(nil)
	require.Zero(restored.Len())
	require.Empty(restored.Entries())
}

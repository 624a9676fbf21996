// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionsHas(t *testing.T) {
	tests := []struct {
		name       string
		permission Permissions
		require    Permissions
		has        bool
	}{
		{"read has read", Read, Read, true},
		{"read lacks write", Read, Write, false},
		{"write implies read", Write, Read, true},
		{"all has allocate", All, Allocate, true},
		{"none has none", None, None, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.has, tt.permission.Has(tt.require))
		})
	}
}

func TestKeysAdd(t *testing.T) {
	require := require.New(t)
	keys := Keys{}
	keys.Add("k", Read)
	keys.Add("k", Write)
	require.Equal(Read|Write, keys["k"])
	require.False(keys["k"].Has(Allocate))
}

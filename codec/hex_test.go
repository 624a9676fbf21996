// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadHex(t *testing.T) {
	tests := []struct {
		input   string
		size    int
		want    []byte
		wantErr bool
	}{
		{input: "0x0102", size: -1, want: []byte{1, 2}},
		{input: "0102", size: 2, want: []byte{1, 2}},
		{input: "0102", size: 3, wantErr: true},
		{input: "zz", size: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			b, err := LoadHex(tt.input, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, b)
		})
	}
}

func TestBytesJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(struct {
		Tx Bytes `json:"tx"`
	}{Tx: Bytes{0xab, 0xcd}})
	require.NoError(err)
	require.JSONEq(`{"tx":"abcd"}`, string(b))

	var parsed struct {
		Tx Bytes `json:"tx"`
	}
	require.NoError(json.Unmarshal([]byte(`{"tx":"0xabcd"}`), &parsed))
	require.Equal(Bytes{0xab, 0xcd}, parsed.Tx)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/auth"
	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/config"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/crypto/ed25519"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/journal"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/utils"
	"github.com/ava-labs/modevm/vm"
)

func TestReplay(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	w, err := journal.NewWriter(dir)
	require.NoError(err)
	cfg, err := config.New(nil)
	require.NoError(err)
	g := genesis.Default()
	source, err := vm.New(ctx, logging.NoLog{}, trace.Noop, prometheus.NewRegistry(), cfg, g, storage.NewMemory(),
		vm.WithManualBuilder(),
		vm.WithBlockSubscription(w),
	)
	require.NoError(err)
	source.Start()

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	f := auth.NewED25519Factory(priv)
	for _, action := range []chain.Action{
		&actions.SetValue{Value: 10},
		&actions.SwitchMode{Mode: uint32(storage.Increasing)},
		&actions.ExecuteAction{},
	} {
		base := &chain.Base{
			Timestamp: utils.UnixRMilli(-1, g.Rules.ValidityWindow),
			ChainID:   g.Rules.ChainID,
			MaxUnits:  10,
		}
		tx, err := chain.NewTx(base, action).Sign(f, source.Registry().ActionCodec(), source.Registry().AuthCodec())
		require.NoError(err)
		require.NoError(source.Submit(ctx, []*chain.Transaction{tx})[0])
		require.NoError(source.Produce(ctx, time.Now().UnixMilli()))
	}
	want := source.LastAccepted()
	require.NoError(source.Shutdown(ctx))

	addr := codec.MustAddressBech32(consts.HRP, f.Address())
	resp, err := replay(ctx, g, dir, []string{addr})
	require.NoError(err)
	require.Equal(3, resp.Blocks)
	require.Equal(want.Height, resp.Height)
	require.Equal(want.BlockID, resp.BlockID)
	require.Equal([]accountCmdResponse{{
		Address: addr,
		Exists:  true,
		Value:   11,
		Mode:    storage.Increasing,
	}}, resp.Accounts)

	_, err = replay(ctx, g, dir, []string{"not-an-address"})
	require.Error(err)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/requester"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/utils"
)

const waitSleep = 500 * time.Millisecond

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	networkID uint32
	chainID   ids.ID
	rules     *genesis.Rules
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Network(ctx context.Context) (uint32, ids.ID, error) {
	if cli.chainID != ids.Empty {
		return cli.networkID, cli.chainID, nil
	}

	resp := new(NetworkReply)
	err := cli.requester.SendRequest(
		ctx,
		"network",
		nil,
		resp,
	)
	if err != nil {
		return 0, ids.Empty, err
	}
	cli.networkID = resp.NetworkID
	cli.chainID = resp.ChainID
	return resp.NetworkID, resp.ChainID, nil
}

func (cli *JSONRPCClient) Genesis(ctx context.Context) (ids.ID, *genesis.Genesis, error) {
	resp := new(GenesisReply)
	err := cli.requester.SendRequest(
		ctx,
		"genesis",
		nil,
		resp,
	)
	return resp.ID, resp.Genesis, err
}

// Rules are immutable for the life of a chain, so they are fetched once.
func (cli *JSONRPCClient) Rules(ctx context.Context) (*genesis.Rules, error) {
	if cli.rules != nil {
		return cli.rules, nil
	}
	_, g, err := cli.Genesis(ctx)
	if err != nil {
		return nil, err
	}
	cli.rules = g.Rules
	return cli.rules, nil
}

func (cli *JSONRPCClient) Account(ctx context.Context, addr codec.Address) (storage.AccountState, bool, error) {
	resp := new(AccountReply)
	err := cli.requester.SendRequest(
		ctx,
		"account",
		&AccountArgs{Address: codec.MustAddressBech32(consts.HRP, addr)},
		resp,
	)
	if err != nil {
		return storage.AccountState{}, false, err
	}
	return storage.AccountState{Value: resp.Value, Mode: resp.Mode}, resp.Exists, nil
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, d []byte) (ids.ID, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: d},
		resp,
	)
	return resp.TxID, err
}

func (cli *JSONRPCClient) LastAccepted(ctx context.Context) (ids.ID, uint64, int64, error) {
	resp := new(LastAcceptedReply)
	err := cli.requester.SendRequest(
		ctx,
		"lastAccepted",
		nil,
		resp,
	)
	return resp.BlockID, resp.Height, resp.Timestamp, err
}

func (cli *JSONRPCClient) Events(ctx context.Context, addr codec.Address, limit int) ([]*chain.Result, error) {
	resp := new(EventsReply)
	err := cli.requester.SendRequest(
		ctx,
		"events",
		&EventsArgs{Address: codec.MustAddressBech32(consts.HRP, addr), Limit: limit},
		resp,
	)
	return resp.Results, err
}

func (cli *JSONRPCClient) Tx(ctx context.Context, txID ids.ID) (*chain.Result, bool, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"tx",
		&TxArgs{TxID: txID},
		resp,
	)
	if err != nil {
		return nil, false, err
	}
	return resp.Result, resp.Found, nil
}

// WaitForTx polls until [txID] is included in an accepted block.
func (cli *JSONRPCClient) WaitForTx(ctx context.Context, txID ids.ID) (*chain.Result, error) {
	ticker := time.NewTicker(waitSleep)
	defer ticker.Stop()
	for {
		r, found, err := cli.Tx(ctx, txID)
		if err != nil {
			return nil, err
		}
		if found {
			return r, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type Parser interface {
	ActionCodec() *codec.TypeParser[chain.Action]
	AuthCodec() *codec.TypeParser[chain.Auth]
}

// GenerateTransaction signs [action] with an expiry at the end of the
// validity window and a unit limit equal to its exact cost.
func (cli *JSONRPCClient) GenerateTransaction(
	ctx context.Context,
	parser Parser,
	action chain.Action,
	authFactory chain.AuthFactory,
) (*chain.Transaction, error) {
	rules, err := cli.Rules(ctx)
	if err != nil {
		return nil, err
	}
	_, chainID, err := cli.Network(ctx)
	if err != nil {
		return nil, err
	}
	base := &chain.Base{
		Timestamp: utils.UnixRMilli(-1, rules.GetValidityWindow()),
		ChainID:   chainID,
		MaxUnits:  chain.EstimateUnits(rules, action, authFactory),
	}
	return chain.NewTx(base, action).Sign(authFactory, parser.ActionCodec(), parser.AuthCodec())
}

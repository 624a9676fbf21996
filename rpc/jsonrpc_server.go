// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/indexer"
	"github.com/ava-labs/modevm/storage"
)

type JSONRPCServer struct {
	vm    VM
	index ResultIndex
}

// NewJSONRPCServer serves [vm]. [index] may be nil, in which case only
// recent results are available.
func NewJSONRPCServer(vm VM, index ResultIndex) *JSONRPCServer {
	return &JSONRPCServer{vm: vm, index: index}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type NetworkReply struct {
	NetworkID uint32 `json:"networkId"`
	ChainID   ids.ID `json:"chainId"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) (err error) {
	rules := j.vm.Rules()
	reply.NetworkID = rules.GetNetworkID()
	reply.ChainID = rules.GetChainID()
	return nil
}

type GenesisReply struct {
	ID      ids.ID           `json:"id"`
	Genesis *genesis.Genesis `json:"genesis"`
}

func (j *JSONRPCServer) Genesis(_ *http.Request, _ *struct{}, reply *GenesisReply) (err error) {
	reply.ID = j.vm.GenesisID()
	reply.Genesis = j.vm.Genesis()
	return nil
}

type AccountArgs struct {
	Address string `json:"address"`
}

type AccountReply struct {
	Exists bool         `json:"exists"`
	Value  uint32       `json:"value"`
	Mode   storage.Mode `json:"mode"`
}

func (j *JSONRPCServer) Account(req *http.Request, args *AccountArgs, reply *AccountReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Account")
	defer span.End()

	addr, err := codec.ParseAddressBech32(consts.HRP, args.Address)
	if err != nil {
		return err
	}
	account, exists, err := storage.GetAccountFromState(ctx, j.vm.ReadState, addr)
	if err != nil {
		return err
	}
	reply.Exists = exists
	reply.Value = account.Value
	reply.Mode = account.Mode
	return nil
}

type SubmitTxArgs struct {
	Tx codec.Bytes `json:"tx"`
}

type SubmitTxReply struct {
	TxID ids.ID `json:"txId"`
}

func (j *JSONRPCServer) SubmitTx(
	req *http.Request,
	args *SubmitTxArgs,
	reply *SubmitTxReply,
) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	registry := j.vm.Registry()
	rtx := codec.NewReader(args.Tx, consts.NetworkSizeLimit) // will likely be much smaller than this
	tx, err := chain.UnmarshalTx(rtx, registry.ActionCodec(), registry.AuthCodec())
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	if !rtx.Empty() {
		return ErrTxExtraBytes
	}
	reply.TxID = tx.ID()
	if err := j.vm.Submit(ctx, []*chain.Transaction{tx})[0]; err != nil {
		j.vm.Logger().Debug("rejected submitted tx", zap.Stringer("txID", tx.ID()), zap.Error(err))
		return err
	}
	return nil
}

type LastAcceptedReply struct {
	Height    uint64 `json:"height"`
	BlockID   ids.ID `json:"blockId"`
	Timestamp int64  `json:"timestamp"`
}

func (j *JSONRPCServer) LastAccepted(_ *http.Request, _ *struct{}, reply *LastAcceptedReply) error {
	lastAccepted := j.vm.LastAccepted()
	reply.Height = lastAccepted.Height
	reply.BlockID = lastAccepted.BlockID
	reply.Timestamp = lastAccepted.Timestamp
	return nil
}

type EventsArgs struct {
	Address string `json:"address"`
	Limit   int    `json:"limit"`
}

type EventsReply struct {
	Results []*chain.Result `json:"results"`
}

func (j *JSONRPCServer) Events(req *http.Request, args *EventsArgs, reply *EventsReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Events")
	defer span.End()

	addr, err := codec.ParseAddressBech32(consts.HRP, args.Address)
	if err != nil {
		return err
	}
	limit := args.Limit
	switch {
	case limit <= 0:
		limit = DefaultEventsLimit
	case limit > MaxEventsLimit:
		limit = MaxEventsLimit
	}
	if j.index == nil {
		reply.Results = j.vm.RecentResults(addr, limit)
		return nil
	}
	reply.Results, err = j.index.EventsByAccount(ctx, addr, limit)
	return err
}

type TxArgs struct {
	TxID ids.ID `json:"txId"`
}

type TxReply struct {
	Found  bool          `json:"found"`
	Result *chain.Result `json:"result,omitempty"`
}

func (j *JSONRPCServer) Tx(req *http.Request, args *TxArgs, reply *TxReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Tx")
	defer span.End()

	if r, ok := j.vm.GetResult(args.TxID); ok {
		reply.Found = true
		reply.Result = r
		return nil
	}
	if j.index == nil {
		return nil
	}
	r, err := j.index.GetResult(ctx, args.TxID)
	if errors.Is(err, indexer.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	reply.Found = true
	reply.Result = r
	return nil
}

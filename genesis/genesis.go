// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ava-labs/modevm/actions"
	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/state"
	"github.com/ava-labs/modevm/storage"

	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	ErrDuplicateAccount = errors.New("duplicate genesis account")
	ErrMissingRules     = errors.New("missing rules")
	ErrMissingChainID   = errors.New("missing chain id")
)

type Allocation struct {
	Address string       `json:"address"`
	Value   uint32       `json:"value"`
	Mode    storage.Mode `json:"mode"`
}

type Genesis struct {
	Rules    *Rules        `json:"rules"`
	Accounts []*Allocation `json:"accounts"`
}

func Default() *Genesis {
	return &Genesis{
		Rules: NewDefaultRules(),
	}
}

// Load parses and verifies a JSON genesis. Rules that are not set keep their
// defaults, except a missing chain id which is derived from the network id.
func Load(b []byte) (*Genesis, error) {
	g := Default()
	g.Rules.ChainID = ids.Empty
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	if g.Rules != nil && g.Rules.ChainID == ids.Empty {
		g.Rules.ChainID = DefaultChainID(g.Rules.NetworkID)
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Genesis) Bytes() ([]byte, error) {
	return json.Marshal(g)
}

// ID identifies the genesis; it is used as the parent of the first block.
func (g *Genesis) ID() (ids.ID, error) {
	b, err := g.Bytes()
	if err != nil {
		return ids.Empty, err
	}
	return hashing.ComputeHash256Array(b), nil
}

// Verify checks that every initial account could have been reached through
// SetValue and SwitchMode.
func (g *Genesis) Verify() error {
	if g.Rules == nil {
		return ErrMissingRules
	}
	if g.Rules.ChainID == ids.Empty {
		return ErrMissingChainID
	}
	if _, err := actions.ParseOverflowPolicy(string(g.Rules.ExecuteOverflow)); err != nil {
		return err
	}
	seen := make(map[codec.Address]struct{}, len(g.Accounts))
	for _, alloc := range g.Accounts {
		addr, err := codec.ParseAddressBech32(consts.HRP, alloc.Address)
		if err != nil {
			return fmt.Errorf("%w: %s", err, alloc.Address)
		}
		if _, ok := seen[addr]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, alloc.Address)
		}
		seen[addr] = struct{}{}
		if err := verifyAllocation(alloc); err != nil {
			return fmt.Errorf("%w: %s", err, alloc.Address)
		}
	}
	return nil
}

func verifyAllocation(alloc *Allocation) error {
	if alloc.Value == 0 {
		return actions.ErrCannotBeZero
	}
	if !alloc.Mode.Valid() {
		return actions.ErrInvalidStateInt
	}
	if alloc.Mode == storage.Idle {
		return nil
	}
	return actions.CheckSwitch(storage.AccountState{Value: alloc.Value, Mode: storage.Idle}, alloc.Mode)
}

// StateKeys are the keys [Genesis.InitializeState] may allocate.
func (g *Genesis) StateKeys() (state.Keys, error) {
	keys := make(state.Keys, len(g.Accounts))
	for _, alloc := range g.Accounts {
		addr, err := codec.ParseAddressBech32(consts.HRP, alloc.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, alloc.Address)
		}
		keys.Add(string(storage.AccountKey(addr)), state.Allocate|state.Write)
	}
	return keys, nil
}

func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState", oteltrace.WithAttributes(
		attribute.Int("accounts", len(g.Accounts)),
	))
	defer span.End()

	for _, alloc := range g.Accounts {
		addr, err := codec.ParseAddressBech32(consts.HRP, alloc.Address)
		if err != nil {
			return fmt.Errorf("%w: %s", err, alloc.Address)
		}
		if err := storage.PutAccount(ctx, mu, addr, storage.AccountState{
			Value: alloc.Value,
			Mode:  alloc.Mode,
		}); err != nil {
			return fmt.Errorf("%w: addr=%s", err, alloc.Address)
		}
	}
	return nil
}

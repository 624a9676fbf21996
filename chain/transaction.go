// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/modevm/codec"
	"github.com/ava-labs/modevm/consts"
)

type Transaction struct {
	Base   *Base  `json:"base"`
	Action Action `json:"action"`
	Auth   Auth   `json:"auth"`

	digest []byte
	bytes  []byte
	size   int
	id     ids.ID
}

func NewTx(base *Base, action Action) *Transaction {
	return &Transaction{
		Base:   base,
		Action: action,
	}
}

// Digest is the message signed by [Auth]: the packed [Base] followed by the
// typed action.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	size := t.Base.Size() + codec.TypeIDLen + t.Action.Size()
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	t.Base.Marshal(p)
	p.PackByte(t.Action.GetTypeID())
	t.Action.Marshal(p)
	return p.Bytes(), p.Err()
}

func (t *Transaction) Sign(factory AuthFactory, actions *codec.TypeParser[Action], auths *codec.TypeParser[Auth]) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth

	// Ensure transaction is fully initialized and correct by reloading it from
	// bytes
	size := len(msg) + codec.TypeIDLen + auth.Size()
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	p = codec.NewReader(p.Bytes(), consts.NetworkSizeLimit)
	return UnmarshalTx(p, actions, auths)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

// GetID and GetExpiry let pending transactions be queued and expired.
func (t *Transaction) GetID() ids.ID { return t.id }

func (t *Transaction) GetExpiry() int64 { return t.Base.Timestamp }

// EstimateUnits is the cost of [action] once signed by [factory]. It matches
// [Transaction.Units] of the signed transaction.
func EstimateUnits(r Rules, action Action, factory AuthFactory) uint64 {
	return r.GetBaseComputeUnits() + factory.ComputeUnits(r) + action.ComputeUnits(r)
}

// Units is the compute charged for the transaction before it executes.
func (t *Transaction) Units(r Rules) uint64 {
	return r.GetBaseComputeUnits() + t.Auth.ComputeUnits(r) + t.Action.ComputeUnits(r)
}

// PreVerify runs every stateless check except signature verification. The
// returned units are the declared cost of the transaction.
func (t *Transaction) PreVerify(r Rules, timestamp int64) (uint64, error) {
	if err := t.Base.Execute(r.GetChainID(), r, timestamp); err != nil {
		return 0, err
	}
	start, end := t.Action.ValidRange(r)
	if start >= 0 && timestamp < start {
		return 0, ErrActionNotActivated
	}
	if end >= 0 && timestamp > end {
		return 0, ErrActionNotActivated
	}
	start, end = t.Auth.ValidRange(r)
	if start >= 0 && timestamp < start {
		return 0, ErrAuthNotActivated
	}
	if end >= 0 && timestamp > end {
		return 0, ErrAuthNotActivated
	}
	units := t.Units(r)
	if units > t.Base.MaxUnits {
		return 0, fmt.Errorf("%w: required=%d max=%d", ErrInsufficientUnits, units, t.Base.MaxUnits)
	}
	return units, nil
}

// VerifyAuth checks the signature over [Transaction.Digest].
func (t *Transaction) VerifyAuth(ctx context.Context) error {
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	if err := t.Auth.Verify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return nil
}

// SyntacticVerify checks everything about [t] that does not depend on
// state.
func (t *Transaction) SyntacticVerify(ctx context.Context, r Rules, timestamp int64) (uint64, error) {
	units, err := t.PreVerify(r, timestamp)
	if err != nil {
		return 0, err
	}
	if err := t.VerifyAuth(ctx); err != nil {
		return 0, err
	}
	return units, nil
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	if t.Auth == nil {
		return ErrMissingAuth
	}
	t.Base.Marshal(p)
	p.PackByte(t.Action.GetTypeID())
	t.Action.Marshal(p)
	p.PackByte(t.Auth.GetTypeID())
	t.Auth.Marshal(p)
	return p.Err()
}

func MarshalTxs(txs []*Transaction) ([]byte, error) {
	size := consts.IntLen
	for _, tx := range txs {
		size += tx.Size()
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	p.PackUint32(uint32(len(txs)))
	for _, tx := range txs {
		if err := tx.Marshal(p); err != nil {
			return nil, err
		}
	}
	return p.Bytes(), p.Err()
}

func UnmarshalTxs(
	raw []byte,
	initialCapacity int,
	actions *codec.TypeParser[Action],
	auths *codec.TypeParser[Auth],
) ([]*Transaction, error) {
	p := codec.NewReader(raw, consts.NetworkSizeLimit)
	txCount := p.UnpackUint32(false)
	if int(txCount) > initialCapacity {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyTxs, txCount, initialCapacity)
	}
	txs := make([]*Transaction, 0, txCount)
	for i := uint32(0); i < txCount; i++ {
		tx, err := UnmarshalTx(p, actions, auths)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if !p.Empty() {
		// Ensure no leftover bytes
		return nil, ErrInvalidObject
	}
	return txs, p.Err()
}

func UnmarshalTx(
	p *codec.Packer,
	actions *codec.TypeParser[Action],
	auths *codec.TypeParser[Auth],
) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	action, err := actions.Unmarshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal action", err)
	}
	digest := p.Offset()
	auth, err := auths.Unmarshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal auth", err)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	codecBytes := p.Bytes()

	var tx Transaction
	tx.Base = base
	tx.Action = action
	tx.Auth = auth
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = hashing.ComputeHash256Array(tx.bytes)
	return &tx, nil
}

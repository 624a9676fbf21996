// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"fmt"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/crypto/ed25519"
)

// VerifyBatch checks the signature of every transaction in [txs]. ED25519
// signatures are verified together once there are enough of them to make
// batching worthwhile.
func VerifyBatch(ctx context.Context, txs []*chain.Transaction) error {
	var (
		batch *ed25519.Batch
		rest  = make([]*chain.Transaction, 0, len(txs))
	)
	for _, tx := range txs {
		a, ok := tx.Auth.(*ED25519)
		if !ok || len(txs) < ed25519.MinBatchSize {
			rest = append(rest, tx)
			continue
		}
		if batch == nil {
			batch = ed25519.NewBatch(len(txs))
		}
		msg, err := tx.Digest()
		if err != nil {
			return err
		}
		batch.Add(msg, a.Signer, a.Signature)
	}
	if batch != nil {
		if err := batch.Verify(); err != nil {
			return fmt.Errorf("%w: %w", chain.ErrAuthFailed, err)
		}
	}
	for _, tx := range rest {
		if err := tx.VerifyAuth(ctx); err != nil {
			return err
		}
	}
	return nil
}

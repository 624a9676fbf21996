// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/hdevalence/ed25519consensus"

	"github.com/ava-labs/modevm/crypto"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// Signatures are verified with ZIP-215 rules (https://zips.z.cash/zip-0215)
// so every replica agrees on validity, including for non-canonical points.
const (
	PublicKeyLen      = ed25519.PublicKeySize
	PrivateKeyLen     = ed25519.PrivateKeySize
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize

	MinBatchSize = 4
)

var (
	EmptyPublicKey  = PublicKey{}
	EmptyPrivateKey = PrivateKey{}
	EmptySignature  = Signature{}
)

func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey is the last 32 bytes of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

func (p PrivateKey) Hex() string {
	return hex.EncodeToString(p[:])
}

// HexToKey parses a private key produced by [PrivateKey.Hex]. A 32-byte seed
// is also accepted.
func HexToKey(s string) (PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return EmptyPrivateKey, err
	}
	switch len(b) {
	case PrivateKeyLen:
		return PrivateKey(b), nil
	case PrivateKeySeedLen:
		return PrivateKey(ed25519.NewKeyFromSeed(b)), nil
	default:
		return EmptyPrivateKey, fmt.Errorf("%w: length=%d", crypto.ErrInvalidPrivateKey, len(b))
	}
}

func Sign(msg []byte, pk PrivateKey) Signature {
	return Signature(ed25519.Sign(pk[:], msg))
}

func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

// Batch verifies many signatures at once. It only reports whether all of
// them are valid.
type Batch struct {
	bv ed25519consensus.BatchVerifier
}

func NewBatch(size int) *Batch {
	return &Batch{bv: ed25519consensus.NewPreallocatedBatchVerifier(size)}
}

func (b *Batch) Add(msg []byte, p PublicKey, s Signature) {
	b.bv.Add(p[:], msg, s[:])
}

func (b *Batch) Verify() error {
	if !b.bv.Verify() {
		return crypto.ErrInvalidSignature
	}
	return nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

// Typed is implemented by anything that is serialized behind a registered
// type id (actions, auth, outputs).
type Typed interface {
	GetTypeID() uint8
}

// Marshaler is a Typed object that knows how to write itself into a Packer.
type Marshaler interface {
	Typed
	Size() int
	Marshal(p *Packer)
}

// MarshalTyped packs [t]'s type id followed by its body.
func MarshalTyped(t Marshaler) ([]byte, error) {
	p := NewWriter(TypeIDLen+t.Size(), TypeIDLen+t.Size())
	p.PackByte(t.GetTypeID())
	t.Marshal(p)
	return p.Bytes(), p.Err()
}

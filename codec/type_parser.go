// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "fmt"

type decoder[T any] struct {
	name string
	f    func(*Packer) (T, error)
}

// TypeParser maps explicit type ids to decoders. Unlike a registration-order
// index, an explicit id can never be silently remapped.
type TypeParser[T Typed] struct {
	indexToDecoder map[uint8]*decoder[T]
}

// NewTypeParser returns an instance of a Typeparser
func NewTypeParser[T Typed]() *TypeParser[T] {
	return &TypeParser[T]{
		indexToDecoder: map[uint8]*decoder[T]{},
	}
}

// Register registers a new type into TypeParser [p]. Registers the type by using
// the type id of [instance]. Returns ErrDuplicateItem if the id is already taken.
func (p *TypeParser[T]) Register(instance T, f func(*Packer) (T, error)) error {
	id := instance.GetTypeID()
	if _, ok := p.indexToDecoder[id]; ok {
		return fmt.Errorf("%w: type id %d", ErrDuplicateItem, id)
	}
	p.indexToDecoder[id] = &decoder[T]{fmt.Sprintf("%T", instance), f}
	return nil
}

// LookupIndex returns the decoder function and success of lookup of [index]
// from Typeparser [p].
func (p *TypeParser[T]) LookupIndex(index uint8) (func(*Packer) (T, error), bool) {
	d, ok := p.indexToDecoder[index]
	if ok {
		return d.f, true
	}
	return nil, false
}

// Unmarshal reads a type id from [pk] and decodes the matching object.
func (p *TypeParser[T]) Unmarshal(pk *Packer) (T, error) {
	var zero T
	typeID := pk.UnpackByte()
	if err := pk.Err(); err != nil {
		return zero, err
	}
	f, ok := p.LookupIndex(typeID)
	if !ok {
		return zero, fmt.Errorf("%w: %d", ErrUnknownTypeID, typeID)
	}
	return f(pk)
}

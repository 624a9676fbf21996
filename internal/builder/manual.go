// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package builder

import (
	"context"
	"time"
)

var _ Builder = (*Manual)(nil)

// Manual only builds when [Manual.Force] is called.
type Manual struct {
	build     BuildFunc
	doneBuild chan struct{}
}

func NewManual(build BuildFunc) *Manual {
	return &Manual{
		build:     build,
		doneBuild: make(chan struct{}),
	}
}

func (b *Manual) Start() {
	close(b.doneBuild)
}

// Queue is a no-op in [Manual].
func (*Manual) Queue(context.Context) {}

func (b *Manual) Force(ctx context.Context) error {
	return b.build(ctx, time.Now().UnixMilli())
}

func (b *Manual) Done() {
	<-b.doneBuild
}

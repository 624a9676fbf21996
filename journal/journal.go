// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/modevm/chain"
	"github.com/ava-labs/modevm/consts"
)

const (
	// SegmentBlocks is the number of heights stored in one file.
	SegmentBlocks = 10_000

	segmentPrefix = "blocks-"
	segmentSuffix = ".jsonl.zst"
)

var ErrHeightGap = errors.New("journal height gap")

// Entry is a single accepted block.
type Entry struct {
	ID        ids.ID `json:"id"`
	Height    uint64 `json:"height"`
	Timestamp int64  `json:"timestamp"`
	Block     []byte `json:"block"`
}

// Writer appends accepted blocks as zstd-compressed JSON lines, one segment
// file per [SegmentBlocks] heights.
type Writer struct {
	dir string

	l       sync.Mutex
	segment uint64
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, perms.ReadWriteExecute); err != nil {
		return nil, err
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Append(blk *chain.Block) error {
	w.l.Lock()
	defer w.l.Unlock()

	segment := blk.Height / SegmentBlocks
	if w.f == nil || segment != w.segment {
		if err := w.rotateLocked(segment); err != nil {
			return err
		}
	}
	b, err := json.Marshal(&Entry{
		ID:        blk.ID(),
		Height:    blk.Height,
		Timestamp: blk.Timestamp,
		Block:     blk.Bytes(),
	})
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Accept appends [blk], so a [Writer] can subscribe to accepted blocks.
func (w *Writer) Accept(_ context.Context, blk *chain.Block) error {
	return w.Append(blk)
}

func (w *Writer) rotateLocked(segment uint64) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	f, err := os.OpenFile(segmentPath(w.dir, segment), os.O_CREATE|os.O_WRONLY|os.O_APPEND, perms.ReadWrite)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.segment = segment
	return nil
}

func (w *Writer) Close() error {
	w.l.Lock()
	defer w.l.Unlock()
	return w.closeLocked()
}

func (w *Writer) closeLocked() error {
	var errs []error
	if w.w != nil {
		errs = append(errs, w.w.Flush())
	}
	if w.enc != nil {
		errs = append(errs, w.enc.Close())
	}
	if w.f != nil {
		errs = append(errs, w.f.Close())
	}
	w.f, w.enc, w.w = nil, nil, nil
	return errors.Join(errs...)
}

func segmentPath(dir string, segment uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%s%020d%s", segmentPrefix, segment*SegmentBlocks, segmentSuffix))
}

// Replay calls [apply] with every journaled block in height order. It
// fails if a height is missing.
func Replay(
	ctx context.Context,
	dir string,
	maxTxs int,
	parser chain.Parser,
	apply func(context.Context, *chain.Block) error,
) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasPrefix(name, segmentPrefix) || !strings.HasSuffix(name, segmentSuffix) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	var (
		replayed int
		next     uint64 = 1
	)
	for _, name := range names {
		err := readSegment(filepath.Join(dir, name), func(e *Entry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if e.Height != next {
				return fmt.Errorf("%w: expected=%d found=%d", ErrHeightGap, next, e.Height)
			}
			blk, err := chain.UnmarshalBlock(e.Block, maxTxs, parser)
			if err != nil {
				return err
			}
			if blk.ID() != e.ID {
				return fmt.Errorf("%w: block %d id mismatch", chain.ErrInvalidObject, e.Height)
			}
			if err := apply(ctx, blk); err != nil {
				return err
			}
			replayed++
			next++
			return nil
		})
		if err != nil {
			return replayed, err
		}
	}
	return replayed, nil
}

func readSegment(path string, f func(*Entry) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return err
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*consts.NetworkSizeLimit)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return err
		}
		if err := f(&e); err != nil {
			return err
		}
	}
	return scanner.Err()
}

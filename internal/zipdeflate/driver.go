// Package zipdeflate partitions a byte slice into contiguous blocks,
// compresses each block in parallel, and joins the resulting bitstreams
// into one contiguous DEFLATE stream.
//
// Grounded on the worker-pool shape of the teacher's
// internal/lossy/encode_parallel.go: one goroutine per worker, a
// sync.WaitGroup-style barrier (here golang.org/x/sync/errgroup, see
// DESIGN.md for why it replaces the teacher's raw WaitGroup), and
// contiguous static range assignment — simplified from the teacher's
// atomic row-claiming because block ranges here are independent and
// never need work-stealing the way VP8's row-dependent encode does.
package zipdeflate

import (
	"hash/crc32"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/deepteams/zipflate/internal/bitflow"
	"github.com/deepteams/zipflate/internal/deflate"
	"github.com/deepteams/zipflate/internal/lz77"
)

// Method selects whether Compress runs the DEFLATE engine at all.
type Method int

const (
	MethodStore Method = iota
	MethodDeflate
)

// blockSize is the per-block partition size the spec names (§4.5, "ceil(N/1MiB) blocks").
const blockSize = 1 << 20

// Options configures a Compress call.
type Options struct {
	Method     Method
	Level      lz77.Level
	Workers    int  // 0 => runtime.GOMAXPROCS(0)
	ForceFixed bool // mirrors the CLI's --deflate_static: force fixed-Huffman blocks, skip dynamic trees
	UseXXHash  bool // mirrors the CLI's --xxhash benchmarking escape hatch (see internal/lz77.Finder.UseXXHash)

	// OnProgress, if set, is invoked with the cumulative number of
	// uncompressed bytes finalized so far. It is called from whichever
	// worker goroutine just finished a block, so it must be safe for
	// concurrent use (typically just storing into an atomic counter it owns).
	OnProgress func(doneBytes, totalBytes uint64)
}

// DefaultOptions returns the engine's default tuning: deflate compression,
// Level2 match-finding, one worker per GOMAXPROCS, dynamic Huffman trees
// preferred over fixed.
func DefaultOptions() Options {
	return Options{
		Method: MethodDeflate,
		Level:  lz77.Level2,
	}
}

func (o Options) workerCount(blockCount int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > blockCount {
		w = blockCount
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Compress partitions src into ceil(len(src)/1MiB) blocks, compresses them
// across a worker pool, and returns the joined DEFLATE bitstream bytes
// alongside src's CRC-32 and length (both needed unconditionally by the
// ZIP local file header regardless of Method).
func Compress(src []byte, opts Options) (compressed []byte, crc32Sum uint32, uncompressedSize uint32, err error) {
	crc32Sum = crc32.ChecksumIEEE(src)
	uncompressedSize = uint32(len(src))

	if opts.Method == MethodStore {
		return storeBlocks(src), crc32Sum, uncompressedSize, nil
	}

	if len(src) == 0 {
		sink := deflate.EncodeBlock(nil, nil, blockMode(opts), true)
		return sink.Export(), crc32Sum, uncompressedSize, nil
	}

	blockCount := (len(src) + blockSize - 1) / blockSize
	workers := opts.workerCount(blockCount)

	sinks := make([]*bitflow.Sink, blockCount)
	var progressDone atomic.Uint64
	totalBytes := uint64(len(src))

	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		rangeStart, rangeEnd := workerBlockRange(w, blockCount, workers)
		g.Go(func() error {
			finder := lz77.NewFinder()
			finder.UseXXHash = opts.UseXXHash
			for blockIdx := rangeStart; blockIdx < rangeEnd; blockIdx++ {
				start := blockIdx * blockSize
				end := start + blockSize
				if end > len(src) {
					end = len(src)
				}
				block := src[start:end]
				isLast := blockIdx == blockCount-1

				items := finder.Find(block, opts.Level)
				mode := blockMode(opts)
				sinks[blockIdx] = deflate.EncodeBlock(block, items, mode, isLast)

				if opts.OnProgress != nil {
					done := progressDone.Add(uint64(len(block)))
					opts.OnProgress(done, totalBytes)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}

	joined := bitflow.New(0)
	for _, s := range sinks {
		joined.Append(s)
	}
	return joined.Export(), crc32Sum, uncompressedSize, nil
}

// workerBlockRange splits blockCount blocks into workers contiguous
// ranges, as near-equal in size as possible (the first blockCount%workers
// ranges get one extra block), and returns the [start, end) range for
// worker w.
func workerBlockRange(w, blockCount, workers int) (start, end int) {
	base := blockCount / workers
	extra := blockCount % workers
	if w < extra {
		start = w * (base + 1)
		end = start + base + 1
	} else {
		start = extra*(base+1) + (w-extra)*base
		end = start + base
	}
	return start, end
}

func blockMode(opts Options) deflate.Mode {
	if opts.ForceFixed {
		return deflate.ModeFixed
	}
	return deflate.ModeAuto
}

// storeBlocks wraps src in plain DEFLATE stored blocks (no compression),
// splitting at the 65535-byte LEN ceiling the way deflate.EncodeBlock's
// stored path does for a single block, so Method == MethodStore still
// yields a valid DEFLATE stream rather than raw bytes.
func storeBlocks(src []byte) []byte {
	sink := deflate.EncodeBlock(src, nil, deflate.ModeStored, true)
	return sink.Export()
}

package zipflate

import (
	"errors"
	"fmt"

	"github.com/deepteams/zipflate/internal/lz77"
	"github.com/deepteams/zipflate/internal/ziparchive"
)

// Method is the ZIP storage method: verbatim store, or DEFLATE.
type Method = ziparchive.Method

const (
	MethodStore   = ziparchive.MethodStore
	MethodDeflate = ziparchive.MethodDeflate
)

var (
	// ErrTooLarge is returned when a source exceeds the 32-bit size
	// fields of a non-ZIP64 archive. ZIP64 is an explicit non-goal.
	ErrTooLarge = errors.New("zipflate: entry exceeds ZIP32 size limit")
	// ErrInvalidMethod is returned by Options.validate for an
	// unrecognized Method.
	ErrInvalidMethod = errors.New("zipflate: invalid method")
	// ErrInvalidLevel is returned by Options.validate for a Level
	// outside [Level0, Level3].
	ErrInvalidLevel = errors.New("zipflate: invalid level")
	// ErrInvalidWorkers is returned by Options.validate for a negative
	// worker count.
	ErrInvalidWorkers = errors.New("zipflate: invalid worker count")
)

// maxEntrySize is the largest source size representable in a non-ZIP64
// local/central directory header's 32-bit size fields.
const maxEntrySize = 1<<32 - 1

// Options configures both the core DEFLATE engine and how entries are
// recorded in the ZIP archive. Grounded on EncoderConfig +
// DefaultEncoderConfig in the teacher's internal/lossless/encode.go and
// the validateConfig-shaped checks in its root encode.go.
type Options struct {
	// Method selects store (no compression) or deflate.
	Method Method
	// Level tunes the match finder's chain-search effort; see
	// internal/lz77.Level.
	Level lz77.Level
	// Workers caps the number of block-compression goroutines; 0 means
	// runtime.GOMAXPROCS(0).
	Workers int
	// ForceFixed forces every block to use the static Huffman tables
	// (the CLI's --deflate_static), skipping dynamic-tree construction.
	ForceFixed bool
	// UseXXHash swaps the match finder's default 3-byte bucket hash
	// (a shift-and-xor hash) for xxhash (the CLI's --xxhash benchmarking
	// escape hatch).
	UseXXHash bool
	// OnProgress, if set, is called as bytes finish compressing. Called
	// from whichever worker goroutine just finished a block, so it must
	// be safe for concurrent use. BuildArchive reports cumulative
	// progress across all sources; Compress reports progress within the
	// single buffer it was given.
	OnProgress func(doneBytes, totalBytes uint64)
}

// DefaultOptions returns zipflate's default tuning: deflate compression at
// Level2, one worker per GOMAXPROCS, dynamic Huffman trees preferred over
// fixed, the match finder's built-in shift-and-xor hash (not xxhash).
func DefaultOptions() Options {
	return Options{
		Method: MethodDeflate,
		Level:  lz77.Level2,
	}
}

func (o Options) validate() error {
	switch o.Method {
	case MethodStore, MethodDeflate:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidMethod, o.Method)
	}
	if o.Level < lz77.Level0 || o.Level > lz77.Level3 {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, o.Level)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, o.Workers)
	}
	return nil
}

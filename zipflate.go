package zipflate

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deepteams/zipflate/internal/ziparchive"
	"github.com/deepteams/zipflate/internal/zipdeflate"
)

// Compress runs the core DEFLATE pipeline (internal/zipdeflate.Driver) over
// src according to opts, or wraps it uncompressed in DEFLATE stored blocks
// when opts.Method is MethodStore. It returns the compressed bytes
// alongside src's CRC-32 and length, both needed by the ZIP local file
// header regardless of method.
func Compress(src []byte, opts Options) (compressed []byte, crc32Sum uint32, uncompressedSize uint32, err error) {
	if err := opts.validate(); err != nil {
		return nil, 0, 0, err
	}
	if uint64(len(src)) > maxEntrySize {
		return nil, 0, 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(src))
	}

	zdOpts := zipdeflate.Options{
		Level:      opts.Level,
		Workers:    opts.Workers,
		ForceFixed: opts.ForceFixed,
		UseXXHash:  opts.UseXXHash,
		OnProgress: opts.OnProgress,
	}
	if opts.Method == MethodStore {
		zdOpts.Method = zipdeflate.MethodStore
	} else {
		zdOpts.Method = zipdeflate.MethodDeflate
	}
	return zipdeflate.Compress(src, zdOpts)
}

// FileSource is one input file to be added to an archive built by
// BuildArchive.
type FileSource struct {
	// Name is the ZIP entry name: typically the file's path relative to
	// the invocation's base directory (ported from the original
	// implementation's relative-path entry naming; see DESIGN.md).
	Name    string
	Data    []byte
	ModTime time.Time
	Mode    os.FileMode
}

// BuildArchive compresses each source (per opts) and writes the resulting
// ZIP archive to w. A zero-length source is recorded as a stored,
// zero-byte entry without ever invoking the compression pipeline — the
// zero-byte fast path ported from the original implementation's
// cps_store.hpp (see DESIGN.md).
func BuildArchive(w io.Writer, sources []FileSource, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	var totalBytes uint64
	for _, s := range sources {
		totalBytes += uint64(len(s.Data))
	}
	var doneBytes uint64

	entries := make([]ziparchive.Entry, len(sources))
	for i, s := range sources {
		externalAttrs := uint32(s.Mode.Perm()) << 16

		if len(s.Data) == 0 {
			entries[i] = ziparchive.Entry{
				Name:          s.Name,
				ModTime:       s.ModTime,
				Method:        MethodStore,
				ExternalAttrs: externalAttrs,
			}
			continue
		}

		fileOpts := opts
		if opts.OnProgress != nil {
			base := doneBytes
			fileOpts.OnProgress = func(fileDone, _ uint64) {
				opts.OnProgress(base+fileDone, totalBytes)
			}
		}
		compressed, crc, size, err := Compress(s.Data, fileOpts)
		if err != nil {
			return fmt.Errorf("zipflate: compressing %q: %w", s.Name, err)
		}
		doneBytes += uint64(len(s.Data))
		if opts.Method == MethodStore {
			// A ZIP stored entry holds the file bytes themselves, not a
			// DEFLATE stream of stored blocks.
			compressed = s.Data
		}
		entries[i] = ziparchive.Entry{
			Name:             s.Name,
			ModTime:          s.ModTime,
			Method:           opts.Method,
			CRC32:            crc,
			CompressedSize:   uint32(len(compressed)),
			UncompressedSize: size,
			ExternalAttrs:    externalAttrs,
			Data:             compressed,
		}
	}

	if err := ziparchive.WriteArchive(w, entries); err != nil {
		return fmt.Errorf("zipflate: writing archive: %w", err)
	}
	return nil
}

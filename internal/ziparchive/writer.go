// Package ziparchive writes a standards-compliant ZIP archive: local file
// headers, central directory file headers, and the end-of-central-directory
// record, little-endian throughout.
//
// Grounded on the teacher's internal/container/riff.go fixed-record,
// binary.Write-based chunk writer (RIFF chunk header: 4-byte FourCC + 4-byte
// little-endian size, here generalized to ZIP's richer fixed-layout
// records) and mux/mux.go's sequential chunk-assembly style; RIFF's
// even-byte chunk padding has no ZIP equivalent and is dropped (every ZIP
// record is already a whole number of bytes).
package ziparchive

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Method is the ZIP compression method code stored in both the local file
// header and the central directory file header.
type Method uint16

const (
	MethodStore   Method = 0
	MethodDeflate Method = 8
)

const (
	localFileHeaderSignature  = 0x04034b50
	centralDirSignature       = 0x02014b50
	endOfCentralDirSignature  = 0x06054b50
	versionNeededToExtract    = 20 // 2.0: deflate + long filenames
	versionMadeByUnix         = 0x0314
)

// Entry describes one file to be written into the archive. Data must
// already be compressed (or stored verbatim) according to Method; CRC32,
// CompressedSize, and UncompressedSize must describe the *uncompressed*
// source and the bytes in Data respectively.
type Entry struct {
	Name             string
	ModTime          time.Time
	Method           Method
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	// ExternalAttrs packs the Unix mode bits into the upper 16 bits, per
	// the Info-ZIP Unix extension convention (ported from the original
	// implementation's file_entry.hpp; see DESIGN.md).
	ExternalAttrs uint32
	Data          []byte
}

// WriteArchive writes entries to w as a single ZIP archive: one local file
// header + data per entry, in order, followed by the central directory and
// the end-of-central-directory record.
func WriteArchive(w io.Writer, entries []Entry) error {
	cw := &countingWriter{w: w}

	offsets := make([]uint32, len(entries))
	for i, e := range entries {
		offsets[i] = uint32(cw.n)
		if err := writeLocalFileHeader(cw, e); err != nil {
			return fmt.Errorf("ziparchive: writing local header for %q: %w", e.Name, err)
		}
		if _, err := cw.Write(e.Data); err != nil {
			return fmt.Errorf("ziparchive: writing data for %q: %w", e.Name, err)
		}
	}

	centralDirStart := uint32(cw.n)
	for i, e := range entries {
		if err := writeCentralDirHeader(cw, e, offsets[i]); err != nil {
			return fmt.Errorf("ziparchive: writing central directory entry for %q: %w", e.Name, err)
		}
	}
	centralDirSize := uint32(cw.n) - centralDirStart

	if err := writeEndOfCentralDir(cw, len(entries), centralDirSize, centralDirStart); err != nil {
		return fmt.Errorf("ziparchive: writing end of central directory: %w", err)
	}
	return nil
}

func writeLocalFileHeader(w io.Writer, e Entry) error {
	modTime, modDate := dosDateTime(e.ModTime)
	nameBytes := []byte(e.Name)

	fields := []any{
		uint32(localFileHeaderSignature),
		uint16(versionNeededToExtract),
		uint16(0), // general purpose bit flag
		uint16(e.Method),
		modTime,
		modDate,
		e.CRC32,
		e.CompressedSize,
		e.UncompressedSize,
		uint16(len(nameBytes)),
		uint16(0), // extra field length
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.Write(nameBytes)
	return err
}

func writeCentralDirHeader(w io.Writer, e Entry, localHeaderOffset uint32) error {
	modTime, modDate := dosDateTime(e.ModTime)
	nameBytes := []byte(e.Name)

	fields := []any{
		uint32(centralDirSignature),
		uint16(versionMadeByUnix),
		uint16(versionNeededToExtract),
		uint16(0), // general purpose bit flag
		uint16(e.Method),
		modTime,
		modDate,
		e.CRC32,
		e.CompressedSize,
		e.UncompressedSize,
		uint16(len(nameBytes)),
		uint16(0), // extra field length
		uint16(0), // file comment length
		uint16(0), // disk number start
		uint16(0), // internal file attributes
		e.ExternalAttrs,
		localHeaderOffset,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.Write(nameBytes)
	return err
}

func writeEndOfCentralDir(w io.Writer, entryCount int, centralDirSize, centralDirStart uint32) error {
	fields := []any{
		uint32(endOfCentralDirSignature),
		uint16(0), // number of this disk
		uint16(0), // disk where central directory starts
		uint16(entryCount),
		uint16(entryCount),
		centralDirSize,
		centralDirStart,
		uint16(0), // comment length
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// dosDateTime packs t into the MS-DOS date/time fields ZIP uses: time bits
// 15-11 hours, 10-5 minutes, 4-0 seconds/2; date bits 15-9 year-1980,
// 8-5 month, 4-0 day. Times before 1980 (DOS epoch) clamp to the epoch.
func dosDateTime(t time.Time) (dosTime, dosDate uint16) {
	if t.IsZero() || t.Year() < 1980 {
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	year := t.Year()
	dosTime = uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
	dosDate = uint16((year-1980)<<9 | int(t.Month())<<5 | t.Day())
	return dosTime, dosDate
}

// countingWriter wraps an io.Writer and tracks how many bytes have been
// written, so WriteArchive can record local-header offsets without a
// separate io.Seeker requirement (the archive is built forward-only).
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

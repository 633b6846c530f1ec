// Package zipflate implements a multi-threaded DEFLATE (RFC 1951) engine
// and a ZIP container writer built on top of it.
//
// The core compression pipeline — internal/bitflow's bit-level output
// buffer, internal/huffman's length-limited canonical Huffman builder,
// internal/lz77's sliding-window match finder, and internal/deflate's
// per-block stored/fixed/dynamic encoder — is orchestrated in parallel by
// internal/zipdeflate.Driver, one block per 1 MiB of input. internal/ziparchive
// lays the compressed entries out as a standards-compliant ZIP archive.
//
// This package is the facade: Compress runs the core pipeline over a
// single byte slice, and BuildArchive ties source files, compression, and
// archive assembly together for cmd/zipflate.
package zipflate

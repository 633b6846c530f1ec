package zipflate

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"io"
	"math/rand"
	"os"
	"testing"
	"time"
)

func TestCompress_RoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("root package facade round trip "), 300)
	out, crc, size, err := Compress(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if size != uint32(len(src)) {
		t.Fatalf("size = %d, want %d", size, len(src))
	}
	if crc == 0 {
		t.Fatalf("expected nonzero crc")
	}
	r := flate.NewReader(bytes.NewReader(out))
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestCompress_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Level = 99
	if _, _, _, err := Compress([]byte("x"), opts); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestBuildArchive_MultipleFiles(t *testing.T) {
	sources := []FileSource{
		{Name: "a.txt", Data: []byte("aaaa aaaa aaaa"), ModTime: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC), Mode: 0644},
		{Name: "dir/b.bin", Data: bytes.Repeat([]byte{0xCA, 0xFE}, 100), ModTime: time.Date(2023, 6, 2, 8, 0, 0, 0, time.UTC), Mode: 0755},
		{Name: "empty.txt", Data: nil, ModTime: time.Now(), Mode: 0644},
	}
	var buf bytes.Buffer
	if err := BuildArchive(&buf, sources, DefaultOptions()); err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(r.File) != len(sources) {
		t.Fatalf("got %d entries, want %d", len(r.File), len(sources))
	}
	for i, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open %q: %v", f.Name, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("ReadAll %q: %v", f.Name, err)
		}
		if !bytes.Equal(got, sources[i].Data) {
			t.Fatalf("entry %q content mismatch: got %d bytes, want %d", f.Name, len(got), len(sources[i].Data))
		}
	}
}

func TestBuildArchive_StoreMethod(t *testing.T) {
	sources := []FileSource{
		{Name: "raw.bin", Data: []byte("no compression here"), Mode: 0644},
	}
	opts := DefaultOptions()
	opts.Method = MethodStore
	var buf bytes.Buffer
	if err := BuildArchive(&buf, sources, opts); err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if r.File[0].Method != uint16(MethodStore) {
		t.Fatalf("Method = %d, want store", r.File[0].Method)
	}
}

func TestBuildArchive_ExternalAttrsCarryMode(t *testing.T) {
	sources := []FileSource{
		{Name: "run.sh", Data: []byte("#!/bin/sh\necho hi\n"), Mode: 0755},
	}
	var buf bytes.Buffer
	if err := BuildArchive(&buf, sources, DefaultOptions()); err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	mode := r.File[0].Mode()
	if mode.Perm() != os.FileMode(0755) {
		t.Fatalf("mode = %v, want 0755", mode.Perm())
	}
}

func TestCompress_RandomSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	for trial := 0; trial < 10; trial++ {
		n := rng.Intn(200000)
		src := make([]byte, n)
		rng.Read(src)
		out, _, _, err := Compress(src, DefaultOptions())
		if err != nil {
			t.Fatalf("trial %d: Compress: %v", trial, err)
		}
		r := flate.NewReader(bytes.NewReader(out))
		got, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("trial %d: decode: %v", trial, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("trial %d: round trip mismatch (n=%d)", trial, n)
		}
	}
}

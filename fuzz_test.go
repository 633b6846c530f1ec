package zipflate

import (
	"bytes"
	"compress/flate"
	"io"
	"testing"
)

// FuzzCompress ensures Compress never panics on arbitrary input and, when
// it succeeds, that its output decodes back to the original bytes via a
// standards-compliant DEFLATE reader. Grounded on the teacher's
// FuzzEncodeLossless/FuzzEncodeLossy never-panic fuzz targets in
// fuzz_test.go.
func FuzzCompress(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("a"))
	f.Add(bytes.Repeat([]byte("ab"), 1000))
	f.Add(bytes.Repeat([]byte{0xFF}, 5000))

	f.Fuzz(func(t *testing.T, data []byte) {
		out, _, size, err := Compress(data, DefaultOptions())
		if err != nil {
			return
		}
		if size != uint32(len(data)) {
			t.Fatalf("uncompressedSize = %d, want %d", size, len(data))
		}
		r := flate.NewReader(bytes.NewReader(out))
		defer r.Close()
		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
		}
	})
}

// FuzzBuildArchive ensures BuildArchive never panics given arbitrary file
// content and an arbitrary entry name, and that it writes non-empty output
// whenever it succeeds.
func FuzzBuildArchive(f *testing.F) {
	f.Add([]byte(""), "a.txt")
	f.Add(bytes.Repeat([]byte("x"), 2000), "data.bin")

	f.Fuzz(func(t *testing.T, data []byte, name string) {
		if name == "" {
			name = "fuzz-entry"
		}
		var buf bytes.Buffer
		err := BuildArchive(&buf, []FileSource{{Name: name, Data: data}}, DefaultOptions())
		if err != nil {
			return
		}
		if buf.Len() == 0 {
			t.Fatalf("BuildArchive produced no output on success")
		}
	})
}

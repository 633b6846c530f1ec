package zipdeflate

import (
	"bytes"
	"compress/flate"
	"io"
	"math/rand"
	"testing"

	"github.com/deepteams/zipflate/internal/lz77"
)

func TestWorkerBlockRange_ContiguousAndCovers(t *testing.T) {
	for _, tc := range []struct{ blockCount, workers int }{
		{5, 2}, {3, 3}, {1, 4}, {7, 1}, {10, 3},
	} {
		seen := make([]bool, tc.blockCount)
		prevEnd := 0
		for w := 0; w < tc.workers; w++ {
			start, end := workerBlockRange(w, tc.blockCount, tc.workers)
			if start != prevEnd {
				t.Fatalf("blockCount=%d workers=%d: worker %d range [%d,%d) not contiguous with previous end %d",
					tc.blockCount, tc.workers, w, start, end, prevEnd)
			}
			for i := start; i < end; i++ {
				if seen[i] {
					t.Fatalf("blockCount=%d workers=%d: block %d assigned twice", tc.blockCount, tc.workers, i)
				}
				seen[i] = true
			}
			prevEnd = end
		}
		if prevEnd != tc.blockCount {
			t.Fatalf("blockCount=%d workers=%d: ranges cover up to %d, want %d", tc.blockCount, tc.workers, prevEnd, tc.blockCount)
		}
	}
}

func decodeDeflate(t *testing.T, data, want []byte) {
	t.Helper()
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(want))
	}
}

func TestCompress_SmallInput_SingleBlock(t *testing.T) {
	src := []byte("hello, parallel deflate world")
	out, crc, size, err := Compress(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if size != uint32(len(src)) {
		t.Fatalf("uncompressedSize = %d, want %d", size, len(src))
	}
	if crc == 0 {
		t.Fatalf("expected nonzero crc32 for nonempty input")
	}
	decodeDeflate(t, out, src)
}

func TestCompress_EmptyInput(t *testing.T) {
	out, _, size, err := Compress(nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if size != 0 {
		t.Fatalf("uncompressedSize = %d, want 0", size)
	}
	decodeDeflate(t, out, nil)
}

func TestCompress_MultiBlock_ParallelJoin(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	src := make([]byte, blockSize*3+12345)
	rng.Read(src)
	opts := DefaultOptions()
	opts.Workers = 4
	out, _, _, err := Compress(src, opts)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decodeDeflate(t, out, src)
}

func TestCompress_StoreMethod_NoCompression(t *testing.T) {
	src := bytes.Repeat([]byte("aaaaaaaaaa"), 5000)
	opts := DefaultOptions()
	opts.Method = MethodStore
	out, _, _, err := Compress(src, opts)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decodeDeflate(t, out, src)
}

func TestCompress_ForceFixed(t *testing.T) {
	src := bytes.Repeat([]byte("the quick brown fox jumps"), 200)
	opts := DefaultOptions()
	opts.ForceFixed = true
	out, _, _, err := Compress(src, opts)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decodeDeflate(t, out, src)
}

func TestCompress_UseXXHash(t *testing.T) {
	src := bytes.Repeat([]byte("xxhash accelerant path"), 300)
	opts := DefaultOptions()
	opts.UseXXHash = true
	out, _, _, err := Compress(src, opts)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decodeDeflate(t, out, src)
}

func TestCompress_ProgressCallback_ReachesTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := make([]byte, blockSize*2+500)
	rng.Read(src)
	var lastDone uint64
	opts := DefaultOptions()
	opts.Workers = 3
	opts.OnProgress = func(done, total uint64) {
		if done > lastDone {
			lastDone = done
		}
		if total != uint64(len(src)) {
			t.Errorf("total = %d, want %d", total, len(src))
		}
	}
	out, _, _, err := Compress(src, opts)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if lastDone != uint64(len(src)) {
		t.Fatalf("progress never reached total: lastDone=%d, want %d", lastDone, len(src))
	}
	decodeDeflate(t, out, src)
}

func TestCompress_AllLevels(t *testing.T) {
	src := bytes.Repeat([]byte("compression level sweep "), 400)
	for _, level := range []lz77.Level{lz77.Level0, lz77.Level1, lz77.Level2, lz77.Level3} {
		opts := DefaultOptions()
		opts.Level = level
		out, _, _, err := Compress(src, opts)
		if err != nil {
			t.Fatalf("level %v: Compress: %v", level, err)
		}
		decodeDeflate(t, out, src)
	}
}

// Package lz77 implements the sliding-window LZ77 match finder used by the
// DEFLATE block encoder: a 3-byte-prefix hash chain with configurable
// chain-length and good/nice/perfect thresholds, greedy (non-lazy)
// parsing.
//
// Reference: the two-pass (build-chains, then search-best-match) shape of
// HashChain.Fill in the teacher's internal/lossless/hashchain.go, ported
// from a 2-pixel ARGB hash over a whole image to a 3-byte hash over a
// single ≤1MiB block, with the teacher's per-position greedy walk
// generalized from VP8L's pixel matching to RFC 1951's (length, distance)
// item stream.
package lz77

import "github.com/cespare/xxhash/v2"

// Item is one entry of an LZ77 item stream: either a single literal byte
// or a (length, distance) back-reference. This is the tuple
// representation spec.md's design notes recommend (§9) so the
// Length/Distance pair invariant is enforced by the type rather than by
// convention.
type Item struct {
	IsMatch  bool
	Literal  byte
	Length   uint16 // valid when IsMatch; 3..258
	Distance uint16 // valid when IsMatch; 1..32768
}

// Finder holds the reusable per-worker match-finding arena: the hash
// table and the chain-link array. Both are reset (not reallocated, where
// possible) between blocks, mirroring the teacher's scratch-buffer reuse
// across successive Encoder.Fill calls.
type Finder struct {
	hashHead []int32 // hashSize entries; -1 means empty
	chainPrev []int32 // one entry per block byte; -1 means no earlier match

	// UseXXHash swaps the default 3-byte bucket hash (hash3, a
	// shift-and-xor hash) for github.com/cespare/xxhash/v2 over the same
	// window. Either hash only selects a chain; there is no rolling
	// polynomial hash, and candidates are confirmed by byte comparison in
	// matchLength. Off by default; set this for the CLI's --xxhash
	// benchmarking escape hatch.
	UseXXHash bool
}

// NewFinder creates an empty Finder. Call Find to process each block; the
// finder's internal arena grows to fit the largest block seen and is
// reused (not reallocated) for smaller ones.
func NewFinder() *Finder {
	f := &Finder{
		hashHead: make([]int32, hashSize),
	}
	for i := range f.hashHead {
		f.hashHead[i] = -1
	}
	return f
}

// reset prepares the finder's arena for a block of n bytes: the hash
// table is cleared and the chain-link arena is grown (but not shrunk) to
// size n.
func (f *Finder) reset(n int) {
	for i := range f.hashHead {
		f.hashHead[i] = -1
	}
	if cap(f.chainPrev) < n {
		f.chainPrev = make([]int32, n)
	} else {
		f.chainPrev = f.chainPrev[:n]
	}
}

func (f *Finder) insert(h uint32, pos int) {
	f.chainPrev[pos] = f.hashHead[h]
	f.hashHead[h] = int32(pos)
}

// hashAt computes the hash of the 3-byte window starting at i, using a
// zero sentinel for bytes past the end of the block (per spec §4.3 step
// 1). When f.UseXXHash is set and a full 3-byte window is available, it
// hashes via xxhash instead of the default polynomial hash3.
func (f *Finder) hashAt(block []byte, i, n int) uint32 {
	if f.UseXXHash && i+2 < n {
		return uint32(xxhash.Sum64(block[i:i+3])) & hashMask
	}
	var b1, b2 byte
	if i+1 < n {
		b1 = block[i+1]
	}
	if i+2 < n {
		b2 = block[i+2]
	}
	return hash3(block[i], b1, b2)
}

// matchLength returns how many bytes starting at p and i agree, bounded
// by maxLimit. If the byte at the current best length already disagrees,
// it returns 0 immediately without scanning — the fast-reject used by
// the teacher's findMatchLength in hashchain.go.
func matchLength(block []byte, p, i, bestLen, maxLimit int) int {
	if bestLen < maxLimit && block[p+bestLen] != block[i+bestLen] {
		return 0
	}
	n := 0
	for n < maxLimit && block[p+n] == block[i+n] {
		n++
	}
	return n
}

// search walks the hash chain for the 3-byte prefix at position i,
// newest position first, applying the good/nice/perfect budget rules,
// and returns the best (length, distance) found. bestLen is 0 if no
// candidate position is eligible.
func search(block []byte, i, windowLeft, maxLimit int, headPos int32, chainPrev []int32, cfg config) (bestLen, bestDist int) {
	remaining := cfg.MaxChain
	p := headPos
	for int(p) >= windowLeft && remaining > 0 {
		length := matchLength(block, int(p), i, bestLen, maxLimit)
		if length > bestLen {
			bestLen = length
			bestDist = i - int(p)
			if bestLen >= cfg.Perfect {
				break
			}
			if bestLen >= cfg.Nice {
				remaining = cfg.MaxChain / 16
			} else if bestLen >= cfg.Good {
				remaining = cfg.MaxChain / 4
			}
		}
		remaining--
		p = chainPrev[p]
	}
	return bestLen, bestDist
}

// Find consumes a ≤1MiB block and returns an LZ77 item stream covering
// every byte exactly once. Parsing is greedy: once a match is chosen at
// position i, the parser jumps to i+length without scoring the skipped
// positions (no lazy matching).
func (f *Finder) Find(block []byte, level Level) []Item {
	n := len(block)
	items := make([]Item, 0, n/2+1)

	// Short-input rule (§4.3): below the minimum useful match length
	// plus slack, emit literals and stop.
	if n <= 10 {
		for _, b := range block {
			items = append(items, Item{Literal: b})
		}
		return items
	}

	cfg := levelConfigs[level]
	f.reset(n)

	windowLeft := 0
	for i := 0; i < n; {
		if i >= windowSize {
			windowLeft = i - windowSize
		}

		// The last two positions can never start a 3-byte match; emit
		// literals without consulting the hash table.
		if i+minMatch > n {
			items = append(items, Item{Literal: block[i]})
			i++
			continue
		}

		h := f.hashAt(block, i, n)
		headPos := f.hashHead[h]
		if int(headPos) < windowLeft {
			items = append(items, Item{Literal: block[i]})
			f.insert(h, i)
			i++
			continue
		}

		maxLimit := n - i
		if maxLimit > maxMatch {
			maxLimit = maxMatch
		}
		bestLen, bestDist := search(block, i, windowLeft, maxLimit, headPos, f.chainPrev, cfg)

		if bestLen < minMatch {
			items = append(items, Item{Literal: block[i]})
			f.insert(h, i)
			i++
			continue
		}

		items = append(items, Item{IsMatch: true, Length: uint16(bestLen), Distance: uint16(bestDist)})
		f.insert(h, i)
		i += bestLen
	}
	return items
}

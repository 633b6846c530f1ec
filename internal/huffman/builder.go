// Package huffman builds length-limited canonical Huffman codes using the
// package-merge algorithm, and writes symbols through an
// github.com/deepteams/zipflate/internal/bitflow.Sink.
//
// The teacher package (internal/lossless in deepteams/webp) length-limits
// its trees by building an ordinary Huffman tree with a min-heap and
// retrying with artificially inflated minimum counts until the depth fits
// (buildTreeAndExtractLengths's countMin-doubling loop in
// encode_huffman.go). That heuristic is a fine approximation for VP8L's
// generous length limits, but RFC 1951's tight 15-bit (literal/length,
// distance) and 7-bit (code-length alphabet) ceilings call for the
// provably optimal length-limited construction the spec names explicitly:
// package-merge. This file implements that algorithm instead, while
// keeping the teacher's canonical-code assignment shape
// (generateCanonicalCodes: sort by (length, symbol), assign ascending
// integers, left-shift at each length increase) verbatim in spirit.
package huffman

import (
	"errors"
	"sort"
)

// ErrEmptyFrequencies is returned by Build when the frequency vector has
// zero length. Grounded on lossless.ErrEmptyCodeLengths.
var ErrEmptyFrequencies = errors.New("huffman: frequency vector is empty")

// Code is the canonical code length and codeword for one symbol. Codes are
// stored in natural (non-bit-reversed) integer form; bitflow.Sink performs
// the MSB-first bit reversal at write time.
type Code struct {
	Length uint8
	Code   uint16
}

// Builder constructs a length-limited canonical Huffman code from a
// symbol frequency table via package-merge.
type Builder struct {
	// Freq holds the frequency of each symbol, indexed by symbol value.
	// Freq must have at least one entry.
	Freq []uint32
	// MaxCodeLength bounds the longest code length produced (15 for the
	// literal/length and distance alphabets, 7 for the code-length
	// alphabet).
	MaxCodeLength int
}

// packItem is one entry in a package-merge level list: either a leaf
// referencing an original (padded) symbol, or a package referencing two
// entries in the previous level's list.
type packItem struct {
	weight  uint64
	isLeaf  bool
	symbol  int // valid when isLeaf; index into the padded/sorted symbol set
	left    int // valid when !isLeaf: index into lists[level-1]
	right   int
}

// Build runs package-merge over b.Freq and returns the per-symbol code
// length (sized len(b.Freq); 0 for symbols with zero frequency, except the
// zero-frequency symbols added as padding when fewer than two symbols are
// used) and the per-symbol canonical code (meaningful only where
// length > 0). It returns an error if b.Freq is empty or if the resulting
// lengths violate the Kraft inequality.
func (b *Builder) Build() ([]uint8, []uint16, error) {
	if len(b.Freq) == 0 {
		return nil, nil, ErrEmptyFrequencies
	}
	limit := b.MaxCodeLength
	if limit <= 0 {
		limit = 15
	}

	numSymbols := len(b.Freq)
	lengths := make([]uint8, numSymbols)

	// Step 1: collect symbols with nonzero frequency; pad with the
	// lowest-indexed zero-frequency symbols until at least two are
	// present, since DEFLATE requires every Huffman tree it emits
	// (including an otherwise-empty distance tree) to carry at least
	// two codes.
	type symFreq struct {
		symbol int
		freq   uint32
	}
	var active []symFreq
	for sym, f := range b.Freq {
		if f > 0 {
			active = append(active, symFreq{sym, f})
		}
	}
	if len(active) < 2 {
		for sym := 0; sym < numSymbols && len(active) < 2; sym++ {
			if b.Freq[sym] == 0 {
				alreadyActive := false
				for _, a := range active {
					if a.symbol == sym {
						alreadyActive = true
						break
					}
				}
				if !alreadyActive {
					active = append(active, symFreq{sym, 0})
				}
			}
		}
	}

	// Step 2: sort ascending by frequency, ties broken by symbol index
	// for determinism.
	sort.Slice(active, func(i, j int) bool {
		if active[i].freq != active[j].freq {
			return active[i].freq < active[j].freq
		}
		return active[i].symbol < active[j].symbol
	})

	if len(active) == 1 {
		// Degenerate single-symbol alphabet: no zero-frequency symbol
		// exists to pad with. Assign a 1-bit code directly.
		lengths[active[0].symbol] = 1
		codes := Canonicalize(lengths)
		return lengths, codes, nil
	}

	if len(active) == 2 {
		// Trivial: both symbols get a 1-bit code; package-merge over a
		// 2-element set degenerates to this directly.
		lengths[active[0].symbol] = 1
		lengths[active[1].symbol] = 1
		codes := Canonicalize(lengths)
		return lengths, codes, nil
	}

	S := len(active)

	// Step 3: build L levels of lists. list[1] holds the sorted leaves
	// directly; list[l] (l>1) merges packages formed from adjacent
	// pairs of list[l-1] with a fresh copy of the sorted leaves.
	lists := make([][]packItem, limit+1)
	leaves := make([]packItem, S)
	for i, a := range active {
		leaves[i] = packItem{weight: uint64(a.freq), isLeaf: true, symbol: i}
	}
	lists[1] = append([]packItem(nil), leaves...)

	for level := 2; level <= limit; level++ {
		prev := lists[level-1]
		numPackages := len(prev) / 2
		packages := make([]packItem, numPackages)
		for i := 0; i < numPackages; i++ {
			l, r := 2*i, 2*i+1
			packages[i] = packItem{
				weight: prev[l].weight + prev[r].weight,
				left:   l,
				right:  r,
			}
		}
		lists[level] = mergeByWeight(packages, leaves)
	}

	// Step 4: select the first 2*(S-1) entries of the final list and
	// recursively expand: a leaf increments its symbol's code length by
	// one; a package recurses into its two references in the previous
	// level's list.
	final := lists[limit]
	selectCount := 2 * (S - 1)
	if selectCount > len(final) {
		selectCount = len(final)
	}
	activeLengths := make([]uint8, S)
	for i := 0; i < selectCount; i++ {
		expand(lists, limit, i, activeLengths)
	}

	var kraft uint64
	for i, a := range active {
		lengths[a.symbol] = activeLengths[i]
		if activeLengths[i] > 0 {
			kraft += 1 << uint(limit-int(activeLengths[i]))
		}
	}
	if kraft > 1<<uint(limit) {
		return nil, nil, errors.New("huffman: code lengths violate the Kraft inequality")
	}

	codes := Canonicalize(lengths)
	return lengths, codes, nil
}

// expand recursively walks a selected package-merge list entry, crediting
// one unit of code length to every leaf symbol reachable from it.
func expand(lists [][]packItem, level, idx int, lengths []uint8) {
	item := lists[level][idx]
	if item.isLeaf {
		lengths[item.symbol]++
		return
	}
	expand(lists, level-1, item.left, lengths)
	expand(lists, level-1, item.right, lengths)
}

// mergeByWeight merges two weight-ascending slices into one ascending
// slice, preserving each input's internal order on ties (stable merge).
func mergeByWeight(packages, leaves []packItem) []packItem {
	out := make([]packItem, 0, len(packages)+len(leaves))
	i, j := 0, 0
	for i < len(packages) && j < len(leaves) {
		if packages[i].weight <= leaves[j].weight {
			out = append(out, packages[i])
			i++
		} else {
			out = append(out, leaves[j])
			j++
		}
	}
	out = append(out, packages[i:]...)
	out = append(out, leaves[j:]...)
	return out
}

// Canonicalize assigns canonical codes from code lengths: sort symbols by
// (length ascending, symbol index ascending), assign codes starting at 0
// and incrementing, left-shifting by one at each length increase.
// Grounded on generateCanonicalCodes in the teacher's encode_huffman.go,
// minus its bit-reversal step (bitflow.Sink reverses at write time).
func Canonicalize(lengths []uint8) []uint16 {
	codes := make([]uint16, len(lengths))

	type symLen struct {
		symbol int
		length uint8
	}
	var symbols []symLen
	for sym, l := range lengths {
		if l > 0 {
			symbols = append(symbols, symLen{sym, l})
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].length != symbols[j].length {
			return symbols[i].length < symbols[j].length
		}
		return symbols[i].symbol < symbols[j].symbol
	})

	code := uint32(0)
	prevLen := uint8(0)
	for _, s := range symbols {
		if s.length > prevLen {
			code <<= (s.length - prevLen)
			prevLen = s.length
		}
		codes[s.symbol] = uint16(code)
		code++
	}
	return codes
}

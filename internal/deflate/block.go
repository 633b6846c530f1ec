package deflate

import (
	"github.com/deepteams/zipflate/internal/bitflow"
	"github.com/deepteams/zipflate/internal/huffman"
	"github.com/deepteams/zipflate/internal/lz77"
)

// ModeAuto tells EncodeBlock to try all three block types and keep
// whichever produces the fewest bits, mirroring the teacher's
// EncodeImageInternal candidate comparison in encode.go.
const ModeAuto Mode = -1

// maxStoredBlockLen is the largest payload a single stored block can carry;
// RFC 1951's LEN field is 16 bits.
const maxStoredBlockLen = 65535

// EncodeBlock encodes one DEFLATE block covering src, whose LZ77
// representation is items. forceMode selects ModeStored, ModeFixed, or
// ModeDynamic directly, or ModeAuto to pick the smallest of the three.
// isLast sets the block's BFINAL header bit (or, for a stored block split
// across multiple LEN-bounded chunks, the final chunk's BFINAL bit only).
func EncodeBlock(src []byte, items []lz77.Item, forceMode Mode, isLast bool) *bitflow.Sink {
	if forceMode == ModeStored {
		return encodeStoredBlock(src, isLast)
	}

	litLenFreq, distFreq := collectFrequencies(items)
	allZeroDist := true
	for _, f := range distFreq {
		if f != 0 {
			allZeroDist = false
			break
		}
	}
	if allZeroDist {
		distFreq[0] = 1
	}

	fixedSink := encodeHuffmanBlock(items, ModeFixed, fixedLitLenLengths[:], fixedLitLenCodes[:], fixedDistLengths[:], fixedDistCodes[:], isLast)
	if forceMode == ModeFixed {
		return fixedSink
	}

	dynSink := encodeDynamicBlock(items, litLenFreq, distFreq, isLast)
	if forceMode == ModeDynamic {
		return dynSink
	}

	best := encodeStoredBlock(src, isLast)
	if fixedSink.SizeInBits() < best.SizeInBits() {
		best = fixedSink
	}
	if dynSink.SizeInBits() < best.SizeInBits() {
		best = dynSink
	}
	return best
}

func encodeStoredBlock(src []byte, isLast bool) *bitflow.Sink {
	sink := bitflow.New(0)
	if len(src) == 0 {
		writeStoredChunk(sink, nil, isLast)
		return sink
	}
	for off := 0; off < len(src); off += maxStoredBlockLen {
		end := off + maxStoredBlockLen
		if end > len(src) {
			end = len(src)
		}
		final := isLast && end == len(src)
		writeStoredChunk(sink, src[off:end], final)
	}
	return sink
}

func writeStoredChunk(sink *bitflow.Sink, chunk []byte, final bool) {
	if final {
		sink.WriteBit(1)
	} else {
		sink.WriteBit(0)
	}
	sink.WriteBits(uint64(ModeStored), 2, bitflow.LSBFirst)
	sink.AlignToByte(0)
	length := uint16(len(chunk))
	sink.WriteBits(uint64(length), 16, bitflow.LSBFirst)
	sink.WriteBits(uint64(^length), 16, bitflow.LSBFirst)
	for _, b := range chunk {
		sink.WriteBits(uint64(b), 8, bitflow.LSBFirst)
	}
}

func collectFrequencies(items []lz77.Item) (litLen []uint32, dist []uint32) {
	litLen = make([]uint32, numLitLenSymbols)
	dist = make([]uint32, numDistSymbols)
	for _, it := range items {
		if it.IsMatch {
			sym, _, _ := lengthToSymbol(int(it.Length))
			litLen[sym]++
			dsym, _, _ := distanceToSymbol(int(it.Distance))
			dist[dsym]++
		} else {
			litLen[it.Literal]++
		}
	}
	litLen[endOfBlockSymbol]++
	return litLen, dist
}

func encodeHuffmanBlock(items []lz77.Item, mode Mode, litLenLengths []uint8, litLenCodes []uint16, distLengths []uint8, distCodes []uint16, isLast bool) *bitflow.Sink {
	sink := bitflow.New(0)
	if isLast {
		sink.WriteBit(1)
	} else {
		sink.WriteBit(0)
	}
	sink.WriteBits(uint64(mode), 2, bitflow.LSBFirst)
	writeSymbols(sink, items, litLenLengths, litLenCodes, distLengths, distCodes)
	return sink
}

func writeSymbols(sink *bitflow.Sink, items []lz77.Item, litLenLengths []uint8, litLenCodes []uint16, distLengths []uint8, distCodes []uint16) {
	for _, it := range items {
		if it.IsMatch {
			sym, extra, extraBits := lengthToSymbol(int(it.Length))
			huffman.WriteSymbol(sink, sym, litLenLengths, litLenCodes)
			if extraBits > 0 {
				sink.WriteBits(uint64(extra), int(extraBits), bitflow.LSBFirst)
			}
			dsym, dextra, dextraBits := distanceToSymbol(int(it.Distance))
			huffman.WriteSymbol(sink, dsym, distLengths, distCodes)
			if dextraBits > 0 {
				sink.WriteBits(uint64(dextra), int(dextraBits), bitflow.LSBFirst)
			}
		} else {
			huffman.WriteSymbol(sink, int(it.Literal), litLenLengths, litLenCodes)
		}
	}
	huffman.WriteSymbol(sink, endOfBlockSymbol, litLenLengths, litLenCodes)
}

// clToken is one emitted code-length-alphabet symbol: a literal length
// value (0..15), or a repeat code (16, 17, 18) with its extra-bit payload.
type clToken struct {
	symbol    int
	extra     uint16
	extraBits uint8
}

// rleEncodeLengths run-length-encodes a code-length sequence using the
// three repeat symbols of RFC 1951 §3.2.7: 16 (repeat previous, 3-6
// times), 17 (repeat zero, 3-10 times), 18 (repeat zero, 11-138 times).
func rleEncodeLengths(lengths []uint8) []clToken {
	var tokens []clToken
	n := len(lengths)
	i := 0
	for i < n {
		val := lengths[i]
		j := i + 1
		for j < n && lengths[j] == val {
			j++
		}
		runLen := j - i

		if val == 0 {
			for runLen > 0 {
				if runLen >= 11 {
					c := runLen
					if c > 138 {
						c = 138
					}
					tokens = append(tokens, clToken{18, uint16(c - 11), 7})
					runLen -= c
				} else if runLen >= 3 {
					c := runLen
					if c > 10 {
						c = 10
					}
					tokens = append(tokens, clToken{17, uint16(c - 3), 3})
					runLen -= c
				} else {
					tokens = append(tokens, clToken{0, 0, 0})
					runLen--
				}
			}
		} else {
			tokens = append(tokens, clToken{int(val), 0, 0})
			runLen--
			for runLen > 0 {
				if runLen >= 3 {
					c := runLen
					if c > 6 {
						c = 6
					}
					tokens = append(tokens, clToken{16, uint16(c - 3), 2})
					runLen -= c
				} else {
					tokens = append(tokens, clToken{int(val), 0, 0})
					runLen--
				}
			}
		}
		i = j
	}
	return tokens
}

func clFrequencies(tokens []clToken) []uint32 {
	freq := make([]uint32, 19)
	for _, t := range tokens {
		freq[t.symbol]++
	}
	return freq
}

func lastNonzero(lengths []uint8) int {
	idx := -1
	for i, l := range lengths {
		if l != 0 {
			idx = i
		}
	}
	return idx
}

func encodeDynamicBlock(items []lz77.Item, litLenFreq, distFreq []uint32, isLast bool) *bitflow.Sink {
	litBuilder := &huffman.Builder{Freq: litLenFreq, MaxCodeLength: 15}
	litLengths, litCodes, err := litBuilder.Build()
	if err != nil {
		panic(err)
	}

	distBuilder := &huffman.Builder{Freq: distFreq, MaxCodeLength: 15}
	distLengths, distCodes, err := distBuilder.Build()
	if err != nil {
		panic(err)
	}

	hlit := lastNonzero(litLengths) + 1
	if hlit < 257 {
		hlit = 257
	}
	hdist := lastNonzero(distLengths) + 1
	if hdist < 1 {
		hdist = 1
	}

	combined := make([]uint8, hlit+hdist)
	copy(combined, litLengths[:hlit])
	copy(combined[hlit:], distLengths[:hdist])

	tokens := rleEncodeLengths(combined)
	clFreq := clFrequencies(tokens)
	clBuilder := &huffman.Builder{Freq: clFreq, MaxCodeLength: 7}
	clLengths, clCodes, err := clBuilder.Build()
	if err != nil {
		panic(err)
	}

	hclen := 4
	for i := 18; i >= 4; i-- {
		if clLengths[clAlphabetOrder[i]] != 0 {
			hclen = i + 1
			break
		}
	}

	sink := bitflow.New(0)
	if isLast {
		sink.WriteBit(1)
	} else {
		sink.WriteBit(0)
	}
	sink.WriteBits(uint64(ModeDynamic), 2, bitflow.LSBFirst)
	sink.WriteBits(uint64(hlit-257), 5, bitflow.LSBFirst)
	sink.WriteBits(uint64(hdist-1), 5, bitflow.LSBFirst)
	sink.WriteBits(uint64(hclen-4), 4, bitflow.LSBFirst)
	for i := 0; i < hclen; i++ {
		sink.WriteBits(uint64(clLengths[clAlphabetOrder[i]]), 3, bitflow.LSBFirst)
	}
	for _, tok := range tokens {
		huffman.WriteSymbol(sink, tok.symbol, clLengths, clCodes)
		if tok.extraBits > 0 {
			sink.WriteBits(uint64(tok.extra), int(tok.extraBits), bitflow.LSBFirst)
		}
	}

	writeSymbols(sink, items, litLengths, litCodes, distLengths, distCodes)
	return sink
}

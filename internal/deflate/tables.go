// Package deflate encodes a single DEFLATE block (stored, fixed-Huffman, or
// dynamic-Huffman) from an LZ77 item stream. Mode selection, symbol
// assembly, and bit emission are grounded on the three-way candidate
// comparison in the teacher's internal/lossless/encode.go
// (EncodeImageInternal trying multiple entropy codings and keeping the
// smallest), generalized from VP8L's single green/backward-reference
// alphabet to RFC 1951's literal/length, distance, and code-length
// alphabets.
package deflate

import "github.com/deepteams/zipflate/internal/huffman"

// Mode names the three RFC 1951 block types (BTYPE).
type Mode int

const (
	ModeStored Mode = iota
	ModeFixed
	ModeDynamic
)

// lengthEntry is one row of lengthTable, which maps a match length
// (3..258) to its RFC 1951 length symbol (257..285), base length, and
// extra-bit count. Index 0 of the table corresponds to symbol 257.
type lengthEntry struct {
	base  uint16
	extra uint8
}

var lengthTable = [29]lengthEntry{
	{3, 0}, {4, 0}, {5, 0}, {6, 0}, {7, 0}, {8, 0}, {9, 0}, {10, 0},
	{11, 1}, {13, 1}, {15, 1}, {17, 1},
	{19, 2}, {23, 2}, {27, 2}, {31, 2},
	{35, 3}, {43, 3}, {51, 3}, {59, 3},
	{67, 4}, {83, 4}, {99, 4}, {115, 4},
	{131, 5}, {163, 5}, {195, 5}, {227, 5},
	{258, 0},
}

// distEntry mirrors lengthEntry for the 30-symbol distance alphabet
// (symbols 0..29, distances 1..32768).
type distEntry struct {
	base  uint16
	extra uint8
}

var distTable = [30]distEntry{
	{1, 0}, {2, 0}, {3, 0}, {4, 0},
	{5, 1}, {7, 1},
	{9, 2}, {13, 2},
	{17, 3}, {25, 3},
	{33, 4}, {49, 4},
	{65, 5}, {97, 5},
	{129, 6}, {193, 6},
	{257, 7}, {385, 7},
	{513, 8}, {769, 8},
	{1025, 9}, {1537, 9},
	{2049, 10}, {3073, 10},
	{4097, 11}, {6145, 11},
	{8193, 12}, {12289, 12},
	{16385, 13}, {24577, 13},
}

// lengthToSymbol returns the length symbol (257..285), extra-bit value,
// and extra-bit count for a match length in [3, 258].
func lengthToSymbol(length int) (sym int, extra uint16, extraBits uint8) {
	for i := len(lengthTable) - 1; i >= 0; i-- {
		if length >= int(lengthTable[i].base) {
			return 257 + i, uint16(length) - lengthTable[i].base, lengthTable[i].extra
		}
	}
	return 257, 0, 0
}

// distanceToSymbol returns the distance symbol (0..29), extra-bit value,
// and extra-bit count for a distance in [1, 32768].
func distanceToSymbol(dist int) (sym int, extra uint16, extraBits uint8) {
	for i := len(distTable) - 1; i >= 0; i-- {
		if dist >= int(distTable[i].base) {
			return i, uint16(dist) - distTable[i].base, distTable[i].extra
		}
	}
	return 0, 0, 0
}

// clAlphabetOrder is the transmission order of code-length-alphabet code
// lengths in a dynamic block header, per RFC 1951 §3.2.7.
var clAlphabetOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

const (
	numLitLenSymbols = 286
	numDistSymbols   = 30
	endOfBlockSymbol = 256
)

// fixedLitLenLengths and fixedDistLengths hold the RFC 1951 §3.2.6 fixed
// Huffman code lengths for the literal/length and distance alphabets.
var (
	fixedLitLenLengths [numLitLenSymbols]uint8
	fixedLitLenCodes   [numLitLenSymbols]uint16
	fixedDistLengths   [numDistSymbols]uint8
	fixedDistCodes     [numDistSymbols]uint16
)

func init() {
	// Canonical assignment runs over all 288 fixed literal/length codes:
	// symbols 286 and 287 never occur in a block, but their two 8-bit codes
	// come before the 9-bit codes of literals 144..255.
	var allLitLenLengths [numLitLenSymbols + 2]uint8
	for sym := range allLitLenLengths {
		switch {
		case sym <= 143:
			allLitLenLengths[sym] = 8
		case sym <= 255:
			allLitLenLengths[sym] = 9
		case sym <= 279:
			allLitLenLengths[sym] = 7
		default:
			allLitLenLengths[sym] = 8
		}
	}
	copy(fixedLitLenLengths[:], allLitLenLengths[:])
	codes := huffman.Canonicalize(allLitLenLengths[:])
	copy(fixedLitLenCodes[:], codes)

	for sym := range fixedDistLengths {
		fixedDistLengths[sym] = 5
	}
	dcodes := huffman.Canonicalize(fixedDistLengths[:])
	copy(fixedDistCodes[:], dcodes)
}

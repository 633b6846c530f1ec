package huffman

import "github.com/deepteams/zipflate/internal/bitflow"

// WriteSymbol writes the canonical code for symbol sym to sink, using the
// lengths/codes produced by Builder.Build. Codes are transmitted
// most-significant-bit first, per RFC 1951.
func WriteSymbol(sink *bitflow.Sink, sym int, lengths []uint8, codes []uint16) {
	l := lengths[sym]
	sink.WriteBits(uint64(codes[sym]), int(l), bitflow.MSBFirst)
}

package huffman

import "golang.org/x/sys/cpu"

// CapabilityLine reports the host's AVX2 availability for the CLI's -v
// output. Purely informational: no SIMD code path exists anywhere in this
// module, so nothing here actually branches on it. This is the only
// honest home for golang.org/x/sys/cpu in a module that stays portable Go
// throughout (see DESIGN.md).
func CapabilityLine() string {
	if cpu.X86.HasAVX2 {
		return "cpu: AVX2 available (informational only; zipflate's Huffman/LZ77 paths are portable Go)"
	}
	return "cpu: AVX2 not detected (informational only; zipflate's Huffman/LZ77 paths are portable Go)"
}

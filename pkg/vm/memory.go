package vm

import "math"

// Memory is the fixed-size block a frame dereferences with "&".
// Slot 0 holds the block size minus one; arguments start at slot 1.
type Memory []float64

// NewMemory allocates a zeroed block. A size <= 0 yields no block.
func NewMemory(size int) Memory {
	if size <= 0 {
		return nil
	}
	return make(Memory, size)
}

// Load reads the slot at addr, truncated toward zero.
// NaN, negative and out-of-range addresses read as 0.
func (m Memory) Load(addr float64) float64 {
	if math.IsNaN(addr) || addr < 0 || addr >= float64(len(m)) {
		return 0
	}
	return m[int(addr)]
}

// Package bitutil provides compact bit containers used throughout the
// decoding pipeline.
package bitutil

import (
	"math/bits"
	"strings"
)

// BitArray is a fixed-size array of bits packed into uint32 words.
type BitArray struct {
	words []uint32
	size  int
}

// NewBitArray creates a BitArray holding size bits, all unset.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{
		words: make([]uint32, (size+31)/32),
		size:  size,
	}
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return ba.words[i/32]&(1<<uint(i&0x1f)) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.words[i/32] |= 1 << uint(i&0x1f)
}

// Flip inverts bit i.
func (ba *BitArray) Flip(i int) {
	ba.words[i/32] ^= 1 << uint(i&0x1f)
}

// SetBulk replaces the 32-bit word containing bit i. i must be a multiple
// of 32.
func (ba *BitArray) SetBulk(i int, word uint32) {
	ba.words[i/32] = word
}

// Clear unsets every bit.
func (ba *BitArray) Clear() {
	for i := range ba.words {
		ba.words[i] = 0
	}
}

// GetNextSet returns the index of the first set bit at or after from, or
// Size if there is none.
func (ba *BitArray) GetNextSet(from int) int {
	if from >= ba.size {
		return ba.size
	}
	w := from / 32
	cur := ba.words[w] & (^uint32(0) << uint(from&0x1f))
	for cur == 0 {
		w++
		if w == len(ba.words) {
			return ba.size
		}
		cur = ba.words[w]
	}
	result := w*32 + bits.TrailingZeros32(cur)
	if result > ba.size {
		return ba.size
	}
	return result
}

// GetNextUnset returns the index of the first unset bit at or after from,
// or Size if there is none.
func (ba *BitArray) GetNextUnset(from int) int {
	if from >= ba.size {
		return ba.size
	}
	w := from / 32
	cur := ^ba.words[w] & (^uint32(0) << uint(from&0x1f))
	for cur == 0 {
		w++
		if w == len(ba.words) {
			return ba.size
		}
		cur = ^ba.words[w]
	}
	result := w*32 + bits.TrailingZeros32(cur)
	if result > ba.size {
		return ba.size
	}
	return result
}

// Reverse reverses the bit order in place.
func (ba *BitArray) Reverse() {
	if ba.size == 0 {
		return
	}
	newWords := make([]uint32, len(ba.words))
	last := (ba.size - 1) / 32
	n := last + 1
	for i := 0; i < n; i++ {
		newWords[last-i] = bits.Reverse32(ba.words[i])
	}
	// shift out the padding introduced by reversing partial words
	if ba.size != n*32 {
		shift := uint(n*32 - ba.size)
		cur := newWords[0] >> shift
		for i := 1; i < n; i++ {
			next := newWords[i]
			cur |= next << (32 - shift)
			newWords[i-1] = cur
			cur = next >> shift
		}
		newWords[n-1] = cur
	}
	ba.words = newWords
}

// Words returns the backing uint32 slice.
func (ba *BitArray) Words() []uint32 {
	return ba.words
}

// String renders the bits as 'X' and '.' in groups of eight.
func (ba *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(ba.size + ba.size/8 + 1)
	for i := 0; i < ba.size; i++ {
		if i&0x07 == 0 {
			sb.WriteByte(' ')
		}
		if ba.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

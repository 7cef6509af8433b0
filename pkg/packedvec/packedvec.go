// Package packedvec implements a dense vector of fixed-width sub-byte items
// (1 to 7 bits each) packed LSB-first into a u64 word array, used by maps
// whose values are small bit-packed integers.
package packedvec

import "fmt"

const wordBits = 64

// BitsList is a packed vector of items, each exactly bitsPerItem wide.
type BitsList struct {
	words       []uint64
	size        int
	bitsPerItem int
	mask        uint64
	defaultFill uint64
}

// New returns an empty BitsList whose items are bitsPerItem bits wide
// (1 <= bitsPerItem <= 7), using defaultFill (masked to bitsPerItem bits) to
// backfill any gap created by Set1 past the logical end.
func New(bitsPerItem int, defaultFill uint64) *BitsList {
	if bitsPerItem < 1 || bitsPerItem > 7 {
		panic(fmt.Errorf("packedvec: bits per item must be in [1,7], got %d", bitsPerItem))
	}
	mask := uint64(1)<<uint(bitsPerItem) - 1
	return &BitsList{
		bitsPerItem: bitsPerItem,
		mask:        mask,
		defaultFill: defaultFill & mask,
	}
}

// BitsPerItem returns the fixed item width.
func (bl *BitsList) BitsPerItem() int { return bl.bitsPerItem }

// Size returns the logical number of items.
func (bl *BitsList) Size() int { return bl.size }

// Capacity returns the number of items the current backing array can hold
// without growing.
func (bl *BitsList) Capacity() int {
	return len(bl.words) * wordBits / bl.bitsPerItem
}

func (bl *BitsList) wordsFor(n int) int {
	if n <= 0 {
		return 0
	}
	totalBits := n * bl.bitsPerItem
	return (totalBits + wordBits - 1) / wordBits
}

func (bl *BitsList) ensureCapacity(n int) {
	need := bl.wordsFor(n)
	if need <= len(bl.words) {
		return
	}
	grown := make([]uint64, need)
	copy(grown, bl.words)
	bl.words = grown
}

func (bl *BitsList) getRaw(i int) uint64 {
	bitPos := i * bl.bitsPerItem
	word, off := bitPos/wordBits, uint(bitPos%wordBits)
	v := bl.words[word] >> off
	if off+uint(bl.bitsPerItem) > wordBits {
		// spans into the next word
		v |= bl.words[word+1] << (wordBits - off)
	}
	return v & bl.mask
}

func (bl *BitsList) setRaw(i int, v uint64) {
	v &= bl.mask
	bitPos := i * bl.bitsPerItem
	word, off := bitPos/wordBits, uint(bitPos%wordBits)
	clear := bl.mask << off
	bl.words[word] = (bl.words[word] &^ clear) | (v << off)
	if off+uint(bl.bitsPerItem) > wordBits {
		spill := wordBits - off
		bl.words[word+1] = (bl.words[word+1] &^ (bl.mask >> spill)) | (v >> spill)
	}
}

// Get returns the item at index i. Panics if i is out of [0, Size()).
func (bl *BitsList) Get(i int) uint64 {
	if i < 0 || i >= bl.size {
		panic(fmt.Errorf("packedvec: index %d out of range [0,%d)", i, bl.size))
	}
	return bl.getRaw(i)
}

// Set1 writes v at index i, growing the logical size to i+1 if needed.
// Any gap between the old size and i is backfilled with the default fill
// pattern.
func (bl *BitsList) Set1(i int, v uint64) {
	if i < 0 {
		panic(fmt.Errorf("packedvec: negative index %d", i))
	}
	bl.ensureCapacity(i + 1)
	for j := bl.size; j < i; j++ {
		bl.setRaw(j, bl.defaultFill)
	}
	bl.setRaw(i, v)
	if i+1 > bl.size {
		bl.size = i + 1
	}
}

// Add appends v to the end of the vector.
func (bl *BitsList) Add(v uint64) { bl.Set1(bl.size, v) }

// Remove deletes the item at index i, shifting the tail down by one.
func (bl *BitsList) Remove(i int) {
	if i < 0 || i >= bl.size {
		panic(fmt.Errorf("packedvec: remove index %d out of range [0,%d)", i, bl.size))
	}
	for j := i; j < bl.size-1; j++ {
		bl.setRaw(j, bl.getRaw(j+1))
	}
	bl.size--
}

// Clear empties the vector without releasing the backing array.
func (bl *BitsList) Clear() { bl.size = 0 }

// Contains reports whether v appears among items [0, Size()).
func (bl *BitsList) Contains(v uint64) bool {
	v &= bl.mask
	for i := 0; i < bl.size; i++ {
		if bl.getRaw(i) == v {
			return true
		}
	}
	return false
}

func (bl *BitsList) String() string {
	return fmt.Sprintf("BitsList{size:%d, bits:%d}", bl.size, bl.bitsPerItem)
}

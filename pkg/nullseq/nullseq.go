// Package nullseq implements a nullable-primitive sequence: a logical index
// maps to either "absent" or a present value of T. The sequence transparently
// switches between a compressed (rank-indexed) layout, good when few
// positions are present, and a flat (direct-indexed) layout, good when most
// are — the logical contents are identical either way.
package nullseq

import (
	"fmt"

	"github.com/grafana/primcol/pkg/bitvec"
)

// Mode selects the physical layout of a NullList's value store.
type Mode int

const (
	// Compressed packs present values into a contiguous prefix indexed by
	// rank among set presence bits.
	Compressed Mode = iota
	// Flat stores present values at their logical index directly.
	Flat
)

func (m Mode) String() string {
	if m == Flat {
		return "flat"
	}
	return "compressed"
}

// NullList is a nullable-primitive sequence of logical length Size().
type NullList[T comparable] struct {
	presence      *bitvec.BitList
	values        []T
	cardinality   int
	mode          Mode
	flatThreshold int
}

// New returns an empty NullList starting in Compressed mode with the given
// flat-switch threshold.
func New[T comparable](flatThreshold int) *NullList[T] {
	return &NullList[T]{
		presence:      bitvec.New(0),
		mode:          Compressed,
		flatThreshold: flatThreshold,
	}
}

// Size returns the logical length of the sequence.
func (nl *NullList[T]) Size() int { return nl.presence.Size() }

// Cardinality returns the number of present values.
func (nl *NullList[T]) Cardinality() int { return nl.cardinality }

// Mode returns the current physical layout.
func (nl *NullList[T]) Mode() Mode { return nl.mode }

// FlatThreshold returns the current compressed→flat switch threshold.
func (nl *NullList[T]) FlatThreshold() int { return nl.flatThreshold }

// Has reports whether logical position i holds a value.
func (nl *NullList[T]) Has(i int) bool {
	if i < 0 || i >= nl.Size() {
		return false
	}
	return nl.presence.Get(i)
}

func (nl *NullList[T]) valueAtPresent(i int) T {
	if nl.mode == Compressed {
		return nl.values[nl.presence.Rank1(i)-1]
	}
	return nl.values[i]
}

// Get returns the value at logical position i. Only defined when Has(i).
func (nl *NullList[T]) Get(i int) T {
	if !nl.Has(i) {
		panic(fmt.Errorf("nullseq: position %d is not present", i))
	}
	return nl.valueAtPresent(i)
}

// NextPresent returns the smallest position > i holding a value, or -1.
func (nl *NullList[T]) NextPresent(i int) int { return nl.presence.Next1(i) }

// NextAbsent returns the smallest position > i with no value, or -1.
func (nl *NullList[T]) NextAbsent(i int) int { return nl.presence.Next0(i) }

// PrevPresent returns the largest position < i holding a value, or -1.
func (nl *NullList[T]) PrevPresent(i int) int { return nl.presence.Prev1(i) }

// PrevAbsent returns the largest position < i with no value, or -1.
func (nl *NullList[T]) PrevAbsent(i int) int { return nl.presence.Prev0(i) }

func (nl *NullList[T]) insertCompressed(idx int, v T) {
	var zero T
	nl.values = append(nl.values, zero)
	copy(nl.values[idx+1:], nl.values[idx:])
	nl.values[idx] = v
}

func (nl *NullList[T]) removeCompressed(idx int) {
	copy(nl.values[idx:], nl.values[idx+1:])
	nl.values = nl.values[:len(nl.values)-1]
}

func (nl *NullList[T]) growFlatTo(n int) {
	for len(nl.values) < n {
		var zero T
		nl.values = append(nl.values, zero)
	}
}

// switchToFlat reallocates a flat buffer and scatters present values to
// their logical positions; the logical sequence is unchanged.
func (nl *NullList[T]) switchToFlat() {
	flat := make([]T, nl.Size())
	for p := nl.presence.Next1(-1); p != -1; p = nl.presence.Next1(p) {
		flat[p] = nl.valueAtPresent(p)
	}
	nl.values = flat
	nl.mode = Flat
}

// switchToCompressed compacts present values to the front; the logical
// sequence is unchanged.
func (nl *NullList[T]) switchToCompressed() {
	compressed := make([]T, 0, nl.cardinality)
	for p := nl.presence.Next1(-1); p != -1; p = nl.presence.Next1(p) {
		compressed = append(compressed, nl.values[p])
	}
	nl.values = compressed
	nl.mode = Compressed
}

func (nl *NullList[T]) maybeSwitchToFlat() {
	if nl.cardinality >= nl.flatThreshold {
		nl.switchToFlat()
	}
}

func (nl *NullList[T]) maybeSwitchToCompressed() {
	if nl.mode == Flat && nl.cardinality <= nl.flatThreshold {
		nl.switchToCompressed()
	}
}

// Set writes present/v at logical position i, covering all four presence
// transitions: no-op on absent→absent, value removal on present→absent,
// in-place overwrite on present→present, and insertion on absent→present.
func (nl *NullList[T]) Set(i int, present bool, v T) {
	if i < 0 {
		panic(fmt.Errorf("nullseq: negative index %d", i))
	}
	wasPresent := nl.Has(i)

	if !present {
		if !wasPresent {
			if i >= nl.Size() {
				nl.presence.Set(i, false)
				if nl.mode == Flat {
					nl.growFlatTo(nl.Size())
				}
			}
			return
		}
		if nl.mode == Compressed {
			nl.removeCompressed(nl.presence.Rank1(i) - 1)
		}
		nl.presence.Set(i, false)
		nl.cardinality--
		return
	}

	if wasPresent {
		if nl.mode == Compressed {
			nl.values[nl.presence.Rank1(i)-1] = v
		} else {
			nl.values[i] = v
		}
		return
	}

	nl.presence.Set(i, true)
	if nl.mode == Flat {
		nl.growFlatTo(nl.Size())
		nl.values[i] = v
		nl.cardinality++
		return
	}
	nl.insertCompressed(nl.presence.Rank1(i)-1, v)
	nl.cardinality++
	nl.maybeSwitchToFlat()
}

// Insert shifts [i, Size()) up by one and inserts a new logical slot at i.
func (nl *NullList[T]) Insert(i int, present bool, v T) {
	if i < 0 || i > nl.Size() {
		panic(fmt.Errorf("nullseq: insert index %d out of range [0,%d]", i, nl.Size()))
	}
	if nl.mode == Flat {
		nl.growFlatTo(nl.Size() + 1)
		for j := nl.Size(); j > i; j-- {
			nl.values[j] = nl.values[j-1]
		}
	}
	nl.presence.Insert(i, false)
	if present {
		nl.presence.Set(i, true)
		if nl.mode == Compressed {
			nl.insertCompressed(nl.presence.Rank1(i)-1, v)
		} else {
			nl.values[i] = v
		}
		nl.cardinality++
		if nl.mode == Compressed {
			nl.maybeSwitchToFlat()
		}
	}
}

// Remove shifts (i, Size()) down by one, removing the logical slot at i.
func (nl *NullList[T]) Remove(i int) {
	if i < 0 || i >= nl.Size() {
		panic(fmt.Errorf("nullseq: remove index %d out of range [0,%d)", i, nl.Size()))
	}
	wasPresent := nl.presence.Get(i)
	if wasPresent {
		if nl.mode == Compressed {
			nl.removeCompressed(nl.presence.Rank1(i) - 1)
		}
		nl.cardinality--
	}
	if nl.mode == Flat {
		for j := i; j < nl.Size()-1; j++ {
			nl.values[j] = nl.values[j+1]
		}
	}
	nl.presence.Remove(i)
}

// Clear empties the sequence.
func (nl *NullList[T]) Clear() {
	nl.presence = bitvec.New(0)
	nl.values = nl.values[:0]
	nl.cardinality = 0
}

// Length truncates or grows the logical sequence to n, re-deciding the
// layout mode afterward.
func (nl *NullList[T]) Length(n int) {
	if n < 0 {
		panic(fmt.Errorf("nullseq: negative length %d", n))
	}
	for nl.Size() > n {
		nl.Remove(nl.Size() - 1)
	}
	if n > nl.Size() {
		nl.presence.Set(n-1, false)
		if nl.mode == Flat {
			nl.growFlatTo(n)
		}
	}
	nl.maybeSwitchToCompressed()
}

// Trim shrinks the logical sequence to one past the last present position.
func (nl *NullList[T]) Trim() {
	nl.Length(nl.presence.Last1() + 1)
}

// SetFlatThreshold changes the switch threshold, triggering an immediate
// mode switch if the new threshold invalidates the current mode.
func (nl *NullList[T]) SetFlatThreshold(n int) {
	nl.flatThreshold = n
	switch {
	case nl.mode == Compressed && nl.cardinality >= n:
		nl.switchToFlat()
	case nl.mode == Flat && nl.cardinality <= n:
		nl.switchToCompressed()
	}
}

// IndexOf returns the smallest present position holding v, or -1.
func (nl *NullList[T]) IndexOf(v T) int {
	for p := nl.presence.Next1(-1); p != -1; p = nl.presence.Next1(p) {
		if nl.valueAtPresent(p) == v {
			return p
		}
	}
	return -1
}

// LastIndexOf returns the largest present position holding v, or -1.
func (nl *NullList[T]) LastIndexOf(v T) int {
	for p := nl.presence.Prev1(nl.Size()); p != -1; p = nl.presence.Prev1(p) {
		if nl.valueAtPresent(p) == v {
			return p
		}
	}
	return -1
}

// ToArray copies n logical positions starting at i into dst (allocating if
// dst is too small), substituting nullSubst for absent positions.
func (nl *NullList[T]) ToArray(i, n int, dst []T, nullSubst T) []T {
	if cap(dst) < n {
		dst = make([]T, n)
	} else {
		dst = dst[:n]
	}
	for k := 0; k < n; k++ {
		pos := i + k
		if nl.Has(pos) {
			dst[k] = nl.valueAtPresent(pos)
		} else {
			dst[k] = nullSubst
		}
	}
	return dst
}

func (nl *NullList[T]) String() string {
	return fmt.Sprintf("NullList{size:%d, cardinality:%d, mode:%s}", nl.Size(), nl.cardinality, nl.mode)
}

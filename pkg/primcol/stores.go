// Package primcol wires the dual-region table in pkg/hashcore together with
// pkg/nullseq and pkg/packedvec to expose the container façades an embedder
// actually reaches for: Map, Set, NullableMap, and BitsMap.
package primcol

import (
	"github.com/grafana/primcol/pkg/nullseq"
	"github.com/grafana/primcol/pkg/packedvec"
)

// directStore is a hashcore.Mover over a plain slice of V, used by Map
// (Set has no values and uses noopMover). It covers both "direct primitive" and "owned object" value-slot
// kinds from the spec's capability table: Go's garbage collector reclaims
// an owned V the moment its slot is overwritten with the zero value, so no
// separate owned-object variant is needed the way it would be in a
// manually-managed runtime.
type directStore[V any] struct {
	data    []V
	pending []V
}

func newDirectStore[V any]() *directStore[V] { return &directStore[V]{} }

func (s *directStore[V]) PrepareResize(n int)              { s.pending = make([]V, n) }
func (s *directStore[V]) RelocateValue(newIdx, oldIdx int) { s.pending[newIdx] = s.data[oldIdx] }
func (s *directStore[V]) FinishResize()                    { s.data = s.pending; s.pending = nil }
func (s *directStore[V]) MoveValue(dst, src int) {
	s.data[dst] = s.data[src]
	var zero V
	s.data[src] = zero
}
func (s *directStore[V]) Get(i int) V    { return s.data[i] }
func (s *directStore[V]) Set(i int, v V) { s.data[i] = v }
func (s *directStore[V]) ClearValue(i int) {
	var zero V
	s.data[i] = zero
}

// nullStore is a hashcore.Mover over a nullseq.NullList, used by
// NullableMap. A slot's presence bit is cleared whenever its value is moved
// away, mirroring how Core clears a relocated key slot.
type nullStore[V comparable] struct {
	nl            *nullseq.NullList[V]
	pending       *nullseq.NullList[V]
	flatThreshold int
}

func newNullStore[V comparable](flatThreshold int) *nullStore[V] {
	return &nullStore[V]{nl: nullseq.New[V](flatThreshold), flatThreshold: flatThreshold}
}

func (s *nullStore[V]) PrepareResize(int) { s.pending = nullseq.New[V](s.flatThreshold) }
func (s *nullStore[V]) RelocateValue(newIdx, oldIdx int) {
	if s.nl.Has(oldIdx) {
		s.pending.Set(newIdx, true, s.nl.Get(oldIdx))
	}
}
func (s *nullStore[V]) FinishResize() { s.nl = s.pending; s.pending = nil }
func (s *nullStore[V]) MoveValue(dst, src int) {
	var zero V
	if s.nl.Has(src) {
		s.nl.Set(dst, true, s.nl.Get(src))
	} else {
		s.nl.Set(dst, false, zero)
	}
	s.nl.Set(src, false, zero)
}
func (s *nullStore[V]) ClearValue(i int) {
	var zero V
	s.nl.Set(i, false, zero)
}

// bitsStore is a hashcore.Mover over a packedvec.BitsList, used by BitsMap.
// Values are small unsigned integers, so there is no ownership to release
// on a move.
type bitsStore struct {
	bl          *packedvec.BitsList
	pending     *packedvec.BitsList
	bitsPerItem int
	defaultFill uint64
}

func newBitsStore(bitsPerItem int, defaultFill uint64) *bitsStore {
	return &bitsStore{
		bl:          packedvec.New(bitsPerItem, defaultFill),
		bitsPerItem: bitsPerItem,
		defaultFill: defaultFill,
	}
}

func (s *bitsStore) PrepareResize(int) {
	s.pending = packedvec.New(s.bitsPerItem, s.defaultFill)
}
func (s *bitsStore) RelocateValue(newIdx, oldIdx int) { s.pending.Set1(newIdx, s.bl.Get(oldIdx)) }
func (s *bitsStore) FinishResize()                    { s.bl = s.pending; s.pending = nil }
func (s *bitsStore) MoveValue(dst, src int)           { s.bl.Set1(dst, s.bl.Get(src)) }
func (s *bitsStore) ClearValue(i int)                 { s.bl.Set1(i, s.defaultFill) }

package primcol

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/jsonsink"
)

// Set is a hash set of K built directly on hashcore.Core, with no value
// storage at all — its Mover is a no-op.
type Set[K comparable] struct {
	core *hashcore.Core[K]
}

type noopMover struct{}

func (noopMover) PrepareResize(int)      {}
func (noopMover) RelocateValue(int, int) {}
func (noopMover) FinishResize()          {}
func (noopMover) MoveValue(int, int)     {}
func (noopMover) ClearValue(int)         {}

// NewSet constructs an empty Set using ops for element hashing and equality.
func NewSet[K comparable](ops hashcore.TypeOps[K], opts ...MapOption[K]) *Set[K] {
	cfg := &mapConfig[K]{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Set[K]{core: hashcore.NewCore[K](ops, noopMover{}, cfg.coreOpts...)}
}

// Size returns the number of elements.
func (s *Set[K]) Size() int { return s.core.Size() }

// IsEmpty reports whether the set has no elements.
func (s *Set[K]) IsEmpty() bool { return s.core.Size() == 0 }

// Capacity returns the physical size of the backing arrays.
func (s *Set[K]) Capacity() int { return s.core.Capacity() }

// Contains reports whether k is a member.
func (s *Set[K]) Contains(k K) bool { return s.core.TokenOf(k) != hashcore.InvalidToken }

// HasNullKey reports whether the null key is a member.
func (s *Set[K]) HasNullKey() bool { return s.core.HasNullKey() }

// AddNullKey adds the null key, reporting whether it was newly added.
func (s *Set[K]) AddNullKey() bool { return s.core.PutNullKey() }

// RemoveNullKey removes the null key, reporting whether it was present.
func (s *Set[K]) RemoveNullKey() bool { return s.core.RemoveNullKey() }

// Add inserts k, reporting whether it was newly added.
func (s *Set[K]) Add(k K) bool {
	_, wasNew := s.core.Put(k)
	return wasNew
}

// Remove deletes k, reporting whether it was present.
func (s *Set[K]) Remove(k K) bool { return s.core.Remove(k) }

// Clear removes every element.
func (s *Set[K]) Clear() { s.core.Clear() }

// EnsureCapacity grows the set to hold at least n elements without a
// further resize.
func (s *Set[K]) EnsureCapacity(n int) { s.core.EnsureCapacity(n) }

// Trim shrinks the backing arrays to fit the current size.
func (s *Set[K]) Trim() { s.core.Trim() }

// Stats reports the underlying table's current shape.
func (s *Set[K]) Stats() hashcore.Stats { return s.core.Stats() }

// ForEach calls fn for every element in iteration order, stopping early if
// fn returns false. fn receives the zero value of K for the null key.
func (s *Set[K]) ForEach(fn func(k K, isNull bool) bool) {
	for tok := s.core.FirstToken(); tok != hashcore.InvalidToken; {
		if !fn(s.core.Key(tok), tok.IsNullKey()) {
			return
		}
		next, err := s.core.NextToken(tok)
		if err != nil {
			return
		}
		tok = next
	}
}

func (s *Set[K]) String() string {
	return fmt.Sprintf("Set{size:%d, capacity:%d}", s.Size(), s.Capacity())
}

// WriteJSON emits the set as a JSON array of elements, with the null
// element (if a member) emitted first.
func (s *Set[K]) WriteJSON(sink jsonsink.Sink) {
	sink.EnterArray()
	sink.Preallocate(s.Size())
	if s.HasNullKey() {
		sink.ValueNull()
	}
	s.ForEach(func(k K, isNull bool) bool {
		if !isNull {
			writeTypedValue(sink, k)
		}
		return true
	})
	sink.ExitArray()
}

// UnsafeNextIndex advances a raw physical-slot iteration cursor without
// token validity checks. See hashcore.Core.UnsafeNext.
func (s *Set[K]) UnsafeNextIndex(idx int) int { return s.core.UnsafeNext(idx) }

// ContainsValue is an alias of Contains, for API parity with the map
// façades, which distinguish the key/entry lookup (ContainsKey) from a
// value-equality scan (ContainsValue) — a set has no separate value, so
// both name the same membership check.
func (s *Set[K]) ContainsValue(k K) bool { return s.Contains(k) }

// Clone returns an independent copy with the same elements. It does not
// preserve physical slot layout.
func (s *Set[K]) Clone(ops hashcore.TypeOps[K], opts ...MapOption[K]) *Set[K] {
	out := NewSet[K](ops, opts...)
	out.EnsureCapacity(s.Size())
	if s.HasNullKey() {
		out.AddNullKey()
	}
	s.ForEach(func(k K, isNull bool) bool {
		if !isNull {
			out.Add(k)
		}
		return true
	})
	return out
}

// Equal reports whether s and other contain the same elements, including
// the null key.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if s.Size() != other.Size() {
		return false
	}
	if s.HasNullKey() != other.HasNullKey() {
		return false
	}
	equal := true
	s.ForEach(func(k K, isNull bool) bool {
		if !isNull && !other.Contains(k) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Hash returns an order-independent hash over the set's elements. It is
// intended for debugging and test assertions, not for use as a key itself.
func (s *Set[K]) Hash() uint64 {
	var h uint64
	s.ForEach(func(k K, isNull bool) bool {
		if isNull {
			h ^= xxhash.Sum64String("<null>")
		} else {
			h ^= xxhash.Sum64String(fmt.Sprintf("%v", k))
		}
		return true
	})
	return h
}

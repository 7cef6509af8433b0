package primcol

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/jsonsink"
)

// BitsMap maps K to a small unsigned integer packed into W bits (1 <= W <=
// 7), with values stored in a packedvec.BitsList instead of a plain Go
// slice — useful for flags, small enums, or confidence buckets where a
// whole machine word per entry would be wasteful.
type BitsMap[K comparable] struct {
	core      *hashcore.Core[K]
	values    *bitsStore
	nullValue uint64
}

// NewBitsMap constructs an empty BitsMap whose values are w bits wide,
// backfilling any gap created by a resize with defaultFill.
func NewBitsMap[K comparable](ops hashcore.TypeOps[K], w int, defaultFill uint64, opts ...MapOption[K]) *BitsMap[K] {
	cfg := &mapConfig[K]{}
	for _, opt := range opts {
		opt(cfg)
	}
	values := newBitsStore(w, defaultFill)
	return &BitsMap[K]{
		core:   hashcore.NewCore[K](ops, values, cfg.coreOpts...),
		values: values,
	}
}

// BitsPerValue returns the fixed value width.
func (m *BitsMap[K]) BitsPerValue() int { return m.values.bitsPerItem }

// Size returns the number of entries.
func (m *BitsMap[K]) Size() int { return m.core.Size() }

// IsEmpty reports whether the map has no entries.
func (m *BitsMap[K]) IsEmpty() bool { return m.core.Size() == 0 }

// Capacity returns the physical size of the backing arrays.
func (m *BitsMap[K]) Capacity() int { return m.core.Capacity() }

// ContainsKey reports whether k is present.
func (m *BitsMap[K]) ContainsKey(k K) bool { return m.core.TokenOf(k) != hashcore.InvalidToken }

// HasNullKey reports whether the null key is present.
func (m *BitsMap[K]) HasNullKey() bool { return m.core.HasNullKey() }

// NullKeyValue returns the value mapped to the null key, if present.
func (m *BitsMap[K]) NullKeyValue() (uint64, bool) {
	if !m.core.HasNullKey() {
		return 0, false
	}
	return m.nullValue, true
}

// PutNullKey maps the null key to v, returning the previous value if any.
func (m *BitsMap[K]) PutNullKey(v uint64) (old uint64, hadOld bool) {
	hadOld = m.core.HasNullKey()
	if hadOld {
		old = m.nullValue
	}
	m.core.PutNullKey()
	m.nullValue = v & ((uint64(1) << uint(m.values.bitsPerItem)) - 1)
	return old, hadOld
}

// RemoveNullKey unmaps the null key, returning its value if it was present.
func (m *BitsMap[K]) RemoveNullKey() (uint64, bool) {
	if !m.core.RemoveNullKey() {
		return 0, false
	}
	v := m.nullValue
	m.nullValue = 0
	return v, true
}

// Get returns the value mapped to k, if present.
func (m *BitsMap[K]) Get(k K) (uint64, bool) {
	tok := m.core.TokenOf(k)
	if tok == hashcore.InvalidToken {
		return 0, false
	}
	return m.values.bl.Get(int(tok.Index())), true
}

// GetOrDefault returns the value mapped to k, or def if absent.
func (m *BitsMap[K]) GetOrDefault(k K, def uint64) uint64 {
	if v, ok := m.Get(k); ok {
		return v
	}
	return def
}

// Put maps k to v, returning the previous value if k was already present.
func (m *BitsMap[K]) Put(k K, v uint64) (old uint64, hadOld bool) {
	dst, wasNew := m.core.Put(k)
	if !wasNew {
		old, hadOld = m.values.bl.Get(dst), true
	}
	m.values.bl.Set1(dst, v)
	return old, hadOld
}

// Remove unmaps k, returning its value if it was present.
func (m *BitsMap[K]) Remove(k K) (uint64, bool) {
	tok := m.core.TokenOf(k)
	if tok == hashcore.InvalidToken {
		return 0, false
	}
	v := m.values.bl.Get(int(tok.Index()))
	m.core.Remove(k)
	return v, true
}

// Clear removes every entry.
func (m *BitsMap[K]) Clear() {
	m.core.Clear()
	m.nullValue = 0
}

// EnsureCapacity grows the map to hold at least n entries without a further
// resize.
func (m *BitsMap[K]) EnsureCapacity(n int) { m.core.EnsureCapacity(n) }

// Trim shrinks the backing arrays to fit the current size.
func (m *BitsMap[K]) Trim() { m.core.Trim() }

// Token returns a live token for k, or hashcore.InvalidToken.
func (m *BitsMap[K]) Token(k K) hashcore.Token { return m.core.TokenOf(k) }

// FirstToken returns a token for the first entry in iteration order.
func (m *BitsMap[K]) FirstToken() hashcore.Token { return m.core.FirstToken() }

// NextToken advances a safe iteration cursor.
func (m *BitsMap[K]) NextToken(tok hashcore.Token) (hashcore.Token, error) {
	return m.core.NextToken(tok)
}

// KeyOf returns the key addressed by tok.
func (m *BitsMap[K]) KeyOf(tok hashcore.Token) K { return m.core.Key(tok) }

// ValueOf returns the value addressed by tok.
func (m *BitsMap[K]) ValueOf(tok hashcore.Token) uint64 {
	if tok.IsNullKey() {
		return m.nullValue
	}
	return m.values.bl.Get(int(tok.Index()))
}

// Stats reports the underlying table's current shape.
func (m *BitsMap[K]) Stats() hashcore.Stats { return m.core.Stats() }

// ForEach calls fn for every keyed entry in iteration order, stopping early
// if fn returns false. The null key, if present, is not visited here; use
// HasNullKey/NullKeyValue for it.
func (m *BitsMap[K]) ForEach(fn func(k K, v uint64) bool) {
	for tok := m.core.FirstToken(); tok != hashcore.InvalidToken; {
		if !tok.IsNullKey() && !fn(m.KeyOf(tok), m.ValueOf(tok)) {
			return
		}
		next, err := m.core.NextToken(tok)
		if err != nil {
			return
		}
		tok = next
	}
}

func (m *BitsMap[K]) String() string {
	return fmt.Sprintf("BitsMap{size:%d, capacity:%d, bits:%d}", m.Size(), m.Capacity(), m.BitsPerValue())
}

// WriteJSON emits the map per spec.md §6.2: a string-keyed map emits as a
// flat JSON object keyed by the string, everything else emits as a JSON
// array of {Key, Value} objects. The null key, where present, is emitted
// first.
func (m *BitsMap[K]) WriteJSON(sink jsonsink.Sink) {
	if isStringKeyed[K]() {
		sink.EnterObject()
		if v, ok := m.NullKeyValue(); ok {
			sink.Name("null")
			sink.ValueUint64(v)
		}
		m.ForEach(func(k K, v uint64) bool {
			sink.Name(fmt.Sprintf("%v", k))
			sink.ValueUint64(v)
			return true
		})
		sink.ExitObject()
		return
	}
	sink.EnterArray()
	sink.Preallocate(m.Size())
	if v, ok := m.NullKeyValue(); ok {
		sink.EnterObject()
		sink.Name("Key")
		sink.ValueNull()
		sink.Name("Value")
		sink.ValueUint64(v)
		sink.ExitObject()
	}
	m.ForEach(func(k K, v uint64) bool {
		sink.EnterObject()
		sink.Name("Key")
		writeTypedValue(sink, k)
		sink.Name("Value")
		sink.ValueUint64(v)
		sink.ExitObject()
		return true
	})
	sink.ExitArray()
}

// UnsafeNextIndex advances a raw physical-slot iteration cursor without
// token validity checks. See hashcore.Core.UnsafeNext.
func (m *BitsMap[K]) UnsafeNextIndex(idx int) int { return m.core.UnsafeNext(idx) }

// ContainsValue reports whether any entry, including the null key, holds v.
func (m *BitsMap[K]) ContainsValue(v uint64) bool {
	if nv, ok := m.NullKeyValue(); ok && nv == v {
		return true
	}
	found := false
	m.ForEach(func(_ K, ev uint64) bool {
		if ev == v {
			found = true
			return false
		}
		return true
	})
	return found
}

// Clone returns an independent copy with the same entries. It does not
// preserve physical slot layout.
func (m *BitsMap[K]) Clone(ops hashcore.TypeOps[K], opts ...MapOption[K]) *BitsMap[K] {
	out := NewBitsMap[K](ops, m.values.bitsPerItem, m.values.defaultFill, opts...)
	out.EnsureCapacity(m.Size())
	if v, ok := m.NullKeyValue(); ok {
		out.PutNullKey(v)
	}
	m.ForEach(func(k K, v uint64) bool {
		out.Put(k, v)
		return true
	})
	return out
}

// Equal reports whether m and other contain the same key/value pairs,
// including the null key.
func (m *BitsMap[K]) Equal(other *BitsMap[K]) bool {
	if m.Size() != other.Size() {
		return false
	}
	if m.HasNullKey() != other.HasNullKey() {
		return false
	}
	if v, ok := m.NullKeyValue(); ok {
		if ov, _ := other.NullKeyValue(); v != ov {
			return false
		}
	}
	equal := true
	m.ForEach(func(k K, v uint64) bool {
		ov, ok := other.Get(k)
		if !ok || ov != v {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Hash returns an order-independent hash over the map's entries. It is
// intended for debugging and test assertions, not for use as a key itself.
func (m *BitsMap[K]) Hash() uint64 {
	var h uint64
	m.ForEach(func(k K, v uint64) bool {
		entry := fmt.Sprintf("%v=%d", k, v)
		h ^= xxhash.Sum64String(entry)
		return true
	})
	if v, ok := m.NullKeyValue(); ok {
		h ^= xxhash.Sum64String(fmt.Sprintf("<null>=%d", v))
	}
	return h
}

package primcol

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/jsonsink"
)

// NullableMap maps K to an optional V: a key can be present with no value
// at all, distinct from the key being absent entirely. Its value column is
// a nullseq.NullList, which adaptively switches between a compressed and a
// flat layout as the proportion of present values changes.
type NullableMap[K comparable, V comparable] struct {
	core      *hashcore.Core[K]
	values    *nullStore[V]
	nullKeyV  V
	nullKeyOK bool
}

// NewNullableMap constructs an empty NullableMap. flatThreshold is the
// cardinality at or above which the value column switches to flat layout.
func NewNullableMap[K comparable, V comparable](ops hashcore.TypeOps[K], flatThreshold int, opts ...MapOption[K]) *NullableMap[K, V] {
	cfg := &mapConfig[K]{}
	for _, opt := range opts {
		opt(cfg)
	}
	values := newNullStore[V](flatThreshold)
	return &NullableMap[K, V]{
		core:   hashcore.NewCore[K](ops, values, cfg.coreOpts...),
		values: values,
	}
}

// Size returns the number of keys, present-valued or not.
func (m *NullableMap[K, V]) Size() int { return m.core.Size() }

// IsEmpty reports whether the map has no keys.
func (m *NullableMap[K, V]) IsEmpty() bool { return m.core.Size() == 0 }

// Capacity returns the physical size of the backing arrays.
func (m *NullableMap[K, V]) Capacity() int { return m.core.Capacity() }

// FlatStrategyThreshold returns the value column's compressed→flat switch
// threshold.
func (m *NullableMap[K, V]) FlatStrategyThreshold() int { return m.values.nl.FlatThreshold() }

// SetFlatStrategyThreshold changes the value column's switch threshold.
func (m *NullableMap[K, V]) SetFlatStrategyThreshold(n int) {
	m.values.flatThreshold = n
	m.values.nl.SetFlatThreshold(n)
}

// ContainsKey reports whether k is present, regardless of whether its value
// is present.
func (m *NullableMap[K, V]) ContainsKey(k K) bool {
	return m.core.TokenOf(k) != hashcore.InvalidToken
}

// ValuePresent reports whether k is present and its value is not null.
func (m *NullableMap[K, V]) ValuePresent(k K) bool {
	tok := m.core.TokenOf(k)
	if tok == hashcore.InvalidToken {
		return false
	}
	if tok.IsNullKey() {
		return m.nullKeyOK
	}
	return m.values.nl.Has(int(tok.Index()))
}

// Get returns k's value. ok is false if k is absent or its value is null.
func (m *NullableMap[K, V]) Get(k K) (v V, ok bool) {
	tok := m.core.TokenOf(k)
	if tok == hashcore.InvalidToken {
		return v, false
	}
	if tok.IsNullKey() {
		return m.nullKeyV, m.nullKeyOK
	}
	idx := int(tok.Index())
	if !m.values.nl.Has(idx) {
		return v, false
	}
	return m.values.nl.Get(idx), true
}

// Put maps k to v, inserting k if absent. The previous value is returned,
// with hadValue false if k was absent or its value was null.
func (m *NullableMap[K, V]) Put(k K, v V) (old V, hadValue bool) {
	dst, wasNew := m.core.Put(k)
	if !wasNew && m.values.nl.Has(dst) {
		old, hadValue = m.values.nl.Get(dst), true
	}
	m.values.nl.Set(dst, true, v)
	return old, hadValue
}

// PutNull maps k to null, inserting k if absent.
func (m *NullableMap[K, V]) PutNull(k K) {
	dst, _ := m.core.Put(k)
	var zero V
	m.values.nl.Set(dst, false, zero)
}

// Remove unmaps k entirely, returning its value if it was present.
func (m *NullableMap[K, V]) Remove(k K) (V, bool) {
	v, ok := m.Get(k)
	m.core.Remove(k)
	return v, ok
}

// HasNullKey reports whether the null key is present.
func (m *NullableMap[K, V]) HasNullKey() bool { return m.core.HasNullKey() }

// PutNullKey maps the null key to v.
func (m *NullableMap[K, V]) PutNullKey(v V) {
	m.core.PutNullKey()
	m.nullKeyV, m.nullKeyOK = v, true
}

// RemoveNullKey unmaps the null key entirely.
func (m *NullableMap[K, V]) RemoveNullKey() bool {
	removed := m.core.RemoveNullKey()
	var zero V
	m.nullKeyV, m.nullKeyOK = zero, false
	return removed
}

// Clear removes every key.
func (m *NullableMap[K, V]) Clear() {
	m.core.Clear()
	var zero V
	m.nullKeyV, m.nullKeyOK = zero, false
}

// EnsureCapacity grows the map to hold at least n keys without a further
// resize.
func (m *NullableMap[K, V]) EnsureCapacity(n int) { m.core.EnsureCapacity(n) }

// Trim shrinks the backing arrays to fit the current size.
func (m *NullableMap[K, V]) Trim() { m.core.Trim() }

// Token returns a live token for k, or hashcore.InvalidToken.
func (m *NullableMap[K, V]) Token(k K) hashcore.Token { return m.core.TokenOf(k) }

// FirstToken returns a token for the first entry in iteration order.
func (m *NullableMap[K, V]) FirstToken() hashcore.Token { return m.core.FirstToken() }

// NextToken advances a safe iteration cursor.
func (m *NullableMap[K, V]) NextToken(tok hashcore.Token) (hashcore.Token, error) {
	return m.core.NextToken(tok)
}

// KeyOf returns the key addressed by tok.
func (m *NullableMap[K, V]) KeyOf(tok hashcore.Token) K { return m.core.Key(tok) }

// IsKeyNull reports whether tok addresses the null key.
func (m *NullableMap[K, V]) IsKeyNull(tok hashcore.Token) bool { return tok.IsNullKey() }

// ValueOf returns the value addressed by tok. ok is false if that entry's
// value is null.
func (m *NullableMap[K, V]) ValueOf(tok hashcore.Token) (v V, ok bool) {
	if tok.IsNullKey() {
		return m.nullKeyV, m.nullKeyOK
	}
	idx := int(tok.Index())
	if !m.values.nl.Has(idx) {
		return v, false
	}
	return m.values.nl.Get(idx), true
}

// Stats reports the underlying table's current shape.
func (m *NullableMap[K, V]) Stats() hashcore.Stats { return m.core.Stats() }

// ForEach calls fn for every keyed entry in iteration order with its value
// and whether that value is present, stopping early if fn returns false.
// The null key, if present, has no K representation and is not visited
// here; query it separately via HasNullKey.
func (m *NullableMap[K, V]) ForEach(fn func(k K, v V, present bool) bool) {
	for tok := m.core.FirstToken(); tok != hashcore.InvalidToken; {
		if !tok.IsNullKey() {
			v, ok := m.ValueOf(tok)
			if !fn(m.KeyOf(tok), v, ok) {
				return
			}
		}
		next, err := m.core.NextToken(tok)
		if err != nil {
			return
		}
		tok = next
	}
}

func (m *NullableMap[K, V]) String() string {
	return fmt.Sprintf("NullableMap{size:%d, capacity:%d, mode:%s}", m.Size(), m.Capacity(), m.values.nl.Mode())
}

// WriteJSON emits the map per spec.md §6.2: a string-keyed map emits as a
// flat JSON object keyed by the string, everything else emits as a JSON
// array of {Key, Value} objects. The null key, where present, is emitted
// first. Absent values are written as null.
func (m *NullableMap[K, V]) WriteJSON(sink jsonsink.Sink) {
	if isStringKeyed[K]() {
		sink.EnterObject()
		if m.HasNullKey() {
			sink.Name("null")
			if m.nullKeyOK {
				writeTypedValue(sink, m.nullKeyV)
			} else {
				sink.ValueNull()
			}
		}
		m.ForEach(func(k K, v V, present bool) bool {
			sink.Name(fmt.Sprintf("%v", k))
			if present {
				writeTypedValue(sink, v)
			} else {
				sink.ValueNull()
			}
			return true
		})
		sink.ExitObject()
		return
	}
	sink.EnterArray()
	sink.Preallocate(m.Size())
	if m.HasNullKey() {
		sink.EnterObject()
		sink.Name("Key")
		sink.ValueNull()
		sink.Name("Value")
		if m.nullKeyOK {
			writeTypedValue(sink, m.nullKeyV)
		} else {
			sink.ValueNull()
		}
		sink.ExitObject()
	}
	m.ForEach(func(k K, v V, present bool) bool {
		sink.EnterObject()
		sink.Name("Key")
		writeTypedValue(sink, k)
		sink.Name("Value")
		if present {
			writeTypedValue(sink, v)
		} else {
			sink.ValueNull()
		}
		sink.ExitObject()
		return true
	})
	sink.ExitArray()
}

// UnsafeNextIndex advances a raw physical-slot iteration cursor without
// token validity checks. See hashcore.Core.UnsafeNext.
func (m *NullableMap[K, V]) UnsafeNextIndex(idx int) int { return m.core.UnsafeNext(idx) }

// ContainsValue reports whether any entry, including the null key, holds a
// present value equal to v.
func (m *NullableMap[K, V]) ContainsValue(v V) bool {
	if m.nullKeyOK && m.nullKeyV == v {
		return true
	}
	found := false
	m.ForEach(func(_ K, ev V, present bool) bool {
		if present && ev == v {
			found = true
			return false
		}
		return true
	})
	return found
}

// PutNullKeyAbsent maps the null key with no value, distinct from it being
// entirely absent.
func (m *NullableMap[K, V]) PutNullKeyAbsent() {
	m.core.PutNullKey()
	var zero V
	m.nullKeyV, m.nullKeyOK = zero, false
}

// Clone returns an independent copy with the same keys and values. It does
// not preserve physical slot layout.
func (m *NullableMap[K, V]) Clone(ops hashcore.TypeOps[K], flatThreshold int, opts ...MapOption[K]) *NullableMap[K, V] {
	out := NewNullableMap[K, V](ops, flatThreshold, opts...)
	out.EnsureCapacity(m.Size())
	if m.HasNullKey() {
		if m.nullKeyOK {
			out.PutNullKey(m.nullKeyV)
		} else {
			out.PutNullKeyAbsent()
		}
	}
	m.ForEach(func(k K, v V, present bool) bool {
		if present {
			out.Put(k, v)
		} else {
			out.PutNull(k)
		}
		return true
	})
	return out
}

// Equal reports whether m and other contain the same keys with the same
// values and presence, including the null key.
func (m *NullableMap[K, V]) Equal(other *NullableMap[K, V]) bool {
	if m.Size() != other.Size() {
		return false
	}
	if m.HasNullKey() != other.HasNullKey() {
		return false
	}
	if m.HasNullKey() {
		if m.nullKeyOK != other.nullKeyOK {
			return false
		}
		if m.nullKeyOK && m.nullKeyV != other.nullKeyV {
			return false
		}
	}
	equal := true
	m.ForEach(func(k K, v V, present bool) bool {
		ov, ok := other.Get(k)
		if !other.ContainsKey(k) || ok != present || (present && ov != v) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Hash returns an order-independent hash over the map's keys and values. It
// is intended for debugging and test assertions, not for use as a key
// itself: it stringifies each value with fmt.Sprintf since V is only
// required to be comparable, not hashable.
func (m *NullableMap[K, V]) Hash() uint64 {
	var h uint64
	m.ForEach(func(k K, v V, present bool) bool {
		var entry string
		if present {
			entry = fmt.Sprintf("%v=%v", k, v)
		} else {
			entry = fmt.Sprintf("%v=<absent>", k)
		}
		h ^= xxhash.Sum64String(entry)
		return true
	})
	if m.HasNullKey() {
		if m.nullKeyOK {
			h ^= xxhash.Sum64String(fmt.Sprintf("<null>=%v", m.nullKeyV))
		} else {
			h ^= xxhash.Sum64String("<null>=<absent>")
		}
	}
	return h
}

package primcol

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/jsonsink"
	"go.uber.org/zap"
)

// Map is a hash table from K to V built on hashcore.Core, for value types
// that are either primitives or plain Go values with no presence tracking
// of their own.
type Map[K comparable, V comparable] struct {
	core      *hashcore.Core[K]
	values    *directStore[V]
	nullValue V
}

// MapOption configures a Map at construction time.
type MapOption[K comparable] func(*mapConfig[K])

type mapConfig[K comparable] struct {
	coreOpts []hashcore.Option[K]
}

// WithHashCache retains each entry's hash alongside its key.
func WithHashCache[K comparable](enabled bool) MapOption[K] {
	return func(c *mapConfig[K]) { c.coreOpts = append(c.coreOpts, hashcore.WithHashCache[K](enabled)) }
}

// WithRekey opts the map into pathological-collision mitigation.
func WithRekey[K comparable](fn hashcore.RekeyFunc[K]) MapOption[K] {
	return func(c *mapConfig[K]) { c.coreOpts = append(c.coreOpts, hashcore.WithRekey[K](fn)) }
}

// WithLogger attaches a structured logger to the underlying table.
func WithLogger[K comparable](log *zap.Logger) MapOption[K] {
	return func(c *mapConfig[K]) { c.coreOpts = append(c.coreOpts, hashcore.WithLogger[K](log)) }
}

// NewMap constructs an empty Map using ops for key hashing and equality.
func NewMap[K comparable, V comparable](ops hashcore.TypeOps[K], opts ...MapOption[K]) *Map[K, V] {
	cfg := &mapConfig[K]{}
	for _, opt := range opts {
		opt(cfg)
	}
	values := newDirectStore[V]()
	return &Map[K, V]{
		core:   hashcore.NewCore[K](ops, values, cfg.coreOpts...),
		values: values,
	}
}

// Size returns the number of entries, including the null key if present.
func (m *Map[K, V]) Size() int { return m.core.Size() }

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.core.Size() == 0 }

// Capacity returns the physical size of the backing arrays.
func (m *Map[K, V]) Capacity() int { return m.core.Capacity() }

// ContainsKey reports whether k is present.
func (m *Map[K, V]) ContainsKey(k K) bool { return m.core.TokenOf(k) != hashcore.InvalidToken }

// ContainsValue reports whether any entry, including the null key, holds v.
func (m *Map[K, V]) ContainsValue(v V) bool {
	if m.core.HasNullKey() && m.nullValue == v {
		return true
	}
	for tok := m.core.FirstToken(); tok != hashcore.InvalidToken; {
		if !tok.IsNullKey() && m.values.Get(int(tok.Index())) == v {
			return true
		}
		next, err := m.core.NextToken(tok)
		if err != nil {
			break
		}
		tok = next
	}
	return false
}

// HasNullKey reports whether the null key is present.
func (m *Map[K, V]) HasNullKey() bool { return m.core.HasNullKey() }

// NullKeyValue returns the value mapped to the null key, if present.
func (m *Map[K, V]) NullKeyValue() (V, bool) {
	if !m.core.HasNullKey() {
		var zero V
		return zero, false
	}
	return m.nullValue, true
}

// PutNullKey maps the null key to v, returning the previous value if any.
func (m *Map[K, V]) PutNullKey(v V) (old V, hadOld bool) {
	hadOld = m.core.HasNullKey()
	if hadOld {
		old = m.nullValue
	}
	m.core.PutNullKey()
	m.nullValue = v
	return old, hadOld
}

// RemoveNullKey unmaps the null key, returning its value if it was present.
func (m *Map[K, V]) RemoveNullKey() (V, bool) {
	if !m.core.RemoveNullKey() {
		var zero V
		return zero, false
	}
	v := m.nullValue
	var zero V
	m.nullValue = zero
	return v, true
}

// Get returns the value mapped to k, if present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	tok := m.core.TokenOf(k)
	if tok == hashcore.InvalidToken {
		var zero V
		return zero, false
	}
	return m.values.Get(int(tok.Index())), true
}

// GetOrDefault returns the value mapped to k, or def if absent.
func (m *Map[K, V]) GetOrDefault(k K, def V) V {
	if v, ok := m.Get(k); ok {
		return v
	}
	return def
}

// Put maps k to v, returning the previous value if k was already present.
func (m *Map[K, V]) Put(k K, v V) (old V, hadOld bool) {
	dst, wasNew := m.core.Put(k)
	if !wasNew {
		old = m.values.Get(dst)
		hadOld = true
	}
	m.values.Set(dst, v)
	return old, hadOld
}

// TryPut maps k to v only if k is absent, reporting whether it inserted.
func (m *Map[K, V]) TryPut(k K, v V) bool {
	if m.ContainsKey(k) {
		return false
	}
	m.Put(k, v)
	return true
}

// Remove unmaps k, returning its value if it was present.
func (m *Map[K, V]) Remove(k K) (V, bool) {
	tok := m.core.TokenOf(k)
	if tok == hashcore.InvalidToken {
		var zero V
		return zero, false
	}
	v := m.values.Get(int(tok.Index()))
	m.core.Remove(k)
	return v, true
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.core.Clear()
	var zero V
	m.nullValue = zero
}

// EnsureCapacity grows the map to hold at least n entries without a further
// resize.
func (m *Map[K, V]) EnsureCapacity(n int) { m.core.EnsureCapacity(n) }

// Trim shrinks the backing arrays to fit the current size.
func (m *Map[K, V]) Trim() { m.core.Trim() }

// Token returns a live token for k, or hashcore.InvalidToken.
func (m *Map[K, V]) Token(k K) hashcore.Token { return m.core.TokenOf(k) }

// FirstToken returns a token for the first entry in iteration order.
func (m *Map[K, V]) FirstToken() hashcore.Token { return m.core.FirstToken() }

// NextToken advances a safe iteration cursor.
func (m *Map[K, V]) NextToken(tok hashcore.Token) (hashcore.Token, error) { return m.core.NextToken(tok) }

// KeyOf returns the key addressed by tok.
func (m *Map[K, V]) KeyOf(tok hashcore.Token) K { return m.core.Key(tok) }

// IsKeyNull reports whether tok addresses the null key.
func (m *Map[K, V]) IsKeyNull(tok hashcore.Token) bool { return tok.IsNullKey() }

// ValueOf returns the value addressed by tok.
func (m *Map[K, V]) ValueOf(tok hashcore.Token) V {
	if tok.IsNullKey() {
		return m.nullValue
	}
	return m.values.Get(int(tok.Index()))
}

// Stats reports the underlying table's current shape.
func (m *Map[K, V]) Stats() hashcore.Stats { return m.core.Stats() }

// ForEach calls fn for every keyed entry in iteration order, stopping early
// if fn returns false. The null key, if present, is not visited here since
// it has no K representation of its own; callers that need it use
// HasNullKey/NullKeyValue alongside ForEach.
func (m *Map[K, V]) ForEach(fn func(k K, v V) bool) {
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

// Clone returns an independent copy with the same entries. It does not
// preserve physical slot layout.
func (m *Map[K, V]) Clone(ops hashcore.TypeOps[K], opts ...MapOption[K]) *Map[K, V] {
	out := NewMap[K, V](ops, opts...)
	out.EnsureCapacity(m.Size())
	if v, ok := m.NullKeyValue(); ok {
		out.PutNullKey(v)
	}
	m.ForEach(func(k K, v V) bool {
		out.Put(k, v)
		return true
	})
	return out
}

// Equal reports whether m and other contain the same key/value pairs,
// including the null key.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
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
	m.ForEach(func(k K, v V) bool {
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
// intended for debugging and test assertions, not for use as a key itself:
// it stringifies each value with fmt.Sprintf since V is only required to be
// comparable, not hashable.
func (m *Map[K, V]) Hash() uint64 {
	var h uint64
	m.ForEach(func(k K, v V) bool {
		entry := fmt.Sprintf("%v=%v", k, v)
		h ^= xxhash.Sum64String(entry)
		return true
	})
	if v, ok := m.NullKeyValue(); ok {
		h ^= xxhash.Sum64String(fmt.Sprintf("<null>=%v", v))
	}
	return h
}

func (m *Map[K, V]) String() string {
	return fmt.Sprintf("Map{size:%d, capacity:%d}", m.Size(), m.Capacity())
}

// WriteJSON emits the map per spec.md §6.2: a string-keyed map emits as a
// flat JSON object keyed by the string, everything else emits as a JSON
// array of {Key, Value} objects. The null key, where present, is emitted
// first.
func (m *Map[K, V]) WriteJSON(sink jsonsink.Sink) {
	if isStringKeyed[K]() {
		sink.EnterObject()
		if v, ok := m.NullKeyValue(); ok {
			sink.Name("null")
			writeTypedValue(sink, v)
		}
		m.ForEach(func(k K, v V) bool {
			sink.Name(fmt.Sprintf("%v", k))
			writeTypedValue(sink, v)
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
		writeTypedValue(sink, v)
		sink.ExitObject()
	}
	m.ForEach(func(k K, v V) bool {
		sink.EnterObject()
		sink.Name("Key")
		writeTypedValue(sink, k)
		sink.Name("Value")
		writeTypedValue(sink, v)
		sink.ExitObject()
		return true
	})
	sink.ExitArray()
}

// UnsafeNextIndex advances a raw physical-slot iteration cursor without
// token validity checks. See hashcore.Core.UnsafeNext.
func (m *Map[K, V]) UnsafeNextIndex(idx int) int { return m.core.UnsafeNext(idx) }

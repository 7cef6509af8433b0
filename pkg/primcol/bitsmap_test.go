package primcol

import (
	"testing"

	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/stretchr/testify/require"
)

func TestBitsMapBasicOperations(t *testing.T) {
	m := NewBitsMap[string](hashcore.StringOps, 3, 0)
	old, had := m.Put("a", 5)
	require.False(t, had)
	require.Equal(t, uint64(0), old)

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(5), v)

	old, had = m.Put("a", 7)
	require.True(t, had)
	require.Equal(t, uint64(5), old)

	removed, ok := m.Remove("a")
	require.True(t, ok)
	require.Equal(t, uint64(7), removed)
	require.False(t, m.ContainsKey("a"))
}

func TestBitsMapValuesTruncateToWidth(t *testing.T) {
	m := NewBitsMap[string](hashcore.StringOps, 3, 0)
	m.Put("a", 0xFF) // only the low 3 bits should survive
	v, _ := m.Get("a")
	require.Equal(t, uint64(0xFF&0x7), v)
}

func TestBitsMapNullKey(t *testing.T) {
	m := NewBitsMap[string](hashcore.StringOps, 3, 0)
	require.False(t, m.HasNullKey())

	old, had := m.PutNullKey(6)
	require.False(t, had)
	require.Equal(t, uint64(0), old)
	require.True(t, m.HasNullKey())

	v, ok := m.NullKeyValue()
	require.True(t, ok)
	require.Equal(t, uint64(6), v)

	old, had = m.PutNullKey(0xFF) // only the low 3 bits should survive
	require.True(t, had)
	require.Equal(t, uint64(6), old)
	v, _ = m.NullKeyValue()
	require.Equal(t, uint64(0xFF&0x7), v)

	m.Put("a", 2)
	seen := map[string]uint64{}
	m.ForEach(func(k string, v uint64) bool {
		seen[k] = v
		return true
	})
	require.Equal(t, map[string]uint64{"a": 2}, seen, "ForEach must not visit the null key")

	removed, had := m.RemoveNullKey()
	require.True(t, had)
	require.Equal(t, uint64(0xFF&0x7), removed)
	require.False(t, m.HasNullKey())
}

func TestBitsMapResizePreservesEntries(t *testing.T) {
	m := NewBitsMap[int64](hashcore.Int64Ops, 5, 0)
	for i := int64(0); i < 300; i++ {
		m.Put(i, uint64(i%32))
	}
	for i := int64(0); i < 300; i++ {
		v, ok := m.Get(i)
		require.True(t, ok, "key %d", i)
		require.Equal(t, uint64(i%32), v)
	}
}

func TestBitsMapContainsValue(t *testing.T) {
	m := NewBitsMap[string](hashcore.StringOps, 3, 0)
	m.Put("a", 5)
	require.True(t, m.ContainsValue(5))
	require.False(t, m.ContainsValue(1))

	m.PutNullKey(1)
	require.True(t, m.ContainsValue(1))
}

func TestBitsMapUnsafeNextIndex(t *testing.T) {
	m := NewBitsMap[string](hashcore.StringOps, 3, 0)
	m.Put("a", 1)
	m.Put("b", 2)
	require.Equal(t, m.core.UnsafeNext(-1), m.UnsafeNextIndex(-1))
}

func TestBitsMapEqualAndClone(t *testing.T) {
	a := NewBitsMap[string](hashcore.StringOps, 3, 0)
	a.Put("a", 1)
	a.Put("b", 2)
	a.PutNullKey(4)

	b := a.Clone(hashcore.StringOps)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())

	b.Put("c", 6)
	require.False(t, a.Equal(b))
}

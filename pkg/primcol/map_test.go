package primcol

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/jsonsink"
	"github.com/stretchr/testify/require"
)

func TestMapBasicOperations(t *testing.T) {
	m := NewMap[string, int](hashcore.StringOps)
	require.True(t, m.IsEmpty())

	old, had := m.Put("a", 1)
	require.False(t, had)
	require.Equal(t, 0, old)

	old, had = m.Put("a", 2)
	require.True(t, had)
	require.Equal(t, 1, old)

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)

	require.False(t, m.TryPut("a", 3))
	require.True(t, m.TryPut("b", 9))

	require.Equal(t, 9, m.GetOrDefault("b", -1))
	require.Equal(t, -1, m.GetOrDefault("missing", -1))

	require.True(t, m.ContainsValue(2))
	require.False(t, m.ContainsValue(123))

	removed, ok := m.Remove("a")
	require.True(t, ok)
	require.Equal(t, 2, removed)
	require.False(t, m.ContainsKey("a"))
}

func TestMapNullKey(t *testing.T) {
	m := NewMap[string, int](hashcore.StringOps)
	require.False(t, m.HasNullKey())
	m.PutNullKey(7)
	require.True(t, m.HasNullKey())
	v, ok := m.NullKeyValue()
	require.True(t, ok)
	require.Equal(t, 7, v)

	old, had := m.RemoveNullKey()
	require.True(t, had)
	require.Equal(t, 7, old)
	require.False(t, m.HasNullKey())
}

func TestMapForEachCoversResizedEntries(t *testing.T) {
	m := NewMap[int64, int64](hashcore.Int64Ops)
	for i := int64(0); i < 500; i++ {
		m.Put(i, i*2)
	}
	seen := map[int64]int64{}
	m.ForEach(func(k, v int64) bool {
		seen[k] = v
		return true
	})
	require.Len(t, seen, 500)
	for i := int64(0); i < 500; i++ {
		require.Equal(t, i*2, seen[i])
	}
}

func TestMapEqualAndClone(t *testing.T) {
	a := NewMap[string, int](hashcore.StringOps)
	a.Put("x", 1)
	a.Put("y", 2)
	a.PutNullKey(9)

	b := a.Clone(hashcore.StringOps)
	require.True(t, a.Equal(b))

	b.Put("x", 100)
	require.False(t, a.Equal(b))
}

func TestMapWriteJSON(t *testing.T) {
	m := NewMap[string, int](hashcore.StringOps)
	m.Put("a", 1)

	cfg := jsoniter.ConfigCompatibleWithStandardLibrary
	stream := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(stream)
	m.WriteJSON(jsonsink.NewStreamSink(stream))
	require.NoError(t, stream.Error)
	require.JSONEq(t, `{"a":1}`, string(stream.Buffer()))
}

func TestMapWriteJSONEmitsNullKeyFirst(t *testing.T) {
	m := NewMap[string, int](hashcore.StringOps)
	m.Put("a", 1)
	m.PutNullKey(9)

	cfg := jsoniter.ConfigCompatibleWithStandardLibrary
	stream := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(stream)
	m.WriteJSON(jsonsink.NewStreamSink(stream))
	require.NoError(t, stream.Error)
	require.JSONEq(t, `{"null":9,"a":1}`, string(stream.Buffer()))
}

func TestMapWriteJSONNonStringKeyEmitsArray(t *testing.T) {
	m := NewMap[int, int](hashcore.IntOps)
	m.Put(1, 100)

	cfg := jsoniter.ConfigCompatibleWithStandardLibrary
	stream := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(stream)
	m.WriteJSON(jsonsink.NewStreamSink(stream))
	require.NoError(t, stream.Error)
	require.JSONEq(t, `[{"Key":1,"Value":100}]`, string(stream.Buffer()))
}

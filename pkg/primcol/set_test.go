package primcol

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/jsonsink"
	"github.com/stretchr/testify/require"
)

func TestSetBasicOperations(t *testing.T) {
	s := NewSet[string](hashcore.StringOps)
	require.True(t, s.Add("a"))
	require.False(t, s.Add("a"))
	require.True(t, s.Contains("a"))
	require.False(t, s.Contains("b"))

	require.True(t, s.Remove("a"))
	require.False(t, s.Remove("a"))
}

func TestSetResizeAndIteration(t *testing.T) {
	s := NewSet[int64](hashcore.Int64Ops)
	for i := int64(0); i < 400; i++ {
		require.True(t, s.Add(i))
	}
	s.AddNullKey()

	seen := map[int64]bool{}
	sawNull := false
	s.ForEach(func(k int64, isNull bool) bool {
		if isNull {
			sawNull = true
		} else {
			seen[k] = true
		}
		return true
	})
	require.True(t, sawNull)
	require.Len(t, seen, 400)
}

func TestSetWriteJSONEmitsNullFirst(t *testing.T) {
	s := NewSet[string](hashcore.StringOps)
	s.Add("a")
	s.AddNullKey()

	cfg := jsoniter.ConfigCompatibleWithStandardLibrary
	stream := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(stream)
	s.WriteJSON(jsonsink.NewStreamSink(stream))
	require.NoError(t, stream.Error)
	require.JSONEq(t, `[null,"a"]`, string(stream.Buffer()))
}

func TestSetUnsafeNextIndex(t *testing.T) {
	s := NewSet[string](hashcore.StringOps)
	s.Add("a")
	require.Equal(t, s.core.UnsafeNext(-1), s.UnsafeNextIndex(-1))
}

func TestSetContainsValue(t *testing.T) {
	s := NewSet[string](hashcore.StringOps)
	s.Add("a")
	require.True(t, s.ContainsValue("a"))
	require.False(t, s.ContainsValue("b"))
}

func TestSetEqualAndClone(t *testing.T) {
	a := NewSet[string](hashcore.StringOps)
	a.Add("a")
	a.Add("b")
	a.AddNullKey()

	b := a.Clone(hashcore.StringOps)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())

	b.Add("c")
	require.False(t, a.Equal(b))
}

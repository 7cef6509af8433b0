package hashcore

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceMover is the simplest possible Mover: a plain growable slice of V,
// standing in for pkg/primcol's directStore in these package-internal
// tests.
type sliceMover[V any] struct {
	data    []V
	pending []V
}

func (m *sliceMover[V]) PrepareResize(newCapacity int) { m.pending = make([]V, newCapacity) }
func (m *sliceMover[V]) RelocateValue(newIndex, oldIndex int) {
	m.pending[newIndex] = m.data[oldIndex]
}
func (m *sliceMover[V]) FinishResize() { m.data = m.pending; m.pending = nil }
func (m *sliceMover[V]) MoveValue(dst, src int) {
	m.data[dst] = m.data[src]
}
func (m *sliceMover[V]) ClearValue(i int) {
	var zero V
	m.data[i] = zero
}

func newIntTable() (*Core[int64], *sliceMover[string]) {
	mv := &sliceMover[string]{}
	c := NewCore[int64](Int64Ops, mv)
	return c, mv
}

func TestPutGetRemoveBasic(t *testing.T) {
	c, mv := newIntTable()
	dst, wasNew := c.Put(5)
	require.True(t, wasNew)
	mv.data[dst] = "five"

	dst2, wasNew2 := c.Put(5)
	require.False(t, wasNew2)
	require.Equal(t, dst, dst2)

	tok := c.TokenOf(5)
	require.NotEqual(t, InvalidToken, tok)
	require.Equal(t, "five", mv.data[tok.Index()])

	require.True(t, c.Remove(5))
	require.Equal(t, InvalidToken, c.TokenOf(5))
	require.False(t, c.Remove(5))
}

func TestResizeGrowsAndPreservesEntries(t *testing.T) {
	c, mv := newIntTable()
	for i := int64(0); i < 200; i++ {
		dst, wasNew := c.Put(i)
		require.True(t, wasNew)
		mv.data[dst] = keyLabel(i)
	}
	require.GreaterOrEqual(t, c.Capacity(), 200)
	for i := int64(0); i < 200; i++ {
		tok := c.TokenOf(i)
		require.NotEqual(t, InvalidToken, tok, "key %d", i)
		require.Equal(t, keyLabel(i), mv.data[tok.Index()])
	}
}

func keyLabel(i int64) string {
	return "v" + string(rune('A'+i%26))
}

func TestNullKey(t *testing.T) {
	c, _ := newIntTable()
	require.False(t, c.HasNullKey())
	require.True(t, c.PutNullKey())
	require.False(t, c.PutNullKey())
	require.True(t, c.HasNullKey())
	tok := c.NullKeyToken()
	require.True(t, tok.IsNullKey())
	require.True(t, c.RemoveNullKey())
	require.False(t, c.HasNullKey())
}

func TestIterationCoversEveryLiveEntry(t *testing.T) {
	c, mv := newIntTable()
	want := map[int64]bool{}
	for i := int64(0); i < 50; i++ {
		dst, _ := c.Put(i)
		mv.data[dst] = keyLabel(i)
		want[i] = true
	}
	c.PutNullKey()

	got := map[int64]bool{}
	sawNull := false
	for tok := c.FirstToken(); tok != InvalidToken; {
		if tok.IsNullKey() {
			sawNull = true
		} else {
			got[c.Key(tok)] = true
		}
		next, err := c.NextToken(tok)
		require.NoError(t, err)
		tok = next
	}
	require.True(t, sawNull)
	require.Equal(t, want, got)
}

func TestNextTokenDetectsConcurrentModification(t *testing.T) {
	c, _ := newIntTable()
	c.Put(1)
	c.Put(2)
	tok := c.FirstToken()
	c.Put(3) // bumps version
	_, err := c.NextToken(tok)
	require.ErrorIs(t, err, ErrConcurrentModification)
}

func TestRandomizedAgainstReferenceMap(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	c, mv := newIntTable()
	ref := map[int64]string{}

	for iter := 0; iter < 4000; iter++ {
		key := rng.Int63n(300)
		switch rng.Intn(3) {
		case 0, 1:
			val := keyLabel(key)
			dst, _ := c.Put(key)
			mv.data[dst] = val
			ref[key] = val
		default:
			wasPresent := c.Remove(key)
			_, inRef := ref[key]
			require.Equal(t, inRef, wasPresent, "iter %d key %d", iter, key)
			delete(ref, key)
		}

		require.Equal(t, len(ref), c.loSize+c.hiSize, "iter %d", iter)
		for k, v := range ref {
			tok := c.TokenOf(k)
			require.NotEqual(t, InvalidToken, tok, "iter %d missing key %d", iter, k)
			require.Equal(t, v, mv.data[tok.Index()])
		}
	}
}

func TestRekeyOnPathologicalCollisions(t *testing.T) {
	mv := &sliceMover[int]{}
	// A TypeOps that hashes every string key to the same bucket until
	// rekeyed, forcing the long-chain mitigation path.
	attempts := 0
	ops := FuncOps[string]{
		HashFunc: func(string) uint32 {
			if attempts == 0 {
				return 1
			}
			return 0
		},
		EqualFunc: func(a, b string) bool { return a == b },
	}
	c := NewCore[string](ops, mv, WithRekey[string](func(attempt int, _ TypeOps[string]) TypeOps[string] {
		attempts = attempt
		return StringOps
	}))

	for i := 0; i < 150; i++ {
		key := "k" + strconv.Itoa(i)
		dst, wasNew := c.Put(key)
		require.True(t, wasNew)
		mv.data[dst] = i
	}
	require.Greater(t, attempts, 0)
	for i := 0; i < 150; i++ {
		key := "k" + strconv.Itoa(i)
		tok := c.TokenOf(key)
		require.NotEqual(t, InvalidToken, tok, key)
	}
}

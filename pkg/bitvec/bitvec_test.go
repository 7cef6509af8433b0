package bitvec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func bruteRank1(ref []bool, i int) int {
	if i >= len(ref) {
		i = len(ref) - 1
	}
	n := 0
	for j := 0; j <= i; j++ {
		if ref[j] {
			n++
		}
	}
	return n
}

func bruteNext(ref []bool, i int, want bool) int {
	for j := i + 1; j < len(ref); j++ {
		if ref[j] == want {
			return j
		}
	}
	return -1
}

func brutePrev(ref []bool, i int, want bool) int {
	if i > len(ref) {
		i = len(ref)
	}
	for j := i - 1; j >= 0; j-- {
		if ref[j] == want {
			return j
		}
	}
	return -1
}

func TestGetSetBasic(t *testing.T) {
	bl := New(0)
	require.Equal(t, 0, bl.Size())

	bl.Set(5, true)
	require.Equal(t, 6, bl.Size())
	require.True(t, bl.Get(5))
	for i := 0; i < 5; i++ {
		require.False(t, bl.Get(i))
	}

	require.Panics(t, func() { bl.Get(6) })
	require.Panics(t, func() { bl.Get(-1) })
}

func TestInsertRemove(t *testing.T) {
	bl := New(0)
	for _, v := range []bool{true, false, true, true, false} {
		bl.Set(bl.Size(), v)
	}
	// [T F T T F]
	bl.Insert(2, false)
	// [T F F T T F]
	require.Equal(t, 6, bl.Size())
	got := make([]bool, bl.Size())
	for i := range got {
		got[i] = bl.Get(i)
	}
	require.Equal(t, []bool{true, false, false, true, true, false}, got)

	bl.Remove(0)
	// [F F T T F]
	require.Equal(t, 5, bl.Size())
	got = make([]bool, bl.Size())
	for i := range got {
		got[i] = bl.Get(i)
	}
	require.Equal(t, []bool{false, false, true, true, false}, got)
}

func TestCardinalityAndRank(t *testing.T) {
	bl := New(0)
	pattern := []bool{true, false, true, true, false, true, false, false, true}
	for _, v := range pattern {
		bl.Set(bl.Size(), v)
	}
	require.Equal(t, bruteRank1(pattern, len(pattern)-1), bl.Cardinality())
	for i := 0; i < len(pattern); i++ {
		require.Equal(t, bruteRank1(pattern, i), bl.Rank1(i), "rank1(%d)", i)
	}
}

func TestNextPrevSearch(t *testing.T) {
	bl := New(0)
	pattern := []bool{false, false, true, false, true, true, false, false, true, false}
	for _, v := range pattern {
		bl.Set(bl.Size(), v)
	}
	for i := -1; i <= len(pattern); i++ {
		require.Equal(t, bruteNext(pattern, i, true), bl.Next1(i), "next1(%d)", i)
		require.Equal(t, bruteNext(pattern, i, false), bl.Next0(i), "next0(%d)", i)
		require.Equal(t, brutePrev(pattern, i, true), bl.Prev1(i), "prev1(%d)", i)
		require.Equal(t, brutePrev(pattern, i, false), bl.Prev0(i), "prev0(%d)", i)
	}
	require.Equal(t, brutePrev(pattern, len(pattern), true), bl.Last1())
}

func TestRandomizedAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bl := New(0)
	var ref []bool

	for iter := 0; iter < 2000; iter++ {
		op := rng.Intn(4)
		switch {
		case len(ref) == 0 || op == 0:
			v := rng.Intn(2) == 0
			i := rng.Intn(len(ref) + 1)
			ref = append(ref, false)
			copy(ref[i+1:], ref[i:])
			ref[i] = v
			bl.Insert(i, v)
		case op == 1:
			i := rng.Intn(len(ref))
			ref = append(ref[:i], ref[i+1:]...)
			bl.Remove(i)
		case op == 2:
			i := rng.Intn(len(ref))
			v := rng.Intn(2) == 0
			ref[i] = v
			bl.Set(i, v)
		default:
			i := len(ref) + rng.Intn(5)
			v := rng.Intn(2) == 0
			for len(ref) <= i {
				ref = append(ref, false)
			}
			ref[i] = v
			bl.Set(i, v)
		}

		require.Equal(t, len(ref), bl.Size())
		for i, v := range ref {
			require.Equal(t, v, bl.Get(i), "iter %d index %d", iter, i)
		}
		require.Equal(t, bruteRank1(ref, len(ref)-1), bl.Cardinality())
	}
}

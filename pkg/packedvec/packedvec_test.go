package packedvec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndGet(t *testing.T) {
	bl := New(5, 0)
	vals := []uint64{0, 17, 31, 1, 9}
	for _, v := range vals {
		bl.Add(v)
	}
	for i, v := range vals {
		require.Equal(t, v, bl.Get(i))
	}

	bl.Remove(1)
	want := []uint64{0, 31, 1, 9}
	require.Equal(t, len(want), bl.Size())
	for i, v := range want {
		require.Equal(t, v, bl.Get(i))
	}
}

func TestSet1GrowsWithDefaultFill(t *testing.T) {
	bl := New(3, 5) // default fill 5 (0b101)
	bl.Set1(4, 2)
	require.Equal(t, 5, bl.Size())
	for i := 0; i < 4; i++ {
		require.Equal(t, uint64(5), bl.Get(i))
	}
	require.Equal(t, uint64(2), bl.Get(4))
}

func TestContainsScansOnlyLogicalRange(t *testing.T) {
	bl := New(4, 0)
	bl.Add(9)
	bl.Add(3)
	bl.Remove(1) // size shrinks to 1, but word still holds stale 3 beyond size
	require.True(t, bl.Contains(9))
	require.False(t, bl.Contains(3))
}

func TestRandomizedAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const width = 6
	bl := New(width, 0)
	mask := uint64(1<<width) - 1
	var ref []uint64

	for iter := 0; iter < 3000; iter++ {
		op := rng.Intn(3)
		switch {
		case len(ref) == 0 || op == 0:
			v := uint64(rng.Intn(1 << width))
			ref = append(ref, v)
			bl.Add(v)
		case op == 1:
			i := rng.Intn(len(ref))
			ref = append(ref[:i], ref[i+1:]...)
			bl.Remove(i)
		default:
			i := rng.Intn(len(ref))
			v := uint64(rng.Intn(1 << width))
			ref[i] = v
			bl.Set1(i, v)
		}
		require.Equal(t, len(ref), bl.Size())
		for i, v := range ref {
			require.Equal(t, v&mask, bl.Get(i), "iter %d idx %d", iter, i)
		}
	}
}

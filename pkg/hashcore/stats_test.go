package hashcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatsReportsShape(t *testing.T) {
	c, mv := newIntTable()
	for i := int64(0); i < 30; i++ {
		dst, _ := c.Put(i)
		mv.data[dst] = keyLabel(i)
	}
	s := c.Stats()
	require.Equal(t, 30, s.Size)
	require.Equal(t, c.Capacity(), s.Capacity)
	require.Greater(t, s.LoadFactor(), 0.0)

	total := 0
	for length, count := range s.ChainLengthHistogram {
		total += length * count
	}
	require.Equal(t, 30, total)
}

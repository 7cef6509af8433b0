package hashcore

// Stats is a point-in-time snapshot of table shape, used by the optional
// prometheus.Collector in pkg/primcol/primcolmetrics.
type Stats struct {
	Size           int
	Capacity       int
	LoSize         int
	HiSize         int
	NumBuckets     int
	MaxChainLength int
	// ChainLengthHistogram maps chain length to the number of buckets
	// whose chain has exactly that length (0-length buckets, i.e. empty
	// ones, are omitted).
	ChainLengthHistogram map[int]int
}

// Stats walks every bucket's chain and reports the table's current shape.
// It is O(capacity) and intended for diagnostics, not the hot path.
func (c *Core[K]) Stats() Stats {
	s := Stats{
		Size:                 c.Size(),
		Capacity:             c.Capacity(),
		LoSize:               c.loSize,
		HiSize:               c.hiSize,
		NumBuckets:           len(c.buckets),
		ChainLengthHistogram: make(map[int]int),
	}
	for _, head1 := range c.buckets {
		if head1 == 0 {
			continue
		}
		length := 0
		idx := int(head1) - 1
		for {
			length++
			if idx >= c.loSize {
				break
			}
			idx = int(c.links[idx])
		}
		s.ChainLengthHistogram[length]++
		if length > s.MaxChainLength {
			s.MaxChainLength = length
		}
	}
	return s
}

// LoadFactor returns size/capacity, or 0 for an unallocated table.
func (s Stats) LoadFactor() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Capacity)
}

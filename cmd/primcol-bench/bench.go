package main

import (
	"fmt"
	"math/rand"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/primcol"
	"github.com/grafana/primcol/pkg/primcol/primcolmetrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// BenchCmd drives the same random get/put sequence against an LRU cache
// (bounded, eviction on overflow) and a primcol.Map (unbounded), reporting
// wall-clock time and hit count for each.
type BenchCmd struct {
	Keys    int  `default:"100000" help:"Number of distinct keys in the workload."`
	Ops     int  `default:"500000" help:"Number of get/put operations to issue."`
	CacheSz int  `default:"10000" help:"Capacity of the comparison LRU cache."`
	Metrics bool `help:"Print a Prometheus snapshot of the Map's table shape afterward."`
	Seed    int64 `default:"1" help:"Random seed, for reproducible runs."`
}

func (b *BenchCmd) Run(log *zap.Logger) error {
	rng := rand.New(rand.NewSource(b.Seed))

	cache, err := lru.New[int64, int64](b.CacheSz)
	if err != nil {
		return fmt.Errorf("constructing LRU cache: %w", err)
	}
	m := primcol.NewMap[int64, int64](hashcore.Int64Ops)

	start := time.Now()
	var cacheHits int
	for i := 0; i < b.Ops; i++ {
		k := rng.Int63n(int64(b.Keys))
		if _, ok := cache.Get(k); ok {
			cacheHits++
		} else {
			cache.Add(k, k*31)
		}
	}
	cacheElapsed := time.Since(start)

	rng = rand.New(rand.NewSource(b.Seed))
	start = time.Now()
	var mapHits int
	for i := 0; i < b.Ops; i++ {
		k := rng.Int63n(int64(b.Keys))
		if _, ok := m.Get(k); ok {
			mapHits++
		} else {
			m.Put(k, k*31)
		}
	}
	mapElapsed := time.Since(start)

	log.Info("lru cache workload complete",
		zap.Duration("elapsed", cacheElapsed), zap.Int("hits", cacheHits), zap.Int("len", cache.Len()))
	log.Info("primcol.Map workload complete",
		zap.Duration("elapsed", mapElapsed), zap.Int("hits", mapHits), zap.Int("size", m.Size()))

	if b.Metrics {
		reg := prometheus.NewRegistry()
		collector := primcolmetrics.NewCollector("bench_map", m.Stats)
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("registering collector: %w", err)
		}
		families, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gathering metrics: %w", err)
		}
		for _, f := range families {
			for _, mf := range f.GetMetric() {
				fmt.Printf("%s %v\n", f.GetName(), mf.GetGauge().GetValue())
			}
		}
	}
	return nil
}

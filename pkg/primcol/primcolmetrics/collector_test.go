package primcolmetrics

import (
	"testing"

	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCollectorReportsSnapshot(t *testing.T) {
	snap := hashcore.Stats{Size: 3, Capacity: 7, MaxChainLength: 2}
	c := NewCollector("test", func() hashcore.Stats { return snap })

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	metrics, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range metrics {
		for _, m := range mf.GetMetric() {
			values[mf.GetName()] = valueOf(m)
		}
	}
	require.Equal(t, 3.0, values["primcol_table_size"])
	require.Equal(t, 7.0, values["primcol_table_capacity"])
	require.InDelta(t, 3.0/7.0, values["primcol_table_load_factor"], 1e-9)
	require.Equal(t, 2.0, values["primcol_table_max_chain_length"])
}

func valueOf(m *dto.Metric) float64 {
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	return 0
}

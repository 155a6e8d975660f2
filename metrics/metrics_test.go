package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	require.NotNil(t, r)

	r.PacketsSent.Inc()
	r.PacketsSent.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "dynet_packets_sent_total" {
			found = true
			require.Len(t, f.Metric, 1)
			assert.Equal(t, float64(2), f.Metric[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

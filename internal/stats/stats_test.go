package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorIncrementsCacheHits(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.CacheHits.Inc()
	c.CacheHits.Inc()

	m := &dto.Metric{}
	require.NoError(t, c.CacheHits.Write(m))
	assert.Equal(t, float64(2), m.GetCounter().GetValue())
}

func TestCollectorConnectionsLabeledByProtocol(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ConnectionsEstablished.WithLabelValues("h3").Inc()

	m := &dto.Metric{}
	require.NoError(t, c.ConnectionsEstablished.WithLabelValues("h3").Write(m))
	assert.Equal(t, float64(1), m.GetCounter().GetValue())
}

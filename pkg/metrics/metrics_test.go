package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollectorsRegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)
	require.NotNil(t, c)

	c.PendingRequests.Set(3)
	c.FramesSent.Inc()
	c.Reconnects.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}

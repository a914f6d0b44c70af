package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("events_total", nil, "test counter")
	r.IncrementCounter("events_total", nil, "test counter")
	r.AddToCounter("events_total", 3, nil, "test counter")

	assert.Equal(t, float64(5), r.GetCounterValue("events_total", nil))
}

func TestRegistry_CountersWithLabels(t *testing.T) {
	r := NewRegistry()

	labels := map[string]string{"kind": "status"}
	r.IncrementCounter("notifications_total", labels, "")
	r.IncrementCounter("notifications_total", map[string]string{"kind": "message"}, "")

	assert.Equal(t, float64(1), r.GetCounterValue("notifications_total", labels))
	assert.Equal(t, float64(0), r.GetCounterValue("notifications_total", map[string]string{"kind": "other"}))
}

func TestRegistry_Gauges(t *testing.T) {
	r := NewRegistry()

	r.SetGauge("sessions_active", 3, nil, "active sessions")
	r.SetGauge("sessions_active", 7, nil, "active sessions")

	all := r.GetAllMetrics()
	gauges, ok := all["gauges"].(map[string]*Metric)
	require.True(t, ok)
	require.Contains(t, gauges, "sessions_active")
	assert.Equal(t, float64(7), gauges["sessions_active"].Value)
}

func TestRegistry_GetAllMetrics(t *testing.T) {
	r := NewRegistry()
	r.IncrementCounter("a_total", nil, "")
	r.SetGauge("b", 1, nil, "")

	all := r.GetAllMetrics()
	assert.Contains(t, all, "counters")
	assert.Contains(t, all, "gauges")
	assert.Contains(t, all, "uptime_ms")
	assert.Contains(t, all, "timestamp")
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.IncrementCounter("a_total", nil, "")
	r.Reset()

	assert.Equal(t, float64(0), r.GetCounterValue("a_total", nil))
}

func TestGlobalRegistry(t *testing.T) {
	GetRegistry().Reset()
	defer GetRegistry().Reset()

	IncrementCounter("global_total", nil, "")
	AddToCounter("global_total", 2, nil, "")
	SetGauge("global_gauge", 9, nil, "")

	assert.Equal(t, float64(3), GetRegistry().GetCounterValue("global_total", nil))
}

package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalMetricsSentinels(t *testing.T) {
	data, err := marshalMetrics(map[string]float64{
		"profit_factor": math.Inf(1),
		"win_rate":      math.NaN(),
		"total_trades":  4,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"profit_factor":null,"win_rate":null,"total_trades":4}`, string(data))
}

func TestMarshalMetricsNil(t *testing.T) {
	data, err := marshalMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestInitRegistry(t *testing.T) {
	registry := InitRegistry()
	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestGetRegistryReturnsSameInstance(t *testing.T) {
	first := GetRegistry()
	second := GetRegistry()
	assert.Same(t, first, second)
}

func TestHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}

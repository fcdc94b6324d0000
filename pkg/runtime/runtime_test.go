package runtime

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestPortFormula(t *testing.T) {
	rt := New(0, 0, nil, prometheus.NewRegistry())
	assert.Equal(t, uint32(7400), rt.MetatrafficMulticastPort())
	assert.Equal(t, uint32(7410), rt.MetatrafficUnicastPort())

	rt2 := New(1, 2, nil, prometheus.NewRegistry())
	assert.Equal(t, uint32(7650), rt2.MetatrafficMulticastPort())
	assert.Equal(t, uint32(7664), rt2.MetatrafficUnicastPort())
}

func TestNewUsesStandardLoggerByDefault(t *testing.T) {
	rt := New(0, 0, nil, prometheus.NewRegistry())
	assert.NotNil(t, rt.Log)
	assert.NotNil(t, rt.Metrics)
}

package lfbb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDemoConfig(t *testing.T) {
	cfg := DefaultDemoConfig()
	assert.EqualValues(t, 64*1024, cfg.CapacityBytes)
	assert.Equal(t, "64", cfg.CacheLinePadding)
}

func TestDemoConfigToOptions(t *testing.T) {
	cases := []struct {
		padding string
	}{{"64"}, {"128"}, {"none"}, {""}, {"bogus"}}

	for _, tc := range cases {
		cfg := DefaultDemoConfig()
		cfg.CapacityBytes = 32
		cfg.CacheLinePadding = tc.padding

		buf := New(make([]byte, cfg.CapacityBytes), cfg.ToOptions()...)
		region := buf.WriteAcquire(5)
		require.NotNil(t, region)
		buf.WriteRelease(5)
		_, available := buf.ReadAcquire()
		assert.EqualValues(t, 5, available)
	}
}

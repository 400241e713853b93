package profiler

import (
	"errors"
	"testing"
	"time"

	rp "github.com/Carmen-Shannon/oxy-core/engine/render_pipeline"
	"github.com/Carmen-Shannon/oxy-core/engine/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFrame(t *testing.T) {
	p := NewProfiler(WithLogger(logger.Discard()))

	p.ObserveFrame(rp.FrameStats{Index: 1, Draws: 10, Skipped: 1, Stages: 3, Duration: 2 * time.Millisecond})
	p.ObserveFrame(rp.FrameStats{Index: 2, Draws: 5, Stages: 2, Duration: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(p.frames))
	assert.Equal(t, 15.0, testutil.ToFloat64(p.draws))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.skipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.stages))
	assert.Equal(t, 1, testutil.CollectAndCount(p.frameDuration))
}

func TestObserveConfigurationError(t *testing.T) {
	p := NewProfiler(WithNamespace("test"))
	err := &rp.ConfigurationError{Stage: "ssr", Feature: rp.FeatureSSR, Err: errors.New("no material")}

	p.ObserveConfigurationError(err)
	p.ObserveConfigurationError(err)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.configErrors.WithLabelValues("ssr", rp.FeatureSSR.String())))

	families, gatherErr := p.Registry().Gather()
	require.NoError(t, gatherErr)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_render_configuration_errors_total")
}

func TestTickInterval(t *testing.T) {
	p := NewProfiler(WithInterval(time.Hour), WithLogger(logger.Discard()))
	assert.False(t, p.Tick())
	assert.False(t, p.Tick())

	p.lastTime = time.Now().Add(-2 * time.Hour)
	assert.True(t, p.Tick())
	assert.Zero(t, p.frameCount)
}

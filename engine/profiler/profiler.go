package profiler

import (
	"runtime"
	"sync"
	"time"

	rp "github.com/Carmen-Shannon/oxy-core/engine/render_pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval and exports render pipeline
// frame statistics as Prometheus collectors on its own registry.
type Profiler struct {
	mu             sync.Mutex
	log            logrus.FieldLogger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	registry      *prometheus.Registry
	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	draws         prometheus.Counter
	skipped       prometheus.Counter
	stages        prometheus.Gauge
	configErrors  *prometheus.CounterVec
}

var _ rp.Observer = &Profiler{}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and the metric namespace to "oxy".
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		log:            logrus.StandardLogger(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	namespace := "oxy"
	for _, option := range options {
		option(p, &namespace)
	}

	p.registry = prometheus.NewRegistry()
	p.frames = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "frames_total",
		Help:      "Total number of frames rendered",
	})
	p.frameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "frame_duration_seconds",
		Help:      "CPU time spent recording a frame",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~250ms
	})
	p.draws = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "draws_total",
		Help:      "Total number of scene draw calls issued",
	})
	p.skipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "draws_skipped_total",
		Help:      "Total number of scene draws skipped because they failed",
	})
	p.stages = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "postprocess_stages",
		Help:      "Post-process stages run in the last frame",
	})
	p.configErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "configuration_errors_total",
		Help:      "Controllers deactivated after a configuration failure",
	}, []string{"stage", "feature"})

	p.registry.MustRegister(p.frames, p.frameDuration, p.draws, p.skipped, p.stages, p.configErrors)
	return p
}

// Registry returns the registry holding the profiler's collectors, for exposition.
func (p *Profiler) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Profiler) ObserveFrame(stats rp.FrameStats) {
	p.frames.Inc()
	p.frameDuration.Observe(stats.Duration.Seconds())
	p.draws.Add(float64(stats.Draws))
	p.skipped.Add(float64(stats.Skipped))
	p.stages.Set(float64(stats.Stages))
}

func (p *Profiler) ObserveConfigurationError(err *rp.ConfigurationError) {
	p.configErrors.WithLabelValues(err.Stage, err.Feature.String()).Inc()
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.log.WithFields(logrus.Fields{
		"fps":           fps,
		"heap_mb":       allocMB,
		"alloc_rate_mb": allocRateMB,
		"gc":            gcCount,
		"gc_last_us":    lastPauseUs,
		"gc_max_us":     maxPauseUs,
		"sys_mb":        sysMB,
	}).Info("profiler")

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler, namespace *string)

// WithInterval sets how often Tick logs statistics.
//
// Parameters:
//   - d: the log interval; values <= 0 are ignored
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler, _ *string) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithNamespace sets the Prometheus metric namespace.
func WithNamespace(namespace string) ProfilerBuilderOption {
	return func(_ *Profiler, ns *string) {
		if namespace != "" {
			*ns = namespace
		}
	}
}

// WithLogger sets the logger used for periodic statistics.
func WithLogger(log logrus.FieldLogger) ProfilerBuilderOption {
	return func(p *Profiler, _ *string) {
		if log != nil {
			p.log = log
		}
	}
}

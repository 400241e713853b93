package task

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ThreadBuilderOption is a functional option for configuring a Thread.
type ThreadBuilderOption func(*thread)

// WithName sets the name used in log fields.
func WithName(name string) ThreadBuilderOption {
	return func(t *thread) {
		t.name = name
	}
}

// WithWorkers sets the maximum number of concurrent workers.
func WithWorkers(n int) ThreadBuilderOption {
	return func(t *thread) {
		t.workers = n
	}
}

// WithQueueSize sets how many tasks may wait for a free worker.
func WithQueueSize(n int) ThreadBuilderOption {
	return func(t *thread) {
		t.queueSize = n
	}
}

// WithIdleTimeout sets how long an idle worker lingers before exiting.
func WithIdleTimeout(d time.Duration) ThreadBuilderOption {
	return func(t *thread) {
		t.idleTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) ThreadBuilderOption {
	return func(t *thread) {
		if l != nil {
			t.log = l
		}
	}
}

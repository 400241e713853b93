package asset

import "github.com/sirupsen/logrus"

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(*manager)

// WithCapacity sets how many loaded assets are cached before the least recently used
// one is evicted.
func WithCapacity(n int) ManagerBuilderOption {
	return func(m *manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) ManagerBuilderOption {
	return func(m *manager) {
		if l != nil {
			m.log = l
		}
	}
}

package device

import "github.com/sirupsen/logrus"

// HeadlessBuilderOption is a functional option for configuring a headless device.
type HeadlessBuilderOption func(*headlessDevice)

// WithBudget caps the number of live resources. Allocations past the cap fail with
// ErrResourceExhausted.
func WithBudget(n int) HeadlessBuilderOption {
	return func(d *headlessDevice) {
		d.budget = n
	}
}

// WithHeadlessLogger sets the logger.
func WithHeadlessLogger(l logrus.FieldLogger) HeadlessBuilderOption {
	return func(d *headlessDevice) {
		if l != nil {
			d.log = l
		}
	}
}

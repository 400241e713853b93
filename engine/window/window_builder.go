package window

import (
	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/sirupsen/logrus"
)

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial framebuffer size request. High-DPI platforms may report
// a larger framebuffer once the window is created.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 && height > 0 {
			w.width, w.height = width, height
		}
	}
}

// WithSizeLimits sets the minimum and maximum window size during resize.
//
// Parameters:
//   - minWidth, minHeight: the smallest allowed size in pixels
//   - maxWidth, maxHeight: the largest allowed size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithEvents sets the queue the window posts into, normally the engine's.
func WithEvents(q event.Queue) WindowBuilderOption {
	return func(w *engineWindow) {
		w.queue = q
	}
}

// WithCloseKey sets the key that requests shutdown. Zero disables it.
func WithCloseKey(key uint32) WindowBuilderOption {
	return func(w *engineWindow) {
		w.closeKey = key
	}
}

// WithLogger sets the window logger.
func WithLogger(log logrus.FieldLogger) WindowBuilderOption {
	return func(w *engineWindow) {
		if log != nil {
			w.log = log
		}
	}
}

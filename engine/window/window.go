package window

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// ErrNotInitialized is returned by Close on a window whose platform half was never created.
var ErrNotInitialized = errors.New("window: not initialized")

// Window provides platform windowing. Input and window events are posted into an
// event.Queue and drained by the engine at the start of each frame.
type Window interface {
	// Events returns the queue the window posts into.
	//
	// Returns:
	//   - event.Queue: the event queue
	Events() event.Queue

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents pumps the platform message loop once without blocking. Must be
	// called from the thread that created the window.
	//
	// Returns:
	//   - bool: true while the window is still running
	PollEvents() bool

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow holds window configuration and translates platform callbacks into events.
type engineWindow struct {
	title     string
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int
	width     int
	height    int

	// closeKey is the key that requests shutdown; zero disables it.
	closeKey uint32
	closed   bool

	queue event.Queue
	log   logrus.FieldLogger

	// platform holds the platform-specific window data (glfwWindow).
	platform *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a platform window. Applies default values first,
// then each option in order. Without WithEvents the window creates its own queue.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		closeKey:  KeyEscape,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(w)
	}
	if w.queue == nil {
		w.queue = event.NewQueue()
	}
	return w
}

func (w *engineWindow) Events() event.Queue {
	return w.queue
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) post(ev event.Event) {
	if err := w.queue.Post(ev); err != nil {
		w.log.WithError(err).WithField("kind", ev.Kind.String()).Debug("window event dropped")
	}
}

func (w *engineWindow) keyDown(key uint32) {
	if w.closeKey != 0 && key == w.closeKey {
		w.requestClose()
		return
	}
	w.post(event.Event{Kind: event.KindKeyDown, Key: key})
}

func (w *engineWindow) keyUp(key uint32) {
	if w.closeKey != 0 && key == w.closeKey {
		return
	}
	w.post(event.Event{Kind: event.KindKeyUp, Key: key})
}

func (w *engineWindow) mouseMove(x, y int32) {
	w.post(event.Event{Kind: event.KindMouseMove, X: x, Y: y})
}

func (w *engineWindow) scroll(delta float32) {
	w.post(event.Event{Kind: event.KindScroll, Delta: delta})
}

// resize records the framebuffer size. Minimized windows report 0x0, which is not posted.
func (w *engineWindow) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.post(event.Event{Kind: event.KindResize, Width: width, Height: height})
}

// requestClose posts a single close event.
func (w *engineWindow) requestClose() {
	if w.closed {
		return
	}
	w.closed = true
	w.post(event.Event{Kind: event.KindClose})
}

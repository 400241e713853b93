// Package asset loads opaque assets on the task thread and publishes them to the frame
// loop through the event queue.
package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-core/engine/event"
	"github.com/Carmen-Shannon/oxy-core/engine/task"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// ErrPending is returned by Load when an asset with the same name is already loading.
var ErrPending = errors.New("asset: load already pending")

// Loader produces an in-memory asset. Importers for concrete file formats live outside
// the engine and are plugged in through this function.
type Loader func(ctx context.Context) (any, error)

// Releaser is implemented by assets holding resources that must be freed on eviction.
type Releaser interface {
	Release()
}

// State describes where an asset is in its load lifecycle.
type State int

const (
	// StateUnknown means the asset was never requested or has been evicted.
	StateUnknown State = iota
	// StatePending means the loader is still running.
	StatePending
	// StateLoaded means the asset is available through Get.
	StateLoaded
	// StateFailed means the loader returned an error.
	StateFailed
)

// Manager tracks background asset loads. Every method except the loader itself runs on
// the frame thread.
type Manager interface {
	// Load starts loading name on the task thread. When the loader finishes a
	// KindAssetLoaded event is posted to the queue; the frame loop hands it back to
	// Apply to publish the result.
	//
	// Parameters:
	//   - name: the asset name
	//   - loader: the function producing the asset
	//
	// Returns:
	//   - error: ErrPending, or an error if the task thread rejected the work
	Load(name string, loader Loader) error

	// Apply publishes the result carried by a KindAssetLoaded event.
	//
	// Parameters:
	//   - ev: an event from the queue
	//
	// Returns:
	//   - bool: true if the event was an asset event handled by this manager
	Apply(ev event.Event) bool

	// Get returns a loaded asset.
	//
	// Parameters:
	//   - name: the asset name
	//
	// Returns:
	//   - any: the asset, nil if not loaded
	//   - bool: true if the asset was loaded
	Get(name string) (any, bool)

	// State reports the load state of name.
	State(name string) State

	// Err returns the loader error for a failed asset.
	Err(name string) error

	// Evict drops name from the cache, releasing it if it implements Releaser.
	Evict(name string)

	// Close cancels pending loaders and releases every cached asset.
	Close()
}

type manager struct {
	thread task.Thread
	queue  event.Queue
	log    logrus.FieldLogger

	capacity int
	ctx      context.Context
	cancel   context.CancelFunc

	cache   *lru.Cache[string, any]
	pending map[string]struct{}
	failed  map[string]error
}

var _ Manager = &manager{}

// NewManager creates an asset manager. The thread and queue are required.
//
// Parameters:
//   - thread: the task thread running loaders
//   - queue: the main-loop event queue receiving completion events
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the new manager
//   - error: an error if the cache cannot be created
func NewManager(thread task.Thread, queue event.Queue, options ...ManagerBuilderOption) (Manager, error) {
	if thread == nil {
		panic("asset: NewManager requires a non-nil task thread")
	}
	if queue == nil {
		panic("asset: NewManager requires a non-nil event queue")
	}

	m := &manager{
		thread:   thread,
		queue:    queue,
		log:      logrus.StandardLogger(),
		capacity: 256,
		pending:  make(map[string]struct{}),
		failed:   make(map[string]error),
	}
	for _, option := range options {
		option(m)
	}

	cache, err := lru.NewWithEvict[string, any](m.capacity, func(name string, v any) {
		if r, ok := v.(Releaser); ok {
			r.Release()
		}
		m.log.WithField("asset", name).Debug("asset evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("asset: create cache: %w", err)
	}
	m.cache = cache
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m, nil
}

func (m *manager) Load(name string, loader Loader) error {
	if _, ok := m.pending[name]; ok {
		return fmt.Errorf("%w: %s", ErrPending, name)
	}

	ctx := m.ctx
	queue := m.queue
	err := m.thread.Enqueue(func() error {
		v, err := loader(ctx)
		ev := event.Event{Kind: event.KindAssetLoaded, Name: name, Payload: v, Err: err}
		if postErr := queue.Post(ev); postErr != nil {
			if r, ok := v.(Releaser); ok {
				r.Release()
			}
			return fmt.Errorf("asset: publish %s: %w", name, postErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("asset: schedule %s: %w", name, err)
	}
	m.pending[name] = struct{}{}
	delete(m.failed, name)
	return nil
}

func (m *manager) Apply(ev event.Event) bool {
	if ev.Kind != event.KindAssetLoaded {
		return false
	}
	if _, ok := m.pending[ev.Name]; !ok {
		return false
	}
	delete(m.pending, ev.Name)

	if ev.Err != nil {
		m.failed[ev.Name] = ev.Err
		m.log.WithError(ev.Err).WithField("asset", ev.Name).Warn("asset load failed")
		return true
	}
	m.cache.Add(ev.Name, ev.Payload)
	return true
}

func (m *manager) Get(name string) (any, bool) {
	return m.cache.Get(name)
}

func (m *manager) State(name string) State {
	if _, ok := m.pending[name]; ok {
		return StatePending
	}
	if _, ok := m.failed[name]; ok {
		return StateFailed
	}
	if m.cache.Contains(name) {
		return StateLoaded
	}
	return StateUnknown
}

func (m *manager) Err(name string) error {
	return m.failed[name]
}

func (m *manager) Evict(name string) {
	m.cache.Remove(name)
}

func (m *manager) Close() {
	m.cancel()
	m.cache.Purge()
	clear(m.pending)
}

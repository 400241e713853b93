package task

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotStarted is returned by Enqueue before Start has been called.
	ErrNotStarted = errors.New("task: thread not started")
	// ErrStopped is returned by Start and Enqueue once the thread has been stopped.
	ErrStopped = errors.New("task: thread stopped")
)

// Func is a unit of background work. A returned error is logged by the thread.
type Func func() error

// Thread runs background work off the frame loop. Tasks never touch the scene graph
// directly; they hand results back through the event queue.
type Thread interface {
	// Start makes the thread accept work. Calling Start on a running thread is a no-op.
	//
	// Returns:
	//   - error: ErrStopped if the thread was already stopped
	Start() error

	// Enqueue schedules fn for execution on one of the thread's workers.
	//
	// Parameters:
	//   - fn: the work to run
	//
	// Returns:
	//   - error: ErrNotStarted or ErrStopped if the thread cannot accept work
	Enqueue(fn Func) error

	// Stop rejects further work and blocks until every in-flight task has finished.
	// Safe to call more than once and from teardown paths.
	Stop()

	// Join blocks until every task enqueued so far has finished without stopping the thread.
	Join()

	// Running reports whether the thread currently accepts work.
	//
	// Returns:
	//   - bool: true between Start and Stop
	Running() bool

	// Failures returns how many tasks have returned an error or panicked.
	//
	// Returns:
	//   - int: the failure count
	Failures() int
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

type thread struct {
	mu       sync.Mutex
	inflight sync.WaitGroup
	state    state
	nextID   int
	failures int

	name        string
	workers     int
	queueSize   int
	idleTimeout time.Duration
	log         logrus.FieldLogger

	pool worker.DynamicWorkerPool
}

var _ Thread = &thread{}

// NewThread creates a stopped-until-started task thread.
//
// Parameters:
//   - options: functional options to configure the thread
//
// Returns:
//   - Thread: the new thread
func NewThread(options ...ThreadBuilderOption) Thread {
	t := &thread{
		name:        "task",
		workers:     2,
		queueSize:   64,
		idleTimeout: time.Second,
		log:         logrus.StandardLogger(),
	}
	for _, option := range options {
		option(t)
	}
	if t.workers < 1 {
		t.workers = 1
	}
	if t.queueSize < 1 {
		t.queueSize = 1
	}
	t.log = t.log.WithField("thread", t.name)
	return t
}

func (t *thread) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case stateRunning:
		return nil
	case stateStopped:
		return ErrStopped
	}
	t.pool = worker.NewDynamicWorkerPool(t.workers, t.queueSize, t.idleTimeout)
	t.state = stateRunning
	t.log.WithField("workers", t.workers).Debug("task thread started")
	return nil
}

func (t *thread) Enqueue(fn Func) error {
	if fn == nil {
		return fmt.Errorf("task: enqueue nil func")
	}

	t.mu.Lock()
	switch t.state {
	case stateIdle:
		t.mu.Unlock()
		return ErrNotStarted
	case stateStopped:
		t.mu.Unlock()
		return ErrStopped
	}
	// Add under the lock so Stop cannot start waiting before this task is counted.
	t.inflight.Add(1)
	id := t.nextID
	t.nextID++
	pool := t.pool
	t.mu.Unlock()

	pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer t.inflight.Done()
			err := t.run(id, fn)
			return nil, err
		},
	})
	return nil
}

func (t *thread) run(id int, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task: panic in task %d: %v", id, r)
		}
		if err != nil {
			t.mu.Lock()
			t.failures++
			t.mu.Unlock()
			t.log.WithError(err).WithField("task", id).Error("task failed")
		}
	}()
	return fn()
}

func (t *thread) Stop() {
	t.mu.Lock()
	wasRunning := t.state == stateRunning
	t.state = stateStopped
	t.mu.Unlock()

	t.inflight.Wait()
	if wasRunning {
		t.log.Debug("task thread stopped")
	}
}

func (t *thread) Join() {
	t.inflight.Wait()
}

func (t *thread) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateRunning
}

func (t *thread) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

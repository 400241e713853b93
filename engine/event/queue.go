package event

import (
	"errors"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Post after Close.
var ErrQueueClosed = errors.New("event: queue closed")

// queue is the implementation of the Queue interface.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	events []Event
	closed bool
}

// Queue is the single-consumer FIFO used to move window, input and loader events from
// auxiliary goroutines into the frame loop. It is the only locked structure the frame
// loop touches.
type Queue interface {
	// Post enqueues an event and wakes a waiting consumer. Safe from any goroutine.
	//
	// Parameters:
	//   - ev: the event to enqueue
	//
	// Returns:
	//   - error: ErrQueueClosed after Close
	Post(ev Event) error

	// Poll drains every queued event in FIFO order without blocking.
	//
	// Returns:
	//   - []Event: the drained events, or nil if the queue was empty
	Poll() []Event

	// Wait blocks until an event is available, the timeout elapses or the queue closes.
	//
	// Parameters:
	//   - timeout: the longest time to block; values <= 0 do not block
	//
	// Returns:
	//   - Event: the oldest event
	//   - bool: false if no event was available
	Wait(timeout time.Duration) (Event, bool)

	// Len returns the number of queued events.
	Len() int

	// Close rejects further posts and wakes all waiters. Queued events can still be
	// drained. Safe to call more than once.
	Close()

	// Closed reports whether Close has been called.
	Closed() bool
}

var _ Queue = &queue{}

// NewQueue creates an empty Queue.
func NewQueue() Queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) Post(ev Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.events = append(q.events, ev)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

func (q *queue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

func (q *queue) Wait(timeout time.Duration) (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 && !q.closed && timeout > 0 {
		expired := false
		timer := time.AfterFunc(timeout, func() {
			q.mu.Lock()
			expired = true
			q.mu.Unlock()
			q.cond.Broadcast()
		})
		defer timer.Stop()
		for len(q.events) == 0 && !q.closed && !expired {
			q.cond.Wait()
		}
	}

	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]
	q.events[0] = Event{}
	q.events = q.events[1:]
	return ev, true
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

package message

import (
	"sync"
	"sync/atomic"
)

// Token identifies a subscription returned by ListenerList.Add. Unsubscribing is
// keyed by token, never by the callback's address.
type Token uint64

// InvalidToken is never issued by a ListenerList.
const InvalidToken Token = 0

type subscription[T any] struct {
	token Token
	fn    T
	alive atomic.Bool
}

// ListenerList is an ordered set of callbacks. Iteration works on a snapshot of the
// list, and a callback removed while an iteration is in progress is skipped for the
// rest of that iteration.
type ListenerList[T any] struct {
	mu      sync.Mutex
	next    Token
	entries []*subscription[T]
}

// Add appends fn and returns its token.
func (l *ListenerList[T]) Add(fn T) Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	s := &subscription[T]{token: l.next, fn: fn}
	s.alive.Store(true)
	l.entries = append(l.entries, s)
	return s.token
}

// Remove unsubscribes the callback registered under tok.
//
// Returns:
//   - bool: true if a subscription was removed
func (l *ListenerList[T]) Remove(tok Token) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.entries {
		if s.token == tok {
			s.alive.Store(false)
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every subscription.
func (l *ListenerList[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.entries {
		s.alive.Store(false)
	}
	l.entries = nil
}

// Len returns the number of live subscriptions.
func (l *ListenerList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Each calls visit for every subscription in registration order.
//
// Returns:
//   - int: the number of callbacks visited
func (l *ListenerList[T]) Each(visit func(T)) int {
	l.mu.Lock()
	snapshot := make([]*subscription[T], len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	n := 0
	for _, s := range snapshot {
		if !s.alive.Load() {
			continue
		}
		visit(s.fn)
		n++
	}
	return n
}

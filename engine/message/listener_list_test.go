package message

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
	"github.com/stretchr/testify/assert"
)

func TestListenerListOrderAndRemove(t *testing.T) {
	var l ListenerList[func() string]
	a := l.Add(func() string { return "a" })
	l.Add(func() string { return "b" })
	l.Add(func() string { return "c" })

	var got []string
	l.Each(func(fn func() string) { got = append(got, fn()) })
	assert.Equal(t, []string{"a", "b", "c"}, got)

	assert.True(t, l.Remove(a))
	assert.False(t, l.Remove(a))
	assert.False(t, l.Remove(InvalidToken))
	assert.Equal(t, 2, l.Len())
}

func TestListenerRemovedMidDispatchIsSkipped(t *testing.T) {
	var l ListenerList[func()]
	var calls []string
	var second Token

	l.Add(func() {
		calls = append(calls, "first")
		l.Remove(second)
	})
	second = l.Add(func() { calls = append(calls, "second") })
	l.Add(func() { calls = append(calls, "third") })

	n := l.Each(func(fn func()) { fn() })
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first", "third"}, calls)
}

func TestListenerAddedMidDispatchWaitsForNextRound(t *testing.T) {
	var l ListenerList[func()]
	calls := 0
	l.Add(func() {
		calls++
		l.Add(func() { calls += 10 })
	})

	l.Each(func(fn func()) { fn() })
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, l.Len())
}

func TestFilterMatches(t *testing.T) {
	base := rtti.New("Base", nil, nil)
	derived := rtti.New("Derived", base, nil)
	other := rtti.New("Other", nil, nil)

	assert.True(t, Filter{}.Matches("any", nil))
	assert.True(t, Filter{Name: "hero"}.Matches("hero", nil))
	assert.False(t, Filter{Name: "hero"}.Matches("villain", nil))
	assert.True(t, Filter{Type: base}.Matches("x", derived))
	assert.False(t, Filter{Type: base}.Matches("x", other))
}

func TestListenerFunc(t *testing.T) {
	var got Message
	var lst Listener = ListenerFunc(func(msg Message) { got = msg })
	lst.OnMessage(Message{ID: IDKeyDown, Payload: 87})
	assert.Equal(t, IDKeyDown, got.ID)
	assert.Equal(t, 87, got.Payload)
}

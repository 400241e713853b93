package material

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePass is returned when the same pass is added to a technique twice.
	ErrDuplicatePass = errors.New("material: pass already in technique")
	// ErrDuplicatePassName is returned when a different pass with an existing name is added.
	ErrDuplicatePassName = errors.New("material: pass name already in technique")
	// ErrPassNotFound is returned when removing a pass the technique does not hold.
	ErrPassNotFound = errors.New("material: pass not in technique")
)

// technique is the implementation of the Technique interface.
type technique struct {
	queue  RenderQueue
	passes []Pass
}

// Technique is an ordered list of passes bound to a render queue. The queue decides
// coarse draw order; pass order decides sub-pass sequencing within the queue.
type Technique interface {
	// Queue returns the render queue the technique draws in.
	//
	// Returns:
	//   - RenderQueue: the queue
	Queue() RenderQueue

	// AddPass appends a pass.
	//
	// Parameters:
	//   - p: the pass to append
	//
	// Returns:
	//   - error: ErrDuplicatePass if p is already present, ErrDuplicatePassName if
	//     another pass has the same name
	AddPass(p Pass) error

	// RemovePass removes p, keeping the order of the remaining passes.
	//
	// Parameters:
	//   - p: the pass to remove
	//
	// Returns:
	//   - error: ErrPassNotFound if p is not present
	RemovePass(p Pass) error

	// Pass returns the first pass with the given name, or nil.
	//
	// Parameters:
	//   - name: the pass name
	//
	// Returns:
	//   - Pass: the pass, or nil when the technique has no such pass
	Pass(name string) Pass

	// PassByType returns the first pass of the given type, or nil.
	//
	// Parameters:
	//   - t: the pass type
	//
	// Returns:
	//   - Pass: the pass, or nil
	PassByType(t PassType) Pass

	// PassIndex returns the position of p, or -1.
	PassIndex(p Pass) int

	// Passes returns a copy of the pass list in attach order.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// Len returns the number of passes.
	Len() int

	// Clone returns a deep copy: every pass is cloned, not shared.
	//
	// Returns:
	//   - Technique: the copy
	Clone() Technique
}

var _ Technique = &technique{}

// NewTechnique creates a technique for a queue with an optional initial pass list.
//
// Parameters:
//   - queue: the render queue
//   - passes: passes to add in order
//
// Returns:
//   - Technique: the new technique
//   - error: an error if the passes contain duplicates
func NewTechnique(queue RenderQueue, passes ...Pass) (Technique, error) {
	if !queue.Valid() {
		return nil, fmt.Errorf("material: invalid render queue %d", int(queue))
	}
	t := &technique{queue: queue}
	for _, p := range passes {
		if err := t.AddPass(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *technique) Queue() RenderQueue {
	return t.queue
}

func (t *technique) AddPass(p Pass) error {
	if p == nil {
		return fmt.Errorf("material: add nil pass")
	}
	for _, existing := range t.passes {
		if existing == p {
			return fmt.Errorf("%w: %s", ErrDuplicatePass, p.Name())
		}
		if existing.Name() == p.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicatePassName, p.Name())
		}
	}
	t.passes = append(t.passes, p)
	return nil
}

func (t *technique) RemovePass(p Pass) error {
	i := t.PassIndex(p)
	if i < 0 {
		return ErrPassNotFound
	}
	t.passes = append(t.passes[:i:i], t.passes[i+1:]...)
	return nil
}

func (t *technique) Pass(name string) Pass {
	for _, p := range t.passes {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (t *technique) PassByType(pt PassType) Pass {
	for _, p := range t.passes {
		if p.Type() == pt {
			return p
		}
	}
	return nil
}

func (t *technique) PassIndex(p Pass) int {
	for i, existing := range t.passes {
		if existing == p {
			return i
		}
	}
	return -1
}

func (t *technique) Passes() []Pass {
	out := make([]Pass, len(t.passes))
	copy(out, t.passes)
	return out
}

func (t *technique) Len() int {
	return len(t.passes)
}

func (t *technique) Clone() Technique {
	c := &technique{queue: t.queue, passes: make([]Pass, len(t.passes))}
	for i, p := range t.passes {
		c.passes[i] = p.Clone()
	}
	return c
}

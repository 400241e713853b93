package material

import (
	"fmt"
	"strings"
)

// RenderQueue is the coarse ordering bucket for draw submissions. Queues render strictly
// in declaration order.
type RenderQueue int

const (
	// QueueBackground holds skyboxes and anything drawn behind the scene.
	QueueBackground RenderQueue = iota
	// QueueOpaque holds depth-writing geometry.
	QueueOpaque
	// QueueTransparent holds blended geometry, drawn after every opaque draw.
	QueueTransparent
	// QueueLighting holds deferred light volumes.
	QueueLighting
	// QueuePostProcess holds fullscreen passes composed after the scene.
	QueuePostProcess
	// QueueCustom is reserved for user-defined passes drawn last.
	QueueCustom
)

var queueNames = [...]string{"background", "opaque", "transparent", "lighting", "post_process", "custom"}

// Queues lists every render queue in draw order.
func Queues() []RenderQueue {
	return []RenderQueue{QueueBackground, QueueOpaque, QueueTransparent, QueueLighting, QueuePostProcess, QueueCustom}
}

func (q RenderQueue) String() string {
	if q < 0 || int(q) >= len(queueNames) {
		return fmt.Sprintf("queue(%d)", int(q))
	}
	return queueNames[q]
}

// Valid reports whether q is one of the declared queues.
func (q RenderQueue) Valid() bool {
	return q >= QueueBackground && q <= QueueCustom
}

// ParseRenderQueue converts a queue name back to its value.
//
// Parameters:
//   - s: the queue name, case insensitive
//
// Returns:
//   - RenderQueue: the parsed queue
//   - error: an error if the name is unknown
func ParseRenderQueue(s string) (RenderQueue, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range queueNames {
		if name == s {
			return RenderQueue(i), nil
		}
	}
	return 0, fmt.Errorf("material: unknown render queue %q", s)
}

// PassType is the abstract role of a pass inside a technique.
type PassType int

const (
	PassDepthPrePass PassType = iota
	PassColor
	PassShadowCaster
	PassLighting
	PassPostProcess
	PassCustom
)

var passTypeNames = [...]string{"depth_pre_pass", "color", "shadow_caster", "lighting", "post_process", "custom"}

func (t PassType) String() string {
	if t < 0 || int(t) >= len(passTypeNames) {
		return fmt.Sprintf("pass_type(%d)", int(t))
	}
	return passTypeNames[t]
}

// ParsePassType converts a pass type name back to its value.
func ParsePassType(s string) (PassType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range passTypeNames {
		if name == s {
			return PassType(i), nil
		}
	}
	return 0, fmt.Errorf("material: unknown pass type %q", s)
}

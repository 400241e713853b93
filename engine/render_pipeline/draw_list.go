package render_pipeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-core/engine/game_object"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
)

// Draw is one pass of one submitted request.
type Draw struct {
	Request   game_object.DrawRequest
	Queue     material.RenderQueue
	Pass      material.Pass
	PassIndex int
	Seq       int
}

// PassFilter selects the technique passes a DrawList keeps.
type PassFilter func(req game_object.DrawRequest, p material.Pass) bool

// ScenePasses keeps every pass that draws into the scene color target.
func ScenePasses(_ game_object.DrawRequest, p material.Pass) bool {
	switch p.Type() {
	case material.PassShadowCaster, material.PassPostProcess:
		return false
	}
	return true
}

// ShadowCasterPasses keeps the shadow caster passes of requests whose source casts shadows.
func ShadowCasterPasses(req game_object.DrawRequest, p material.Pass) bool {
	return p.Type() == material.PassShadowCaster && req.Source != nil && req.Source.CastShadow()
}

// DrawList expands draw requests into per-pass draws and orders them by render queue,
// then pass index, then submission order.
type DrawList struct {
	filter PassFilter
	draws  []Draw
	seq    int
	sorted bool
}

var _ game_object.DrawSink = &DrawList{}

// NewDrawList creates an empty list that keeps the passes accepted by filter. A nil
// filter keeps ScenePasses.
func NewDrawList(filter PassFilter) *DrawList {
	if filter == nil {
		filter = ScenePasses
	}
	return &DrawList{filter: filter}
}

func (l *DrawList) Submit(req game_object.DrawRequest) {
	if req.Material == nil {
		return
	}
	seq := l.seq
	l.seq++
	for _, t := range req.Material.Techniques() {
		for i, p := range t.Passes() {
			if !l.filter(req, p) {
				continue
			}
			l.draws = append(l.draws, Draw{
				Request:   req,
				Queue:     t.Queue(),
				Pass:      p,
				PassIndex: i,
				Seq:       seq,
			})
			l.sorted = false
		}
	}
}

// Sort orders the draws. It is stable, so equal keys keep submission order.
func (l *DrawList) Sort() {
	if l.sorted {
		return
	}
	sort.SliceStable(l.draws, func(i, j int) bool {
		a, b := l.draws[i], l.draws[j]
		if a.Queue != b.Queue {
			return a.Queue < b.Queue
		}
		if a.PassIndex != b.PassIndex {
			return a.PassIndex < b.PassIndex
		}
		return a.Seq < b.Seq
	})
	l.sorted = true
}

// Draws returns the sorted draws. The slice is reused after Reset.
func (l *DrawList) Draws() []Draw {
	l.Sort()
	return l.draws
}

// Len returns the number of draws.
func (l *DrawList) Len() int {
	return len(l.draws)
}

// Reset empties the list and keeps its storage.
func (l *DrawList) Reset() {
	clear(l.draws)
	l.draws = l.draws[:0]
	l.seq = 0
	l.sorted = true
}

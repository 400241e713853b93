package feature

// PhysicsWorld is an external simulation stepped by the physics feature.
type PhysicsWorld interface {
	Step(dt float64) error
}

// PhysicsFeature steps a PhysicsWorld once per frame, before scenes update.
type PhysicsFeature struct {
	BaseFeature

	world    PhysicsWorld
	maxStep  float64
	steps    uint64
	failures uint64
}

var _ Feature = &PhysicsFeature{}

// NewPhysicsFeature creates a physics feature. Frame deltas above maxStep are clamped;
// zero disables clamping.
//
// Parameters:
//   - world: the simulation
//   - maxStep: the largest delta passed to Step, in seconds
//
// Returns:
//   - *PhysicsFeature: the feature
func NewPhysicsFeature(world PhysicsWorld, maxStep float64) *PhysicsFeature {
	return &PhysicsFeature{
		BaseFeature: NewBaseFeature("physics"),
		world:       world,
		maxStep:     maxStep,
	}
}

func (f *PhysicsFeature) OnFrame(dt float64) {
	if f.world == nil || f.Context() == nil {
		return
	}
	if f.maxStep > 0 && dt > f.maxStep {
		dt = f.maxStep
	}
	if err := f.world.Step(dt); err != nil {
		f.failures++
		f.Context().Logger().WithError(err).WithField("feature", f.Name()).Warn("physics step failed")
		return
	}
	f.steps++
}

// Steps returns how many steps succeeded.
func (f *PhysicsFeature) Steps() uint64 {
	return f.steps
}

// Failures returns how many steps failed.
func (f *PhysicsFeature) Failures() uint64 {
	return f.failures
}

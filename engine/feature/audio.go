package feature

import "math"

// AudioListener is the ear position and orientation passed to the audio service.
type AudioListener struct {
	Position [3]float32
	Forward  [3]float32
	Up       [3]float32
}

// AudioService is an external mixer ticked by the audio feature.
type AudioService interface {
	Update(listener AudioListener, dt float64) error
}

// AudioFeature ticks an AudioService at the end of each frame with the active camera as
// listener. Without a camera the listener sits at the origin facing -Z.
type AudioFeature struct {
	BaseFeature

	service  AudioService
	listener AudioListener
}

var _ Feature = &AudioFeature{}

// NewAudioFeature creates an audio feature.
func NewAudioFeature(service AudioService) *AudioFeature {
	return &AudioFeature{
		BaseFeature: NewBaseFeature("audio"),
		service:     service,
		listener:    defaultListener(),
	}
}

func defaultListener() AudioListener {
	return AudioListener{Forward: [3]float32{0, 0, -1}, Up: [3]float32{0, 1, 0}}
}

func (f *AudioFeature) OnFrameEnd(dt float64) {
	if f.service == nil || f.Context() == nil {
		return
	}
	f.listener = defaultListener()
	if cam := f.Context().ActiveCamera(); cam != nil && cam.Owner() != nil {
		m := cam.Owner().WorldMatrix()
		f.listener.Position = [3]float32{m[12], m[13], m[14]}
		f.listener.Forward = normalize(-m[8], -m[9], -m[10])
		f.listener.Up = normalize(m[4], m[5], m[6])
	}
	if err := f.service.Update(f.listener, dt); err != nil {
		f.Context().Logger().WithError(err).WithField("feature", f.Name()).Warn("audio update failed")
	}
}

// Listener returns the listener passed in the last update.
func (f *AudioFeature) Listener() AudioListener {
	return f.listener
}

func normalize(x, y, z float32) [3]float32 {
	l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{x / l, y / l, z / l}
}

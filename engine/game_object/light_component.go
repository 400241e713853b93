package game_object

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-core/engine/archive"
	"github.com/Carmen-Shannon/oxy-core/engine/rtti"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightDirectional has no position, only the direction its owner faces.
	LightDirectional LightType = iota
	// LightPoint emits in all directions from its owner's position up to Range.
	LightPoint
	// LightSpot emits in a cone along its owner's forward axis.
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	default:
		return fmt.Sprintf("light(%d)", int(t))
	}
}

// ParseLightType converts a name written by String back to a LightType.
func ParseLightType(s string) (LightType, error) {
	for _, t := range []LightType{LightDirectional, LightPoint, LightSpot} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("game_object: unknown light type %q", s)
}

// LightComponent is a light source placed by its owner's transform. Shadow-casting
// directional lights drive the render pipeline's shadow stage.
type LightComponent struct {
	BaseComponent

	lightType    LightType
	color        [3]float32
	intensity    float32
	lightRange   float32
	castsShadows bool
}

// NewLightComponent creates a white directional light with unit intensity.
func NewLightComponent(options ...LightBuilderOption) *LightComponent {
	l := &LightComponent{
		lightType:  LightDirectional,
		color:      [3]float32{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *LightComponent) Rtti() *rtti.Rtti {
	return LightComponentRtti
}

func (l *LightComponent) Type() LightType {
	return l.lightType
}

func (l *LightComponent) Color() [3]float32 {
	return l.color
}

func (l *LightComponent) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *LightComponent) Intensity() float32 {
	return l.intensity
}

func (l *LightComponent) SetIntensity(v float32) {
	l.intensity = v
}

func (l *LightComponent) Range() float32 {
	return l.lightRange
}

func (l *LightComponent) CastsShadows() bool {
	return l.castsShadows
}

func (l *LightComponent) SetCastsShadows(v bool) {
	l.castsShadows = v
}

// Position returns the owner's world position, or the origin when unattached.
func (l *LightComponent) Position() [3]float32 {
	if l.owner == nil {
		return [3]float32{}
	}
	return l.owner.WorldPosition()
}

// Direction returns the normalized forward (-Z) axis of the owner's world matrix.
func (l *LightComponent) Direction() [3]float32 {
	if l.owner == nil {
		return [3]float32{0, -1, 0}
	}
	m := l.owner.WorldMatrix()
	x, y, z := -m[8], -m[9], -m[10]
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return [3]float32{0, -1, 0}
	}
	return [3]float32{x / length, y / length, z / length}
}

func (l *LightComponent) Load(node *archive.Node) error {
	if s := node.StringOr("light_type", ""); s != "" {
		t, err := ParseLightType(s)
		if err != nil {
			return err
		}
		l.lightType = t
	}
	var err error
	if node.Has("color") {
		if l.color, err = node.Vec3("color"); err != nil {
			return err
		}
	}
	if node.Has("intensity") {
		if l.intensity, err = node.Float("intensity"); err != nil {
			return err
		}
	}
	if node.Has("range") {
		if l.lightRange, err = node.Float("range"); err != nil {
			return err
		}
	}
	if node.Has("casts_shadows") {
		if l.castsShadows, err = node.Bool("casts_shadows"); err != nil {
			return err
		}
	}
	return nil
}

func (l *LightComponent) Save(node *archive.Node) error {
	node.SetString("light_type", l.lightType.String())
	node.SetVec("color", l.color[:]...)
	node.SetFloat("intensity", l.intensity)
	node.SetFloat("range", l.lightRange)
	node.SetBool("casts_shadows", l.castsShadows)
	return nil
}

// LightBuilderOption is a functional option for configuring a LightComponent.
type LightBuilderOption func(*LightComponent)

// WithLightType sets the kind of light.
func WithLightType(t LightType) LightBuilderOption {
	return func(l *LightComponent) {
		l.lightType = t
	}
}

// WithLightColor sets the RGB color.
func WithLightColor(r, g, b float32) LightBuilderOption {
	return func(l *LightComponent) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity sets the intensity multiplier.
func WithIntensity(v float32) LightBuilderOption {
	return func(l *LightComponent) {
		l.intensity = v
	}
}

// WithRange sets the attenuation distance of point and spot lights.
func WithRange(v float32) LightBuilderOption {
	return func(l *LightComponent) {
		l.lightRange = v
	}
}

// WithCastsShadows marks the light as a shadow map source.
func WithCastsShadows(v bool) LightBuilderOption {
	return func(l *LightComponent) {
		l.castsShadows = v
	}
}

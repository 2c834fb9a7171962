package instance

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/motorsim/model"
)

// BodyKind tags the shape of a parent body.
type BodyKind int

const (
	BodyOther BodyKind = iota
	BodyTube
	BodyTransition
	BodyNoseCone
)

func (k BodyKind) String() string {
	switch k {
	case BodyOther:
		return "other"
	case BodyTube:
		return "body-tube"
	case BodyTransition:
		return "transition"
	case BodyNoseCone:
		return "nose-cone"
	}
	return fmt.Sprintf("BodyKind(%d)", int(k))
}

// Body is the parent an instanced component is attached to. Only the fields
// its Kind uses are meaningful:
//
//	BodyTube        Length, AftRadius
//	BodyTransition  Length, ForeRadius, AftRadius
//	BodyNoseCone    Length, AftRadius, Shape
//	BodyOther       nothing; its radius is 0
type Body struct {
	kind       BodyKind
	length     float64
	foreRadius float64
	aftRadius  float64
	shape      float64 // power-series exponent; 1 is conical

	notifier model.Notifier
}

func NewBodyTube(length, radius float64) *Body {
	return &Body{kind: BodyTube, length: length, foreRadius: radius, aftRadius: radius}
}

func NewTransition(length, foreRadius, aftRadius float64) *Body {
	return &Body{kind: BodyTransition, length: length, foreRadius: foreRadius, aftRadius: aftRadius}
}

// NewNoseCone returns a power-series nose cone r = R·(x/L)^shape. A
// non-positive shape is treated as conical.
func NewNoseCone(length, radius, shape float64) *Body {
	if !(shape > 0) {
		shape = 1
	}
	return &Body{kind: BodyNoseCone, length: length, aftRadius: radius, shape: shape}
}

func NewOtherBody() *Body { return &Body{kind: BodyOther} }

func (b *Body) Kind() BodyKind      { return b.kind }
func (b *Body) Length() float64     { return b.length }
func (b *Body) ForeRadius() float64 { return b.foreRadius }
func (b *Body) AftRadius() float64  { return b.aftRadius }

// RadiusAt returns the outer radius at axial position x, clamped to the body.
func (b *Body) RadiusAt(x float64) float64 {
	if b == nil {
		return 0
	}
	x = math.Max(0, math.Min(x, b.length))
	switch b.kind {
	case BodyTube:
		return b.aftRadius
	case BodyTransition:
		if b.length <= 0 {
			return b.aftRadius
		}
		return b.foreRadius + (b.aftRadius-b.foreRadius)*x/b.length
	case BodyNoseCone:
		if b.length <= 0 {
			return b.aftRadius
		}
		return b.aftRadius * math.Pow(x/b.length, b.shape)
	}
	return 0
}

// SetLength changes the body length and notifies dependants.
func (b *Body) SetLength(l float64) {
	l = nonNegative(l)
	if b.length == l {
		return
	}
	b.length = l
	b.notifier.Fire(geometryChanged(b))
}

// SetRadius sets the outer radius. For a transition it sets both ends.
func (b *Body) SetRadius(r float64) {
	b.SetRadii(r, r)
}

// SetRadii sets the fore and aft radius. Tubes and nose cones only use aft.
func (b *Body) SetRadii(fore, aft float64) {
	fore, aft = nonNegative(fore), nonNegative(aft)
	if b.kind != BodyTransition {
		fore = aft
	}
	if b.foreRadius == fore && b.aftRadius == aft {
		return
	}
	b.foreRadius, b.aftRadius = fore, aft
	b.notifier.Fire(geometryChanged(b))
}

// Subscribe registers fn for geometry change notifications.
func (b *Body) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return b.notifier.Subscribe(fn)
}

// RadiusMethod resolves a ring's radial distance against its parent body.
type RadiusMethod int

const (
	// RadiusFixed uses the configured value as the distance from the axis.
	RadiusFixed RadiusMethod = iota
	// RadiusRelative adds the configured value to the parent's radius.
	RadiusRelative
	// RadiusSurface places the component on the parent's surface.
	RadiusSurface
	// RadiusCoaxial keeps the component on the axis.
	RadiusCoaxial
)

var radiusMethodNames = [...]string{"FIXED", "RELATIVE", "SURFACE", "COAXIAL"}

func (m RadiusMethod) String() string {
	if m < RadiusFixed || m > RadiusCoaxial {
		return fmt.Sprintf("RadiusMethod(%d)", int(m))
	}
	return radiusMethodNames[m]
}

// ParseRadiusMethod accepts the String form, case insensitive.
func ParseRadiusMethod(s string) (RadiusMethod, error) {
	for i, n := range radiusMethodNames {
		if equalFoldTrim(n, s) {
			return RadiusMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown radius method %q", s)
}

// ClampToZero reports whether the method ignores the configured value and
// always yields 0.
func (m RadiusMethod) ClampToZero() bool { return m == RadiusCoaxial }

// Resolve returns the radial distance for the configured value, the parent
// body at axial position x and the component's own radius.
func (m RadiusMethod) Resolve(value float64, parent *Body, x, ownRadius float64) float64 {
	switch m {
	case RadiusFixed:
		return nonNegative(value)
	case RadiusRelative:
		return nonNegative(parent.RadiusAt(x) + value)
	case RadiusSurface:
		return parent.RadiusAt(x) + ownRadius
	}
	return 0
}

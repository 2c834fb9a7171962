package instance

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/motorsim/model"
)

// Ring spreads its instances evenly around the parent body, e.g. pods or a
// ring of launch lugs.
type Ring struct {
	model.Part

	parent        *Body
	axialPosition float64
	ownRadius     float64

	count        int
	angleOffset  float64
	radiusMethod RadiusMethod
	radiusValue  float64

	links    model.Linked[*Ring]
	notifier model.Notifier
}

// NewRing returns a single instance on the parent's surface at axial
// position x.
func NewRing(part model.Part, parent *Body, x, ownRadius float64) *Ring {
	return &Ring{
		Part:          part,
		parent:        parent,
		axialPosition: x,
		ownRadius:     nonNegative(ownRadius),
		count:         1,
		radiusMethod:  RadiusSurface,
	}
}

func (r *Ring) Parent() *Body              { return r.parent }
func (r *Ring) AxialPosition() float64     { return r.axialPosition }
func (r *Ring) OwnRadius() float64         { return r.ownRadius }
func (r *Ring) InstanceCount() int         { return r.count }
func (r *Ring) AngleOffset() float64       { return r.angleOffset }
func (r *Ring) RadiusMethod() RadiusMethod { return r.radiusMethod }
func (r *Ring) RadiusValue() float64       { return r.radiusValue }
func (r *Ring) PatternName() string        { return fmt.Sprintf("%d-ring", r.count) }

// AngleSeparation is the angle between neighbouring instances.
func (r *Ring) AngleSeparation() float64 { return 2 * math.Pi / float64(r.count) }

// RadialDistance is the resolved distance of every instance from the axis.
func (r *Ring) RadialDistance() float64 {
	return r.radiusMethod.Resolve(r.radiusValue, r.parent, r.axialPosition, r.ownRadius)
}

// InstanceAngles returns angleOffset + i·AngleSeparation for every instance.
func (r *Ring) InstanceAngles() []float64 {
	sep := r.AngleSeparation()
	out := make([]float64, r.count)
	for i := range out {
		out[i] = r.angleOffset + float64(i)*sep
	}
	return out
}

// InstanceOffsets returns (0, d·cos φ, d·sin φ) for every instance angle φ.
func (r *Ring) InstanceOffsets() []mgl64.Vec3 {
	d := r.RadialDistance()
	angles := r.InstanceAngles()
	out := make([]mgl64.Vec3, len(angles))
	for i, a := range angles {
		out[i] = mgl64.Vec3{0, d * math.Cos(a), d * math.Sin(a)}
	}
	return checkOffsets(r, out)
}

// SetInstanceCount sets the number of instances, at least 1.
func (r *Ring) SetInstanceCount(n int) {
	if n < 1 {
		n = 1
	}
	model.Propagate(r, &r.links, func(p *Ring) {
		if p.count == n {
			return
		}
		p.count = n
		p.fire(model.ChangeGeometry | model.ChangeTree)
	})
}

// SetAngleOffset rotates the ring, reduced into [-π, π].
func (r *Ring) SetAngleOffset(a float64) {
	a = reduceAngle(a)
	model.Propagate(r, &r.links, func(p *Ring) {
		if p.angleOffset == a {
			return
		}
		p.angleOffset = a
		p.fire(model.ChangeGeometry)
	})
}

// SetRadiusMethod changes how the radial distance is resolved.
func (r *Ring) SetRadiusMethod(m RadiusMethod) {
	model.Propagate(r, &r.links, func(p *Ring) {
		if p.radiusMethod == m {
			return
		}
		p.radiusMethod = m
		if m.ClampToZero() {
			p.radiusValue = 0
		}
		p.fire(model.ChangeGeometry)
	})
}

// SetRadius sets the value the radius method resolves. A method that clamps
// to zero ignores it.
func (r *Ring) SetRadius(v float64) {
	model.Propagate(r, &r.links, func(p *Ring) {
		value := v
		if p.radiusMethod.ClampToZero() {
			value = 0
		}
		if p.radiusValue == value {
			return
		}
		p.radiusValue = value
		p.fire(model.ChangeGeometry)
	})
}

// SetAxialPosition moves the ring along the parent.
func (r *Ring) SetAxialPosition(x float64) {
	model.Propagate(r, &r.links, func(p *Ring) {
		if p.axialPosition == x {
			return
		}
		p.axialPosition = x
		p.fire(model.ChangeGeometry)
	})
}

func (r *Ring) Link(peer *Ring)   { r.links.Link(peer) }
func (r *Ring) Unlink(peer *Ring) { r.links.Unlink(peer) }

// Subscribe registers fn for change notifications.
func (r *Ring) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return r.notifier.Subscribe(fn)
}

func (r *Ring) fire(kind model.ChangeKind) {
	r.notifier.Fire(model.ChangeEvent{Source: r, Kind: kind})
}

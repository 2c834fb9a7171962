package instance

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/motorsim/model"
)

// Line repeats its instances aft along the parent's axis at a fixed
// separation, e.g. launch lugs or rail buttons. All instances share one
// lateral offset: the parent's radius at the attachment point plus the
// component's own radius.
type Line struct {
	model.Part

	parent        *Body
	axialPosition float64
	ownRadius     float64
	angle         float64

	count      int
	separation float64

	// lateral is refreshed on every parent geometry change instead of being
	// derived while computing offsets.
	lateral     float64
	unsubscribe func()

	links    model.Linked[*Line]
	notifier model.Notifier
}

// NewLine returns a single instance attached to parent at axial position x.
// Call Close to detach it from the parent's notifications.
func NewLine(part model.Part, parent *Body, x, ownRadius float64) *Line {
	l := &Line{
		Part:          part,
		axialPosition: x,
		ownRadius:     nonNegative(ownRadius),
		count:         1,
	}
	l.SetParent(parent)
	return l
}

func (l *Line) Parent() *Body               { return l.parent }
func (l *Line) AxialPosition() float64      { return l.axialPosition }
func (l *Line) OwnRadius() float64          { return l.ownRadius }
func (l *Line) Angle() float64              { return l.angle }
func (l *Line) InstanceCount() int          { return l.count }
func (l *Line) InstanceSeparation() float64 { return l.separation }
func (l *Line) PatternName() string         { return fmt.Sprintf("%d-line", l.count) }

// LateralOffset is the distance of the line from the axis.
func (l *Line) LateralOffset() float64 { return l.lateral }

// InstanceOffsets returns x_i = i·separation at the shared lateral offset.
func (l *Line) InstanceOffsets() []mgl64.Vec3 {
	y := l.lateral * math.Cos(l.angle)
	z := l.lateral * math.Sin(l.angle)
	out := make([]mgl64.Vec3, l.count)
	for i := range out {
		out[i] = mgl64.Vec3{float64(i) * l.separation, y, z}
	}
	return checkOffsets(l, out)
}

// SetParent attaches the line to a new parent body.
func (l *Line) SetParent(parent *Body) {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
	l.parent = parent
	if parent != nil {
		l.unsubscribe = parent.Subscribe(func(ev model.ChangeEvent) {
			if ev.Kind.Has(model.ChangeMass) || ev.Kind.Has(model.ChangeAerodynamic) {
				l.refresh()
			}
		})
	}
	l.refresh()
}

// Close stops listening to the parent.
func (l *Line) Close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
}

func (l *Line) lateralOffset() float64 {
	return l.parent.RadiusAt(l.axialPosition) + l.ownRadius
}

func (l *Line) refresh() {
	lateral := l.lateralOffset()
	if lateral == l.lateral {
		return
	}
	l.lateral = lateral
	l.fire(model.ChangeGeometry)
}

// SetInstanceCount sets the number of instances, at least 1.
func (l *Line) SetInstanceCount(n int) {
	if n < 1 {
		n = 1
	}
	model.Propagate(l, &l.links, func(p *Line) {
		if p.count == n {
			return
		}
		p.count = n
		p.fire(model.ChangeGeometry | model.ChangeTree)
	})
}

// SetInstanceSeparation sets the distance between neighbours, at least 0.
func (l *Line) SetInstanceSeparation(d float64) {
	d = nonNegative(d)
	model.Propagate(l, &l.links, func(p *Line) {
		if p.separation == d {
			return
		}
		p.separation = d
		p.fire(model.ChangeGeometry)
	})
}

// SetAngle sets the angular position around the parent, reduced into [-π, π].
func (l *Line) SetAngle(a float64) {
	a = reduceAngle(a)
	model.Propagate(l, &l.links, func(p *Line) {
		if p.angle == a {
			return
		}
		p.angle = a
		p.fire(model.ChangeGeometry)
	})
}

// SetAxialPosition moves the first instance along the parent.
func (l *Line) SetAxialPosition(x float64) {
	model.Propagate(l, &l.links, func(p *Line) {
		if p.axialPosition == x {
			return
		}
		p.axialPosition = x
		p.lateral = p.lateralOffset()
		p.fire(model.ChangeGeometry)
	})
}

// SetOwnRadius sets the component's radius, at least 0.
func (l *Line) SetOwnRadius(r float64) {
	r = nonNegative(r)
	model.Propagate(l, &l.links, func(p *Line) {
		if p.ownRadius == r {
			return
		}
		p.ownRadius = r
		p.refresh()
	})
}

func (l *Line) Link(peer *Line)   { l.links.Link(peer) }
func (l *Line) Unlink(peer *Line) { l.links.Unlink(peer) }

// Subscribe registers fn for change notifications.
func (l *Line) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return l.notifier.Subscribe(fn)
}

func (l *Line) fire(kind model.ChangeKind) {
	l.notifier.Fire(model.ChangeEvent{Source: l, Kind: kind})
}

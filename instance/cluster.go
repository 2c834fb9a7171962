package instance

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/motorsim/model"
)

// Cluster is an inner tube replicated into a cluster pattern. Touching
// tubes have scale 1; larger scales spread them apart.
type Cluster struct {
	model.Part

	outerRadius     float64
	config          *ClusterConfiguration
	scale           float64
	rotation        float64
	radialPosition  float64
	radialDirection float64

	links    model.Linked[*Cluster]
	notifier model.Notifier
}

// NewCluster returns a single, unscaled tube of the given outer radius.
func NewCluster(part model.Part, outerRadius float64) *Cluster {
	return &Cluster{Part: part, outerRadius: nonNegative(outerRadius), config: ClusterSingle, scale: 1}
}

func (c *Cluster) OuterRadius() float64                        { return c.outerRadius }
func (c *Cluster) ClusterConfiguration() *ClusterConfiguration { return c.config }
func (c *Cluster) ClusterScale() float64                       { return c.scale }
func (c *Cluster) ClusterRotation() float64                    { return c.rotation }
func (c *Cluster) RadialPosition() float64                     { return c.radialPosition }
func (c *Cluster) RadialDirection() float64                    { return c.radialDirection }
func (c *Cluster) InstanceCount() int                          { return c.config.Count() }
func (c *Cluster) PatternName() string                         { return c.config.Name() }

// ClusterSeparation is the centre-to-centre distance of neighbouring tubes.
func (c *Cluster) ClusterSeparation() float64 {
	return 2 * c.outerRadius * c.scale
}

// ClusterScaleAbsolute is the gap between neighbouring tubes.
func (c *Cluster) ClusterScaleAbsolute() float64 {
	return (c.scale - 1) * 2 * c.outerRadius
}

// InstanceOffsets returns the position of each tube relative to the
// cluster's own reference axis.
func (c *Cluster) InstanceOffsets() []mgl64.Vec3 {
	sep := c.ClusterSeparation()
	shiftY := c.radialPosition * math.Cos(c.radialDirection)
	shiftZ := c.radialPosition * math.Sin(c.radialDirection)

	points := c.config.Points(c.rotation)
	out := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		out[i] = mgl64.Vec3{0, p.X()*sep + shiftY, p.Y()*sep + shiftZ}
	}
	return checkOffsets(c, out)
}

// SetClusterConfiguration switches the pattern.
func (c *Cluster) SetClusterConfiguration(cfg *ClusterConfiguration) {
	if cfg == nil {
		cfg = ClusterSingle
	}
	model.Propagate(c, &c.links, func(p *Cluster) {
		if p.config == cfg {
			return
		}
		p.config = cfg
		p.fire(model.ChangeGeometry | model.ChangeTree)
	})
}

// SetClusterScale sets the relative spacing, clamped to ≥ 0.
func (c *Cluster) SetClusterScale(scale float64) {
	scale = nonNegative(scale)
	model.Propagate(c, &c.links, func(p *Cluster) {
		if p.scale == scale {
			return
		}
		p.scale = scale
		p.fire(model.ChangeGeometry)
	})
}

// SetClusterScaleAbsolute sets the gap between neighbouring tubes. It has
// no effect on a tube without radius.
func (c *Cluster) SetClusterScaleAbsolute(gap float64) {
	if c.outerRadius <= 0 {
		return
	}
	c.SetClusterScale(gap/(2*c.outerRadius) + 1)
}

// SetClusterRotation sets the pattern rotation, reduced into [-π, π].
func (c *Cluster) SetClusterRotation(rotation float64) {
	rotation = reduceAngle(rotation)
	model.Propagate(c, &c.links, func(p *Cluster) {
		if p.rotation == rotation {
			return
		}
		p.rotation = rotation
		p.fire(model.ChangeGeometry)
	})
}

// SetOuterRadius sets the tube radius, clamped to ≥ 0.
func (c *Cluster) SetOuterRadius(r float64) {
	r = nonNegative(r)
	model.Propagate(c, &c.links, func(p *Cluster) {
		if p.outerRadius == r {
			return
		}
		p.outerRadius = r
		p.fire(model.ChangeGeometry)
	})
}

// SetRadialShift moves the whole cluster off the parent's axis: distance
// clamped to ≥ 0 and direction reduced into [-π, π].
func (c *Cluster) SetRadialShift(distance, direction float64) {
	distance = nonNegative(distance)
	direction = reduceAngle(direction)
	model.Propagate(c, &c.links, func(p *Cluster) {
		if p.radialPosition == distance && p.radialDirection == direction {
			return
		}
		p.radialPosition = distance
		p.radialDirection = direction
		p.fire(model.ChangeGeometry)
	})
}

// Link keeps peer's cluster settings in lock-step with c.
func (c *Cluster) Link(peer *Cluster)   { c.links.Link(peer) }
func (c *Cluster) Unlink(peer *Cluster) { c.links.Unlink(peer) }

// Subscribe registers fn for change notifications.
func (c *Cluster) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return c.notifier.Subscribe(fn)
}

func (c *Cluster) fire(kind model.ChangeKind) {
	c.notifier.Fire(model.ChangeEvent{Source: c, Kind: kind})
}

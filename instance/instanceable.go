// Package instance places every physical copy of replicated components:
// clustered inner tubes, pods and lugs ringed around a body, and lugs or
// rail buttons in a line along it.
//
// Coordinates are metres in the parent's frame: X runs aft along the
// vehicle axis, Y and Z span the cross-section.
package instance

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/motorsim/model"
)

// Instanceable is a component replicated into InstanceCount copies.
type Instanceable interface {
	model.Component

	InstanceCount() int
	// InstanceOffsets returns one offset per instance. It panics if the
	// pattern cannot produce exactly InstanceCount offsets.
	InstanceOffsets() []mgl64.Vec3
	PatternName() string
}

// Clusterable is an Instanceable arranged in a named cluster pattern.
type Clusterable interface {
	Instanceable

	ClusterConfiguration() *ClusterConfiguration
	ClusterScale() float64
	ClusterRotation() float64
}

// RingInstanceable is an Instanceable spread evenly around its parent.
type RingInstanceable interface {
	Instanceable

	SetInstanceCount(n int)
	AngleOffset() float64
	AngleSeparation() float64
	InstanceAngles() []float64
	RadiusMethod() RadiusMethod
	RadialDistance() float64
}

// LineInstanceable is an Instanceable repeated along the parent's axis.
type LineInstanceable interface {
	Instanceable

	SetInstanceCount(n int)
	InstanceSeparation() float64
	SetInstanceSeparation(d float64)
}

// checkOffsets enforces one offset per instance.
func checkOffsets(c Instanceable, offsets []mgl64.Vec3) []mgl64.Vec3 {
	if len(offsets) != c.InstanceCount() {
		panic(fmt.Sprintf("instance: %s produced %d offsets for %d instances", c.ID(), len(offsets), c.InstanceCount()))
	}
	return offsets
}

// reduceAngle maps a into [-π, π].
func reduceAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	return math.Remainder(a, 2*math.Pi)
}

// nonNegative clamps v to [0, ∞), mapping NaN to 0.
func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}

// geometryChanged is the notification every instancing setter emits.
func geometryChanged(source any) model.ChangeEvent {
	return model.ChangeEvent{Source: source, Kind: model.ChangeGeometry}
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

package model

import "fmt"

// Component is the view of a rocket component the core needs: a stable
// identity and the stage it belongs to.
//
// Stages are numbered from the top of the vehicle: the sustainer is stage 0
// and every booster below it has a larger number. The launch stage is the
// bottom core stage, the one that is ignited on the pad.
type Component interface {
	ID() string
	StageNumber() int
	LaunchStage() bool
}

// Part is the plain Component implementation used for stages, recovery
// devices and anything else that only needs identity and stage membership.
type Part struct {
	PartID string
	Name   string
	Stage  int
	Launch bool // true when this part sits in the launch stage
}

// ID implements Component.
func (p *Part) ID() string { return p.PartID }

// StageNumber implements Component.
func (p *Part) StageNumber() int { return p.Stage }

// LaunchStage implements Component.
func (p *Part) LaunchStage() bool { return p.Launch }

func (p *Part) String() string {
	if p.Name != "" {
		return fmt.Sprintf("%s(stage %d)", p.Name, p.Stage)
	}
	return fmt.Sprintf("%s(stage %d)", p.PartID, p.Stage)
}

// MotorMount is a component that can carry a motor (body tube or inner
// tube). Lengths are metres; AxialPosition is the mount's fore end measured
// aft from the nose tip.
type MotorMount struct {
	Part

	AxialPosition float64
	Length        float64
	InnerRadius   float64
	OuterRadius   float64
	MotorOverhang float64
}

// MotorPosition returns the axial position of a motor's fore end for a
// motor of the given length, measured in the mount's own frame.
func (m *MotorMount) MotorPosition(motorLength float64) float64 {
	return m.Length - motorLength + m.MotorOverhang
}

// Fits reports whether a motor of the given diameter fits inside the mount.
func (m *MotorMount) Fits(diameter float64) bool {
	return diameter <= 2*m.InnerRadius+1e-6
}

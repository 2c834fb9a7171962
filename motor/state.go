package motor

import (
	"fmt"

	"github.com/signalsfoundry/motorsim/trigger"
)

// Atmosphere is the ambient state at the motor's position. Thrust curves are
// measured at sea level and are not corrected; the value is carried for
// steppers that do.
type Atmosphere struct {
	Pressure    float64 // Pa
	Temperature float64 // K
	Density     float64 // kg/m^3
}

// StandardAtmosphere is the ISA sea-level state.
var StandardAtmosphere = Atmosphere{Pressure: 101325, Temperature: 288.15, Density: 1.225}

// InstanceState integrates one motor over simulated time. It is not safe
// for concurrent use; clone it for parallel runs. Clones share the
// immutable ThrustCurveMotor.
type InstanceState struct {
	motor *ThrustCurveMotor

	ignitionEvent trigger.IgnitionEvent
	ignitionDelay float64
	ejectionDelay float64
	ignitionTime  float64
	ignited       bool

	timeIndex  int
	prevTime   float64
	instThrust float64
	stepThrust float64
	instCG     CG
	stepCG     CG

	acceleration float64
	atmosphere   Atmosphere
}

// NewInstanceState returns a rewound state for m with automatic ignition.
func NewInstanceState(m *ThrustCurveMotor) *InstanceState {
	s := &InstanceState{motor: m, ignitionEvent: trigger.IgnitionAutomatic}
	s.Reset()
	return s
}

// Motor returns the shared thrust curve.
func (s *InstanceState) Motor() *ThrustCurveMotor { return s.motor }

func (s *InstanceState) IgnitionEvent() trigger.IgnitionEvent     { return s.ignitionEvent }
func (s *InstanceState) SetIgnitionEvent(e trigger.IgnitionEvent) { s.ignitionEvent = e }
func (s *InstanceState) IgnitionDelay() float64                   { return s.ignitionDelay }
func (s *InstanceState) SetIgnitionDelay(d float64)               { s.ignitionDelay = d }

// EjectionDelay is the time from burnout to the ejection charge, or
// PluggedDelay.
func (s *InstanceState) EjectionDelay() float64     { return s.ejectionDelay }
func (s *InstanceState) SetEjectionDelay(d float64) { s.ejectionDelay = d }

// Plugged reports whether the motor fires no ejection charge.
func (s *InstanceState) Plugged() bool { return s.ejectionDelay == PluggedDelay }

// Ignite records the simulation time at which the motor was lit.
func (s *InstanceState) Ignite(simTime float64) {
	s.ignitionTime = simTime
	s.ignited = true
}

func (s *InstanceState) IsIgnited() bool       { return s.ignited }
func (s *InstanceState) IgnitionTime() float64 { return s.ignitionTime }

// MotorTime converts a simulation time to time since ignition.
func (s *InstanceState) MotorTime(simTime float64) float64 {
	return simTime - s.ignitionTime
}

// Time is the motor time of the last step.
func (s *InstanceState) Time() float64 { return s.prevTime }

// Thrust is the time-weighted average thrust over the last step.
func (s *InstanceState) Thrust() float64 { return s.stepThrust }

// InstantThrust is the thrust at the end of the last step.
func (s *InstanceState) InstantThrust() float64 { return s.instThrust }

// CG is the mean of the instantaneous CGs at both ends of the last step.
func (s *InstanceState) CG() CG { return s.stepCG }

// InstantCG is the CG at the end of the last step.
func (s *InstanceState) InstantCG() CG { return s.instCG }

// Mass is the step-averaged motor mass.
func (s *InstanceState) Mass() float64 { return s.stepCG.Mass }

// LongitudinalInertia treats the motor as a filled cylinder of the step mass.
func (s *InstanceState) LongitudinalInertia() float64 {
	return s.motor.unitLongitudinalInertia * s.stepCG.Mass
}

// RotationalInertia treats the motor as a filled cylinder of the step mass.
func (s *InstanceState) RotationalInertia() float64 {
	return s.motor.unitRotationalInertia * s.stepCG.Mass
}

// Acceleration and Atmosphere are the inputs of the last step.
func (s *InstanceState) Acceleration() float64  { return s.acceleration }
func (s *InstanceState) Atmosphere() Atmosphere { return s.atmosphere }

// IsActive reports whether the motor may still produce thrust.
func (s *InstanceState) IsActive() bool { return s.prevTime < s.motor.BurnTime() }

// Step advances the state to motor time nextTime. Stepping to the current
// time is a no-op; stepping backwards panics.
func (s *InstanceState) Step(nextTime, acceleration float64, atmo Atmosphere) {
	if nextTime == s.prevTime {
		return
	}
	if nextTime < s.prevTime {
		panic(fmt.Sprintf("motor: step backwards from %v to %v (%s)", s.prevTime, nextTime, s.motor.designation))
	}
	s.acceleration = acceleration
	s.atmosphere = atmo

	m := s.motor
	last := len(m.time) - 1

	if s.timeIndex >= last {
		// Burned out.
		s.stepThrust = 0
		s.instThrust = 0
		s.stepCG = m.cg[last]
		s.instCG = m.cg[last]
		s.prevTime = nextTime
		return
	}

	if nextTime < m.time[s.timeIndex+1] {
		// Still inside the current segment.
		next := m.Thrust(nextTime)
		s.stepThrust = (s.instThrust + next) / 2
		s.instThrust = next
	} else {
		impulse := (s.instThrust + m.thrust[s.timeIndex+1]) / 2 * (m.time[s.timeIndex+1] - s.prevTime)
		s.timeIndex++
		for s.timeIndex < last && nextTime >= m.time[s.timeIndex+1] {
			impulse += (m.thrust[s.timeIndex] + m.thrust[s.timeIndex+1]) / 2 *
				(m.time[s.timeIndex+1] - m.time[s.timeIndex])
			s.timeIndex++
		}
		if s.timeIndex < last {
			next := m.Thrust(nextTime)
			impulse += (m.thrust[s.timeIndex] + next) / 2 * (nextTime - m.time[s.timeIndex])
			s.instThrust = next
		} else {
			s.instThrust = 0
		}
		s.stepThrust = impulse / (nextTime - s.prevTime)
	}

	var nextCG CG
	if s.timeIndex >= last {
		nextCG = m.cg[last]
	} else {
		nextCG = m.CG(nextTime)
	}
	s.stepCG = s.instCG.average(nextCG)
	s.instCG = nextCG
	s.prevTime = nextTime
}

// Reset rewinds the state to motor time zero. Ignition settings are kept;
// the ignition itself is forgotten.
func (s *InstanceState) Reset() {
	s.ignited = false
	s.ignitionTime = 0
	s.timeIndex = 0
	s.prevTime = 0
	s.instThrust = 0
	s.stepThrust = 0
	s.instCG = s.motor.cg[0]
	s.stepCG = s.motor.cg[0]
	s.acceleration = 0
	s.atmosphere = Atmosphere{}
}

// Clone returns an independent, rewound copy that shares the motor.
func (s *InstanceState) Clone() *InstanceState {
	c := &InstanceState{
		motor:         s.motor,
		ignitionEvent: s.ignitionEvent,
		ignitionDelay: s.ignitionDelay,
		ejectionDelay: s.ejectionDelay,
	}
	c.Reset()
	return c
}

func (s *InstanceState) String() string {
	return fmt.Sprintf("%s t=%.3f F=%.2fN m=%.4fkg", s.motor.designation, s.prevTime, s.stepThrust, s.stepCG.Mass)
}

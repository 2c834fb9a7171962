package flightconfig

import (
	"fmt"

	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/trigger"
)

// Mount is a motor mount together with the ignition settings its motors
// use unless a configuration overrides them.
type Mount struct {
	model.MotorMount

	IgnitionEvent trigger.IgnitionEvent
	IgnitionDelay float64
}

// NewMount returns a mount with automatic ignition.
func NewMount(m model.MotorMount) *Mount {
	return &Mount{MotorMount: m, IgnitionEvent: trigger.IgnitionAutomatic}
}

// MotorConfiguration is the motor loaded into one mount for one flight
// configuration. The zero motor means the mount is empty.
type MotorConfiguration struct {
	mount *Mount
	motor *motor.ThrustCurveMotor

	ejectionDelay float64

	ignitionOverride bool
	ignitionEvent    trigger.IgnitionEvent
	ignitionDelay    float64
}

// NewMotorConfiguration returns an empty configuration of mount.
func NewMotorConfiguration(mount *Mount) *MotorConfiguration {
	return &MotorConfiguration{mount: mount}
}

func (c *MotorConfiguration) Mount() *Mount                 { return c.mount }
func (c *MotorConfiguration) Motor() *motor.ThrustCurveMotor { return c.motor }

// SetMotor loads m; nil empties the mount.
func (c *MotorConfiguration) SetMotor(m *motor.ThrustCurveMotor) { c.motor = m }

// IsEmpty reports whether no motor is loaded.
func (c *MotorConfiguration) IsEmpty() bool { return c.motor == nil }

// EjectionDelay is the delay from burnout to the ejection charge, or
// motor.PluggedDelay.
func (c *MotorConfiguration) EjectionDelay() float64     { return c.ejectionDelay }
func (c *MotorConfiguration) SetEjectionDelay(d float64) { c.ejectionDelay = d }
func (c *MotorConfiguration) Plugged() bool              { return c.ejectionDelay == motor.PluggedDelay }

// IgnitionEvent returns the override, or the mount's setting.
func (c *MotorConfiguration) IgnitionEvent() trigger.IgnitionEvent {
	if c.ignitionOverride {
		return c.ignitionEvent
	}
	return c.mount.IgnitionEvent
}

// IgnitionDelay returns the override, or the mount's setting.
func (c *MotorConfiguration) IgnitionDelay() float64 {
	if c.ignitionOverride {
		return c.ignitionDelay
	}
	return c.mount.IgnitionDelay
}

// SetIgnition overrides the mount's ignition settings for this configuration.
func (c *MotorConfiguration) SetIgnition(e trigger.IgnitionEvent, delay float64) {
	c.ignitionOverride = true
	c.ignitionEvent = e
	c.ignitionDelay = delay
}

// UseMountIgnition drops the override.
func (c *MotorConfiguration) UseMountIgnition() {
	c.ignitionOverride = false
	c.ignitionEvent = 0
	c.ignitionDelay = 0
}

func (c *MotorConfiguration) IgnitionOverridden() bool { return c.ignitionOverride }

// Designation returns "<designation>-<delay>", or "" for an empty mount.
func (c *MotorConfiguration) Designation() string {
	if c.IsEmpty() {
		return ""
	}
	return c.motor.DesignationWithDelay(c.ejectionDelay)
}

// Description names the manufacturer and designation, or "None".
func (c *MotorConfiguration) Description() string {
	if c.IsEmpty() {
		return "None"
	}
	if mf := c.motor.Manufacturer(); mf != nil {
		return fmt.Sprintf("%s %s", mf.SimpleName(), c.Designation())
	}
	return c.Designation()
}

// MotorPosition is the axial position of the motor's fore end measured aft
// from the nose tip.
func (c *MotorConfiguration) MotorPosition() float64 {
	if c.IsEmpty() {
		return 0
	}
	return c.mount.AxialPosition + c.mount.MotorPosition(c.motor.Length())
}

// NewInstanceState returns a fresh simulation state for the loaded motor,
// carrying this configuration's ignition and ejection settings. It returns
// nil for an empty mount.
func (c *MotorConfiguration) NewInstanceState() *motor.InstanceState {
	if c.IsEmpty() {
		return nil
	}
	s := motor.NewInstanceState(c.motor)
	s.SetIgnitionEvent(c.IgnitionEvent())
	s.SetIgnitionDelay(c.IgnitionDelay())
	s.SetEjectionDelay(c.ejectionDelay)
	return s
}

// Clone copies the configuration. The motor itself is immutable and shared.
func (c *MotorConfiguration) Clone() *MotorConfiguration {
	cp := *c
	return &cp
}

// CloneFor copies the configuration onto another mount.
func (c *MotorConfiguration) CloneFor(mount *Mount) *MotorConfiguration {
	cp := c.Clone()
	cp.mount = mount
	return cp
}

func (c *MotorConfiguration) String() string { return c.Description() }

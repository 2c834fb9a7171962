// Package sim drives flights of a staged vehicle: it feeds flight events to
// the ignition, deployment and separation predicates, steps per-flight motor
// states and aggregates their thrust, mass and CG for an external stepper.
package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signalsfoundry/motorsim/flightconfig"
	"github.com/signalsfoundry/motorsim/model"
)

// ErrInvalidVehicle is returned by Vehicle.Validate.
var ErrInvalidVehicle = errors.New("invalid vehicle")

// MountBinding ties a motor mount to its per-configuration motors.
type MountBinding struct {
	Mount  *flightconfig.Mount
	Motors *flightconfig.MotorConfigurationSet
}

// RecoveryBinding ties a recovery device to its per-configuration
// deployment settings. DragArea is the device's Cd·A in m² once deployed.
type RecoveryBinding struct {
	Device     model.Component
	Deployment *flightconfig.DeploymentConfigurationSet
	DragArea   float64
}

// StageBinding ties a stage to its per-configuration separation settings.
// DryMass is the stage's mass without motors, in kg.
type StageBinding struct {
	Stage      model.Component
	Separation *flightconfig.SeparationConfigurationSet
	DryMass    float64
}

// Vehicle is the flight-relevant view of a rocket. DragArea is the body's
// Cd·A in m².
type Vehicle struct {
	Name     string
	DragArea float64

	Stages   []StageBinding
	Mounts   []MountBinding
	Recovery []RecoveryBinding
}

// AddStage appends a stage with a fresh separation set.
func (v *Vehicle) AddStage(stage model.Component, dryMass float64) *flightconfig.SeparationConfigurationSet {
	set := flightconfig.NewSeparationConfigurationSet()
	v.Stages = append(v.Stages, StageBinding{Stage: stage, Separation: set, DryMass: dryMass})
	return set
}

// AddMount appends a mount with a fresh motor set.
func (v *Vehicle) AddMount(m *flightconfig.Mount) *flightconfig.MotorConfigurationSet {
	set := flightconfig.NewMotorConfigurationSet(m)
	v.Mounts = append(v.Mounts, MountBinding{Mount: m, Motors: set})
	return set
}

// AddRecovery appends a recovery device with a fresh deployment set.
func (v *Vehicle) AddRecovery(device model.Component, dragArea float64) *flightconfig.DeploymentConfigurationSet {
	set := flightconfig.NewDeploymentConfigurationSet()
	v.Recovery = append(v.Recovery, RecoveryBinding{Device: device, Deployment: set, DragArea: dragArea})
	return set
}

// LaunchStage returns the stage flagged as the launch stage, or else the
// bottom one.
func (v *Vehicle) LaunchStage() model.Component {
	var bottom model.Component
	for _, s := range v.Stages {
		if s.Stage.LaunchStage() {
			return s.Stage
		}
		if bottom == nil || s.Stage.StageNumber() > bottom.StageNumber() {
			bottom = s.Stage
		}
	}
	return bottom
}

// DryMass is the summed stage dry mass.
func (v *Vehicle) DryMass() float64 {
	var m float64
	for _, s := range v.Stages {
		m += s.DryMass
	}
	return m
}

// FlightConfigurations returns every configuration id any mount overrides,
// sorted by their string form. The default id is not included.
func (v *Vehicle) FlightConfigurations() []model.FlightConfigurationID {
	seen := make(map[model.FlightConfigurationID]struct{})
	var out []model.FlightConfigurationID
	for _, b := range v.Mounts {
		for _, id := range b.Motors.IDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Validate checks that the vehicle can be flown.
func (v *Vehicle) Validate() error {
	var errs []error
	if len(v.Stages) == 0 {
		errs = append(errs, fmt.Errorf("%w: no stages", ErrInvalidVehicle))
	}
	stages := make(map[int]bool, len(v.Stages))
	for _, s := range v.Stages {
		if s.Stage == nil || s.Separation == nil {
			errs = append(errs, fmt.Errorf("%w: incomplete stage binding", ErrInvalidVehicle))
			continue
		}
		n := s.Stage.StageNumber()
		if stages[n] {
			errs = append(errs, fmt.Errorf("%w: duplicate stage %d", ErrInvalidVehicle, n))
		}
		stages[n] = true
		if s.DryMass < 0 {
			errs = append(errs, fmt.Errorf("%w: stage %s has negative dry mass", ErrInvalidVehicle, s.Stage.ID()))
		}
	}
	if len(v.Stages) > 0 && !(v.DryMass() > 0) {
		errs = append(errs, fmt.Errorf("%w: dry mass must be positive", ErrInvalidVehicle))
	}
	for _, b := range v.Mounts {
		if b.Mount == nil || b.Motors == nil {
			errs = append(errs, fmt.Errorf("%w: incomplete mount binding", ErrInvalidVehicle))
			continue
		}
		if b.Motors.Mount() != b.Mount {
			errs = append(errs, fmt.Errorf("%w: motor set of %s is bound to %s", ErrInvalidVehicle, b.Mount.ID(), b.Motors.Mount().ID()))
		}
		if !stages[b.Mount.StageNumber()] {
			errs = append(errs, fmt.Errorf("%w: mount %s is in unknown stage %d", ErrInvalidVehicle, b.Mount.ID(), b.Mount.StageNumber()))
		}
	}
	for _, r := range v.Recovery {
		if r.Device == nil || r.Deployment == nil {
			errs = append(errs, fmt.Errorf("%w: incomplete recovery binding", ErrInvalidVehicle))
			continue
		}
		if !stages[r.Device.StageNumber()] {
			errs = append(errs, fmt.Errorf("%w: recovery device %s is in unknown stage %d", ErrInvalidVehicle, r.Device.ID(), r.Device.StageNumber()))
		}
	}
	return errors.Join(errs...)
}

package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/motorsim/flightconfig"
	"github.com/signalsfoundry/motorsim/internal/logging"
	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/trigger"
)

// MetricsRecorder receives counters from running flights.
type MetricsRecorder interface {
	ObserveStep()
	ObserveEvent(eventType string)
	ObserveActivation(kind string)
	SetActiveMotors(n int)
	ObserveRun(d time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveStep()                    {}
func (noopRecorder) ObserveEvent(string)             {}
func (noopRecorder) ObserveActivation(string)        {}
func (noopRecorder) SetActiveMotors(int)             {}
func (noopRecorder) ObserveRun(time.Duration, error) {}

// FlightOption customises Flight construction.
type FlightOption func(*Flight)

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) FlightOption {
	return func(f *Flight) {
		if m != nil {
			f.metrics = m
		}
	}
}

type motorRun struct {
	mount     *flightconfig.Mount
	config    *flightconfig.MotorConfiguration
	state     *motor.InstanceState
	scheduled bool
	burnedOut bool
}

type recoveryRun struct {
	device    model.Component
	config    *trigger.DeploymentConfiguration
	dragArea  float64
	scheduled bool
	deployed  bool
}

type stageRun struct {
	stage     model.Component
	config    *trigger.StageSeparationConfiguration
	dryMass   float64
	scheduled bool
	separated bool
}

// Flight is one flight of a vehicle in one flight configuration. It owns
// private copies of every motor state and event configuration, so several
// flights of the same vehicle may run side by side.
//
// A Flight is not safe for concurrent use.
type Flight struct {
	vehicle *Vehicle
	id      model.FlightConfigurationID

	motors   []*motorRun
	recovery []*recoveryRun
	stages   []*stageRun

	queue *EventQueue
	now   float64
	log   []model.FlightEvent

	// dropped is the lowest separated stage number; that stage and every
	// stage below it no longer belong to the flying vehicle.
	dropped int

	acceleration float64
	atmosphere   motor.Atmosphere

	ctx     context.Context
	logger  logging.Logger
	metrics MetricsRecorder
}

// NewFlight prepares a flight of v in configuration id. Mounts that are
// empty in id carry no motor. A nil log falls back to the logger stored on
// ctx by logging.WithRunLogger.
func NewFlight(ctx context.Context, v *Vehicle, id model.FlightConfigurationID, log logging.Logger, opts ...FlightOption) *Flight {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logging.FromContext(ctx)
	}
	f := &Flight{
		vehicle:    v,
		id:         id,
		queue:      NewEventQueue(),
		dropped:    math.MaxInt,
		atmosphere: motor.StandardAtmosphere,
		ctx:        ctx,
		logger:     log.With(logging.String("flight_config", id.Short())),
		metrics:    noopRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	for _, b := range v.Mounts {
		cfg := b.Motors.Get(id)
		if cfg.IsEmpty() {
			continue
		}
		f.motors = append(f.motors, &motorRun{
			mount:  b.Mount,
			config: cfg.Clone(),
			state:  cfg.NewInstanceState(),
		})
	}
	for _, b := range v.Recovery {
		f.recovery = append(f.recovery, &recoveryRun{
			device:   b.Device,
			config:   b.Deployment.Get(id).Clone(),
			dragArea: b.DragArea,
		})
	}
	for _, b := range v.Stages {
		f.stages = append(f.stages, &stageRun{
			stage:   b.Stage,
			config:  b.Separation.Get(id).Clone(),
			dryMass: b.DryMass,
		})
	}
	return f
}

func (f *Flight) Vehicle() *Vehicle                          { return f.vehicle }
func (f *Flight) Configuration() model.FlightConfigurationID { return f.id }

// Now is the flight time of the last Advance.
func (f *Flight) Now() float64 { return f.now }

// Pending returns the number of scheduled events.
func (f *Flight) Pending() int { return f.queue.Len() }

// Log returns every handled event in order.
func (f *Flight) Log() []model.FlightEvent {
	return append([]model.FlightEvent(nil), f.log...)
}

// SetEnvironment sets the acceleration and atmosphere passed to motor steps.
func (f *Flight) SetEnvironment(acceleration float64, atmo motor.Atmosphere) {
	f.acceleration = acceleration
	f.atmosphere = atmo
}

// Emit schedules ev and handles every event due at the current time. ev
// may not lie in the past.
func (f *Flight) Emit(ev model.FlightEvent) {
	if ev.Time < f.now {
		panic(fmt.Sprintf("sim: %s emitted at %v, flight is at %v", ev.Type, ev.Time, f.now))
	}
	f.queue.Push(ev)
	f.Advance(f.now)
}

// Advance moves the flight to time t: due events are handled in time
// order, the motors are stepped to each of them and finally to t. Time
// never runs backwards: an earlier t panics.
func (f *Flight) Advance(t float64) {
	if t < f.now {
		panic(fmt.Sprintf("sim: advance backwards from %v to %v", f.now, t))
	}
	for {
		ev, ok := f.queue.PopDue(t)
		if !ok {
			break
		}
		f.stepMotors(ev.Time)
		f.Handle(ev)
	}
	f.stepMotors(t)
	f.metrics.SetActiveMotors(f.ActiveMotors())
}

func (f *Flight) stepMotors(t float64) {
	if t < f.now {
		t = f.now
	}
	for _, m := range f.motors {
		if m.state.IsIgnited() {
			m.state.Step(m.state.MotorTime(t), f.acceleration, f.atmosphere)
		}
	}
	f.now = t
}

// Handle applies ev to the flight and evaluates every pending predicate
// against it. Matching predicates schedule their IGNITION,
// RECOVERY_DEVICE_DEPLOYMENT or STAGE_SEPARATION event after the
// configured delay.
func (f *Flight) Handle(ev model.FlightEvent) {
	f.log = append(f.log, ev)
	f.metrics.ObserveEvent(ev.Type.String())
	if ev.Type != model.EventAltitude {
		f.logger.Debug(f.ctx, "flight event", logging.String("event", ev.String()))
	}

	switch ev.Type {
	case model.EventIgnition:
		for _, m := range f.motors {
			if ev.Source == model.Component(m.mount) && !m.state.IsIgnited() {
				m.state.Ignite(ev.Time)
				f.schedule(model.EventBurnout, ev.Time+m.state.Motor().BurnTime(), m.mount)
			}
		}
	case model.EventBurnout:
		for _, m := range f.motors {
			if ev.Source == model.Component(m.mount) && m.state.IsIgnited() && !m.burnedOut {
				m.burnedOut = true
				if !m.state.Plugged() {
					f.schedule(model.EventEjectionCharge, ev.Time+m.state.EjectionDelay(), m.mount)
				}
			}
		}
	case model.EventRecoveryDeployment:
		for _, r := range f.recovery {
			if ev.Source == r.device {
				r.deployed = true
			}
		}
	case model.EventStageSeparation:
		for _, s := range f.stages {
			if ev.Source == s.stage {
				s.separated = true
				if n := s.stage.StageNumber(); n < f.dropped {
					f.dropped = n
				}
				f.logger.Info(f.ctx, "stage separated",
					logging.String("stage", s.stage.ID()),
					logging.Float("t", ev.Time),
				)
			}
		}
	}

	for _, m := range f.motors {
		if m.scheduled || m.state.IsIgnited() || !f.attached(m.mount) {
			continue
		}
		if m.state.IgnitionEvent().IsActivationEvent(ev, m.mount) {
			m.scheduled = true
			f.metrics.ObserveActivation("ignition")
			f.schedule(model.EventIgnition, ev.Time+m.state.IgnitionDelay(), m.mount)
		}
	}
	for _, r := range f.recovery {
		if r.scheduled || !f.attached(r.device) {
			continue
		}
		if r.config.IsActivationEvent(ev, r.device) {
			r.scheduled = true
			f.metrics.ObserveActivation("deployment")
			f.schedule(model.EventRecoveryDeployment, ev.Time+r.config.DeployDelay(), r.device)
		}
	}
	for _, s := range f.stages {
		// The top stage has nothing above it to separate from.
		if s.scheduled || s.stage.StageNumber() == 0 || !f.attached(s.stage) {
			continue
		}
		if s.config.IsActivationEvent(ev, s.stage) {
			s.scheduled = true
			f.metrics.ObserveActivation("separation")
			f.schedule(model.EventStageSeparation, ev.Time+s.config.SeparationDelay(), s.stage)
		}
	}
}

func (f *Flight) schedule(t model.EventType, at float64, src model.Component) {
	if at < f.now {
		at = f.now
	}
	f.queue.Push(model.FlightEvent{Type: t, Time: at, Source: src})
}

func (f *Flight) attached(c model.Component) bool {
	return c.StageNumber() < f.dropped
}

// Thrust is the summed step thrust of the motors still attached, in N.
func (f *Flight) Thrust() float64 {
	var sum float64
	for _, m := range f.motors {
		if m.state.IsIgnited() && f.attached(m.mount) {
			sum += m.state.Thrust()
		}
	}
	return sum
}

// MotorMass is the summed mass of the motors still attached, in kg.
func (f *Flight) MotorMass() float64 {
	var sum float64
	for _, m := range f.motors {
		if f.attached(m.mount) {
			sum += m.state.Mass()
		}
	}
	return sum
}

// MotorCG returns the mass-weighted axial CG of the attached motors,
// measured aft from the nose tip, and their total mass. With no motor
// attached both are zero.
func (f *Flight) MotorCG() (x, mass float64) {
	var moment float64
	for _, m := range f.motors {
		if !f.attached(m.mount) {
			continue
		}
		cg := m.state.CG()
		moment += (m.config.MotorPosition() + cg.X) * cg.Mass
		mass += cg.Mass
	}
	if mass == 0 {
		return 0, 0
	}
	return moment / mass, mass
}

// DryMass is the summed dry mass of the attached stages.
func (f *Flight) DryMass() float64 {
	var sum float64
	for _, s := range f.stages {
		if f.attached(s.stage) {
			sum += s.dryMass
		}
	}
	return sum
}

// DragArea is the body's Cd·A plus that of every deployed, attached
// recovery device.
func (f *Flight) DragArea() float64 {
	sum := f.vehicle.DragArea
	for _, r := range f.recovery {
		if r.deployed && f.attached(r.device) {
			sum += r.dragArea
		}
	}
	return sum
}

// ActiveMotors counts attached motors that are burning.
func (f *Flight) ActiveMotors() int {
	var n int
	for _, m := range f.motors {
		if m.state.IsIgnited() && !m.burnedOut && f.attached(m.mount) {
			n++
		}
	}
	return n
}

// Deployed reports whether device has deployed.
func (f *Flight) Deployed(device model.Component) bool {
	for _, r := range f.recovery {
		if r.device == device {
			return r.deployed
		}
	}
	return false
}

// Separated reports whether stage has separated.
func (f *Flight) Separated(stage model.Component) bool {
	for _, s := range f.stages {
		if s.stage == stage {
			return s.separated
		}
	}
	return false
}

// MotorState returns the flight's state of the motor in mount, or nil when
// the mount is empty in this configuration.
func (f *Flight) MotorState(mount *flightconfig.Mount) *motor.InstanceState {
	for _, m := range f.motors {
		if m.mount == mount {
			return m.state
		}
	}
	return nil
}

package sim

import (
	"context"
	"math"

	"github.com/signalsfoundry/motorsim/internal/logging"
	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/timectrl"
)

// Gravity is standard gravitational acceleration in m/s².
const Gravity = 9.80665

// DriverSettings tunes the vertical reference stepper.
type DriverSettings struct {
	TimeStep  float64 // s
	MaxTime   float64 // s
	RodLength float64 // m
	Mode      timectrl.Mode
}

// DefaultDriverSettings steps at 10 ms for at most ten minutes off a 1 m rod.
func DefaultDriverSettings() DriverSettings {
	return DriverSettings{TimeStep: 0.01, MaxTime: 600, RodLength: 1, Mode: timectrl.Accelerated}
}

func (s DriverSettings) withDefaults() DriverSettings {
	d := DefaultDriverSettings()
	if s.TimeStep > 0 {
		d.TimeStep = s.TimeStep
	}
	if s.MaxTime > 0 {
		d.MaxTime = s.MaxTime
	}
	if s.RodLength > 0 {
		d.RodLength = s.RodLength
	}
	d.Mode = s.Mode
	return d
}

// Result summarises a finished flight.
type Result struct {
	Name   string
	Config model.FlightConfigurationID

	Apogee          float64 // m
	ApogeeTime      float64 // s
	MaxVelocity     float64 // m/s
	MaxAcceleration float64 // m/s²
	FlightTime      float64 // s
	Landed          bool

	// Events excludes ALTITUDE samples.
	Events []model.FlightEvent
}

// VerticalDriver flies a Flight straight up and down as a point mass under
// gravity, thrust and quadratic drag. It produces LAUNCH, LIFTOFF,
// LAUNCHROD, ALTITUDE, APOGEE, GROUND_HIT and SIMULATION_END events and
// feeds them to the flight.
type VerticalDriver struct {
	flight   *Flight
	settings DriverSettings
	clock    *timectrl.TimeController
	logger   logging.Logger

	prev         float64
	altitude     float64
	velocity     float64
	acceleration float64

	liftedOff  bool
	offRod     bool
	pastApogee bool
	landed     bool

	result Result
}

// NewVerticalDriver prepares a driver for f.
func NewVerticalDriver(f *Flight, settings DriverSettings, log logging.Logger) *VerticalDriver {
	if log == nil {
		log = logging.Noop()
	}
	settings = settings.withDefaults()
	d := &VerticalDriver{
		flight:   f,
		settings: settings,
		clock:    timectrl.NewTimeController(0, settings.TimeStep, settings.Mode),
		logger:   log,
	}
	d.clock.AddListener(d.tick)
	return d
}

// Clock exposes the driver's time source.
func (d *VerticalDriver) Clock() timectrl.SimClock { return d.clock }

func (d *VerticalDriver) Altitude() float64 { return d.altitude }
func (d *VerticalDriver) Velocity() float64 { return d.velocity }

// Run flies until ground hit, MaxTime or cancellation. The result is valid
// up to the point reached even when ctx is cancelled.
func (d *VerticalDriver) Run(ctx context.Context) (Result, error) {
	f := d.flight
	d.result.Config = f.Configuration()
	d.result.Name = f.Vehicle().Name

	f.Emit(model.FlightEvent{Type: model.EventLaunch, Time: 0, Source: f.Vehicle().LaunchStage()})

	err := d.clock.Run(ctx, d.settings.MaxTime)
	if !d.landed {
		f.Emit(model.FlightEvent{Type: model.EventSimulationEnd, Time: f.Now()})
	}
	d.result.FlightTime = f.Now()
	d.result.Landed = d.landed
	for _, ev := range f.Log() {
		if ev.Type != model.EventAltitude {
			d.result.Events = append(d.result.Events, ev)
		}
	}

	d.logger.Info(ctx, "flight finished",
		logging.String("config", f.Configuration().Short()),
		logging.Float("apogee_m", d.result.Apogee),
		logging.Float("apogee_s", d.result.ApogeeTime),
		logging.Float("max_velocity", d.result.MaxVelocity),
		logging.Float("flight_time", d.result.FlightTime),
		logging.Bool("landed", d.landed),
	)
	return d.result, err
}

func (d *VerticalDriver) tick(now float64) {
	f := d.flight
	dt := now - d.prev
	d.prev = now

	atmo := AtmosphereAt(d.altitude)
	f.SetEnvironment(d.acceleration, atmo)
	f.Advance(now)
	f.metrics.ObserveStep()

	mass := f.DryMass() + f.MotorMass()
	drag := 0.5 * atmo.Density * d.velocity * math.Abs(d.velocity) * f.DragArea()
	a := (f.Thrust()-drag)/mass - Gravity

	if !d.liftedOff {
		if a <= 0 {
			d.acceleration = 0
			return
		}
		d.liftedOff = true
		f.Emit(model.FlightEvent{Type: model.EventLiftoff, Time: now, Source: f.Vehicle().LaunchStage()})
	}

	prevAlt, prevVel := d.altitude, d.velocity
	d.acceleration = a
	d.velocity += a * dt
	d.altitude += d.velocity * dt

	d.result.MaxVelocity = math.Max(d.result.MaxVelocity, d.velocity)
	d.result.MaxAcceleration = math.Max(d.result.MaxAcceleration, a)
	if d.altitude > d.result.Apogee {
		d.result.Apogee = d.altitude
		d.result.ApogeeTime = now
	}

	if !d.offRod && d.altitude >= d.settings.RodLength {
		d.offRod = true
		f.Emit(model.FlightEvent{Type: model.EventLaunchRod, Time: now})
	}
	f.Emit(model.FlightEvent{
		Type:     model.EventAltitude,
		Time:     now,
		Altitude: &model.AltitudeCrossing{Previous: prevAlt, Current: math.Max(d.altitude, 0)},
	})
	if !d.pastApogee && prevVel > 0 && d.velocity <= 0 {
		d.pastApogee = true
		f.Emit(model.FlightEvent{Type: model.EventApogee, Time: now})
	}
	if d.altitude <= 0 && d.velocity < 0 {
		d.altitude = 0
		d.landed = true
		f.Emit(model.FlightEvent{Type: model.EventGroundHit, Time: now})
		f.Emit(model.FlightEvent{Type: model.EventSimulationEnd, Time: now})
		d.clock.Stop()
	}
}

// AtmosphereAt returns the ISA troposphere at altitude h metres.
func AtmosphereAt(h float64) motor.Atmosphere {
	if h < 0 {
		h = 0
	}
	if h > 11000 {
		h = 11000
	}
	const (
		t0    = 288.15
		lapse = 0.0065
		p0    = 101325.0
		r     = 287.05287
	)
	t := t0 - lapse*h
	p := p0 * math.Pow(t/t0, Gravity/(lapse*r))
	return motor.Atmosphere{Pressure: p, Temperature: t, Density: p / (r * t)}
}

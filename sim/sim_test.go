package sim

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/signalsfoundry/motorsim/flightconfig"
	"github.com/signalsfoundry/motorsim/internal/observability"
	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/trigger"
)

const tol = 1e-9

// testMotor burns for 1.2 s and delivers 82 Ns.
func testMotor(t *testing.T) *motor.ThrustCurveMotor {
	t.Helper()
	m, err := motor.NewBuilder().
		WithManufacturer(motor.NewRegistry().Get("AeroTech")).
		WithDesignation("G82").
		WithMotorType(motor.TypeReload).
		WithDiameter(0.029).
		WithLength(0.1).
		WithDelays(2, 6, motor.PluggedDelay).
		WithSamples(
			[]float64{0, 0.1, 0.5, 1.0, 1.2},
			[]float64{0, 100, 80, 60, 0},
		).
		WithMasses(0.1, 0.04).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

type singleStage struct {
	vehicle *Vehicle
	stage   *model.Part
	mount   *flightconfig.Mount
	motors  *flightconfig.MotorConfigurationSet
	chute   *model.Part
	deploy  *flightconfig.DeploymentConfigurationSet
}

func newSingleStage(t *testing.T) *singleStage {
	t.Helper()
	s := &singleStage{
		vehicle: &Vehicle{Name: "alpha", DragArea: 0.0005},
		stage:   &model.Part{PartID: "sustainer", Stage: 0, Launch: true},
		chute:   &model.Part{PartID: "chute", Stage: 0, Launch: true},
	}
	s.vehicle.AddStage(s.stage, 0.5)
	s.mount = flightconfig.NewMount(model.MotorMount{
		Part:          model.Part{PartID: "mmt", Stage: 0, Launch: true},
		AxialPosition: 0.6,
		Length:        0.3,
		InnerRadius:   0.0145,
	})
	s.motors = s.vehicle.AddMount(s.mount)
	s.deploy = s.vehicle.AddRecovery(s.chute, 0.5)
	return s
}

func (s *singleStage) load(t *testing.T, name string, delay float64) model.FlightConfigurationID {
	t.Helper()
	id := model.FlightConfigurationIDFromName(name)
	cfg := flightconfig.NewMotorConfiguration(s.mount)
	cfg.SetMotor(testMotor(t))
	cfg.SetEjectionDelay(delay)
	s.motors.Set(id, cfg)
	return id
}

func eventTypes(evs []model.FlightEvent) string {
	names := make([]string, 0, len(evs))
	for _, ev := range evs {
		if ev.Type == model.EventAltitude {
			continue
		}
		names = append(names, ev.Type.String())
	}
	return strings.Join(names, ",")
}

func findEvent(evs []model.FlightEvent, typ model.EventType) (model.FlightEvent, bool) {
	for _, ev := range evs {
		if ev.Type == typ {
			return ev, true
		}
	}
	return model.FlightEvent{}, false
}

func TestEventQueueOrdersByTimeThenInsertion(t *testing.T) {
	q := NewEventQueue()
	q.Push(model.FlightEvent{Type: model.EventApogee, Time: 5})
	q.Push(model.FlightEvent{Type: model.EventBurnout, Time: 1})
	q.Push(model.FlightEvent{Type: model.EventEjectionCharge, Time: 1})
	q.Push(model.FlightEvent{Type: model.EventLaunch, Time: 0})

	if ev, ok := q.Peek(); !ok || ev.Type != model.EventLaunch {
		t.Fatalf("Peek = %v, want LAUNCH", ev)
	}
	if _, ok := q.PopDue(-1); ok {
		t.Fatalf("PopDue(-1) returned an event")
	}

	var got []model.FlightEvent
	for q.Len() > 0 {
		ev, _ := q.Pop()
		got = append(got, ev)
	}
	if s := eventTypes(got); s != "LAUNCH,BURNOUT,EJECTION_CHARGE,APOGEE" {
		t.Fatalf("order = %s", s)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop on empty queue returned an event")
	}
}

func TestFlightEventChain(t *testing.T) {
	s := newSingleStage(t)
	id := s.load(t, "G82-6", 6)

	f := NewFlight(context.Background(), s.vehicle, id, nil)
	f.Emit(model.FlightEvent{Type: model.EventLaunch, Source: s.stage})

	st := f.MotorState(s.mount)
	if st == nil || !st.IsIgnited() || st.IgnitionTime() != 0 {
		t.Fatalf("motor not ignited at launch: %v", st)
	}

	f.Advance(0.5)
	if !scalar.EqualWithinAbs(f.Thrust(), 82, tol) {
		t.Fatalf("Thrust = %v, want 82", f.Thrust())
	}
	if f.ActiveMotors() != 1 {
		t.Fatalf("ActiveMotors = %d, want 1", f.ActiveMotors())
	}

	f.Advance(10)
	log := f.Log()
	if got := eventTypes(log); got != "LAUNCH,IGNITION,BURNOUT,EJECTION_CHARGE,RECOVERY_DEVICE_DEPLOYMENT" {
		t.Fatalf("events = %s", got)
	}
	wantTimes := []float64{0, 0, 1.2, 7.2, 7.2}
	for i, ev := range log {
		if !scalar.EqualWithinAbs(ev.Time, wantTimes[i], tol) {
			t.Fatalf("%s at %v, want %v", ev.Type, ev.Time, wantTimes[i])
		}
	}
	if !f.Deployed(s.chute) {
		t.Fatalf("chute not deployed")
	}
	if f.Thrust() != 0 || f.ActiveMotors() != 0 {
		t.Fatalf("burned-out motor still thrusting: %v", f.Thrust())
	}

	x, mass := f.MotorCG()
	if !scalar.EqualWithinAbs(mass, 0.04, tol) || !scalar.EqualWithinAbs(x, 0.85, tol) {
		t.Fatalf("MotorCG = (%v, %v), want (0.85, 0.04)", x, mass)
	}
	if !scalar.EqualWithinAbs(f.DragArea(), 0.5005, tol) {
		t.Fatalf("DragArea = %v, want 0.5005", f.DragArea())
	}
}

func TestPluggedMotorFiresNoCharge(t *testing.T) {
	s := newSingleStage(t)
	id := s.load(t, "G82-P", motor.PluggedDelay)

	f := NewFlight(context.Background(), s.vehicle, id, nil)
	f.Emit(model.FlightEvent{Type: model.EventLaunch, Source: s.stage})
	f.Advance(20)

	if got := eventTypes(f.Log()); got != "LAUNCH,IGNITION,BURNOUT" {
		t.Fatalf("events = %s", got)
	}
	if f.Deployed(s.chute) {
		t.Fatalf("chute deployed without an ejection charge")
	}
}

func TestEmptyConfigurationCarriesNoMotor(t *testing.T) {
	s := newSingleStage(t)
	s.load(t, "G82-6", 6)

	f := NewFlight(context.Background(), s.vehicle, model.FlightConfigurationIDFromName("unloaded"), nil)
	f.Emit(model.FlightEvent{Type: model.EventLaunch, Source: s.stage})
	if f.MotorState(s.mount) != nil || f.MotorMass() != 0 {
		t.Fatalf("empty configuration produced a motor")
	}
	if got := eventTypes(f.Log()); got != "LAUNCH" {
		t.Fatalf("events = %s", got)
	}
}

func TestFlightTimeRegressionPanics(t *testing.T) {
	s := newSingleStage(t)
	f := NewFlight(context.Background(), s.vehicle, s.load(t, "G82-6", 6), nil)
	f.Advance(2)

	defer func() {
		if recover() == nil {
			t.Fatalf("Advance backwards should panic")
		}
	}()
	f.Advance(1)
}

func TestTwoStageStaging(t *testing.T) {
	v := &Vehicle{Name: "two-stage"}
	sustainer := &model.Part{PartID: "sustainer", Stage: 0}
	booster := &model.Part{PartID: "booster", Stage: 1, Launch: true}
	v.AddStage(sustainer, 0.4)
	v.AddStage(booster, 0.3)

	boosterMount := flightconfig.NewMount(model.MotorMount{
		Part: model.Part{PartID: "booster-mmt", Stage: 1, Launch: true}, Length: 0.2, InnerRadius: 0.0145,
	})
	sustainerMount := flightconfig.NewMount(model.MotorMount{
		Part: model.Part{PartID: "sustainer-mmt", Stage: 0}, Length: 0.2, InnerRadius: 0.0145,
	})
	id := model.FlightConfigurationIDFromName("G82-0/G82-6")

	bcfg := flightconfig.NewMotorConfiguration(boosterMount)
	bcfg.SetMotor(testMotor(t))
	v.AddMount(boosterMount).Set(id, bcfg)

	scfg := flightconfig.NewMotorConfiguration(sustainerMount)
	scfg.SetMotor(testMotor(t))
	scfg.SetEjectionDelay(6)
	v.AddMount(sustainerMount).Set(id, scfg)

	if err := v.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.LaunchStage() != model.Component(booster) {
		t.Fatalf("LaunchStage = %v, want booster", v.LaunchStage())
	}

	f := NewFlight(context.Background(), v, id, nil)
	f.Emit(model.FlightEvent{Type: model.EventLaunch, Source: booster})
	if !scalar.EqualWithinAbs(f.DryMass(), 0.7, tol) {
		t.Fatalf("DryMass before staging = %v, want 0.7", f.DryMass())
	}
	f.Advance(3)

	if got := eventTypes(f.Log()); got != "LAUNCH,IGNITION,BURNOUT,EJECTION_CHARGE,IGNITION,STAGE_SEPARATION,BURNOUT" {
		t.Fatalf("events = %s", got)
	}
	sep, _ := findEvent(f.Log(), model.EventStageSeparation)
	if sep.Source != model.Component(booster) || !scalar.EqualWithinAbs(sep.Time, 1.2, tol) {
		t.Fatalf("separation = %v, want booster at 1.2", sep)
	}
	if !f.Separated(booster) || f.Separated(sustainer) {
		t.Fatalf("wrong stage separated")
	}
	if !scalar.EqualWithinAbs(f.DryMass(), 0.4, tol) {
		t.Fatalf("DryMass after staging = %v, want 0.4", f.DryMass())
	}
	if st := f.MotorState(sustainerMount); st == nil || !scalar.EqualWithinAbs(st.IgnitionTime(), 1.2, tol) {
		t.Fatalf("sustainer ignition = %v, want 1.2", st)
	}
	if !scalar.EqualWithinAbs(f.MotorMass(), f.MotorState(sustainerMount).Mass(), tol) {
		t.Fatalf("MotorMass still counts the dropped booster motor")
	}
}

func TestVehicleValidate(t *testing.T) {
	if err := (&Vehicle{}).Validate(); !errors.Is(err, ErrInvalidVehicle) {
		t.Fatalf("empty vehicle error = %v", err)
	}

	s := newSingleStage(t)
	stray := flightconfig.NewMount(model.MotorMount{Part: model.Part{PartID: "stray", Stage: 4}})
	s.vehicle.AddMount(stray)
	err := s.vehicle.Validate()
	if !errors.Is(err, ErrInvalidVehicle) || !strings.Contains(err.Error(), "stray") {
		t.Fatalf("Validate = %v, want the stray mount flagged", err)
	}
}

func TestVerticalFlightWithApogeeDeployment(t *testing.T) {
	s := newSingleStage(t)
	id := s.load(t, "G82-P", motor.PluggedDelay)
	apogee := trigger.NewDeploymentConfiguration()
	apogee.SetDeployEvent(trigger.DeployApogee)
	if err := s.deploy.SetDefault(apogee); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}

	f := NewFlight(context.Background(), s.vehicle, id, nil)
	res, err := NewVerticalDriver(f, DriverSettings{TimeStep: 0.01}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !res.Landed {
		t.Fatalf("flight did not land within %v s", res.FlightTime)
	}
	if res.Apogee < 100 || res.Apogee > 2000 {
		t.Fatalf("Apogee = %v m, want a plausible G-motor altitude", res.Apogee)
	}
	got := eventTypes(res.Events)
	want := "LAUNCH,IGNITION,LIFTOFF,LAUNCHROD,BURNOUT,APOGEE,RECOVERY_DEVICE_DEPLOYMENT,GROUND_HIT,SIMULATION_END"
	if got != want {
		t.Fatalf("events = %s, want %s", got, want)
	}
	ap, _ := findEvent(res.Events, model.EventApogee)
	if !scalar.EqualWithinAbs(ap.Time, res.ApogeeTime, 0.011) {
		t.Fatalf("APOGEE event at %v, max altitude at %v", ap.Time, res.ApogeeTime)
	}
	if res.ApogeeTime <= 1.2 {
		t.Fatalf("apogee %v before burnout", res.ApogeeTime)
	}
	// Under the chute the descent is slow.
	if res.FlightTime-res.ApogeeTime < 20 {
		t.Fatalf("descent took %v s, want a parachute descent", res.FlightTime-res.ApogeeTime)
	}
}

func TestAtmosphereAt(t *testing.T) {
	sea := AtmosphereAt(-10)
	if !scalar.EqualWithinAbs(sea.Density, 1.225, 1e-3) || sea.Pressure != 101325 {
		t.Fatalf("sea level = %+v", sea)
	}
	high := AtmosphereAt(5000)
	if !(high.Density < sea.Density) || !scalar.EqualWithinAbs(high.Temperature, 255.65, 1e-9) {
		t.Fatalf("5 km = %+v", high)
	}
}

func TestRunWhatIfComparesDelays(t *testing.T) {
	s := newSingleStage(t)
	short := s.load(t, "G82-2", 2)
	long := s.load(t, "G82-6", 6)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	build := func() (*Vehicle, error) { return s.vehicle, nil }
	results, err := RunWhatIf(context.Background(), []Run{
		{Name: "short", Config: short, Vehicle: build},
		{Name: "long", Config: long, Vehicle: build},
	}, WhatIfOptions{Parallelism: 2, Metrics: metrics})
	if err != nil {
		t.Fatalf("RunWhatIf: %v", err)
	}

	for i, want := range []struct {
		name   string
		deploy float64
	}{{"short", 3.2}, {"long", 7.2}} {
		res := results[i]
		if res.Name != want.name {
			t.Fatalf("results[%d] = %s, want %s", i, res.Name, want.name)
		}
		ev, ok := findEvent(res.Events, model.EventRecoveryDeployment)
		if !ok || !scalar.EqualWithinAbs(ev.Time, want.deploy, tol) {
			t.Fatalf("%s: deployment at %v, want %v", res.Name, ev.Time, want.deploy)
		}
	}

	if got := testutil.ToFloat64(metrics.EventsTotal.WithLabelValues("LAUNCH")); got != 2 {
		t.Fatalf("LAUNCH events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ActivationsTotal.WithLabelValues("deployment")); got != 2 {
		t.Fatalf("deployment activations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.StepsTotal); got == 0 {
		t.Fatalf("no steps recorded")
	}
}

func TestRunWhatIfPropagatesFailures(t *testing.T) {
	_, err := RunWhatIf(context.Background(), []Run{
		{Name: "broken", Vehicle: func() (*Vehicle, error) { return &Vehicle{}, nil }},
	}, WhatIfOptions{})
	if !errors.Is(err, ErrInvalidVehicle) || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("RunWhatIf = %v, want the invalid vehicle reported", err)
	}

	s := newSingleStage(t)
	id := s.load(t, "G82-6", 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunWhatIf(ctx, []Run{
		{Name: "cancelled", Config: id, Vehicle: func() (*Vehicle, error) { return s.vehicle, nil }},
	}, WhatIfOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunWhatIf = %v, want context.Canceled", err)
	}
}

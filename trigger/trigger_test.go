package trigger

import (
	"testing"

	"github.com/signalsfoundry/motorsim/model"
)

func part(stage int, launch bool) *model.Part {
	return &model.Part{PartID: "p", Stage: stage, Launch: launch}
}

func event(t model.EventType, srcStage int) model.FlightEvent {
	return model.FlightEvent{Type: t, Source: part(srcStage, false)}
}

var allEventTypes = []model.EventType{
	model.EventLaunch, model.EventIgnition, model.EventLiftoff, model.EventLaunchRod,
	model.EventBurnout, model.EventEjectionCharge, model.EventStageSeparation, model.EventApogee,
	model.EventRecoveryDeployment, model.EventAltitude, model.EventGroundHit, model.EventSimulationEnd,
}

func TestSeparationOnEjectionMatchesOnlyOwnStageCharge(t *testing.T) {
	cfg := NewStageSeparationConfiguration()
	cfg.SetSeparationEvent(SeparationEjection)
	stage := part(1, false)

	for _, typ := range allEventTypes {
		for src := 0; src <= 3; src++ {
			got := cfg.IsActivationEvent(event(typ, src), stage)
			want := typ == model.EventEjectionCharge && src == 1
			if got != want {
				t.Fatalf("EJECTION(stage 1) on %s from stage %d = %v, want %v", typ, src, got, want)
			}
		}
	}
}

func TestIgnitionEvents(t *testing.T) {
	sustainer := part(0, false)
	booster := part(1, true)
	cases := []struct {
		name  string
		e     IgnitionEvent
		ev    model.FlightEvent
		mount model.Component
		want  bool
	}{
		{"automatic launch stage", IgnitionAutomatic, event(model.EventLaunch, 1), booster, true},
		{"automatic upper stage ignores launch", IgnitionAutomatic, event(model.EventLaunch, 1), sustainer, false},
		{"automatic upper stage on booster charge", IgnitionAutomatic, event(model.EventEjectionCharge, 1), sustainer, true},
		{"automatic upper stage on own charge", IgnitionAutomatic, event(model.EventEjectionCharge, 0), sustainer, false},
		{"launch", IgnitionLaunch, event(model.EventLaunch, 0), sustainer, true},
		{"burnout of stage below", IgnitionBurnout, event(model.EventBurnout, 1), sustainer, true},
		{"burnout of own stage", IgnitionBurnout, event(model.EventBurnout, 0), sustainer, false},
		{"charge of stage below", IgnitionEjectionCharge, event(model.EventEjectionCharge, 1), sustainer, true},
		{"never", IgnitionNever, event(model.EventLaunch, 1), booster, false},
	}
	for _, tc := range cases {
		if got := tc.e.IsActivationEvent(tc.ev, tc.mount); got != tc.want {
			t.Fatalf("%s: IsActivationEvent = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDeployEvents(t *testing.T) {
	device := part(0, false)
	altitude := func(prev, cur float64) model.FlightEvent {
		return model.FlightEvent{Type: model.EventAltitude, Altitude: &model.AltitudeCrossing{Previous: prev, Current: cur}}
	}
	cases := []struct {
		name string
		e    DeployEvent
		ev   model.FlightEvent
		want bool
	}{
		{"apogee", DeployApogee, model.FlightEvent{Type: model.EventApogee}, true},
		{"launch", DeployLaunch, model.FlightEvent{Type: model.EventLaunch}, true},
		{"own ejection", DeployEjection, event(model.EventEjectionCharge, 0), true},
		{"other stage ejection", DeployEjection, event(model.EventEjectionCharge, 1), false},
		{"descending through 200", DeployAltitude, altitude(210, 190), true},
		{"ascending through 200", DeployAltitude, altitude(190, 210), false},
		{"ascending variant", DeployAltitudeAscending, altitude(190, 210), true},
		{"altitude without payload", DeployAltitude, model.FlightEvent{Type: model.EventAltitude}, false},
		{"lower stage separation", DeployLowerStageSeparation, event(model.EventStageSeparation, 1), true},
		{"own stage separation", DeployLowerStageSeparation, event(model.EventStageSeparation, 0), false},
		{"never", DeployNever, model.FlightEvent{Type: model.EventApogee}, false},
	}
	for _, tc := range cases {
		cfg := NewDeploymentConfiguration()
		cfg.SetDeployEvent(tc.e)
		if got := cfg.IsActivationEvent(tc.ev, device); got != tc.want {
			t.Fatalf("%s: IsActivationEvent = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSeparationUpperIgnition(t *testing.T) {
	booster := part(1, true)
	if !SeparationUpperIgnition.IsActivationEvent(event(model.EventIgnition, 0), booster) {
		t.Fatalf("upper stage ignition should separate the booster")
	}
	if SeparationUpperIgnition.IsActivationEvent(event(model.EventIgnition, 1), booster) {
		t.Fatalf("own ignition must not match UPPER_IGNITION")
	}
	if SeparationUpperIgnition.IsActivationEvent(model.FlightEvent{Type: model.EventIgnition}, booster) {
		t.Fatalf("sourceless ignition must not match")
	}
}

func TestLinkedSeparationDelayPropagates(t *testing.T) {
	a := NewStageSeparationConfiguration()
	b := NewStageSeparationConfiguration()
	b.Link(a)

	b.SetSeparationDelay(3.0)
	if a.SeparationDelay() != 3.0 {
		t.Fatalf("linked delay = %v, want 3", a.SeparationDelay())
	}
	if b.SeparationDelay() != 3.0 {
		t.Fatalf("own delay = %v, want 3", b.SeparationDelay())
	}

	// Links are one-directional.
	a.SetSeparationDelay(1.0)
	if b.SeparationDelay() != 3.0 {
		t.Fatalf("reverse edit leaked into b: %v", b.SeparationDelay())
	}
}

func TestSetterNotifiesOnlyOnChange(t *testing.T) {
	a := NewDeploymentConfiguration()
	b := NewDeploymentConfiguration()
	a.Link(b)

	var fromA, fromB int
	a.Subscribe(func(model.ChangeEvent) { fromA++ })
	b.Subscribe(func(ev model.ChangeEvent) {
		if !ev.Kind.Has(model.ChangeEventConfig) {
			t.Fatalf("kind = %v, want ChangeEventConfig", ev.Kind)
		}
		fromB++
	})

	a.SetDeployAltitude(150)
	a.SetDeployAltitude(150)
	a.SetDeployEvent(DeployEjection) // already the default

	if fromA != 1 || fromB != 1 {
		t.Fatalf("notifications a=%d b=%d, want 1 each", fromA, fromB)
	}
	if b.DeployAltitude() != 150 {
		t.Fatalf("linked altitude = %v, want 150", b.DeployAltitude())
	}
}

func TestCloneEqualAndHash(t *testing.T) {
	a := NewDeploymentConfiguration()
	a.SetDeployEvent(DeployAltitude)
	a.SetDeployAltitude(300)
	a.SetDeployDelay(1.5)
	a.Link(NewDeploymentConfiguration())

	c := a.Clone()
	if !a.Equal(c) || a.Hash() != c.Hash() {
		t.Fatalf("clone not equal: %v vs %v", a, c)
	}
	if len(c.Links()) != 0 {
		t.Fatalf("clone copied %d links", len(c.Links()))
	}
	c.SetDeployDelay(2)
	if a.Equal(c) || a.DeployDelay() != 1.5 {
		t.Fatalf("clone edit leaked into the original")
	}

	s := NewStageSeparationConfiguration()
	if !s.Equal(s.Clone()) || s.Hash() != s.Clone().Hash() {
		t.Fatalf("separation clone not equal")
	}
}

func TestDefaults(t *testing.T) {
	d := NewDeploymentConfiguration()
	if d.DeployEvent() != DeployEjection || d.DeployAltitude() != 200 || d.DeployDelay() != 0 {
		t.Fatalf("deployment defaults = %v/%v/%v", d.DeployEvent(), d.DeployAltitude(), d.DeployDelay())
	}
	s := NewStageSeparationConfiguration()
	if s.SeparationEvent() != SeparationUpperIgnition || s.SeparationDelay() != 0 {
		t.Fatalf("separation defaults = %v/%v", s.SeparationEvent(), s.SeparationDelay())
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, e := range IgnitionEvents() {
		if got, err := ParseIgnitionEvent(e.String()); err != nil || got != e {
			t.Fatalf("ParseIgnitionEvent(%s) = %v, %v", e, got, err)
		}
	}
	for _, e := range DeployEvents() {
		if got, err := ParseDeployEvent(e.String()); err != nil || got != e {
			t.Fatalf("ParseDeployEvent(%s) = %v, %v", e, got, err)
		}
	}
	for _, e := range SeparationEvents() {
		if got, err := ParseSeparationEvent(e.String()); err != nil || got != e {
			t.Fatalf("ParseSeparationEvent(%s) = %v, %v", e, got, err)
		}
	}
	if got, err := ParseDeployEvent("altitude-ascending"); err != nil || got != DeployAltitudeAscending {
		t.Fatalf("ParseDeployEvent(altitude-ascending) = %v, %v", got, err)
	}
	if _, err := ParseSeparationEvent("sometime"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDescription(t *testing.T) {
	d := NewDeploymentConfiguration()
	d.SetDeployEvent(DeployAltitude)
	d.SetDeployAltitude(150)
	d.SetDeployDelay(2)
	if got, want := d.Description(), "Specific altitude during descent 150m + 2s"; got != want {
		t.Fatalf("Description = %q, want %q", got, want)
	}
}

package motor

import "testing"

func TestDelayString(t *testing.T) {
	cases := []struct {
		delay float64
		want  string
	}{
		{14, "14"},
		{0, "0"},
		{3.5, "3.5"},
		{6.04, "6"},
		{3.25, "3.2"},
		{PluggedDelay, "P"},
	}
	for _, tc := range cases {
		if got := DelayString(tc.delay, PluggedSymbol); got != tc.want {
			t.Fatalf("DelayString(%v) = %q, want %q", tc.delay, got, tc.want)
		}
	}
	if got := DesignationWithDelay("H128W", PluggedDelay); got != "H128W-P" {
		t.Fatalf("DesignationWithDelay plugged = %q, want H128W-P", got)
	}
	if got := DesignationWithDelay("H128W", 14); got != "H128W-14" {
		t.Fatalf("DesignationWithDelay = %q, want H128W-14", got)
	}
}

func TestParseDelays(t *testing.T) {
	got, err := ParseDelays("3-5-P")
	if err != nil {
		t.Fatalf("ParseDelays: %v", err)
	}
	want := []float64{3, 5, PluggedDelay}
	if len(got) != len(want) {
		t.Fatalf("ParseDelays = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseDelays = %v, want %v", got, want)
		}
	}
	if _, err := ParseDelays("4,x"); err == nil {
		t.Fatalf("expected error for non-numeric delay")
	}
}

func TestImpulseClass(t *testing.T) {
	cases := map[float64]string{
		0.3:   "1/8A",
		0.5:   "1/4A",
		1.0:   "1/2A",
		2.5:   "A",
		5:     "B",
		5.01:  "C",
		82:    "G",
		160:   "G",
		640.1: "J",
		1e6:   "O+",
	}
	for impulse, want := range cases {
		if got := ImpulseClass(impulse); got != want {
			t.Fatalf("ImpulseClass(%v) = %q, want %q", impulse, got, want)
		}
	}
}

func TestRegistryResolvesAliases(t *testing.T) {
	r := NewRegistry()
	m, ok := r.Lookup("cti")
	if !ok || m.SimpleName() != "Cesaroni" {
		t.Fatalf("Lookup(cti) = %v, %v; want Cesaroni", m, ok)
	}
	if !m.Matches("Cesaroni Technology Inc.") {
		t.Fatalf("display name should match")
	}
	if _, ok := r.Lookup("nobody"); ok {
		t.Fatalf("unknown manufacturer resolved")
	}

	a := r.Get("Garage Motors")
	b := r.Get("garage-motors")
	if a != b {
		t.Fatalf("Get did not reuse the registered manufacturer")
	}
	if a.MotorType() != TypeUnknown {
		t.Fatalf("new manufacturer type = %v, want unknown", a.MotorType())
	}

	all := r.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].DisplayName() > all[i].DisplayName() {
			t.Fatalf("All not sorted at %d: %s > %s", i, all[i-1], all[i])
		}
	}
}

func TestParseMotorType(t *testing.T) {
	for _, mt := range []MotorType{TypeUnknown, TypeSingleUse, TypeReload, TypeHybrid} {
		got, err := ParseMotorType(mt.String())
		if err != nil || got != mt {
			t.Fatalf("ParseMotorType(%q) = %v, %v", mt.String(), got, err)
		}
	}
	if _, err := ParseMotorType("solid-ish"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

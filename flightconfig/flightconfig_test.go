package flightconfig

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/trigger"
)

func testMount(id string) *Mount {
	return NewMount(model.MotorMount{
		Part:          model.Part{PartID: id, Stage: 0, Launch: true},
		AxialPosition: 0.6,
		Length:        0.3,
		InnerRadius:   0.0145,
		OuterRadius:   0.0155,
	})
}

func testMotor(t *testing.T) *motor.ThrustCurveMotor {
	t.Helper()
	m, err := motor.NewBuilder().
		WithManufacturer(motor.NewRegistry().Get("Cesaroni")).
		WithDesignation("H125").
		WithMotorType(motor.TypeReload).
		WithDiameter(0.029).
		WithLength(0.2).
		WithSamples([]float64{0, 0.05, 1.2, 1.4}, []float64{0, 150, 120, 0}).
		WithMasses(0.25, 0.12).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

func TestFreshMotorSetReturnsEmptyDefault(t *testing.T) {
	set := NewMotorConfigurationSet(testMount("mmt"))
	for _, id := range []model.FlightConfigurationID{
		model.DefaultID,
		model.NewFlightConfigurationID(),
		model.FlightConfigurationIDFromName("anything"),
	} {
		cfg := set.Get(id)
		if cfg == nil || !cfg.IsEmpty() {
			t.Fatalf("Get(%s) = %v, want the empty default", id, cfg)
		}
		if cfg.Mount() != set.Mount() {
			t.Fatalf("Get(%s).Mount() = %v, want %v", id, cfg.Mount(), set.Mount())
		}
	}
	if set.Len() != 0 {
		t.Fatalf("Len = %d, want 0", set.Len())
	}
	if got := set.Default().Description(); got != "None" {
		t.Fatalf("Description = %q, want None", got)
	}
}

func TestEditingFallbackLeavesDefaultEmpty(t *testing.T) {
	set := NewMotorConfigurationSet(testMount("mmt"))
	a := model.FlightConfigurationIDFromName("a")
	b := model.FlightConfigurationIDFromName("b")

	set.Get(a).SetMotor(testMotor(t))
	set.Default().SetEjectionDelay(9)

	if !set.Default().IsEmpty() || set.Default().EjectionDelay() != 0 {
		t.Fatalf("Default() = %v, want the empty configuration", set.Default())
	}
	if got := set.Get(b); !got.IsEmpty() {
		t.Fatalf("Get(b) = %v, want no motor", got)
	}
	if set.Contains(a) || set.Len() != 0 {
		t.Fatalf("editing a fallback stored an override")
	}
}

func TestMotorSetDefaultIsLocked(t *testing.T) {
	mount := testMount("mmt")
	set := NewMotorConfigurationSet(mount)
	if err := set.SetDefault(NewMotorConfiguration(mount)); !errors.Is(err, ErrDefaultLocked) {
		t.Fatalf("SetDefault error = %v, want ErrDefaultLocked", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("Set(DefaultID) on a motor set should panic")
		}
	}()
	set.Set(model.DefaultID, NewMotorConfiguration(mount))
}

func TestMotorSetRejectsForeignMount(t *testing.T) {
	set := NewMotorConfigurationSet(testMount("a"))
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for a configuration of another mount")
		}
		if msg, _ := r.(string); !strings.Contains(msg, `"b"`) {
			t.Fatalf("panic = %v, want it to name the foreign mount", r)
		}
	}()
	set.Set(model.NewFlightConfigurationID(), NewMotorConfiguration(testMount("b")))
}

func TestOverrideRemoveAndDefaultSurvives(t *testing.T) {
	mount := testMount("mmt")
	set := NewMotorConfigurationSet(mount)
	id := model.FlightConfigurationIDFromName("H125")

	cfg := NewMotorConfiguration(mount)
	cfg.SetMotor(testMotor(t))
	cfg.SetEjectionDelay(motor.PluggedDelay)
	set.Set(id, cfg)

	if got := set.Get(id).Designation(); got != "H125-P" {
		t.Fatalf("Designation = %q, want H125-P", got)
	}
	if !set.Contains(id) || set.IsDefault(id) || set.Len() != 1 {
		t.Fatalf("override not stored")
	}

	set.Remove(id)
	set.Remove(model.DefaultID)
	if !set.Get(id).IsEmpty() || set.Default() == nil {
		t.Fatalf("Remove must drop the override and keep the default")
	}
}

func TestCloneIsDeep(t *testing.T) {
	mount := testMount("mmt")
	set := NewMotorConfigurationSet(mount)
	id := model.NewFlightConfigurationID()
	cfg := NewMotorConfiguration(mount)
	cfg.SetMotor(testMotor(t))
	cfg.SetEjectionDelay(6)
	set.Set(id, cfg)

	c := set.Clone()
	c.Get(id).SetEjectionDelay(8)
	if set.Get(id).EjectionDelay() != 6 {
		t.Fatalf("editing the clone changed the original to %v", set.Get(id).EjectionDelay())
	}
	if c.Get(id).Motor() != set.Get(id).Motor() {
		t.Fatalf("the immutable motor should be shared")
	}
}

func TestCopyConfigurationIsIndependent(t *testing.T) {
	set := NewDeploymentConfigurationSet()
	a := model.FlightConfigurationIDFromName("a")
	b := model.FlightConfigurationIDFromName("b")

	d := trigger.NewDeploymentConfiguration()
	d.SetDeployEvent(trigger.DeployApogee)
	set.Set(a, d)

	set.CopyConfiguration(a, b)
	set.Get(b).SetDeployDelay(2)
	if set.Get(a).DeployDelay() != 0 {
		t.Fatalf("copy shares state with its source")
	}
	if set.Get(b).DeployEvent() != trigger.DeployApogee {
		t.Fatalf("copy lost the event")
	}

	// Copying from an id without an override clears the target.
	set.CopyConfiguration(model.FlightConfigurationIDFromName("none"), b)
	if set.Contains(b) {
		t.Fatalf("target kept its override")
	}
}

func TestDeploymentDefaultCanBeReplaced(t *testing.T) {
	set := NewDeploymentConfigurationSet()
	d := trigger.NewDeploymentConfiguration()
	d.SetDeployEvent(trigger.DeployApogee)

	var fired int
	set.Subscribe(func(model.ChangeEvent) { fired++ })
	if err := set.SetDefault(d); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if set.Get(model.NewFlightConfigurationID()).DeployEvent() != trigger.DeployApogee {
		t.Fatalf("new default not used as fallback")
	}
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestIDsAreSortedAndExcludeDefault(t *testing.T) {
	set := NewSeparationConfigurationSet()
	for _, name := range []string{"x", "y", "z"} {
		set.Set(model.FlightConfigurationIDFromName(name), trigger.NewStageSeparationConfiguration())
	}
	ids := set.IDs()
	if len(ids) != 3 {
		t.Fatalf("IDs = %v, want 3", ids)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1].String() > ids[i].String() {
			t.Fatalf("IDs not sorted: %v", ids)
		}
	}
	set.ResetAll()
	if set.Len() != 0 {
		t.Fatalf("ResetAll left %d overrides", set.Len())
	}
}

func TestMotorConfigurationIgnitionFallback(t *testing.T) {
	mount := testMount("mmt")
	mount.IgnitionEvent = trigger.IgnitionBurnout
	mount.IgnitionDelay = 0.5

	cfg := NewMotorConfiguration(mount)
	cfg.SetMotor(testMotor(t))
	if cfg.IgnitionEvent() != trigger.IgnitionBurnout || cfg.IgnitionDelay() != 0.5 {
		t.Fatalf("configuration should use the mount ignition")
	}

	cfg.SetIgnition(trigger.IgnitionLaunch, 0)
	st := cfg.NewInstanceState()
	if st.IgnitionEvent() != trigger.IgnitionLaunch {
		t.Fatalf("instance state ignition = %v, want LAUNCH", st.IgnitionEvent())
	}

	cfg.UseMountIgnition()
	if cfg.IgnitionOverridden() || cfg.IgnitionEvent() != trigger.IgnitionBurnout {
		t.Fatalf("UseMountIgnition did not drop the override")
	}
	if NewMotorConfiguration(mount).NewInstanceState() != nil {
		t.Fatalf("empty configuration should have no instance state")
	}
}

func TestCloneForMovesToNewMount(t *testing.T) {
	a, b := testMount("a"), testMount("b")
	set := NewMotorConfigurationSet(a)
	id := model.NewFlightConfigurationID()
	cfg := NewMotorConfiguration(a)
	cfg.SetMotor(testMotor(t))
	set.Set(id, cfg)

	moved := set.CloneFor(b)
	if moved.Mount() != b || moved.Get(id).Mount() != b {
		t.Fatalf("CloneFor did not rebind to the new mount")
	}
	if set.Get(id).Mount() != a {
		t.Fatalf("CloneFor changed the source")
	}
}

package scenario

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/motorsim/flightconfig"
	"github.com/signalsfoundry/motorsim/instance"
	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/sim"
	"github.com/signalsfoundry/motorsim/trigger"
)

// Scenario is a built Spec: a flyable vehicle plus lookup tables by the ids
// used in the document.
type Scenario struct {
	Name    string
	Vehicle *sim.Vehicle

	Motors         map[string]*motor.ThrustCurveMotor
	Configurations map[string]model.FlightConfigurationID
	Stages         map[string]*model.Part
	Mounts         map[string]*flightconfig.Mount
	Recovery       map[string]*model.Part

	Bodies     map[string]*instance.Body
	Components map[string]model.Component
	Geometry   *instance.Assembly

	order []string
}

// ConfigurationID returns the id of the configuration named name.
func (s *Scenario) ConfigurationID(name string) (model.FlightConfigurationID, bool) {
	id, ok := s.Configurations[name]
	return id, ok
}

// ConfigurationNames lists configuration names in document order.
func (s *Scenario) ConfigurationNames() []string {
	return append([]string(nil), s.order...)
}

// InstanceMap expands the geometry into placed instances.
func (s *Scenario) InstanceMap() *instance.InstanceMap {
	return instance.BuildInstanceMap(s.Geometry)
}

// Build resolves every reference in the document and returns a validated
// scenario. Manufacturers are looked up in reg; nil uses the built-in
// registry. All problems are reported together, wrapped in
// ErrInvalidScenario.
func (s *Spec) Build(reg *motor.Registry) (*Scenario, error) {
	if reg == nil {
		reg = motor.NewRegistry()
	}
	b := &builder{
		spec: s,
		reg:  reg,
		out: &Scenario{
			Name:           s.Name,
			Vehicle:        &sim.Vehicle{Name: s.Name, DragArea: s.DragArea},
			Motors:         make(map[string]*motor.ThrustCurveMotor),
			Configurations: make(map[string]model.FlightConfigurationID),
			Stages:         make(map[string]*model.Part),
			Mounts:         make(map[string]*flightconfig.Mount),
			Recovery:       make(map[string]*model.Part),
			Bodies:         make(map[string]*instance.Body),
			Components:     make(map[string]model.Component),
		},
		motorSets:  make(map[string]*flightconfig.MotorConfigurationSet),
		deploySets: make(map[string]*flightconfig.DeploymentConfigurationSet),
		sepSets:    make(map[string]*flightconfig.SeparationConfigurationSet),
	}
	b.motors()
	b.stages()
	b.configurations()
	b.geometry()
	if len(b.errs) == 0 {
		if err := b.out.Vehicle.Validate(); err != nil {
			b.errs = append(b.errs, err)
		}
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(b.errs...))
	}
	return b.out, nil
}

type builder struct {
	spec *Spec
	reg  *motor.Registry
	out  *Scenario
	errs []error

	motorSets  map[string]*flightconfig.MotorConfigurationSet
	deploySets map[string]*flightconfig.DeploymentConfigurationSet
	sepSets    map[string]*flightconfig.SeparationConfigurationSet
}

func (b *builder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

func (b *builder) motors() {
	for i, ms := range b.spec.Motors {
		if ms.ID == "" {
			b.fail("motor %d: missing id", i)
			continue
		}
		if _, dup := b.out.Motors[ms.ID]; dup {
			b.fail("motor %q: duplicate id", ms.ID)
			continue
		}
		m, err := buildMotor(ms, b.reg)
		if err != nil {
			b.fail("motor %q: %w", ms.ID, err)
			continue
		}
		b.out.Motors[ms.ID] = m
	}
}

func buildMotor(ms MotorSpec, reg *motor.Registry) (*motor.ThrustCurveMotor, error) {
	mt, err := motor.ParseMotorType(ms.Type)
	if err != nil {
		return nil, err
	}
	delays, err := motor.ParseDelays(ms.Delays)
	if err != nil {
		return nil, err
	}
	t := make([]float64, len(ms.Samples))
	f := make([]float64, len(ms.Samples))
	for i, p := range ms.Samples {
		t[i], f[i] = p[0], p[1]
	}
	mb := motor.NewBuilder().
		WithManufacturer(reg.Get(ms.Manufacturer)).
		WithDesignation(ms.Designation).
		WithDescription(ms.Description).
		WithMotorType(mt).
		WithDiameter(ms.Diameter).
		WithLength(ms.Length).
		WithDelays(delays...).
		WithSamples(t, f)
	if len(ms.CG) > 0 {
		cg := make([]motor.CG, len(ms.CG))
		for i, p := range ms.CG {
			cg[i] = motor.CG{X: p[0], Mass: p[1]}
		}
		mb.WithCG(cg)
	} else {
		mb.WithMasses(ms.LaunchMass, ms.BurnoutMass)
	}
	return mb.Build()
}

func (b *builder) stages() {
	v := b.out.Vehicle
	for _, ss := range b.spec.Stages {
		if ss.ID == "" || b.taken(ss.ID) {
			b.fail("stage %q: missing or duplicate id", ss.ID)
			continue
		}
		stage := &model.Part{PartID: ss.ID, Name: ss.Name, Stage: ss.Number, Launch: ss.Launch}
		b.out.Stages[ss.ID] = stage
		set := v.AddStage(stage, ss.DryMass)
		b.sepSets[ss.ID] = set
		if ss.Separation != nil {
			cfg, err := separationConfig(*ss.Separation)
			if err != nil {
				b.fail("stage %q: %w", ss.ID, err)
			} else if err := set.SetDefault(cfg); err != nil {
				b.fail("stage %q: %w", ss.ID, err)
			}
		}

		for _, ms := range ss.Mounts {
			if ms.ID == "" || b.taken(ms.ID) {
				b.fail("stage %q: mount %q: missing or duplicate id", ss.ID, ms.ID)
				continue
			}
			mount := flightconfig.NewMount(model.MotorMount{
				Part:          model.Part{PartID: ms.ID, Name: ms.Name, Stage: ss.Number, Launch: ss.Launch},
				AxialPosition: ms.Position,
				Length:        ms.Length,
				InnerRadius:   ms.InnerRadius,
				OuterRadius:   ms.OuterRadius,
				MotorOverhang: ms.Overhang,
			})
			if ms.Ignition != nil {
				ev, err := trigger.ParseIgnitionEvent(ms.Ignition.Event)
				if err != nil {
					b.fail("mount %q: %w", ms.ID, err)
				}
				mount.IgnitionEvent = ev
				mount.IgnitionDelay = ms.Ignition.Delay
			}
			b.out.Mounts[ms.ID] = mount
			b.motorSets[ms.ID] = v.AddMount(mount)
		}

		for _, rs := range ss.Recovery {
			if rs.ID == "" || b.taken(rs.ID) {
				b.fail("stage %q: recovery %q: missing or duplicate id", ss.ID, rs.ID)
				continue
			}
			if rs.DragArea < 0 {
				b.fail("recovery %q: negative drag area", rs.ID)
			}
			device := &model.Part{PartID: rs.ID, Name: rs.Name, Stage: ss.Number, Launch: ss.Launch}
			b.out.Recovery[rs.ID] = device
			set := v.AddRecovery(device, rs.DragArea)
			b.deploySets[rs.ID] = set
			if rs.Deploy != nil {
				cfg, err := deployConfig(*rs.Deploy)
				if err != nil {
					b.fail("recovery %q: %w", rs.ID, err)
				} else if err := set.SetDefault(cfg); err != nil {
					b.fail("recovery %q: %w", rs.ID, err)
				}
			}
		}
	}
}

func (b *builder) taken(id string) bool {
	if _, ok := b.out.Stages[id]; ok {
		return true
	}
	if _, ok := b.out.Mounts[id]; ok {
		return true
	}
	_, ok := b.out.Recovery[id]
	return ok
}

func (b *builder) configurations() {
	for i, cs := range b.spec.Configurations {
		if cs.Name == "" {
			b.fail("configuration %d: missing name", i)
			continue
		}
		if _, dup := b.out.Configurations[cs.Name]; dup {
			b.fail("configuration %q: duplicate name", cs.Name)
			continue
		}
		id := model.FlightConfigurationIDFromName(cs.Name)
		if id.IsDefault() {
			b.fail("configuration %q: name is reserved", cs.Name)
			continue
		}
		b.out.Configurations[cs.Name] = id
		b.out.order = append(b.out.order, cs.Name)
		b.applyConfiguration(id, cs)
	}
}

func (b *builder) applyConfiguration(id model.FlightConfigurationID, cs ConfigSpec) {
	for _, mountID := range sortedKeys(cs.Motors) {
		choice := cs.Motors[mountID]
		set, ok := b.motorSets[mountID]
		if !ok {
			b.fail("configuration %q: unknown mount %q", cs.Name, mountID)
			continue
		}
		if choice.Motor == "" {
			set.Reset(id)
			continue
		}
		m, ok := b.out.Motors[choice.Motor]
		if !ok {
			b.fail("configuration %q: mount %q: unknown motor %q", cs.Name, mountID, choice.Motor)
			continue
		}
		mount := set.Mount()
		if mount.InnerRadius > 0 && !mount.Fits(m.Diameter()) {
			b.fail("configuration %q: motor %q does not fit mount %q", cs.Name, choice.Motor, mountID)
			continue
		}
		cfg := flightconfig.NewMotorConfiguration(mount)
		cfg.SetMotor(m)
		delay, err := parseDelay(choice.Delay, m)
		if err != nil {
			b.fail("configuration %q: mount %q: %w", cs.Name, mountID, err)
			continue
		}
		cfg.SetEjectionDelay(delay)
		if choice.Ignition != nil {
			ev, err := trigger.ParseIgnitionEvent(choice.Ignition.Event)
			if err != nil {
				b.fail("configuration %q: mount %q: %w", cs.Name, mountID, err)
				continue
			}
			cfg.SetIgnition(ev, choice.Ignition.Delay)
		}
		set.Set(id, cfg)
	}

	for _, devID := range sortedKeys(cs.Deploy) {
		set, ok := b.deploySets[devID]
		if !ok {
			b.fail("configuration %q: unknown recovery device %q", cs.Name, devID)
			continue
		}
		cfg, err := deployConfig(cs.Deploy[devID])
		if err != nil {
			b.fail("configuration %q: recovery %q: %w", cs.Name, devID, err)
			continue
		}
		set.Set(id, cfg)
	}

	for _, stageID := range sortedKeys(cs.Separation) {
		set, ok := b.sepSets[stageID]
		if !ok {
			b.fail("configuration %q: unknown stage %q", cs.Name, stageID)
			continue
		}
		cfg, err := separationConfig(cs.Separation[stageID])
		if err != nil {
			b.fail("configuration %q: stage %q: %w", cs.Name, stageID, err)
			continue
		}
		set.Set(id, cfg)
	}
}

// parseDelay reads an ejection delay. Empty picks the motor's first
// standard delay, or plugged when it has none.
func parseDelay(s string, m *motor.ThrustCurveMotor) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if d := m.StandardDelays(); len(d) > 0 {
			return d[0], nil
		}
		return motor.PluggedDelay, nil
	}
	if strings.EqualFold(s, motor.PluggedSymbol) {
		return motor.PluggedDelay, nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ejection delay %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("ejection delay %q: negative", s)
	}
	return d, nil
}

func deployConfig(ds DeploySpec) (*trigger.DeploymentConfiguration, error) {
	cfg := trigger.NewDeploymentConfiguration()
	if ds.Event != "" {
		ev, err := trigger.ParseDeployEvent(ds.Event)
		if err != nil {
			return nil, err
		}
		cfg.SetDeployEvent(ev)
	}
	if ds.Altitude != nil {
		cfg.SetDeployAltitude(*ds.Altitude)
	}
	cfg.SetDeployDelay(ds.Delay)
	return cfg, nil
}

func separationConfig(ss SeparationSpec) (*trigger.StageSeparationConfiguration, error) {
	cfg := trigger.NewStageSeparationConfiguration()
	if ss.Event != "" {
		ev, err := trigger.ParseSeparationEvent(ss.Event)
		if err != nil {
			return nil, err
		}
		cfg.SetSeparationEvent(ev)
	}
	cfg.SetSeparationDelay(ss.Delay)
	return cfg, nil
}

func (b *builder) geometry() {
	g := b.spec.Geometry
	for _, bs := range g.Bodies {
		if bs.ID == "" {
			b.fail("body: missing id")
			continue
		}
		body, err := buildBody(bs)
		if err != nil {
			b.fail("body %q: %w", bs.ID, err)
			continue
		}
		b.out.Bodies[bs.ID] = body
	}

	root := &instance.Assembly{Component: &model.Part{PartID: b.spec.Name}}
	nodes := make(map[string]*instance.Assembly, len(g.Components))
	pending := append([]ComponentSpec(nil), g.Components...)
	// Components may name a Within that appears later in the list.
	for len(pending) > 0 {
		var next []ComponentSpec
		for _, cs := range pending {
			parent := root
			if cs.Within != "" {
				n, ok := nodes[cs.Within]
				if !ok {
					next = append(next, cs)
					continue
				}
				parent = n
			}
			c, err := b.component(cs)
			if err != nil {
				b.fail("component %q: %w", cs.ID, err)
				// Placeholder so children still resolve.
				c = &model.Part{PartID: cs.ID}
			}
			b.out.Components[cs.ID] = c
			nodes[cs.ID] = parent.Add(c, mgl64.Vec3{cs.X, 0, 0})
		}
		if len(next) == len(pending) {
			for _, cs := range next {
				b.fail("component %q: unknown or cyclic within %q", cs.ID, cs.Within)
			}
			break
		}
		pending = next
	}
	b.out.Geometry = root
}

func buildBody(bs BodySpec) (*instance.Body, error) {
	switch strings.ToLower(strings.TrimSpace(bs.Kind)) {
	case "tube", "body_tube", "":
		return instance.NewBodyTube(bs.Length, bs.Radius), nil
	case "transition":
		return instance.NewTransition(bs.Length, bs.Radius, bs.AftRadius), nil
	case "nose", "nose_cone":
		return instance.NewNoseCone(bs.Length, bs.Radius, bs.Shape), nil
	case "other":
		return instance.NewOtherBody(), nil
	default:
		return nil, fmt.Errorf("unknown body kind %q", bs.Kind)
	}
}

func (b *builder) component(cs ComponentSpec) (model.Component, error) {
	if cs.ID == "" {
		return nil, errors.New("missing id")
	}
	if _, dup := b.out.Components[cs.ID]; dup {
		return nil, errors.New("duplicate id")
	}
	part := model.Part{PartID: cs.ID, Name: cs.Name}
	if cs.Stage != "" {
		stage, ok := b.out.Stages[cs.Stage]
		if !ok {
			return nil, fmt.Errorf("unknown stage %q", cs.Stage)
		}
		part.Stage, part.Launch = stage.Stage, stage.Launch
	}

	switch strings.ToLower(strings.TrimSpace(cs.Pattern)) {
	case "", "single":
		return &part, nil
	case "cluster":
		c := instance.NewCluster(part, cs.OuterRadius)
		if cs.Configuration != "" {
			cfg, ok := instance.ClusterConfigurationByName(cs.Configuration)
			if !ok {
				return nil, fmt.Errorf("unknown cluster configuration %q", cs.Configuration)
			}
			c.SetClusterConfiguration(cfg)
		}
		if cs.Scale > 0 {
			c.SetClusterScale(cs.Scale)
		}
		c.SetClusterRotation(cs.Rotation)
		return c, nil
	case "ring":
		body, err := b.body(cs.Parent)
		if err != nil {
			return nil, err
		}
		r := instance.NewRing(part, body, cs.X, cs.OwnRadius)
		if cs.RadiusMethod != "" {
			m, err := instance.ParseRadiusMethod(cs.RadiusMethod)
			if err != nil {
				return nil, err
			}
			r.SetRadiusMethod(m)
		}
		r.SetRadius(cs.Radius)
		if cs.Count > 0 {
			r.SetInstanceCount(cs.Count)
		}
		r.SetAngleOffset(cs.AngleOffset)
		return r, nil
	case "line":
		body, err := b.body(cs.Parent)
		if err != nil {
			return nil, err
		}
		l := instance.NewLine(part, body, cs.X, cs.OwnRadius)
		if cs.Count > 0 {
			l.SetInstanceCount(cs.Count)
		}
		l.SetInstanceSeparation(cs.Separation)
		l.SetAngle(cs.Angle)
		return l, nil
	default:
		return nil, fmt.Errorf("unknown pattern %q", cs.Pattern)
	}
}

func (b *builder) body(id string) (*instance.Body, error) {
	body, ok := b.out.Bodies[id]
	if !ok {
		return nil, fmt.Errorf("unknown parent body %q", id)
	}
	return body, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

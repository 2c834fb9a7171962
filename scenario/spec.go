// Package scenario loads vehicle descriptions from YAML: motors, stages with
// their mounts and recovery devices, named flight configurations, instanced
// geometry and what-if variations.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario wraps every structural problem found while building.
var ErrInvalidScenario = errors.New("invalid scenario")

// Spec is the YAML document. It is plain data so what-if runs can deep
// copy and edit it.
type Spec struct {
	Name     string  `yaml:"name"`
	DragArea float64 `yaml:"drag_area"`

	Motors         []MotorSpec   `yaml:"motors"`
	Stages         []StageSpec   `yaml:"stages"`
	Configurations []ConfigSpec  `yaml:"configurations"`
	Geometry       GeometrySpec  `yaml:"geometry"`
	WhatIf         []WhatIfSpec  `yaml:"what_if"`
	Settings       *SettingsSpec `yaml:"settings"`
}

// MotorSpec describes a thrust curve. Samples are [time, thrust] pairs and
// CG entries [x, mass] pairs; without CG the masses derive one.
type MotorSpec struct {
	ID           string       `yaml:"id"`
	Manufacturer string       `yaml:"manufacturer"`
	Designation  string       `yaml:"designation"`
	Description  string       `yaml:"description"`
	Type         string       `yaml:"type"`
	Diameter     float64      `yaml:"diameter"`
	Length       float64      `yaml:"length"`
	Delays       string       `yaml:"delays"`
	LaunchMass   float64      `yaml:"launch_mass"`
	BurnoutMass  float64      `yaml:"burnout_mass"`
	Samples      [][2]float64 `yaml:"samples"`
	CG           [][2]float64 `yaml:"cg"`
}

// StageSpec is one stage. Number 0 is the top stage.
type StageSpec struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Number     int             `yaml:"number"`
	Launch     bool            `yaml:"launch"`
	DryMass    float64         `yaml:"dry_mass"`
	Separation *SeparationSpec `yaml:"separation"`
	Mounts     []MountSpec     `yaml:"mounts"`
	Recovery   []RecoverySpec  `yaml:"recovery"`
}

// MountSpec is a motor mount. Lengths are metres; Position is measured aft
// from the nose tip.
type MountSpec struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Position    float64       `yaml:"position"`
	Length      float64       `yaml:"length"`
	InnerRadius float64       `yaml:"inner_radius"`
	OuterRadius float64       `yaml:"outer_radius"`
	Overhang    float64       `yaml:"overhang"`
	Ignition    *IgnitionSpec `yaml:"ignition"`
}

// RecoverySpec is a recovery device. DragArea is Cd·A in m².
type RecoverySpec struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	DragArea float64     `yaml:"drag_area"`
	Deploy   *DeploySpec `yaml:"deploy"`
}

type IgnitionSpec struct {
	Event string  `yaml:"event"`
	Delay float64 `yaml:"delay"`
}

// DeploySpec leaves the altitude at its default when unset.
type DeploySpec struct {
	Event    string   `yaml:"event"`
	Altitude *float64 `yaml:"altitude"`
	Delay    float64  `yaml:"delay"`
}

type SeparationSpec struct {
	Event string  `yaml:"event"`
	Delay float64 `yaml:"delay"`
}

// ConfigSpec is a named flight configuration. Maps are keyed by mount,
// recovery device and stage id.
type ConfigSpec struct {
	Name       string                    `yaml:"name"`
	Motors     map[string]MotorChoice    `yaml:"motors"`
	Deploy     map[string]DeploySpec     `yaml:"deploy"`
	Separation map[string]SeparationSpec `yaml:"separation"`
}

// MotorChoice loads a motor into a mount. Delay is seconds or "P".
type MotorChoice struct {
	Motor    string        `yaml:"motor"`
	Delay    string        `yaml:"delay"`
	Ignition *IgnitionSpec `yaml:"ignition"`
}

// GeometrySpec lists the bodies instanced components attach to and the
// components themselves.
type GeometrySpec struct {
	Bodies     []BodySpec      `yaml:"bodies"`
	Components []ComponentSpec `yaml:"components"`
}

// BodySpec kinds are tube, transition, nose and other. A transition's
// Radius is its fore radius.
type BodySpec struct {
	ID        string  `yaml:"id"`
	Kind      string  `yaml:"kind"`
	Length    float64 `yaml:"length"`
	Radius    float64 `yaml:"radius"`
	AftRadius float64 `yaml:"aft_radius"`
	Shape     float64 `yaml:"shape"`
}

// ComponentSpec is a placed component. Pattern is single, cluster, ring or
// line; Within nests it inside another component, Parent names the body a
// ring or line attaches to.
type ComponentSpec struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Stage   string  `yaml:"stage"`
	Pattern string  `yaml:"pattern"`
	Within  string  `yaml:"within"`
	Parent  string  `yaml:"parent"`
	X       float64 `yaml:"x"`

	OwnRadius float64 `yaml:"own_radius"`
	Count     int     `yaml:"count"`

	AngleOffset  float64 `yaml:"angle_offset"`
	RadiusMethod string  `yaml:"radius_method"`
	Radius       float64 `yaml:"radius"`

	Separation float64 `yaml:"separation"`
	Angle      float64 `yaml:"angle"`

	Configuration string  `yaml:"configuration"`
	Scale         float64 `yaml:"scale"`
	Rotation      float64 `yaml:"rotation"`
	OuterRadius   float64 `yaml:"outer_radius"`
}

// WhatIfSpec re-flies Configuration with Overrides merged on top.
type WhatIfSpec struct {
	Name          string        `yaml:"name"`
	Configuration string        `yaml:"configuration"`
	Overrides     ConfigSpec    `yaml:"overrides"`
	Settings      *SettingsSpec `yaml:"settings"`
}

// SettingsSpec tunes the vertical stepper; zero values keep the defaults.
type SettingsSpec struct {
	TimeStep  float64 `yaml:"time_step"`
	MaxTime   float64 `yaml:"max_time"`
	RodLength float64 `yaml:"rod_length"`
}

// Load decodes a scenario. Unknown keys are rejected.
func Load(r io.Reader) (*Spec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var spec Spec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("scenario: decode failed: %w", err)
	}
	return &spec, nil
}

// LoadFile decodes the scenario at path.
func LoadFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Configuration returns the configuration named name.
func (s *Spec) Configuration(name string) (*ConfigSpec, bool) {
	for i := range s.Configurations {
		if s.Configurations[i].Name == name {
			return &s.Configurations[i], true
		}
	}
	return nil, false
}

// Merge copies every entry of o into c, replacing entries with the same
// key.
func (c *ConfigSpec) Merge(o ConfigSpec) {
	if len(o.Motors) > 0 && c.Motors == nil {
		c.Motors = make(map[string]MotorChoice, len(o.Motors))
	}
	for k, v := range o.Motors {
		c.Motors[k] = v
	}
	if len(o.Deploy) > 0 && c.Deploy == nil {
		c.Deploy = make(map[string]DeploySpec, len(o.Deploy))
	}
	for k, v := range o.Deploy {
		c.Deploy[k] = v
	}
	if len(o.Separation) > 0 && c.Separation == nil {
		c.Separation = make(map[string]SeparationSpec, len(o.Separation))
	}
	for k, v := range o.Separation {
		c.Separation[k] = v
	}
}

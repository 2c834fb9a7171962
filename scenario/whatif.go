package scenario

import (
	"fmt"

	"github.com/brunoga/deep"

	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/sim"
)

// Runs returns one run per configuration followed by one per what-if
// entry. Every run builds its own vehicle from a private copy of the
// document, so runs share no mutable state.
func (s *Spec) Runs(reg *motor.Registry, base sim.DriverSettings) ([]sim.Run, error) {
	if _, err := s.Build(reg); err != nil {
		return nil, err
	}
	base = s.Settings.apply(base)

	var runs []sim.Run
	for _, cs := range s.Configurations {
		runs = append(runs, s.run(cs.Name, cs.Name, reg, base))
	}
	for i, w := range s.WhatIf {
		if w.Name == "" {
			return nil, fmt.Errorf("%w: what-if %d: missing name", ErrInvalidScenario, i)
		}
		if _, ok := s.Configuration(w.Configuration); !ok {
			return nil, fmt.Errorf("%w: what-if %q: unknown configuration %q", ErrInvalidScenario, w.Name, w.Configuration)
		}
		variant, err := s.Variant(w)
		if err != nil {
			return nil, err
		}
		if _, err := variant.Build(reg); err != nil {
			return nil, fmt.Errorf("what-if %q: %w", w.Name, err)
		}
		runs = append(runs, variant.run(w.Name, w.Configuration, reg, w.Settings.apply(base)))
	}
	return runs, nil
}

// Variant returns a deep copy of s with w's overrides merged into its
// configuration. s is left untouched.
func (s *Spec) Variant(w WhatIfSpec) (*Spec, error) {
	c, err := deep.Copy(s)
	if err != nil {
		return nil, fmt.Errorf("scenario: copy for what-if %q: %w", w.Name, err)
	}
	cfg, ok := c.Configuration(w.Configuration)
	if !ok {
		return nil, fmt.Errorf("%w: what-if %q: unknown configuration %q", ErrInvalidScenario, w.Name, w.Configuration)
	}
	cfg.Merge(w.Overrides)
	c.WhatIf = nil
	return c, nil
}

func (s *Spec) run(name, config string, reg *motor.Registry, settings sim.DriverSettings) sim.Run {
	doc := deep.MustCopy(s)
	return sim.Run{
		Name:     name,
		Config:   model.FlightConfigurationIDFromName(config),
		Settings: settings,
		Vehicle: func() (*sim.Vehicle, error) {
			sc, err := doc.Build(reg)
			if err != nil {
				return nil, err
			}
			return sc.Vehicle, nil
		},
	}
}

func (p *SettingsSpec) apply(s sim.DriverSettings) sim.DriverSettings {
	if p == nil {
		return s
	}
	if p.TimeStep > 0 {
		s.TimeStep = p.TimeStep
	}
	if p.MaxTime > 0 {
		s.MaxTime = p.MaxTime
	}
	if p.RodLength > 0 {
		s.RodLength = p.RodLength
	}
	return s
}

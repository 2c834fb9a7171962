package flightconfig

import (
	"fmt"

	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/trigger"
)

// MotorConfigurationSet holds the motor of one mount per flight
// configuration. Its default is always the empty configuration.
type MotorConfigurationSet struct {
	*ParameterSet[*MotorConfiguration]
	mount *Mount
}

// NewMotorConfigurationSet returns a set for mount with no overrides.
func NewMotorConfigurationSet(mount *Mount) *MotorConfigurationSet {
	return &MotorConfigurationSet{
		ParameterSet: newLockedParameterSet(NewMotorConfiguration(mount), model.ChangeMotor),
		mount:        mount,
	}
}

// Get returns the configuration stored for id. An id without an override
// gets a new empty configuration; changes to it are not kept until Set.
func (s *MotorConfigurationSet) Get(id model.FlightConfigurationID) *MotorConfiguration {
	if cfg, ok := s.override(id); ok {
		return cfg
	}
	return s.Default()
}

// Default returns a new empty configuration of the mount.
func (s *MotorConfigurationSet) Default() *MotorConfiguration {
	return NewMotorConfiguration(s.mount)
}

// Mount returns the mount the set belongs to.
func (s *MotorConfigurationSet) Mount() *Mount { return s.mount }

// Set stores cfg for id. Storing a configuration of another mount is a
// programming error and panics.
func (s *MotorConfigurationSet) Set(id model.FlightConfigurationID, cfg *MotorConfiguration) {
	if cfg == nil {
		panic("flightconfig: nil motor configuration")
	}
	if cfg.mount != s.mount {
		panic(fmt.Sprintf("flightconfig: motor configuration of mount %q stored in set of mount %q", cfg.mount.ID(), s.mount.ID()))
	}
	s.ParameterSet.Set(id, cfg)
}

// Clone returns a deep copy bound to the same mount.
func (s *MotorConfigurationSet) Clone() *MotorConfigurationSet {
	return &MotorConfigurationSet{ParameterSet: s.ParameterSet.Clone(), mount: s.mount}
}

// CloneFor copies every override onto mount.
func (s *MotorConfigurationSet) CloneFor(mount *Mount) *MotorConfigurationSet {
	c := NewMotorConfigurationSet(mount)
	for _, id := range s.IDs() {
		c.Set(id, s.Get(id).CloneFor(mount))
	}
	return c
}

// DeploymentConfigurationSet holds the deployment of one recovery device per
// flight configuration.
type DeploymentConfigurationSet struct {
	*ParameterSet[*trigger.DeploymentConfiguration]
}

// NewDeploymentConfigurationSet returns a set whose default deploys at the
// ejection charge.
func NewDeploymentConfigurationSet() *DeploymentConfigurationSet {
	return &DeploymentConfigurationSet{NewParameterSet(trigger.NewDeploymentConfiguration())}
}

func (s *DeploymentConfigurationSet) Clone() *DeploymentConfigurationSet {
	return &DeploymentConfigurationSet{s.ParameterSet.Clone()}
}

// SeparationConfigurationSet holds the separation of one stage per flight
// configuration.
type SeparationConfigurationSet struct {
	*ParameterSet[*trigger.StageSeparationConfiguration]
}

// NewSeparationConfigurationSet returns a set whose default separates on
// upper stage ignition.
func NewSeparationConfigurationSet() *SeparationConfigurationSet {
	return &SeparationConfigurationSet{NewParameterSet(trigger.NewStageSeparationConfiguration())}
}

func (s *SeparationConfigurationSet) Clone() *SeparationConfigurationSet {
	return &SeparationConfigurationSet{s.ParameterSet.Clone()}
}

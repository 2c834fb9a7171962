package model

import (
	"fmt"

	"github.com/google/uuid"
)

// FlightConfigurationID identifies one named motor/recovery loadout of a
// vehicle. It is comparable and can be used as a map key.
type FlightConfigurationID uuid.UUID

var (
	// DefaultID keys the default value of every parameter set.
	DefaultID = FlightConfigurationID(uuid.MustParse("00000000-0000-0000-0000-000000000002"))

	// nameSpace scopes the name-derived ids used by scenario files.
	nameSpace = uuid.MustParse("5b1a3c0e-8d4f-4e61-9a57-2f0c6e5d7b10")
)

// NewFlightConfigurationID returns a fresh random id.
func NewFlightConfigurationID() FlightConfigurationID {
	return FlightConfigurationID(uuid.New())
}

// FlightConfigurationIDFromName returns the id derived from name. The same
// name always yields the same id, so scenario files can refer to
// configurations by name.
func FlightConfigurationIDFromName(name string) FlightConfigurationID {
	if name == "" || name == "default" {
		return DefaultID
	}
	return FlightConfigurationID(uuid.NewSHA1(nameSpace, []byte(name)))
}

// ParseFlightConfigurationID parses the canonical UUID form or "default".
func ParseFlightConfigurationID(s string) (FlightConfigurationID, error) {
	if s == "default" {
		return DefaultID, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return FlightConfigurationID{}, fmt.Errorf("parse flight configuration id %q: %w", s, err)
	}
	return FlightConfigurationID(u), nil
}

// IsDefault reports whether id is the well-known default id.
func (id FlightConfigurationID) IsDefault() bool { return id == DefaultID }

// IsZero reports whether id was never assigned.
func (id FlightConfigurationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func (id FlightConfigurationID) String() string {
	if id.IsDefault() {
		return "default"
	}
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, enough to tell ids apart in logs.
func (id FlightConfigurationID) Short() string {
	if id.IsDefault() {
		return "default"
	}
	return id.String()[:8]
}

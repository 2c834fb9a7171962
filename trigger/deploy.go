package trigger

import (
	"fmt"

	"github.com/signalsfoundry/motorsim/model"
)

// DeployEvent selects the flight event that deploys a recovery device.
type DeployEvent int

const (
	DeployLaunch DeployEvent = iota
	DeployEjection
	DeployApogee
	DeployAltitude
	DeployAltitudeAscending
	DeployLowerStageSeparation
	DeployNever
)

var deployNames = [...]string{
	"LAUNCH", "EJECTION", "APOGEE", "ALTITUDE", "ALTITUDE_ASCENDING", "LOWER_STAGE_SEPARATION", "NEVER",
}

var deployDescriptions = [...]string{
	"Launch (plus NN seconds)",
	"First ejection charge of this stage",
	"Apogee",
	"Specific altitude during descent",
	"Specific altitude during ascent",
	"Current stage separation",
	"Never",
}

func (e DeployEvent) valid() bool { return e >= DeployLaunch && e <= DeployNever }

func (e DeployEvent) String() string {
	if !e.valid() {
		return fmt.Sprintf("DeployEvent(%d)", int(e))
	}
	return deployNames[e]
}

// Description is the human readable form.
func (e DeployEvent) Description() string {
	if !e.valid() {
		return e.String()
	}
	return deployDescriptions[e]
}

// UsesAltitude reports whether the configured altitude takes part in matching.
func (e DeployEvent) UsesAltitude() bool {
	return e == DeployAltitude || e == DeployAltitudeAscending
}

// DeployEvents lists every value in declaration order.
func DeployEvents() []DeployEvent {
	out := make([]DeployEvent, len(deployNames))
	for i := range out {
		out[i] = DeployEvent(i)
	}
	return out
}

// ParseDeployEvent accepts the String form, case and separator insensitive.
func ParseDeployEvent(s string) (DeployEvent, error) {
	key := normalize(s)
	for i, n := range deployNames {
		if n == key {
			return DeployEvent(i), nil
		}
	}
	return 0, fmt.Errorf("unknown deploy event %q", s)
}

// IsActivationEvent reports whether ev deploys device under cfg. Only the
// altitude variants read cfg.
func (e DeployEvent) IsActivationEvent(cfg *DeploymentConfiguration, ev model.FlightEvent, device model.Component) bool {
	switch e {
	case DeployLaunch:
		return ev.Type == model.EventLaunch
	case DeployEjection:
		return ev.Type == model.EventEjectionCharge && fromSameStage(ev, device)
	case DeployApogee:
		return ev.Type == model.EventApogee
	case DeployAltitude:
		return ev.Type == model.EventAltitude && ev.Altitude != nil && ev.Altitude.Descending(cfg.DeployAltitude())
	case DeployAltitudeAscending:
		return ev.Type == model.EventAltitude && ev.Altitude != nil && ev.Altitude.Ascending(cfg.DeployAltitude())
	case DeployLowerStageSeparation:
		return ev.Type == model.EventStageSeparation && fromStageBelow(ev, device)
	}
	return false
}

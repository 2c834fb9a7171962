// Package trigger decides when motors ignite, recovery devices deploy and
// stages separate. Each decision is a closed enumeration whose values are
// matched against flight events; the configuration types carry the chosen
// value together with its numeric parameters.
//
// Stage numbers grow downwards: stage 0 is the top stage and a booster
// below stage n is stage n+1.
package trigger

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/motorsim/model"
)

// IgnitionEvent selects the flight event that ignites a motor.
type IgnitionEvent int

const (
	// IgnitionAutomatic ignites at launch in the launch stage and at the
	// ejection charge of the stage below otherwise.
	IgnitionAutomatic IgnitionEvent = iota
	IgnitionLaunch
	IgnitionEjectionCharge
	IgnitionBurnout
	IgnitionNever
)

var ignitionNames = [...]string{"AUTOMATIC", "LAUNCH", "EJECTION_CHARGE", "BURNOUT", "NEVER"}

var ignitionDescriptions = [...]string{
	"Automatic (launch or ejection charge)",
	"Launch",
	"First ejection charge of previous stage",
	"First burnout of previous stage",
	"Never",
}

func (e IgnitionEvent) valid() bool { return e >= IgnitionAutomatic && e <= IgnitionNever }

func (e IgnitionEvent) String() string {
	if !e.valid() {
		return fmt.Sprintf("IgnitionEvent(%d)", int(e))
	}
	return ignitionNames[e]
}

// Description is the human readable form.
func (e IgnitionEvent) Description() string {
	if !e.valid() {
		return e.String()
	}
	return ignitionDescriptions[e]
}

// IgnitionEvents lists every value in declaration order.
func IgnitionEvents() []IgnitionEvent {
	return []IgnitionEvent{IgnitionAutomatic, IgnitionLaunch, IgnitionEjectionCharge, IgnitionBurnout, IgnitionNever}
}

// ParseIgnitionEvent accepts the String form, case and separator insensitive.
func ParseIgnitionEvent(s string) (IgnitionEvent, error) {
	key := normalize(s)
	for i, n := range ignitionNames {
		if n == key {
			return IgnitionEvent(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ignition event %q", s)
}

// IsActivationEvent reports whether ev ignites a motor held by mount.
func (e IgnitionEvent) IsActivationEvent(ev model.FlightEvent, mount model.Component) bool {
	switch e {
	case IgnitionAutomatic:
		if mount.LaunchStage() {
			return IgnitionLaunch.IsActivationEvent(ev, mount)
		}
		return IgnitionEjectionCharge.IsActivationEvent(ev, mount)
	case IgnitionLaunch:
		return ev.Type == model.EventLaunch
	case IgnitionEjectionCharge:
		return ev.Type == model.EventEjectionCharge && fromStageBelow(ev, mount)
	case IgnitionBurnout:
		return ev.Type == model.EventBurnout && fromStageBelow(ev, mount)
	}
	return false
}

// fromStageBelow reports whether ev was raised by the stage directly below c.
func fromStageBelow(ev model.FlightEvent, c model.Component) bool {
	src, ok := ev.SourceStage()
	return ok && src == c.StageNumber()+1
}

// fromSameStage reports whether ev was raised by c's own stage.
func fromSameStage(ev model.FlightEvent, c model.Component) bool {
	src, ok := ev.SourceStage()
	return ok && src == c.StageNumber()
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

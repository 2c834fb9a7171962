package trigger

import (
	"fmt"

	"github.com/signalsfoundry/motorsim/model"
)

// SeparationEvent selects the flight event that separates a stage from the
// stage above it.
type SeparationEvent int

const (
	SeparationUpperIgnition SeparationEvent = iota
	SeparationIgnition
	SeparationBurnout
	SeparationEjection
	SeparationLaunch
	SeparationNever
)

var separationNames = [...]string{"UPPER_IGNITION", "IGNITION", "BURNOUT", "EJECTION", "LAUNCH", "NEVER"}

var separationDescriptions = [...]string{
	"Upper stage motor ignition",
	"Current stage motor ignition",
	"Current stage motor burnout",
	"Current stage ejection charge",
	"Launch",
	"Never",
}

func (e SeparationEvent) valid() bool { return e >= SeparationUpperIgnition && e <= SeparationNever }

func (e SeparationEvent) String() string {
	if !e.valid() {
		return fmt.Sprintf("SeparationEvent(%d)", int(e))
	}
	return separationNames[e]
}

// Description is the human readable form.
func (e SeparationEvent) Description() string {
	if !e.valid() {
		return e.String()
	}
	return separationDescriptions[e]
}

// SeparationEvents lists every value in declaration order.
func SeparationEvents() []SeparationEvent {
	out := make([]SeparationEvent, len(separationNames))
	for i := range out {
		out[i] = SeparationEvent(i)
	}
	return out
}

// ParseSeparationEvent accepts the String form, case and separator
// insensitive.
func ParseSeparationEvent(s string) (SeparationEvent, error) {
	key := normalize(s)
	for i, n := range separationNames {
		if n == key {
			return SeparationEvent(i), nil
		}
	}
	return 0, fmt.Errorf("unknown separation event %q", s)
}

// IsActivationEvent reports whether ev separates stage.
func (e SeparationEvent) IsActivationEvent(ev model.FlightEvent, stage model.Component) bool {
	switch e {
	case SeparationUpperIgnition:
		src, ok := ev.SourceStage()
		return ev.Type == model.EventIgnition && ok && src+1 == stage.StageNumber()
	case SeparationIgnition:
		return ev.Type == model.EventIgnition && fromSameStage(ev, stage)
	case SeparationBurnout:
		return ev.Type == model.EventBurnout && fromSameStage(ev, stage)
	case SeparationEjection:
		return ev.Type == model.EventEjectionCharge && fromSameStage(ev, stage)
	case SeparationLaunch:
		return ev.Type == model.EventLaunch
	}
	return false
}

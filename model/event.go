package model

import "fmt"

// EventType tags a FlightEvent.
type EventType int

const (
	EventLaunch EventType = iota + 1
	EventIgnition
	EventLiftoff
	EventLaunchRod
	EventBurnout
	EventEjectionCharge
	EventStageSeparation
	EventApogee
	EventRecoveryDeployment
	EventAltitude
	EventGroundHit
	EventSimulationEnd
)

var eventTypeNames = map[EventType]string{
	EventLaunch:             "LAUNCH",
	EventIgnition:           "IGNITION",
	EventLiftoff:            "LIFTOFF",
	EventLaunchRod:          "LAUNCHROD",
	EventBurnout:            "BURNOUT",
	EventEjectionCharge:     "EJECTION_CHARGE",
	EventStageSeparation:    "STAGE_SEPARATION",
	EventApogee:             "APOGEE",
	EventRecoveryDeployment: "RECOVERY_DEVICE_DEPLOYMENT",
	EventAltitude:           "ALTITUDE",
	EventGroundHit:          "GROUND_HIT",
	EventSimulationEnd:      "SIMULATION_END",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// AltitudeCrossing is the payload of an ALTITUDE event: the altitudes at the
// start and end of the sample interval in which the event was raised.
type AltitudeCrossing struct {
	Previous float64
	Current  float64
}

// Descending reports whether alt was crossed going down during the interval.
func (a AltitudeCrossing) Descending(alt float64) bool {
	return a.Previous >= alt && a.Current <= alt
}

// Ascending reports whether alt was crossed going up during the interval.
func (a AltitudeCrossing) Ascending(alt float64) bool {
	return a.Previous <= alt && a.Current >= alt
}

// FlightEvent is a discrete occurrence on the flight timeline.
type FlightEvent struct {
	Type   EventType
	Time   float64 // seconds since launch
	Source Component

	// Altitude is only set for EventAltitude.
	Altitude *AltitudeCrossing
}

// SourceStage returns the stage number of the event's source component.
// ok is false for events raised without a source.
func (e FlightEvent) SourceStage() (stage int, ok bool) {
	if e.Source == nil {
		return 0, false
	}
	return e.Source.StageNumber(), true
}

func (e FlightEvent) String() string {
	src := "-"
	if e.Source != nil {
		src = e.Source.ID()
	}
	if e.Altitude != nil {
		return fmt.Sprintf("%s@%.3fs src=%s alt=[%.1f,%.1f]", e.Type, e.Time, src, e.Altitude.Previous, e.Altitude.Current)
	}
	return fmt.Sprintf("%s@%.3fs src=%s", e.Type, e.Time, src)
}

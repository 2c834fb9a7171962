package trigger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/signalsfoundry/motorsim/model"
)

const (
	// DefaultDeployAltitude is the altitude used by the altitude deploy
	// events until one is set, in metres.
	DefaultDeployAltitude = 200.0
)

// DeploymentConfiguration is the deployment setting of one recovery device
// in one flight configuration. Linked configurations receive every edit
// made through a setter. Not safe for concurrent mutation.
type DeploymentConfiguration struct {
	event    DeployEvent
	altitude float64
	delay    float64

	links    model.Linked[*DeploymentConfiguration]
	notifier model.Notifier
}

// NewDeploymentConfiguration returns the default: deploy at the ejection
// charge, no delay.
func NewDeploymentConfiguration() *DeploymentConfiguration {
	return &DeploymentConfiguration{event: DeployEjection, altitude: DefaultDeployAltitude}
}

func (c *DeploymentConfiguration) DeployEvent() DeployEvent { return c.event }
func (c *DeploymentConfiguration) DeployAltitude() float64  { return c.altitude }
func (c *DeploymentConfiguration) DeployDelay() float64     { return c.delay }

// SetDeployEvent sets the event on every linked configuration, then on c.
func (c *DeploymentConfiguration) SetDeployEvent(e DeployEvent) {
	model.Propagate(c, &c.links, func(p *DeploymentConfiguration) {
		if p.event == e {
			return
		}
		p.event = e
		p.fire()
	})
}

// SetDeployAltitude sets the altitude on every linked configuration, then on c.
func (c *DeploymentConfiguration) SetDeployAltitude(alt float64) {
	model.Propagate(c, &c.links, func(p *DeploymentConfiguration) {
		if p.altitude == alt {
			return
		}
		p.altitude = alt
		p.fire()
	})
}

// SetDeployDelay sets the delay on every linked configuration, then on c.
func (c *DeploymentConfiguration) SetDeployDelay(d float64) {
	model.Propagate(c, &c.links, func(p *DeploymentConfiguration) {
		if p.delay == d {
			return
		}
		p.delay = d
		p.fire()
	})
}

// IsActivationEvent reports whether ev deploys device.
func (c *DeploymentConfiguration) IsActivationEvent(ev model.FlightEvent, device model.Component) bool {
	return c.event.IsActivationEvent(c, ev, device)
}

// Link keeps peer in lock-step with c. Links are one-directional.
func (c *DeploymentConfiguration) Link(peer *DeploymentConfiguration)   { c.links.Link(peer) }
func (c *DeploymentConfiguration) Unlink(peer *DeploymentConfiguration) { c.links.Unlink(peer) }
func (c *DeploymentConfiguration) ClearLinks()                          { c.links.Clear() }
func (c *DeploymentConfiguration) Links() []*DeploymentConfiguration    { return c.links.Peers() }

// Subscribe registers fn for change notifications.
func (c *DeploymentConfiguration) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return c.notifier.Subscribe(fn)
}

func (c *DeploymentConfiguration) fire() {
	c.notifier.Fire(model.ChangeEvent{Source: c, Kind: model.ChangeEventConfig})
}

// Clone copies the values. Links and subscribers are not copied.
func (c *DeploymentConfiguration) Clone() *DeploymentConfiguration {
	return &DeploymentConfiguration{event: c.event, altitude: c.altitude, delay: c.delay}
}

// Equal compares event, altitude and delay.
func (c *DeploymentConfiguration) Equal(o *DeploymentConfiguration) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.event == o.event && c.altitude == o.altitude && c.delay == o.delay
}

// Hash is consistent with Equal.
func (c *DeploymentConfiguration) Hash() uint64 {
	return hashValues(float64(c.event), c.altitude, c.delay)
}

// Description is e.g. "Apogee + 2s" or "Specific altitude during descent 150m".
func (c *DeploymentConfiguration) Description() string {
	s := c.event.Description()
	if c.event.UsesAltitude() {
		s = fmt.Sprintf("%s %gm", s, c.altitude)
	}
	if c.delay > 0 {
		s = fmt.Sprintf("%s + %gs", s, c.delay)
	}
	return s
}

func (c *DeploymentConfiguration) String() string { return c.Description() }

// StageSeparationConfiguration is the separation setting of one stage in
// one flight configuration.
type StageSeparationConfiguration struct {
	event SeparationEvent
	delay float64

	links    model.Linked[*StageSeparationConfiguration]
	notifier model.Notifier
}

// NewStageSeparationConfiguration returns the default: separate when the
// upper stage ignites, no delay.
func NewStageSeparationConfiguration() *StageSeparationConfiguration {
	return &StageSeparationConfiguration{event: SeparationUpperIgnition}
}

func (c *StageSeparationConfiguration) SeparationEvent() SeparationEvent { return c.event }
func (c *StageSeparationConfiguration) SeparationDelay() float64         { return c.delay }

// SetSeparationEvent sets the event on every linked configuration, then on c.
func (c *StageSeparationConfiguration) SetSeparationEvent(e SeparationEvent) {
	model.Propagate(c, &c.links, func(p *StageSeparationConfiguration) {
		if p.event == e {
			return
		}
		p.event = e
		p.fire()
	})
}

// SetSeparationDelay sets the delay on every linked configuration, then on c.
func (c *StageSeparationConfiguration) SetSeparationDelay(d float64) {
	model.Propagate(c, &c.links, func(p *StageSeparationConfiguration) {
		if p.delay == d {
			return
		}
		p.delay = d
		p.fire()
	})
}

// IsActivationEvent reports whether ev separates stage.
func (c *StageSeparationConfiguration) IsActivationEvent(ev model.FlightEvent, stage model.Component) bool {
	return c.event.IsActivationEvent(ev, stage)
}

func (c *StageSeparationConfiguration) Link(peer *StageSeparationConfiguration) { c.links.Link(peer) }
func (c *StageSeparationConfiguration) Unlink(peer *StageSeparationConfiguration) {
	c.links.Unlink(peer)
}
func (c *StageSeparationConfiguration) ClearLinks()                            { c.links.Clear() }
func (c *StageSeparationConfiguration) Links() []*StageSeparationConfiguration { return c.links.Peers() }

// Subscribe registers fn for change notifications.
func (c *StageSeparationConfiguration) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return c.notifier.Subscribe(fn)
}

func (c *StageSeparationConfiguration) fire() {
	c.notifier.Fire(model.ChangeEvent{Source: c, Kind: model.ChangeEventConfig})
}

// Clone copies the values. Links and subscribers are not copied.
func (c *StageSeparationConfiguration) Clone() *StageSeparationConfiguration {
	return &StageSeparationConfiguration{event: c.event, delay: c.delay}
}

// Equal compares event and delay.
func (c *StageSeparationConfiguration) Equal(o *StageSeparationConfiguration) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.event == o.event && c.delay == o.delay
}

// Hash is consistent with Equal.
func (c *StageSeparationConfiguration) Hash() uint64 {
	return hashValues(float64(c.event), c.delay)
}

func (c *StageSeparationConfiguration) Description() string {
	if c.delay > 0 {
		return fmt.Sprintf("%s + %gs", c.event.Description(), c.delay)
	}
	return c.event.Description()
}

func (c *StageSeparationConfiguration) String() string { return c.Description() }

func hashValues(vs ...float64) uint64 {
	buf := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		if v == 0 {
			v = 0 // fold -0 into +0 so that Equal values hash alike
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return xxhash.Sum64(buf)
}

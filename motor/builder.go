package motor

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// ErrInvalidMotor is wrapped by every error Build returns.
var ErrInvalidMotor = errors.New("invalid motor")

// ValidationError names the rejected field of a thrust curve.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid motor: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidMotor }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Builder collects the parts of a ThrustCurveMotor. Build validates them
// once; the builder may be reused afterwards.
type Builder struct {
	manufacturer *Manufacturer
	designation  string
	description  string
	motorType    MotorType
	delays       []float64
	diameter     float64
	length       float64

	time   []float64
	thrust []float64
	cg     []CG

	launchMass, burnoutMass float64
	massesSet               bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) WithManufacturer(m *Manufacturer) *Builder { b.manufacturer = m; return b }
func (b *Builder) WithDesignation(d string) *Builder        { b.designation = d; return b }
func (b *Builder) WithDescription(d string) *Builder        { b.description = d; return b }
func (b *Builder) WithMotorType(t MotorType) *Builder       { b.motorType = t; return b }
func (b *Builder) WithDiameter(d float64) *Builder          { b.diameter = d; return b }
func (b *Builder) WithLength(l float64) *Builder            { b.length = l; return b }

// WithDelays sets the standard ejection delays, PluggedDelay included.
func (b *Builder) WithDelays(delays ...float64) *Builder {
	b.delays = append([]float64(nil), delays...)
	return b
}

// WithSamples sets the time and thrust curve. The slices are copied.
func (b *Builder) WithSamples(time, thrust []float64) *Builder {
	b.time = append([]float64(nil), time...)
	b.thrust = append([]float64(nil), thrust...)
	return b
}

// WithCG sets one CG sample per time sample.
func (b *Builder) WithCG(cg []CG) *Builder {
	b.cg = append([]CG(nil), cg...)
	return b
}

// WithMasses derives the CG curve when no CG samples are given: the CG stays
// at the motor's midpoint and the mass falls from launchMass to burnoutMass
// in proportion to the impulse delivered so far.
func (b *Builder) WithMasses(launchMass, burnoutMass float64) *Builder {
	b.launchMass, b.burnoutMass, b.massesSet = launchMass, burnoutMass, true
	return b
}

// Build validates the collected data and returns the motor.
func (b *Builder) Build() (*ThrustCurveMotor, error) {
	if strings.TrimSpace(b.designation) == "" {
		return nil, invalid("designation", "empty")
	}
	if !b.motorType.Valid() {
		return nil, invalid("type", "unsupported motor type %s", b.motorType)
	}
	if !(b.diameter > 0) {
		return nil, invalid("diameter", "must be positive, got %v", b.diameter)
	}
	if !(b.length > 0) {
		return nil, invalid("length", "must be positive, got %v", b.length)
	}
	for _, d := range b.delays {
		if d != PluggedDelay && (d < 0 || math.IsNaN(d)) {
			return nil, invalid("delays", "invalid delay %v", d)
		}
	}
	if err := b.validateCurve(); err != nil {
		return nil, err
	}

	cg := b.cg
	if len(cg) == 0 && b.massesSet {
		var err error
		if cg, err = b.deriveCG(); err != nil {
			return nil, err
		}
	}
	if len(cg) != len(b.time) {
		return nil, invalid("cg", "%d samples for %d time samples", len(cg), len(b.time))
	}
	if err := b.validateCG(cg); err != nil {
		return nil, err
	}

	m := &ThrustCurveMotor{
		manufacturer: b.manufacturer,
		designation:  strings.TrimSpace(b.designation),
		description:  b.description,
		motorType:    b.motorType,
		delays:       append([]float64(nil), b.delays...),
		diameter:     b.diameter,
		length:       b.length,
		time:         append([]float64(nil), b.time...),
		thrust:       append([]float64(nil), b.thrust...),
		cg:           append([]CG(nil), cg...),
	}
	computeStatistics(m)
	m.digest = computeDigest(m)

	r := m.diameter / 2
	m.unitRotationalInertia = r * r / 2
	m.unitLongitudinalInertia = (3*r*r + m.length*m.length) / 12
	return m, nil
}

func (b *Builder) validateCurve() error {
	n := len(b.time)
	if n != len(b.thrust) {
		return invalid("thrust", "%d samples for %d time samples", len(b.thrust), n)
	}
	if n < 2 {
		return invalid("time", "need at least 2 samples, got %d", n)
	}
	if b.time[0] != 0 {
		return invalid("time", "must start at 0, got %v", b.time[0])
	}
	for i := 1; i < n; i++ {
		if math.IsNaN(b.time[i]) || b.time[i] < b.time[i-1] {
			return invalid("time", "not monotonic at sample %d (%v after %v)", i, b.time[i], b.time[i-1])
		}
	}
	if b.time[n-1] <= 0 {
		return invalid("time", "curve has zero duration")
	}
	for i, f := range b.thrust {
		if math.IsNaN(f) || f < 0 || f > MaxThrust {
			return invalid("thrust", "sample %d out of range: %v", i, f)
		}
	}
	if b.thrust[0] != 0 || b.thrust[n-1] != 0 {
		return invalid("thrust", "must be zero at the first and last sample")
	}
	if floats.Max(b.thrust) <= 0 {
		return invalid("thrust", "curve produces no thrust")
	}
	return nil
}

func (b *Builder) validateCG(cg []CG) error {
	for i, c := range cg {
		switch {
		case c.isNaN():
			return invalid("cg", "sample %d is NaN", i)
		case c.X < 0 || c.X > b.length:
			return invalid("cg", "sample %d position %v outside [0, %v]", i, c.X, b.length)
		case c.Mass < 0:
			return invalid("cg", "sample %d has negative mass %v", i, c.Mass)
		case i > 0 && c.Mass > cg[i-1].Mass:
			return invalid("cg", "mass increases at sample %d (%v after %v)", i, c.Mass, cg[i-1].Mass)
		}
	}
	return nil
}

func (b *Builder) deriveCG() ([]CG, error) {
	if b.launchMass < b.burnoutMass || b.burnoutMass < 0 {
		return nil, invalid("mass", "launch mass %v below burnout mass %v", b.launchMass, b.burnoutMass)
	}
	cumulative := make([]float64, len(b.time))
	for i := 1; i < len(b.time); i++ {
		cumulative[i] = cumulative[i-1] + (b.thrust[i-1]+b.thrust[i])/2*(b.time[i]-b.time[i-1])
	}
	total := cumulative[len(cumulative)-1]
	propellant := b.launchMass - b.burnoutMass
	cg := make([]CG, len(b.time))
	for i := range cg {
		cg[i] = CG{X: b.length / 2, Mass: b.launchMass - propellant*cumulative[i]/total}
	}
	return cg, nil
}

// computeStatistics fills the derived fields once at build time.
func computeStatistics(m *ThrustCurveMotor) {
	n := len(m.time)
	m.maxThrust = floats.Max(m.thrust)
	m.totalImpulse = integrate.Trapezoidal(m.time, m.thrust)

	threshold := m.maxThrust * MarginalThrust

	// Burn start: first upward crossing of the threshold.
	start := 0.0
	for i := 1; i < n; i++ {
		if m.thrust[i] >= threshold {
			start = crossing(m.time[i-1], m.thrust[i-1], m.time[i], m.thrust[i], threshold)
			break
		}
	}
	// Burn end: last downward crossing.
	end := m.time[n-1]
	for i := n - 2; i >= 0; i-- {
		if m.thrust[i] >= threshold {
			end = crossing(m.time[i], m.thrust[i], m.time[i+1], m.thrust[i+1], threshold)
			break
		}
	}

	m.burnTimeEstimate = math.Max(end-start, 0)
	if m.burnTimeEstimate > 0 {
		m.averageThrustEstimate = m.impulseBetween(start, end) / m.burnTimeEstimate
	}
}

// crossing returns where the segment (t0,f0)-(t1,f1) meets threshold.
func crossing(t0, f0, t1, f1, threshold float64) float64 {
	if f0 == f1 {
		return (t0 + t1) / 2
	}
	return t0 + (threshold-f0)/(f1-f0)*(t1-t0)
}

package motor

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// MaxThrust is the largest thrust sample accepted, in newtons.
	MaxThrust = 10e6

	// MarginalThrust is the fraction of peak thrust that delimits the burn
	// for the burn-time and average-thrust estimates.
	MarginalThrust = 0.05

	// snapDistance pulls interpolation onto a sample when the fractional
	// position between two samples is this close to either end.
	snapDistance = 1e-4
)

// CG is a center of gravity sample: axial position from the motor's fore
// end in metres, and the motor's total mass at that instant in kilograms.
type CG struct {
	X    float64
	Mass float64
}

func (c CG) isNaN() bool { return math.IsNaN(c.X) || math.IsNaN(c.Mass) }

// average returns the simple mean of two samples.
func (c CG) average(o CG) CG {
	return CG{X: (c.X + o.X) / 2, Mass: (c.Mass + o.Mass) / 2}
}

// ThrustCurveMotor is an immutable, validated thrust curve. Build one with
// a Builder. Every method is safe for concurrent use.
type ThrustCurveMotor struct {
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

	maxThrust             float64
	totalImpulse          float64
	burnTimeEstimate      float64
	averageThrustEstimate float64
	digest                string

	unitRotationalInertia   float64
	unitLongitudinalInertia float64
}

func (m *ThrustCurveMotor) Manufacturer() *Manufacturer { return m.manufacturer }
func (m *ThrustCurveMotor) Designation() string         { return m.designation }
func (m *ThrustCurveMotor) Description() string         { return m.description }
func (m *ThrustCurveMotor) MotorType() MotorType        { return m.motorType }
func (m *ThrustCurveMotor) Diameter() float64           { return m.diameter }
func (m *ThrustCurveMotor) Length() float64             { return m.length }

// StandardDelays returns the ejection delays the motor is sold with.
func (m *ThrustCurveMotor) StandardDelays() []float64 {
	return append([]float64(nil), m.delays...)
}

// DesignationWithDelay returns e.g. "H128W-14" or "H128W-P".
func (m *ThrustCurveMotor) DesignationWithDelay(delay float64) string {
	return DesignationWithDelay(m.designation, delay)
}

// Samples returns copies of the raw curve.
func (m *ThrustCurveMotor) Samples() (time, thrust []float64, cg []CG) {
	return append([]float64(nil), m.time...),
		append([]float64(nil), m.thrust...),
		append([]CG(nil), m.cg...)
}

// SampleCount returns the number of curve samples.
func (m *ThrustCurveMotor) SampleCount() int { return len(m.time) }

// BurnTime is the time of the last sample; the motor produces no thrust
// after it.
func (m *ThrustCurveMotor) BurnTime() float64 { return m.time[len(m.time)-1] }

// BurnTimeEstimate is the length of the window in which thrust exceeds
// MarginalThrust of the peak.
func (m *ThrustCurveMotor) BurnTimeEstimate() float64 { return m.burnTimeEstimate }

// AverageThrustEstimate is the mean thrust within the BurnTimeEstimate window.
func (m *ThrustCurveMotor) AverageThrustEstimate() float64 { return m.averageThrustEstimate }

func (m *ThrustCurveMotor) MaxThrust() float64    { return m.maxThrust }
func (m *ThrustCurveMotor) TotalImpulse() float64 { return m.totalImpulse }

// ImpulseClass returns the motor's impulse class letter.
func (m *ThrustCurveMotor) ImpulseClass() string { return ImpulseClass(m.totalImpulse) }

func (m *ThrustCurveMotor) LaunchMass() float64  { return m.cg[0].Mass }
func (m *ThrustCurveMotor) BurnoutMass() float64 { return m.cg[len(m.cg)-1].Mass }
func (m *ThrustCurveMotor) BurnoutCG() CG        { return m.cg[len(m.cg)-1] }

// PropellantMass is the mass expelled during the burn.
func (m *ThrustCurveMotor) PropellantMass() float64 { return m.LaunchMass() - m.BurnoutMass() }

// Digest identifies the curve data independently of names.
func (m *ThrustCurveMotor) Digest() string { return m.digest }

// Thrust returns the thrust at motor time t.
func (m *ThrustCurveMotor) Thrust(t float64) float64 {
	return interpolate(m.thrust, m.pseudoIndex(t))
}

// TotalMass returns the motor's mass at motor time t.
func (m *ThrustCurveMotor) TotalMass(t float64) float64 {
	return m.CG(t).Mass
}

// CG returns the interpolated CG sample at motor time t.
func (m *ThrustCurveMotor) CG(t float64) CG {
	pi := m.pseudoIndex(t)
	lower := int(math.Floor(pi))
	if lower >= len(m.cg)-1 {
		return m.cg[len(m.cg)-1]
	}
	f := pi - float64(lower)
	a, b := m.cg[lower], m.cg[lower+1]
	return CG{X: a.X*(1-f) + b.X*f, Mass: a.Mass*(1-f) + b.Mass*f}
}

// AverageThrust returns the impulse delivered between t0 and t1 divided by
// the window length. Thrust outside the curve is zero.
func (m *ThrustCurveMotor) AverageThrust(t0, t1 float64) float64 {
	if t1 < t0 {
		t0, t1 = t1, t0
	}
	if t1 == t0 {
		return m.thrustAt(t0)
	}
	return m.impulseBetween(t0, t1) / (t1 - t0)
}

// pseudoIndex maps t to a fractional sample index. A fractional position
// within snapDistance of either bracketing sample returns that sample's
// exact index.
func (m *ThrustCurveMotor) pseudoIndex(t float64) float64 {
	n := len(m.time)
	if t <= m.time[0] {
		return 0
	}
	if t >= m.time[n-1] {
		return float64(n - 1)
	}
	// First sample at or after t; time[upper-1] < t <= time[upper].
	upper := sort.SearchFloat64s(m.time, t)
	if m.time[upper] == t {
		return float64(upper)
	}
	lower := upper - 1
	f := (t - m.time[lower]) / (m.time[upper] - m.time[lower])
	switch {
	case f < snapDistance:
		return float64(lower)
	case f > 1-snapDistance:
		return float64(upper)
	}
	return float64(lower) + f
}

func interpolate(values []float64, pseudoIndex float64) float64 {
	lower := int(math.Floor(pseudoIndex))
	if lower >= len(values)-1 {
		return values[len(values)-1]
	}
	f := pseudoIndex - float64(lower)
	return values[lower]*(1-f) + values[lower+1]*f
}

// segment returns i such that time[i] <= t < time[i+1], for t inside the curve.
func (m *ThrustCurveMotor) segment(t float64) int {
	i := sort.Search(len(m.time), func(k int) bool { return m.time[k] > t }) - 1
	if i < 0 {
		return 0
	}
	if i > len(m.time)-2 {
		return len(m.time) - 2
	}
	return i
}

// thrustAt is the plain linear interpolation, without snapping.
func (m *ThrustCurveMotor) thrustAt(t float64) float64 {
	if t < 0 || t > m.BurnTime() {
		return 0
	}
	return m.linear(m.segment(t), t)
}

func (m *ThrustCurveMotor) linear(i int, t float64) float64 {
	dt := m.time[i+1] - m.time[i]
	if dt == 0 {
		return m.thrust[i+1]
	}
	return m.thrust[i] + (m.thrust[i+1]-m.thrust[i])*(t-m.time[i])/dt
}

// impulseBetween integrates the piecewise-linear curve exactly over [a, b]:
// a partial first segment, any whole interior segments, a partial last one.
func (m *ThrustCurveMotor) impulseBetween(a, b float64) float64 {
	n := len(m.time)
	if a < 0 {
		a = 0
	}
	if b > m.BurnTime() {
		b = m.BurnTime()
	}
	if b <= a {
		return 0
	}

	i := m.segment(a)
	fa := m.linear(i, a)
	if b <= m.time[i+1] {
		return (fa + m.linear(i, b)) / 2 * (b - a)
	}

	impulse := (fa + m.thrust[i+1]) / 2 * (m.time[i+1] - a)
	i++
	for i < n-1 && m.time[i+1] <= b {
		impulse += (m.thrust[i] + m.thrust[i+1]) / 2 * (m.time[i+1] - m.time[i])
		i++
	}
	if i < n-1 && b > m.time[i] {
		impulse += (m.thrust[i] + m.linear(i, b)) / 2 * (b - m.time[i])
	}
	return impulse
}

// Compare orders motors by manufacturer, diameter, designation and total
// impulse. It returns -1, 0 or 1.
func (m *ThrustCurveMotor) Compare(o *ThrustCurveMotor) int {
	if c := strings.Compare(m.manufacturerName(), o.manufacturerName()); c != 0 {
		return c
	}
	if c := cmpFloat(m.diameter, o.diameter); c != 0 {
		return c
	}
	if c := strings.Compare(m.designation, o.designation); c != 0 {
		return c
	}
	return cmpFloat(m.totalImpulse, o.totalImpulse)
}

func (m *ThrustCurveMotor) manufacturerName() string {
	if m.manufacturer == nil {
		return ""
	}
	return m.manufacturer.DisplayName()
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m *ThrustCurveMotor) String() string {
	return fmt.Sprintf("%s %s (%s, %.0fmm, %.1fNs)", m.manufacturerName(), m.designation, m.motorType, m.diameter*1000, m.totalImpulse)
}

func computeDigest(m *ThrustCurveMotor) string {
	buf := make([]byte, 0, 8*(4+2*len(m.time)+2*len(m.cg)))
	put := func(v float64) { buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v)) }
	put(float64(m.motorType))
	put(m.diameter)
	put(m.length)
	put(float64(len(m.time)))
	for i := range m.time {
		put(m.time[i])
		put(m.thrust[i])
	}
	for _, c := range m.cg {
		put(c.X)
		put(c.Mass)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(buf))
}

// NewInstance returns a fresh simulation state for this motor.
func (m *ThrustCurveMotor) NewInstance() *InstanceState {
	return NewInstanceState(m)
}

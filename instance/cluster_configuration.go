package instance

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ClusterConfiguration is a named arrangement of touching tubes. Points are
// in units of the tube separation: neighbouring tubes are exactly 1 apart.
type ClusterConfiguration struct {
	name   string
	points []mgl64.Vec2
}

// Name is the pattern name, e.g. "3-ring".
func (c *ClusterConfiguration) Name() string { return c.name }

// Count is the number of tubes in the pattern.
func (c *ClusterConfiguration) Count() int { return len(c.points) }

// Points returns the pattern rotated by rotation radians about the axis.
func (c *ClusterConfiguration) Points(rotation float64) []mgl64.Vec2 {
	rot := mgl64.Rotate2D(rotation)
	out := make([]mgl64.Vec2, len(c.points))
	for i, p := range c.points {
		out[i] = rot.Mul2x1(p)
	}
	return out
}

func (c *ClusterConfiguration) String() string { return c.name }

var (
	ClusterSingle = &ClusterConfiguration{name: "single", points: []mgl64.Vec2{{0, 0}}}
	ClusterDouble = &ClusterConfiguration{name: "double", points: []mgl64.Vec2{{-0.5, 0}, {0.5, 0}}}
	Cluster3Row   = &ClusterConfiguration{name: "3-row", points: []mgl64.Vec2{{-1, 0}, {0, 0}, {1, 0}}}
	Cluster3Ring  = &ClusterConfiguration{name: "3-ring", points: ringPoints(3, math.Pi/2)}
	Cluster4Row   = &ClusterConfiguration{name: "4-row", points: []mgl64.Vec2{{-1.5, 0}, {-0.5, 0}, {0.5, 0}, {1.5, 0}}}
	Cluster4Ring  = &ClusterConfiguration{name: "4-ring", points: ringPoints(4, math.Pi/4)}
	Cluster5Cross = &ClusterConfiguration{name: "5-cross", points: append([]mgl64.Vec2{{0, 0}}, ring(4, 1, 0)...)}
	Cluster5Ring  = &ClusterConfiguration{name: "5-ring", points: ringPoints(5, math.Pi/2)}
	Cluster6Ring  = &ClusterConfiguration{name: "6-ring", points: ringPoints(6, math.Pi/2)}
	Cluster7Star  = &ClusterConfiguration{name: "7-star", points: append([]mgl64.Vec2{{0, 0}}, ring(6, 1, math.Pi/2)...)}
	Cluster8Ring  = &ClusterConfiguration{name: "8-ring", points: ringPoints(8, math.Pi/2)}
	Cluster9Star  = &ClusterConfiguration{name: "9-star", points: append([]mgl64.Vec2{{0, 0}}, ringPoints(8, math.Pi/2)...)}
)

var clusterConfigurations = []*ClusterConfiguration{
	ClusterSingle, ClusterDouble, Cluster3Row, Cluster3Ring, Cluster4Row, Cluster4Ring,
	Cluster5Cross, Cluster5Ring, Cluster6Ring, Cluster7Star, Cluster8Ring, Cluster9Star,
}

// ClusterConfigurations lists the catalogue in order of tube count.
func ClusterConfigurations() []*ClusterConfiguration {
	return append([]*ClusterConfiguration(nil), clusterConfigurations...)
}

// ClusterConfigurationByName looks a pattern up by name, case insensitive.
func ClusterConfigurationByName(name string) (*ClusterConfiguration, bool) {
	for _, c := range clusterConfigurations {
		if strings.EqualFold(c.name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return nil, false
}

// ringPoints places n touching tubes on a circle: chord 1 gives radius
// 0.5/sin(π/n).
func ringPoints(n int, phase float64) []mgl64.Vec2 {
	return ring(n, 0.5/math.Sin(math.Pi/float64(n)), phase)
}

func ring(n int, r, phase float64) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, n)
	for i := range out {
		a := phase + float64(i)*2*math.Pi/float64(n)
		out[i] = mgl64.Vec2{r * math.Cos(a), r * math.Sin(a)}
	}
	return out
}

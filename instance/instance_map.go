package instance

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/motorsim/model"
)

// InstanceContext places one physical copy of a component.
type InstanceContext struct {
	Component      model.Component
	InstanceNumber int
	Transform      mgl64.Mat4
}

// Location is the instance's origin in the root frame.
func (c InstanceContext) Location() mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{}, c.Transform)
}

func (c InstanceContext) String() string {
	loc := c.Location()
	return fmt.Sprintf("%s#%d @ (%.4f, %.4f, %.4f)", c.Component.ID(), c.InstanceNumber, loc[0], loc[1], loc[2])
}

// InstanceMap collects, per component, the contexts of every placed copy in
// the order they were emplaced.
type InstanceMap struct {
	order []model.Component
	byKey map[model.Component][]InstanceContext
}

// NewInstanceMap returns an empty map.
func NewInstanceMap() *InstanceMap {
	return &InstanceMap{byKey: make(map[model.Component][]InstanceContext)}
}

// Emplace appends a context for c.
func (m *InstanceMap) Emplace(c model.Component, instanceNumber int, transform mgl64.Mat4) {
	if _, ok := m.byKey[c]; !ok {
		m.order = append(m.order, c)
	}
	m.byKey[c] = append(m.byKey[c], InstanceContext{Component: c, InstanceNumber: instanceNumber, Transform: transform})
}

// Count returns the number of contexts of c.
func (m *InstanceMap) Count(c model.Component) int { return len(m.byKey[c]) }

// Contexts returns a copy of c's contexts.
func (m *InstanceMap) Contexts(c model.Component) []InstanceContext {
	return append([]InstanceContext(nil), m.byKey[c]...)
}

// Components returns the components in first-emplaced order.
func (m *InstanceMap) Components() []model.Component {
	return append([]model.Component(nil), m.order...)
}

// Validate checks that every instanceable component was placed a whole
// number of times its instance count.
func (m *InstanceMap) Validate() error {
	var errs []error
	for _, c := range m.order {
		inst, ok := c.(Instanceable)
		if !ok {
			continue
		}
		n := inst.InstanceCount()
		if got := len(m.byKey[c]); n < 1 || got%n != 0 {
			errs = append(errs, fmt.Errorf("%s: %d contexts for %d instances", c.ID(), got, n))
		}
	}
	return errors.Join(errs...)
}

// Assembly is a node of the component tree as the instancing walk sees it:
// a component placed at Position in its parent's frame.
type Assembly struct {
	Component model.Component
	Position  mgl64.Vec3
	Children  []*Assembly
}

// Add appends a child and returns it.
func (a *Assembly) Add(c model.Component, position mgl64.Vec3) *Assembly {
	child := &Assembly{Component: c, Position: position}
	a.Children = append(a.Children, child)
	return child
}

// BuildInstanceMap walks the tree from root, expanding every instanceable
// component into its copies. Children are placed once per instance of
// their parent.
func BuildInstanceMap(root *Assembly) *InstanceMap {
	m := NewInstanceMap()
	if root != nil {
		build(m, root, mgl64.Ident4())
	}
	return m
}

func build(m *InstanceMap, node *Assembly, parent mgl64.Mat4) {
	offsets := []mgl64.Vec3{{}}
	if inst, ok := node.Component.(Instanceable); ok {
		offsets = inst.InstanceOffsets()
	}
	for i, off := range offsets {
		p := node.Position.Add(off)
		t := parent.Mul4(mgl64.Translate3D(p[0], p[1], p[2]))
		m.Emplace(node.Component, i, t)
		for _, child := range node.Children {
			build(m, child, t)
		}
	}
}

// Package flightconfig stores values that differ between the flight
// configurations of a vehicle: the motor in each mount, the deployment of
// each recovery device and the separation of each stage.
package flightconfig

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/motorsim/model"
)

// ErrDefaultLocked is returned when replacing the default of a set whose
// default is fixed.
var ErrDefaultLocked = errors.New("default value cannot be replaced")

// Parameter is a value that can be stored per flight configuration. Clone
// must return an independent copy.
type Parameter[T any] interface {
	Clone() T
}

// ParameterSet maps flight configuration ids to values, falling back to a
// default for ids without an override. The default can never be removed.
type ParameterSet[T Parameter[T]] struct {
	mu sync.RWMutex

	def       T
	overrides map[model.FlightConfigurationID]T
	locked    bool // default fixed at construction
	kind      model.ChangeKind

	notifier model.Notifier
}

// NewParameterSet returns a set whose default is def.
func NewParameterSet[T Parameter[T]](def T) *ParameterSet[T] {
	return &ParameterSet[T]{
		def:       def,
		overrides: make(map[model.FlightConfigurationID]T),
		kind:      model.ChangeEventConfig,
	}
}

// newLockedParameterSet returns a set whose default cannot be replaced and
// whose notifications carry kind.
func newLockedParameterSet[T Parameter[T]](def T, kind model.ChangeKind) *ParameterSet[T] {
	s := NewParameterSet(def)
	s.locked = true
	s.kind = kind
	return s
}

// Get returns the value for id, or the default when id has no override.
func (s *ParameterSet[T]) Get(id model.FlightConfigurationID) T {
	if v, ok := s.override(id); ok {
		return v
	}
	return s.Default()
}

func (s *ParameterSet[T]) override(id model.FlightConfigurationID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.overrides[id]
	return v, ok
}

// Default returns the default value.
func (s *ParameterSet[T]) Default() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// SetDefault replaces the default value.
func (s *ParameterSet[T]) SetDefault(v T) error {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return ErrDefaultLocked
	}
	s.def = v
	s.mu.Unlock()

	s.fire()
	return nil
}

// Set stores v for id. Setting the default id replaces the default and
// panics on a set whose default is locked.
func (s *ParameterSet[T]) Set(id model.FlightConfigurationID, v T) {
	if id.IsDefault() {
		if err := s.SetDefault(v); err != nil {
			panic(fmt.Sprintf("flightconfig: Set(default): %v", err))
		}
		return
	}
	s.mu.Lock()
	s.overrides[id] = v
	s.mu.Unlock()

	s.fire()
}

// Reset removes the override for id. The default is never removed.
func (s *ParameterSet[T]) Reset(id model.FlightConfigurationID) {
	s.mu.Lock()
	_, ok := s.overrides[id]
	delete(s.overrides, id)
	s.mu.Unlock()

	if ok {
		s.fire()
	}
}

// Remove is Reset under the name callers removing a configuration use.
func (s *ParameterSet[T]) Remove(id model.FlightConfigurationID) { s.Reset(id) }

// ResetAll removes every override.
func (s *ParameterSet[T]) ResetAll() {
	s.mu.Lock()
	n := len(s.overrides)
	s.overrides = make(map[model.FlightConfigurationID]T)
	s.mu.Unlock()

	if n > 0 {
		s.fire()
	}
}

// Contains reports whether id has an override.
func (s *ParameterSet[T]) Contains(id model.FlightConfigurationID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overrides[id]
	return ok
}

// IsDefault reports whether Get(id) returns the default.
func (s *ParameterSet[T]) IsDefault(id model.FlightConfigurationID) bool {
	return id.IsDefault() || !s.Contains(id)
}

// Len returns the number of overrides.
func (s *ParameterSet[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overrides)
}

// IDs returns the ids that have an override, in a stable order.
func (s *ParameterSet[T]) IDs() []model.FlightConfigurationID {
	s.mu.RLock()
	ids := make([]model.FlightConfigurationID, 0, len(s.overrides))
	for id := range s.overrides {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// CopyConfiguration gives to an independent copy of from's value. When from
// has no override, to loses its own.
func (s *ParameterSet[T]) CopyConfiguration(from, to model.FlightConfigurationID) {
	if from == to {
		return
	}
	s.mu.RLock()
	v, ok := s.overrides[from]
	s.mu.RUnlock()

	if !ok {
		s.Reset(to)
		return
	}
	s.Set(to, v.Clone())
}

// Clone returns a deep copy: every value, the default included, is cloned.
// Subscribers are not copied.
func (s *ParameterSet[T]) Clone() *ParameterSet[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &ParameterSet[T]{
		def:       s.def.Clone(),
		overrides: make(map[model.FlightConfigurationID]T, len(s.overrides)),
		locked:    s.locked,
		kind:      s.kind,
	}
	for id, v := range s.overrides {
		c.overrides[id] = v.Clone()
	}
	return c
}

// Subscribe registers fn for change notifications of the set itself.
func (s *ParameterSet[T]) Subscribe(fn func(model.ChangeEvent)) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

func (s *ParameterSet[T]) fire() {
	s.notifier.Fire(model.ChangeEvent{Source: s, Kind: s.kind})
}

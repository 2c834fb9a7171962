package model

import "sync"

// ChangeKind categorises a change notification so that collaborators (mass
// aggregation, aerodynamics, renderers) can ignore what they don't consume.
type ChangeKind uint16

const (
	ChangeNonFunctional ChangeKind = 1 << iota
	ChangeMass
	ChangeAerodynamic
	ChangeMotor
	ChangeEventConfig
	ChangeTree
)

// ChangeGeometry is raised when a change moves material and alters the
// outer shape at the same time.
const ChangeGeometry = ChangeMass | ChangeAerodynamic

// Has reports whether all bits of o are set in k.
func (k ChangeKind) Has(o ChangeKind) bool { return k&o == o }

// ChangeEvent is emitted after a value actually changed.
type ChangeEvent struct {
	Source any
	Kind   ChangeKind
}

// Notifier fans a ChangeEvent out to its subscribers.
// The zero value is ready to use.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

type subscription struct {
	id int
	fn func(ChangeEvent)
}

// Subscribe registers fn and returns a function that removes it again.
func (n *Notifier) Subscribe(fn func(ChangeEvent)) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs = append(n.subs, subscription{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Fire delivers ev to every subscriber in subscription order.
func (n *Notifier) Fire(ev ChangeEvent) {
	n.mu.Lock()
	subs := append([]subscription(nil), n.subs...)
	n.mu.Unlock()

	// Notify outside the lock so subscribers may (un)subscribe.
	for _, s := range subs {
		s.fn(ev)
	}
}

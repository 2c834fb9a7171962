package model

// Linked is the list of sibling values that must be kept in lock-step with
// their owner, e.g. the same physical component selected in several places.
type Linked[T comparable] struct {
	peers []T
}

// Link adds p. Linking the same peer twice is a no-op.
func (l *Linked[T]) Link(p T) {
	for _, existing := range l.peers {
		if existing == p {
			return
		}
	}
	l.peers = append(l.peers, p)
}

// Unlink removes p if present.
func (l *Linked[T]) Unlink(p T) {
	for i, existing := range l.peers {
		if existing == p {
			l.peers = append(l.peers[:i], l.peers[i+1:]...)
			return
		}
	}
}

// Clear drops every peer.
func (l *Linked[T]) Clear() { l.peers = nil }

// Len returns the number of linked peers.
func (l *Linked[T]) Len() int { return len(l.peers) }

// Peers returns a snapshot of the linked peers.
func (l *Linked[T]) Peers() []T {
	return append([]T(nil), l.peers...)
}

// Propagate applies edit to every linked peer, in link order, and then to
// self. Peers receive the edit itself, not a forwarded setter call, so a
// cycle of links can never recurse.
func Propagate[T comparable](self T, links *Linked[T], edit func(T)) {
	for _, p := range links.Peers() {
		if p == self {
			continue
		}
		edit(p)
	}
	edit(self)
}

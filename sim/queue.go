package sim

import (
	"sort"
	"sync"

	"github.com/signalsfoundry/motorsim/model"
)

// EventQueue holds pending flight events in time order. Events with equal
// times leave in the order they were pushed.
type EventQueue struct {
	mu    sync.Mutex
	items []model.FlightEvent
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Push adds ev. The queue stays sorted so Peek and Pop are cheap.
func (q *EventQueue) Push(ev model.FlightEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, ev)
	q.sortLocked()
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() (model.FlightEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return model.FlightEvent{}, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev, true
}

func (q *EventQueue) Peek() (model.FlightEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return model.FlightEvent{}, false
	}
	return q.items[0], true
}

// PopDue removes and returns the earliest event if it is due at or before t.
func (q *EventQueue) PopDue(t float64) (model.FlightEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 || q.items[0].Time > t {
		return model.FlightEvent{}, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev, true
}

func (q *EventQueue) sortLocked() {
	sort.SliceStable(q.items, func(i, j int) bool {
		return q.items[i].Time < q.items[j].Time
	})
}

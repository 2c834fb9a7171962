package timectrl

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimClock is an interface for reading flight time. Steppers and event
// consumers depend on it rather than on a concrete controller type.
type SimClock interface {
	// Now returns the current flight time in seconds since launch.
	Now() float64
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// Accelerated advances as quickly as the loop can run while still
	// stepping by Tick. It is the zero Mode.
	Accelerated Mode = iota
	// RealTime paces ticks against the wall clock.
	RealTime
)

func (m Mode) String() string {
	switch m {
	case Accelerated:
		return "accelerated"
	case RealTime:
		return "realtime"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "realtime" or "accelerated".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "realtime", "real-time":
		return RealTime, nil
	case "accelerated", "":
		return Accelerated, nil
	default:
		return 0, fmt.Errorf("timectrl: unknown mode %q", s)
	}
}

// TimeController drives flight time in fixed ticks and notifies registered
// listeners after every tick. It implements SimClock.
type TimeController struct {
	mu    sync.RWMutex
	Start float64 // seconds
	Tick  float64 // seconds
	Mode  Mode

	// currentTime is Start + ticks·Tick; ticks counts whole steps so long
	// runs don't accumulate rounding error.
	currentTime float64
	ticks       int64
	stopped     bool

	listeners []func(now float64)
}

// NewTimeController constructs a controller. It panics on a non-positive
// tick.
func NewTimeController(start, tick float64, mode Mode) *TimeController {
	if !(tick > 0) {
		panic(fmt.Sprintf("timectrl: tick must be positive, got %v", tick))
	}
	return &TimeController{
		Start:       start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime moves the clock forward to t. Time never runs backwards: an
// earlier t panics.
func (tc *TimeController) SetTime(t float64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if t < tc.currentTime {
		panic(fmt.Sprintf("timectrl: time regression from %v to %v", tc.currentTime, t))
	}
	tc.currentTime = t
	tc.ticks = int64((t - tc.Start) / tc.Tick)
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn func(now float64)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Stop ends a running loop after the current tick. Listeners may call it.
func (tc *TimeController) Stop() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.stopped = true
}

// Stopped reports whether Stop was called.
func (tc *TimeController) Stopped() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.stopped
}

// Run advances the clock on the calling goroutine until duration seconds
// have elapsed (0 means until Stop), Stop is called or ctx is done. It
// returns ctx.Err() when cancelled.
func (tc *TimeController) Run(ctx context.Context, duration float64) error {
	var tick <-chan time.Time
	if tc.Mode == RealTime {
		ticker := time.NewTicker(time.Duration(tc.Tick * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tc.Stopped() {
			return nil
		}
		tc.mu.RLock()
		elapsed := tc.currentTime - tc.Start
		tc.mu.RUnlock()
		if duration > 0 && elapsed >= duration-tc.Tick/2 {
			return nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		tc.mu.Lock()
		tc.ticks++
		now := tc.Start + float64(tc.ticks)*tc.Tick
		tc.currentTime = now
		listeners := append(([]func(float64))(nil), tc.listeners...)
		tc.mu.Unlock()

		for _, fn := range listeners {
			fn(now)
		}
	}
}

// StartAsync runs the controller in a separate goroutine. The returned
// channel receives Run's result and is then closed.
func (tc *TimeController) StartAsync(ctx context.Context, duration float64) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- tc.Run(ctx, duration)
	}()
	return done
}

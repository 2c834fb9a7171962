package timectrl

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestTimeControllerSetTime(t *testing.T) {
	tc := NewTimeController(0, 0.01, RealTime)

	tc.SetTime(42)
	if got := tc.Now(); got != 42 {
		t.Fatalf("Now() = %v, want 42", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("SetTime backwards should panic")
		}
	}()
	tc.SetTime(41)
}

func TestTimeControllerRunUpdatesNow(t *testing.T) {
	tc := NewTimeController(0, 0.005, Accelerated)

	var ticks int
	tc.AddListener(func(float64) { ticks++ })
	if err := tc.Run(context.Background(), 0.015); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := tc.Now(); !scalar.EqualWithinAbs(got, 0.015, 1e-12) {
		t.Fatalf("Now() = %v, want 0.015", got)
	}
	if ticks != 3 {
		t.Fatalf("ticks = %d, want 3", ticks)
	}
}

func TestTimeControllerStopFromListener(t *testing.T) {
	tc := NewTimeController(0, 0.1, Accelerated)
	tc.AddListener(func(now float64) {
		if now >= 0.5-1e-9 {
			tc.Stop()
		}
	})

	done := tc.StartAsync(context.Background(), 0)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := tc.Now(); !scalar.EqualWithinAbs(got, 0.5, 1e-9) {
		t.Fatalf("stopped at %v, want 0.5", got)
	}
}

func TestTimeControllerHonoursContext(t *testing.T) {
	tc := NewTimeController(0, 0.1, Accelerated)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tc.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"realtime": RealTime, "accelerated": Accelerated, "": Accelerated} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("warp"); err == nil {
		t.Fatalf("ParseMode(warp) should fail")
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewJSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf})

	l.With(String("flight", "A8-3")).Info(context.Background(), "burnout",
		Float("t", 1.25),
		Int("motors", 2),
		Bool("plugged", false),
		Duration("wall", 3*time.Millisecond),
		Err(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["msg"] != "burnout" || rec["flight"] != "A8-3" || rec["t"] != 1.25 || rec["error"] != "boom" {
		t.Fatalf("record = %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})

	l.Info(context.Background(), "dropped")
	l.Warn(context.Background(), "kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("output = %q", out)
	}
}

func TestWithRunLoggerAnnotatesAndStores(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, l := WithRunLogger(context.Background(), base)
	id := RunIDFromContext(ctx)
	if id == "" {
		t.Fatalf("run id not stored on context")
	}
	if _, noop := FromContext(ctx).(noopLogger); noop {
		t.Fatalf("logger not stored on context")
	}

	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Fatalf("EnsureRunID replaced an existing id")
	}

	l.Info(ctx, "start")
	if !strings.Contains(buf.String(), id) {
		t.Fatalf("log line %q missing run_id %s", buf.String(), id)
	}
}

func TestNoopAndNilContext(t *testing.T) {
	Noop().With(String("a", "b")).Error(context.Background(), "ignored")
	var ctx context.Context
	if _, noop := FromContext(ctx).(noopLogger); !noop || RunIDFromContext(ctx) != "" {
		t.Fatalf("nil context should yield the noop logger and no run id")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

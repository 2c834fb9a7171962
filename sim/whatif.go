package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/motorsim/internal/logging"
	"github.com/signalsfoundry/motorsim/internal/observability"
	"github.com/signalsfoundry/motorsim/model"
)

// Run is one what-if flight. Vehicle returns the vehicle to fly; runs only
// read it.
type Run struct {
	Name     string
	Config   model.FlightConfigurationID
	Settings DriverSettings
	Vehicle  func() (*Vehicle, error)
}

// WhatIfOptions tunes RunWhatIf. Parallelism defaults to GOMAXPROCS.
type WhatIfOptions struct {
	Parallelism int
	Logger      logging.Logger
	Metrics     MetricsRecorder
}

// RunWhatIf flies every run concurrently and returns their results in input
// order. The first failing run cancels the others.
func RunWhatIf(ctx context.Context, runs []Run, opts WhatIfOptions) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, run := range runs {
		i, run := i, run
		g.Go(func() error {
			res, err := flyOne(gctx, run, log, opts.Metrics)
			if err != nil {
				return fmt.Errorf("what-if %q: %w", run.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func flyOne(ctx context.Context, run Run, base logging.Logger, metrics MetricsRecorder) (res Result, err error) {
	ctx, span := observability.Tracer().Start(ctx, "sim/what-if",
		trace.WithAttributes(
			attribute.String("run.name", run.Name),
			attribute.String("run.config", run.Config.String()),
		),
	)
	ctx, log := logging.WithRunLogger(ctx, base.With(logging.String("what_if", run.Name)))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("flight aborted: %v", r)
		}
		if metrics != nil {
			metrics.ObserveRun(time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Warn(ctx, "what-if failed", logging.Err(err))
		} else {
			span.SetAttributes(attribute.Float64("flight.apogee_m", res.Apogee))
		}
		span.End()
	}()

	if run.Vehicle == nil {
		return Result{}, fmt.Errorf("%w: no vehicle", ErrInvalidVehicle)
	}
	v, err := run.Vehicle()
	if err != nil {
		return Result{}, err
	}
	if err := v.Validate(); err != nil {
		return Result{}, err
	}

	f := NewFlight(ctx, v, run.Config, log, WithMetricsRecorder(metrics))
	res, err = NewVerticalDriver(f, run.Settings, log).Run(ctx)
	if run.Name != "" {
		res.Name = run.Name
	}
	return res, err
}

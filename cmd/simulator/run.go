package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/motorsim/internal/logging"
	"github.com/signalsfoundry/motorsim/internal/observability"
	"github.com/signalsfoundry/motorsim/model"
	"github.com/signalsfoundry/motorsim/scenario"
	"github.com/signalsfoundry/motorsim/sim"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Fly every configuration and what-if of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			shutdown, err := observability.InitTracing(ctx, cfg.TracingSettings(), log)
			if err != nil {
				return err
			}
			defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

			collector, err := observability.NewSimCollector(prometheus.NewRegistry())
			if err != nil {
				return fmt.Errorf("metrics: %w", err)
			}
			if srv := serveMetrics(cfg.Metrics.Addr, collector, log); srv != nil {
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			spec, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}
			runs, err := spec.Runs(nil, cfg.DriverSettings())
			if err != nil {
				return err
			}
			log.Info(ctx, "flying scenario",
				logging.String("scenario", spec.Name),
				logging.Int("runs", len(runs)),
				logging.Int("parallelism", cfg.Sim.Parallelism),
			)

			results, err := sim.RunWhatIf(ctx, runs, sim.WhatIfOptions{
				Parallelism: cfg.Sim.Parallelism,
				Logger:      log,
				Metrics:     collector,
			})
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeResultsJSON(cmd.OutOrStdout(), results)
			}
			events, _ := cmd.Flags().GetBool("events")
			return writeResults(cmd.OutOrStdout(), results, events)
		},
	}

	cmd.Flags().Bool("json", false, "Output results as JSON")
	cmd.Flags().Bool("events", false, "List the flight events of every run")
	cmd.Flags().Int("parallelism", 0, "Concurrent flights (0 = GOMAXPROCS)")
	cmd.Flags().Float64("time-step", 0, "Stepper time step in seconds")
	cmd.Flags().Float64("max-time", 0, "Flight time limit in seconds")
	cmd.Flags().Float64("rod-length", 0, "Launch rod length in metres")
	cmd.Flags().String("mode", "", "Clock mode: accelerated or realtime")
	cmd.Flags().String("metrics-addr", "", "HTTP address for Prometheus /metrics")
	for key, flag := range map[string]string{
		"sim.parallelism": "parallelism",
		"sim.time_step":   "time-step",
		"sim.max_time":    "max-time",
		"sim.rod_length":  "rod-length",
		"sim.mode":        "mode",
		"metrics.addr":    "metrics-addr",
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
	return cmd
}

func writeResults(w io.Writer, results []sim.Result, events bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tAPOGEE (m)\tAT (s)\tMAX V (m/s)\tMAX A (m/s²)\tFLIGHT (s)\tLANDED")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%.1f\t%.1f\t%.2f\t%v\n",
			r.Name, r.Apogee, r.ApogeeTime, r.MaxVelocity, r.MaxAcceleration, r.FlightTime, r.Landed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !events {
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(w, "\n%s:\n", r.Name)
		for _, ev := range r.Events {
			fmt.Fprintf(w, "  %s\n", ev)
		}
	}
	return nil
}

type jsonEvent struct {
	Type   string  `json:"type"`
	Time   float64 `json:"time"`
	Source string  `json:"source,omitempty"`
}

type jsonResult struct {
	Name            string      `json:"name"`
	Configuration   string      `json:"configuration"`
	Apogee          float64     `json:"apogee_m"`
	ApogeeTime      float64     `json:"apogee_time_s"`
	MaxVelocity     float64     `json:"max_velocity_mps"`
	MaxAcceleration float64     `json:"max_acceleration_mps2"`
	FlightTime      float64     `json:"flight_time_s"`
	Landed          bool        `json:"landed"`
	Events          []jsonEvent `json:"events"`
}

func writeResultsJSON(w io.Writer, results []sim.Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{
			Name:            r.Name,
			Configuration:   r.Config.String(),
			Apogee:          r.Apogee,
			ApogeeTime:      r.ApogeeTime,
			MaxVelocity:     r.MaxVelocity,
			MaxAcceleration: r.MaxAcceleration,
			FlightTime:      r.FlightTime,
			Landed:          r.Landed,
		}
		for _, ev := range r.Events {
			jr.Events = append(jr.Events, jsonEvent{Type: ev.Type.String(), Time: ev.Time, Source: sourceID(ev)})
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func sourceID(ev model.FlightEvent) string {
	if ev.Source == nil {
		return ""
	}
	return ev.Source.ID()
}

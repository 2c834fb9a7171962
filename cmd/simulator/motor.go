package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/motorsim/motor"
	"github.com/signalsfoundry/motorsim/scenario"
)

func newMotorCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "motor <scenario.yaml>",
		Short: "Print the thrust curve statistics of a scenario's motors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := setup(cmd, v); err != nil {
				return err
			}
			spec, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}
			sc, err := spec.Build(nil)
			if err != nil {
				return err
			}
			return writeMotors(cmd.OutOrStdout(), sc.Motors)
		},
	}
}

func writeMotors(w io.Writer, motors map[string]*motor.ThrustCurveMotor) error {
	ids := make([]string, 0, len(motors))
	for id := range motors {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := motors[a].Compare(motors[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMOTOR\tCLASS\tIMPULSE (Ns)\tAVG (N)\tMAX (N)\tBURN (s)\tMASS (g)\tPROP (g)\tDELAYS\tDIGEST")
	for _, id := range ids {
		m := motors[id]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.2f\t%.0f\t%.0f\t%s\t%.8s\n",
			id,
			m.Manufacturer().SimpleName()+" "+m.Designation(),
			m.ImpulseClass(),
			m.TotalImpulse(),
			m.AverageThrustEstimate(),
			m.MaxThrust(),
			m.BurnTimeEstimate(),
			m.LaunchMass()*1000,
			m.PropellantMass()*1000,
			delayList(m.StandardDelays()),
			m.Digest(),
		)
	}
	return tw.Flush()
}

func delayList(delays []float64) string {
	parts := make([]string, len(delays))
	for i, d := range delays {
		parts[i] = motor.DelayString(d, motor.PluggedSymbol)
	}
	return strings.Join(parts, "-")
}

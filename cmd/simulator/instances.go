package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/motorsim/instance"
	"github.com/signalsfoundry/motorsim/scenario"
)

func newInstancesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "instances <scenario.yaml>",
		Short: "Print every placed instance of a scenario's geometry",
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
			m := sc.InstanceMap()
			if err := m.Validate(); err != nil {
				return fmt.Errorf("instance map: %w", err)
			}
			return writeInstances(cmd.OutOrStdout(), m)
		},
	}
}

func writeInstances(w io.Writer, m *instance.InstanceMap) error {
	for _, c := range m.Components() {
		pattern := "single"
		if inst, ok := c.(instance.Instanceable); ok {
			pattern = inst.PatternName()
		}
		if _, err := fmt.Fprintf(w, "%s (%s, stage %d)\n", c.ID(), pattern, c.StageNumber()); err != nil {
			return err
		}
		for _, ctx := range m.Contexts(c) {
			if _, err := fmt.Fprintf(w, "  %s\n", ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

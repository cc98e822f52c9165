package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/pipeline"
)

// probesCommand creates the probes command listing simulation save vectors.
func (c *CLI) probesCommand() *cobra.Command {
	var (
		file      string
		noCache   bool
		simulator string
	)

	cmd := &cobra.Command{
		Use:   "probes [schematic]",
		Short: "List the simulation probe vectors of a schematic",
		Long: `List the simulation probe vectors of a schematic.

Prints one vector per line: every named net plus the per-device internal
vectors (gm, id, ...) declared by the instantiated models, with hierarchical
device paths for sub-circuit instances. The output is suitable for a
simulator .save directive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, file, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			vectors, err := runner.Vectors(ctx, pipeline.Options{
				Schematic: args[0],
				Simulator: simulator,
			})
			if err != nil {
				return err
			}
			for _, v := range vectors {
				fmt.Println(v)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "F", "", "read documents from a local JSON schematic file instead of the store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&simulator, "simulator", pipeline.DefaultSimulator, "target simulator template set")

	return cmd
}

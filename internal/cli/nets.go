package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/pipeline"
)

// netsCommand creates the nets command for inspecting extracted connectivity.
func (c *CLI) netsCommand() *cobra.Command {
	var (
		file    string
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "nets [schematic]",
		Short: "Extract and print the nets of a schematic",
		Long: `Extract and print the nets of a schematic.

The nets command runs net extraction on the top-level schematic group and
prints the result as JSON: device ID to port name to net name. Useful for
debugging connectivity before generating a full deck.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, file, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			nets, err := runner.Nets(ctx, pipeline.Options{Schematic: args[0], Refresh: refresh})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(nets, "", "  ")
			if err != nil {
				return fmt.Errorf("encode nets: %w", err)
			}
			data = append(data, '\n')

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Extracted nets of %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&file, "file", "F", "", "read documents from a local JSON schematic file instead of the store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch documents, bypassing the cache")

	return cmd
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/pipeline"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// netlistCommand creates the netlist command, the main entry point: resolve a
// schematic, extract its nets, and print the SPICE deck.
func (c *CLI) netlistCommand() *cobra.Command {
	var (
		file    string
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "netlist [schematic]",
		Short: "Generate a SPICE deck from a schematic",
		Long: `Generate a SPICE deck from a schematic.

The netlist command fetches the named schematic and every sub-circuit it
instantiates from the document store, extracts electrical connectivity from
the device geometry, and renders a simulator-ready SPICE deck.

Templates referencing remote model libraries produce include cards pointing
into the local include cache; pass --fetch to download them immediately.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.Schematic = args[0]
			if opts.IncludeDir == "" {
				opts.IncludeDir = includeDir()
			}

			runner, err := c.newRunner(ctx, file, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Netlisting %s...", opts.Schematic))
			spinner.Start()

			res, err := runner.Execute(ctx, opts)
			if err != nil {
				spinner.StopWithError("Netlisting failed")
				return err
			}
			spinner.Stop()

			if output == "" {
				fmt.Print(res.Spice.Text)
			} else {
				if err := os.WriteFile(output, []byte(res.Spice.Text), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Netlisted %s", opts.Schematic)
				printFile(output)
			}
			printStats(res.Stats.GroupCount, countDevices(res.Schematic), res.CacheInfo.EmitHit)

			if !opts.FetchIncludes && res.Stats.PendingCount > 0 {
				printWarning("%d include file(s) not downloaded yet", res.Stats.PendingCount)
				printNextStep("Download them", fmt.Sprintf("spicenet netlist %s --fetch", opts.Schematic))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&file, "file", "F", "", "read documents from a local JSON schematic file instead of the store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "refetch documents, bypassing the cache")

	cmd.Flags().StringVar(&opts.Corner, "corner", pipeline.DefaultCorner, "process corner substituted into templates")
	cmd.Flags().StringVar(&opts.Simulator, "simulator", pipeline.DefaultSimulator, "target simulator template set")
	cmd.Flags().StringVar(&opts.Extra, "extra", "", "analysis cards appended before .end")
	cmd.Flags().StringVar(&opts.IncludeDir, "include-dir", "", "directory for downloaded include files")
	cmd.Flags().BoolVar(&opts.FetchIncludes, "fetch", false, "download pending include files")

	return cmd
}

// countDevices counts the instantiable documents across all resolved groups.
func countDevices(schem *schematic.Schematic) int {
	if schem == nil {
		return 0
	}
	n := 0
	for _, docs := range schem.Groups {
		for _, doc := range docs {
			switch doc.Kind() {
			case schematic.DeviceWire, schematic.DevicePort, schematic.DeviceText:
			default:
				n++
			}
		}
	}
	return n
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/netlist"
	"github.com/schemtools/spicenet/pkg/pipeline"
	"github.com/schemtools/spicenet/pkg/render/netgraph"
)

// graphCommand creates the graph command for rendering schematic connectivity.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		file     string
		format   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <schematic>",
		Short: "Render schematic connectivity as a graph",
		Long: `Render schematic connectivity as a graph.

Extracts the nets of the top-level schematic and emits a device/net graph.
Supported formats: dot, svg, pdf, png. The pdf and png formats require
rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			runner, err := c.newRunner(ctx, file, noCache)
			if err != nil {
				return err
			}
			defer runner.Close(ctx)

			opts := pipeline.Options{Schematic: name, Logger: c.Logger}
			schem, err := runner.Resolve(ctx, opts)
			if err != nil {
				return err
			}
			docs, ok := schem.Groups[name]
			if !ok {
				return errors.New(errors.ErrCodeSchematicNotFound, "schematic %s has no documents", name)
			}
			nets, err := netlist.Extract(docs, schem.Models)
			if err != nil {
				return err
			}

			dot := netgraph.ToDOT(docs, nets, netgraph.Options{Detailed: detailed})

			format = strings.ToLower(format)
			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = netgraph.RenderSVG(dot)
			case "pdf":
				data, err = netgraph.RenderPDF(dot)
			case "png":
				data, err = netgraph.RenderPNG(dot, 2.0)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg, pdf, or png)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				if format == "dot" || format == "svg" {
					fmt.Fprint(cmd.OutOrStdout(), string(data))
					return nil
				}
				output = name + "." + format
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			abs, _ := filepath.Abs(output)
			printSuccess("Graph written")
			printFile(abs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout for dot/svg)")
	cmd.Flags().StringVarP(&file, "file", "F", "", "read the schematic from a local JSON file instead of the store")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include device type and model in node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache")

	return cmd
}

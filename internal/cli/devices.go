package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/pipeline"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// devicesCommand creates the devices command listing a schematic's instances.
func (c *CLI) devicesCommand() *cobra.Command {
	var (
		file    string
		noCache bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "devices [schematic]",
		Short: "List the devices of a schematic",
		Long: `List the devices of a schematic.

Shows every instantiable document in the top-level group with its type,
model reference, and grid position. Pass --all to include the documents of
resolved sub-circuit groups as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, file, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			schem, err := runner.Resolve(ctx, pipeline.Options{Schematic: args[0]})
			if err != nil {
				return err
			}

			groups := []string{args[0]}
			if all {
				groups = groups[:0]
				for name := range schem.Groups {
					groups = append(groups, name)
				}
				sort.Strings(groups)
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			var rows [][]string
			for _, group := range groups {
				for _, doc := range sortedLevel(schem.Groups[group]) {
					switch doc.Kind() {
					case schematic.DeviceWire, schematic.DevicePort, schematic.DeviceText:
						continue
					}
					model := schematic.BareModel(doc.Model)
					if model == "" {
						model = "—"
					}
					rows = append(rows, []string{
						doc.ID, doc.Type, model,
						fmt.Sprintf("(%g, %g)", doc.X, doc.Y),
					})
				}
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Device", "Type", "Model", "Position").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					return lipgloss.NewStyle()
				})
			fmt.Println(t.Render())
			printDetail("%d device(s)", len(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "F", "", "read documents from a local JSON schematic file instead of the store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&all, "all", false, "include devices of resolved sub-circuits")

	return cmd
}

// sortedLevel returns a group's documents in stable ID order.
func sortedLevel(docs schematic.Level) []*schematic.Document {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*schematic.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, docs[id])
	}
	return out
}

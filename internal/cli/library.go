package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/schematic"
)

// libraryCommand creates the library command for browsing the model library.
func (c *CLI) libraryCommand() *cobra.Command {
	var (
		file        string
		category    []string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "library [filter]",
		Short: "Browse the model library",
		Long: `Browse the model library.

Searches models by case-insensitive name substring and category path. With
--interactive the results open in a scrollable browser; selecting a model
prints its details.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}

			st, err := c.newStore(ctx, file)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close(ctx)

			models, err := st.Library(ctx, filter, category)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				printInfo("No models match")
				return nil
			}

			if !interactive {
				for _, m := range models {
					printKeyValue(m.Name, describeModel(m))
				}
				printDetail("%d model(s)", len(models))
				return nil
			}

			prog := tea.NewProgram(NewModelListModel(models))
			final, err := prog.Run()
			if err != nil {
				return fmt.Errorf("library browser: %w", err)
			}
			if m, ok := final.(ModelListModel); ok && m.Selected != nil {
				printModel(m.Selected)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "F", "", "read models from a local JSON schematic file instead of the store")
	cmd.Flags().StringSliceVar(&category, "category", nil, "category path filter (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open an interactive browser")

	return cmd
}

// describeModel summarizes a model on one line.
func describeModel(m *schematic.Model) string {
	kind := "primitive"
	if m.IsSchematic() {
		kind = "schematic"
	}
	parts := []string{kind}
	if ports := m.PortOrder(); len(ports) > 0 {
		parts = append(parts, strings.Join(ports, " "))
	}
	if len(m.Category) > 0 {
		parts = append(parts, strings.Join(m.Category, "/"))
	}
	return strings.Join(parts, " · ")
}

// printModel prints a model's details after interactive selection.
func printModel(m *schematic.Model) {
	printSuccess("%s", m.Name)
	printKeyValue("ID", m.ID)
	if m.Type != "" {
		printKeyValue("Type", m.Type)
	}
	if len(m.Category) > 0 {
		printKeyValue("Category", strings.Join(m.Category, "/"))
	}
	if ports := m.PortOrder(); len(ports) > 0 {
		printKeyValue("Ports", strings.Join(ports, " "))
	}
	for lang, templates := range m.Templates {
		names := make([]string, len(templates))
		for i, t := range templates {
			names[i] = t.Name
		}
		printKeyValue("Templates", lang+": "+strings.Join(names, ", "))
	}
}

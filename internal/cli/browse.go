package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/layout"
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "browse [dataset|url]",
		Short: "Browse a machine map and toggle station categories",
		Long: `Browse a machine map and toggle station categories.

Stations are listed by depth and rank. Enter cycles the selected station
through normal, bypass and not-allowed; s saves the dataset (to the input
file, or to --output) and q quits without saving.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(flags)
			opts.Source = args[0]
			if output == "" && errors.IsURL(args[0]) {
				output = outputBase(args[0]) + ".json"
			}
			if output == "" {
				output = args[0]
			}
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			return c.runBrowse(cmd.Context(), args[0], opts.LayoutOptions(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file written on save (default: the input file)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, opts layout.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ds, _, err := runner.Loader.Dataset(ctx, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	p := tea.NewProgram(NewStationListModel(ds, opts), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(StationListModel)
	if !ok || !fm.Save {
		if ok && fm.Dirty {
			printWarning("Changes discarded")
		}
		return nil
	}
	if err := graph.WriteDatasetFile(fm.Dataset, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Saved %d stations", len(fm.Dataset.Nodes))
	printFile(output)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/station"
)

type editFlags struct {
	id       int
	name     string
	station  string
	category string
	output   string
}

// editCommand creates the edit command, which changes one node of a dataset.
func (c *CLI) editCommand() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "edit [dataset]",
		Short: "Rename a station or change its category",
		Long: `Rename a station or change its category.

Every record with the given id gets the new name and station number, and the
station's key (its machine id, or its id when the machine id is empty) is
moved to the bypass or not-allowed list matching the category. Fields whose
flag is not given keep their current value.

The dataset is rewritten in place unless --output is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.id, "id", 0, "id of the station to edit (required)")
	cmd.Flags().StringVar(&flags.name, "name", "", "new station name")
	cmd.Flags().StringVar(&flags.station, "station", "", "new station number")
	cmd.Flags().StringVar(&flags.category, "category", "", "new category: normal, bypass, notAllowed")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: overwrite input)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, input string, flags editFlags) error {
	ds, err := graph.ReadDatasetFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	node, ok := station.NewIndex(ds.Nodes).Lookup(ds.Nodes, flags.id)
	if !ok {
		return fmt.Errorf("%w: %d", station.ErrNodeNotFound, flags.id)
	}

	fields := station.Fields{Name: node.Name, StationNumber: node.StationNumber}
	if cmd.Flags().Changed("name") {
		fields.Name = flags.name
	}
	if cmd.Flags().Changed("station") {
		fields.StationNumber = flags.station
	}
	category := ds.Category(node)
	if cmd.Flags().Changed("category") {
		if category, err = station.ParseCategory(flags.category); err != nil {
			return err
		}
	}

	edited, err := ds.Edit(flags.id, fields, category)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = input
	}
	if err := graph.WriteDatasetFile(edited, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Edited station %d", flags.id)
	printKeyValue("Name", fields.Name)
	printKeyValue("Station", fields.StationNumber)
	printKeyValue("Category", string(category))
	printFile(output)
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stationmap/pkg/graph"
	"github.com/matzehuels/stationmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing machine map layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset|url]",
		Short: "Compute the layout of a machine map",
		Long: `Compute the layout of a machine map.

The layout command reads a machine map (JSON or YAML, local file or http(s)
URL), assigns every station a depth and a rank within its depth, classifies
it against the bypass and not-allowed lists, and writes the result as
<input>.layout.json. The output can be rendered with 'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(flags)
			opts.Source = args[0]
			return c.runLayout(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the dataset, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ds, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.Source, err)
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d stations...", len(ds.Nodes)))
	spinner.Start()

	res, cacheHit, err := runner.LayoutWithCacheInfo(ctx, ds, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d stations", res.Stats.Nodes))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = outputBase(opts.Source) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats.Nodes, res.Stats.Edges, cacheHit)
	if res.Stats.Crossings > 0 {
		printDetail("%d edge crossings between adjacent rows", res.Stats.Crossings)
	}
	printLayoutWarnings(res.Stats.MissingRefs, res.Stats.CycleEdges, res.Stats.Disconnected)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

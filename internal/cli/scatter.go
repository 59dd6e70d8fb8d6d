package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stationmap/pkg/cycles"
	"github.com/matzehuels/stationmap/pkg/errors"
	"github.com/matzehuels/stationmap/pkg/source"
)

type scatterFlags struct {
	prediction string
	changelog  string
	machine    string
	dataURL    string
	tool       string
	output     string
}

// scatterCommand creates the scatter command, which prints one tool's cycle
// measurements as chart-ready JSON.
func (c *CLI) scatterCommand() *cobra.Command {
	var flags scatterFlags

	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "Build the cycle scatter chart of one tool",
		Long: `Build the cycle scatter chart of one tool.

Reads a prediction document and an optional changelog (files or URLs), or
fetches both for --machine from the dashboard data root, and writes the
tool's points, threshold, ideal signal, axis ranges and point colors as JSON.

Without --tool the tools present in the prediction document are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScatter(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.prediction, "prediction", "", "prediction_data.json file or URL")
	cmd.Flags().StringVar(&flags.changelog, "changelog", "", "changelog.json file or URL")
	cmd.Flags().StringVar(&flags.machine, "machine", "", "machine id to fetch from the data root")
	cmd.Flags().StringVar(&flags.dataURL, "data-url", "", "dashboard data root (default: server.data_url from config)")
	cmd.Flags().StringVar(&flags.tool, "tool", "", "measurement tool")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("prediction", "machine")

	return cmd
}

func (c *CLI) runScatter(ctx context.Context, flags scatterFlags) error {
	if flags.machine != "" {
		root := flags.dataURL
		if root == "" {
			root = c.cfg.Server.DataURL
		}
		paths, err := source.NewPaths(root)
		if err != nil {
			return fmt.Errorf("data root: %w", err)
		}
		flags.prediction = paths.Prediction(flags.machine)
		flags.changelog = paths.Changelog(flags.machine)
	}
	if flags.prediction == "" {
		return errors.New(errors.ErrCodeInvalidInput, "one of --prediction or --machine is required")
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		prediction cycles.Prediction
		changelog  *cycles.Changelog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		prediction, err = runner.Loader.Prediction(gctx, flags.prediction)
		return err
	})
	if flags.changelog != "" {
		g.Go(func() (err error) {
			changelog, err = runner.Loader.Changelog(gctx, flags.changelog)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if flags.tool == "" {
		tools := cycles.Tools(prediction)
		if len(tools) == 0 {
			printWarning("No tool readings in %s", flags.prediction)
			return nil
		}
		printInfo("Tools in %s", flags.prediction)
		for _, t := range tools {
			printDetail("%s", t)
		}
		printNewline()
		printNextStep("Chart one", appName+" scatter --prediction "+flags.prediction+" --tool "+tools[0])
		return nil
	}
	if err := errors.ValidateToolName(flags.tool); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cycles.BuildChart(prediction, changelog, flags.tool), "", "  ")
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	data = append(data, '\n')

	if flags.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flags.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	printSuccess("Chart written")
	printFile(flags.output)
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/layoutstore"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// settleCommand creates the settle command.
func (c *CLI) settleCommand() *cobra.Command {
	var (
		flags    chartFlags
		free     string
		kind     string
		from     string
		maxTicks int
	)

	cmd := &cobra.Command{
		Use:   "settle [dataset]",
		Short: "Let the force simulation re-place some nodes",
		Long: `Let the force simulation re-place some nodes.

The nodes named by --free (or every node of --kind) are released to the
force simulation; all other nodes stay pinned at their current position.
The settled layout is saved under --key, so later layout and render runs
start from it.

--from starts from a layout file instead of the saved layout: either a
record ({"positions": ...}) or a document written by "layout".`,
		Example: `  safetymap settle data.json --free technique-data-filtering
  safetymap settle data.json --kind provider --max-ticks 300`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.chartOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-ticks") {
				if maxTicks <= 0 {
					return errors.New(errors.ErrCodeInvalidInput, "--max-ticks must be positive")
				}
				opts.Config.MaxTicks = maxTicks
			}
			var current *layout.Record
			if from != "" {
				if current, err = readRecord(from); err != nil {
					return err
				}
			}
			return c.runSettle(cmd.Context(), opts, splitList(free), chart.NodeKind(kind), current)
		},
	}

	flags.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&free, "free", "", "comma-separated ids of the nodes to release")
	fs.StringVar(&kind, "kind", "", "release every node of a kind: provider, category, technique")
	fs.StringVar(&from, "from", "", "start from a layout file instead of the saved layout")
	fs.IntVar(&maxTicks, "max-ticks", 0, "simulation tick budget (default from config)")
	completeValues(cmd, "kind", string(chart.KindProvider), string(chart.KindCategory), string(chart.KindTechnique))

	return cmd
}

func (c *CLI) runSettle(ctx context.Context, opts pipeline.Options, free []string, kind chart.NodeKind, current *layout.Record) error {
	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	g, _, _, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}

	if kind != "" {
		switch kind {
		case chart.KindProvider, chart.KindCategory, chart.KindTechnique:
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown node kind %q", kind)
		}
		for _, n := range g.NodesOfKind(kind) {
			free = append(free, n.ID)
		}
	}

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Settling %d nodes...", len(free)))
	spinner.Start()
	start := time.Now()
	rl, err := runner.Settle(ctx, g, current, free, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Settle cancelled, nothing saved")
		} else {
			spinner.StopWithError("Settle failed")
		}
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Settled %d nodes in %s", len(free), time.Since(start).Round(time.Millisecond)))

	printKeyValue("Saved as", opts.StoreKey)
	printLayoutStats(rl)
	printNewline()
	printNextStep("Render", appName+" render "+opts.DatasetPath)
	return nil
}

// readRecord reads a layout record from path. It accepts a bare record or a
// document as written by "layout" and "render -f json".
func readRecord(path string) (*layout.Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc struct {
		Layout *layout.Record `json:"layout"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout file %s", path)
	}
	rec := doc.Layout
	if rec == nil {
		rec = &layout.Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout file %s", path)
		}
	}
	if err := layoutstore.Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// chartFlags are the flags shared by every command that builds and lays out
// the chart. Only flags the user set override the config file.
type chartFlags struct {
	providers string
	refresh   bool
	layout    string
	width     float64
	height    float64
	key       string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.providers, "providers", "", "comma-separated provider filter (empty selects none; default all)")
	fs.BoolVar(&f.refresh, "refresh", false, "rebuild the chart even if cached")
	fs.StringVarP(&f.layout, "layout", "l", pipeline.DefaultLayout, "layout: "+strings.Join(layout.Names(), ", "))
	fs.Float64Var(&f.width, "width", pipeline.DefaultWidth, "canvas width")
	fs.Float64Var(&f.height, "height", pipeline.DefaultHeight, "canvas height")
	fs.StringVar(&f.key, "key", pipeline.DefaultStoreKey, "name the layout is saved under")
	completeValues(cmd, "layout", layout.Names()...)
}

func (f *chartFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("providers") {
		opts.Providers = append([]string{}, splitList(f.providers)...)
	}
	if f.refresh {
		opts.Refresh = true
	}
	if fs.Changed("layout") {
		opts.Layout = f.layout
	}
	if fs.Changed("width") {
		opts.Width = f.width
	}
	if fs.Changed("height") {
		opts.Height = f.height
	}
	if fs.Changed("key") {
		opts.StoreKey = f.key
	}
}

// chartOptions combines config, dataset argument and flags.
func (c *CLI) chartOptions(cmd *cobra.Command, args []string, flags *chartFlags) (pipeline.Options, error) {
	opts, err := c.baseOptions(args)
	if err != nil {
		return opts, err
	}
	flags.apply(cmd, &opts)
	if err := opts.ValidateForBuild(); err != nil {
		return opts, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// build
// =============================================================================

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags  chartFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "build [dataset]",
		Short: "Build the unified chart from a dataset",
		Long: `Build the unified chart from a dataset.

The dataset is a JSON, YAML or TOML file, or an http(s) URL. The chart graph
(nodes, edges, category groups and providers) is written as JSON to the
output file, or to stdout with -o -.

Built charts are cached by dataset content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.chartOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout; default: print summary only)")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, output string) error {
	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	prog := newProgress(c.Logger)
	g, hash, hit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	prog.done("built chart", "hash", shortHash(hash))

	if output != "" {
		if err := c.writeJSON(output, g); err != nil {
			return err
		}
	}
	if output == "-" {
		return nil
	}

	printSuccess("Chart built")
	if output != "" {
		printFile(output)
	}
	printStats(len(g.Nodes), len(g.Edges), len(g.Providers), hit)
	orphans := 0
	for _, n := range g.Nodes {
		if n.IsOrphan {
			orphans++
		}
	}
	if orphans > 0 {
		printDetail("%d techniques without evidence", orphans)
	}
	printNewline()
	printNextStep("Lay out", appName+" layout "+opts.DatasetPath)
	return nil
}

// =============================================================================
// layout
// =============================================================================

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  chartFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Compute the chart layout, keeping the saved arrangement",
		Long: `Compute the chart layout, keeping the saved arrangement.

The engine (balanced, sequential or force) places every node; the layout
saved under --key is then laid over it. Saved positions of nodes that no
longer exist are pruned, and new nodes keep their default position.

The output is a JSON document with the chart and the reconciled layout,
the same shape "render -f json" writes and the HTTP API serves.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.chartOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout; default: <dataset>.layout.json)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string) error {
	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	g, hit, rl, err := c.chartAndLayout(ctx, runner, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase(opts.DatasetPath) + ".layout.json"
	}
	doc := pipeline.Document{Graph: g, Layout: rl, Width: opts.Width, Height: opts.Height}
	if err := c.writeJSON(output, doc); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(g.Nodes), len(g.Edges), len(g.Providers), hit)
	printLayoutStats(rl)
	printNewline()
	printNextStep("Render", appName+" render "+opts.DatasetPath)
	return nil
}

// chartAndLayout builds the chart and reconciles its layout.
func (c *CLI) chartAndLayout(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (g *chart.Graph, hit bool, rl layout.Reconciled, err error) {
	g, _, hit, err = runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, false, rl, fmt.Errorf("build chart: %w", err)
	}
	prog := newProgress(c.Logger)
	_, rl, err = runner.Layout(ctx, g, opts)
	if err != nil {
		return nil, false, rl, fmt.Errorf("compute layout: %w", err)
	}
	prog.done("computed layout", "layout", rl.LayoutName, "source", rl.Source)
	return g, hit, rl, nil
}

// =============================================================================
// Output helpers
// =============================================================================

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// outputBase derives a base output path from a dataset path or URL.
func outputBase(dataset string) string {
	base := filepath.Base(dataset)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return appName
	}
	if strings.Contains(dataset, "://") {
		return base
	}
	return filepath.Join(filepath.Dir(dataset), base)
}

// writeJSON writes v as indented JSON to path, or to the CLI's output when
// path is "-".
func (c *CLI) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

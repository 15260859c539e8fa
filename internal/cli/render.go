package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/pipeline"
	"github.com/matzehuels/safetymap/pkg/render"
)

// renderFlags holds the render-only flags; chart flags are shared.
type renderFlags struct {
	formats  string
	output   string
	renderer string
	title    string
	pngScale float64
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  chartFlags
		rflags renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render the chart with its saved layout",
		Long: `Render the chart with its saved layout.

Formats: svg (default), png, pdf, json, dot. PNG and PDF are converted from
the SVG with rsvg-convert (librsvg). The direct renderer draws at the
reconciled positions; the graphviz renderer pins the same positions and
renders with neato.

With one format, -o names the output file. With several, -o is the base
path and each artifact gets its format as extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.chartOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			if err := rflags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, rflags.output)
		},
	}

	flags.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&rflags.formats, "format", "f", pipeline.FormatSVG, "output formats (comma-separated): svg, png, pdf, json, dot")
	fs.StringVarP(&rflags.output, "output", "o", "", "output file or base path (default: derived from the dataset)")
	fs.StringVar(&rflags.renderer, "renderer", pipeline.DefaultRenderer, "SVG renderer: direct, graphviz")
	fs.StringVar(&rflags.title, "title", "", "chart title")
	fs.Float64Var(&rflags.pngScale, "png-scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	completeValues(cmd, "format", pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON, pipeline.FormatDOT)
	completeValues(cmd, "renderer", pipeline.RendererDirect, pipeline.RendererGraphviz)

	return cmd
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	fs := cmd.Flags()
	opts.Formats = parseFormats(f.formats)
	if fs.Changed("renderer") {
		opts.Renderer = f.renderer
	}
	if fs.Changed("title") {
		opts.Title = f.title
	}
	if fs.Changed("png-scale") {
		opts.PNGScale = f.pngScale
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	if f.output == "-" && len(opts.Formats) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "cannot write %d formats to stdout", len(opts.Formats))
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string) error {
	if needsConverter(opts.Formats) && !render.Available() {
		printWarning("rsvg-convert not found; png and pdf need librsvg")
		return errors.New(errors.ErrCodeUnsupported, "png and pdf export require rsvg-convert")
	}

	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	g, _, rl, err := c.chartAndLayout(ctx, runner, opts)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, os.Stderr, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	if output != "-" {
		spinner.Start()
	}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, g, rl, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Render cancelled")
		} else {
			spinner.StopWithError("Render failed")
		}
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if output == "-" {
		_, err := c.out.Write(artifacts[opts.Formats[0]])
		return err
	}

	paths := artifactPaths(opts.DatasetPath, output, opts.Formats)
	formats := make([]string, 0, len(artifacts))
	for format := range artifacts {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	printSuccess("Rendered %s", strings.Join(formats, ", "))
	for _, format := range formats {
		path := paths[format]
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	if hit {
		printDetail("from cache")
	}
	printLayoutStats(rl)
	return nil
}

// artifactPaths maps each format to its output file. A single format with
// an explicit output uses it as is; otherwise output (or the dataset's base
// name) gets the format as extension.
func artifactPaths(dataset, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = outputBase(dataset)
	}
	for _, format := range formats {
		paths[format] = base + "." + format
	}
	return paths
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		if f == pipeline.FormatPNG || f == pipeline.FormatPDF {
			return true
		}
	}
	return false
}

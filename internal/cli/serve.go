package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetymap/internal/server"
	"github.com/matzehuels/safetymap/pkg/observability"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags chartFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Serve the chart and its saved layout over HTTP",
		Long: `Serve the chart and its saved layout over HTTP.

Routes:
  GET    /healthz              liveness
  GET    /api/chart            chart graph and reconciled layout (JSON)
  GET    /api/chart.svg        rendered chart
  GET    /api/layout           saved layout record
  PUT    /api/layout           save a layout record
  DELETE /api/layout           reset to the default layout
  POST   /api/layout/settle    release nodes to the force simulation

Query parameters (providers, layout, key, renderer, width, height) override
the flags per request. Use --store redis or mongo to share saved layouts
between instances.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.chartOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && c.config.Server.Addr != "" {
				addr = c.config.Server.Addr
			}
			return c.runServe(cmd.Context(), opts, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, addr string) error {
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	// Fail on a broken dataset before accepting requests.
	g, _, hit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	printSuccess("Chart ready")
	printStats(len(g.Nodes), len(g.Edges), len(g.Providers), hit)
	printKeyValue("Listening", "http://"+addr)
	printKeyValue("Store", backendName(c.config.Store.Backend))
	printNewline()

	return server.New(runner, opts, c.Logger).ListenAndServe(ctx, addr)
}

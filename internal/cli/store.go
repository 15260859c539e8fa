package cli

import (
	"context"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safetymap/pkg/chart"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// storeCommand creates the saved layout management command.
func (c *CLI) storeCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and manage saved layouts",
		Long: `Inspect and manage saved layouts.

Layouts are saved in the configured store (--store) under a key, by default
"` + pipeline.DefaultStoreKey + `". With --workspace every key is prefixed,
so several teams can share one redis or mongo store.`,
	}
	cmd.PersistentFlags().StringVar(&key, "key", "", "saved layout key (default from config, else "+pipeline.DefaultStoreKey+")")

	resolve := func() (string, error) {
		k := key
		if k == "" {
			k = c.config.Store.Key
		}
		if k == "" {
			k = pipeline.DefaultStoreKey
		}
		return k, errors.ValidateStoreKey(k)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolve()
			if err != nil {
				return err
			}
			return c.runStoreShow(cmd.Context(), k)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the saved layout so the default is used again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolve()
			if err != nil {
				return err
			}
			return c.runStoreReset(cmd.Context(), k)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export [file]",
		Short: "Write the saved layout record as JSON (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolve()
			if err != nil {
				return err
			}
			output := "-"
			if len(args) > 0 {
				output = args[0]
			}
			return c.runStoreExport(cmd.Context(), k, output)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Save a layout record or layout document from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolve()
			if err != nil {
				return err
			}
			return c.runStoreImport(cmd.Context(), k, args[0])
		},
	})

	return cmd
}

func (c *CLI) loadRecord(ctx context.Context, key string) (*layout.Record, error) {
	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer closeRunner()
	return runner.Store.Load(ctx, key)
}

func (c *CLI) runStoreShow(ctx context.Context, key string) error {
	rec, err := c.loadRecord(ctx, key)
	if errors.Is(err, errors.ErrCodeLayoutNotFound) {
		printInfo("No layout saved under %s", key)
		return nil
	}
	if err != nil {
		return err
	}

	printKeyValue("Key", key)
	printKeyValue("Layout", rec.LayoutName)
	printKeyValue("Revision", rec.Revision)
	if !rec.SavedAt.IsZero() {
		printKeyValue("Saved", rec.SavedAt.Local().Format("2006-01-02 15:04:05"))
	}

	counts := map[string]int{}
	for id := range rec.Positions {
		counts[string(chart.KindOf(id))]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	printKeyValue("Positions", strconv.Itoa(len(rec.Positions)))
	for _, k := range kinds {
		printDetail("%d %s", counts[k], k)
	}
	if len(rec.LabelAnchors) > 0 {
		printKeyValue("Label anchors", strconv.Itoa(len(rec.LabelAnchors)))
	}
	return nil
}

func (c *CLI) runStoreReset(ctx context.Context, key string) error {
	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	if err := runner.ResetLayout(ctx, pipeline.Options{StoreKey: key}); err != nil {
		return err
	}
	printSuccess("Reset layout %s", key)
	return nil
}

func (c *CLI) runStoreExport(ctx context.Context, key, output string) error {
	rec, err := c.loadRecord(ctx, key)
	if err != nil {
		return err
	}
	if err := c.writeJSON(output, rec); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Exported layout %s", key)
		printFile(output)
	}
	return nil
}

func (c *CLI) runStoreImport(ctx context.Context, key, path string) error {
	rec, err := readRecord(path)
	if err != nil {
		return err
	}

	runner, closeRunner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	if err := runner.Store.Save(ctx, key, rec); err != nil {
		return err
	}
	printSuccess("Imported %d positions as %s", len(rec.Positions), key)
	printDetail("Revision %s", rec.Revision)
	return nil
}

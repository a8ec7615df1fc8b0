package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salesdash/domain/core"
	"salesdash/domain/schema"
	"salesdash/internal/config"
	"salesdash/internal/container"
	"salesdash/internal/testkit"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the known dashboard variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := config.LoadCatalog(cfg)
			if err != nil {
				return err
			}

			active := make(map[string]bool)
			for _, name := range cfg.Variants.Active {
				active[name] = true
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFEATURES\tGUARD\tACTIVE\tMODEL")
			for _, name := range catalog.Names() {
				v, err := catalog.Get(core.VariantName(name))
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%t\t%s\n", v.Name, v.Schema.Width(), v.Guard, active[name], v.ModelPath)
			}
			return tw.Flush()
		},
	}
}

func newValidateCmd() *cobra.Command {
	var variants []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load every active variant and check its schema against its model",
		Long: `Run the same bootstrap as the server: load each model artifact and dataset,
check that the feature schema width equals the model input width and render the
insight charts. Exits non-zero on the first failure.

Example: salesdash-cli validate --variants gb21,rf15 --model-dir ./models`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), variants...)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			out := cmd.OutOrStdout()
			for _, d := range c.Dashboards() {
				info := d.Model.Info()
				fmt.Fprintf(out, "✅ %s: %d features, %s model (%s), %d rows, %d charts",
					d.Variant.Name, d.Variant.Schema.Width(), info.Kind, info.Path, d.Dataset.Len(), len(d.Gallery.Charts))
				if d.Gallery.Err != nil {
					fmt.Fprintf(out, ", insight panel stopped at %s: %v", d.Gallery.Failed, d.Gallery.Err)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&variants, "variants", nil, "variants to validate (default: VARIANTS)")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var (
		name    string
		assigns []string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a price for one set of inputs",
		Long: `Assemble the feature vector from --set name=value pairs (unset features take
their form defaults) and invoke the variant's model once.

Example: salesdash-cli predict --variant rf15 --set cost_price=500 --set brand=Nike`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseAssignments(assigns)
			if err != nil {
				return err
			}

			c, err := bootstrap(cmd.Context(), name)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			d, err := c.Dashboard(c.DefaultVariant())
			if err != nil {
				return err
			}
			p, err := c.Pricing.Predict(cmd.Context(), d.Variant.Name, inputs)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🎯 %s: %s\n", d.Variant.ResultLabel, p.Formatted)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "variant", "", "variant to predict with (default: DEFAULT_VARIANT)")
	cmd.Flags().StringArrayVar(&assigns, "set", nil, "feature value as name=value, repeatable")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full prediction record as JSON")
	return cmd
}

func newChartsCmd() *cobra.Command {
	var (
		name string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render a variant's insight charts to PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(cmd.Context(), name)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			d, err := c.Dashboard(c.DefaultVariant())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}

			for _, chart := range d.Gallery.Charts {
				path := filepath.Join(out, fmt.Sprintf("%s_%s.png", d.Variant.Name, chart.ID))
				if err := os.WriteFile(path, chart.PNG, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "📊 %s\n", path)
			}
			for _, s := range d.Gallery.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: missing %s\n", s.ID, strings.Join(s.Columns, ", "))
			}
			if d.Gallery.Err != nil {
				return fmt.Errorf("chart %s failed: %w", d.Gallery.Failed, d.Gallery.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "variant", "", "variant whose charts to render (default: DEFAULT_VARIANT)")
	cmd.Flags().StringVar(&out, "out", "charts", "output directory")
	return cmd
}

func newSampleCmd() *cobra.Command {
	cfg := testkit.DefaultClothingConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic clothing sales dataset as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return testkit.NewClothingDataGenerator(cfg).WriteCSV(w)
		},
	}

	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "number of sales rows")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().StringSliceVar(&cfg.DropColumns, "drop", nil, "columns to leave out, e.g. Product_Category")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func bootstrap(ctx context.Context, only ...string) (*container.Container, error) {
	cfg, logger, err := loadConfig(only...)
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Bootstrap(ctx); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, err
	}
	return c, nil
}

// parseAssignments turns repeated name=value flags into form inputs
func parseAssignments(assigns []string) (schema.Inputs, error) {
	inputs := make(schema.Inputs, len(assigns))
	for _, a := range assigns {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want name=value", a)
		}
		inputs[name] = strings.TrimSpace(value)
	}
	return inputs, nil
}

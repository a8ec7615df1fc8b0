package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"salesdash/internal"
	"salesdash/internal/config"
)

// settings binds persistent flags to SALESDASH_* environment variables.
// Values left empty keep whatever config.Load read from the plain env.
var settings = viper.New()

func main() {
	rootCmd := &cobra.Command{
		Use:           "salesdash-cli",
		Short:         "Sales dashboard CLI for variants, predictions and chart export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile := settings.GetString("env_file")
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "dotenv file loaded before reading configuration")
	flags.String("model-dir", "", "directory holding model artifacts (MODEL_DIR)")
	flags.String("dataset", "", "dataset path for every variant, or \"synthetic\" (DATASET_PATH)")
	flags.String("variants-file", "", "YAML file with extra dashboard variants (VARIANTS_FILE)")
	flags.String("log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE (LOG_LEVEL)")

	settings.SetEnvPrefix("SALESDASH")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	for _, name := range []string{"env-file", "model-dir", "dataset", "variants-file", "log-level"} {
		_ = settings.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	rootCmd.AddCommand(
		newVariantsCmd(),
		newValidateCmd(),
		newPredictCmd(),
		newChartsCmd(),
		newSampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flag overrides. A non-empty
// only list restricts the active variants.
func loadConfig(only ...string) (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if v := settings.GetString("model_dir"); v != "" {
		cfg.Paths.ModelDir = v
	}
	if v := settings.GetString("dataset"); v != "" {
		cfg.Paths.DatasetPath = v
	}
	if v := settings.GetString("variants_file"); v != "" {
		cfg.Paths.VariantsFile = v
	}
	if v := settings.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}

	var active []string
	seen := make(map[string]bool)
	for _, name := range only {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" && !seen[name] {
			seen[name] = true
			active = append(active, name)
		}
	}
	if len(active) > 0 {
		cfg.Variants.Active = active
		cfg.Variants.Default = active[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)), nil
}

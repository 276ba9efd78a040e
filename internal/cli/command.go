package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/maclinea/ledgerlingo/internal"
	"codeberg.org/maclinea/ledgerlingo/internal/processor"
	"codeberg.org/maclinea/ledgerlingo/internal/translation"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerlingo",
		Short: "Ledger translation dictionary builder",
		Long: `ledgerlingo builds a PT-BR -> IT translation dictionary from the category
names and descriptions found in a semicolon-delimited ledger export.

Strings already present in the dictionary are skipped, the rest are sent
to an OpenAI-compatible endpoint (OpenRouter by default) in batches and
the merged dictionary is saved sorted by key.

Examples:
  ledgerlingo                                  # Translate public/dados/movimentos.csv
  ledgerlingo -i extrato.csv -o it.json        # Custom input and output
  ledgerlingo --dry-run                        # Show the outstanding work only
  ledgerlingo --list-models --filter claude    # List models at the endpoint
  ledgerlingo export traducao.db               # Copy the dictionary into SQLite`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateExportCommand creates the "export" subcommand
func CreateExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <sqlite-file>",
		Short: "Write the dictionary into a SQLite database",
		Args:  cobra.ExactArgs(1),
	}
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.ledgerlingo.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.OutputPath, "output", "o", flags.OutputPath, "Translation dictionary (JSON)")

	// Local flags
	cmd.Flags().StringVarP(&flags.InputPath, "input", "i", flags.InputPath, "Ledger file (semicolon-delimited)")
	cmd.Flags().BoolVar(&flags.Backup, "backup", false, "Archive the previous dictionary before overwriting it")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Report the outstanding work without calling the endpoint")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List models available at the endpoint")
	cmd.Flags().StringVar(&flags.ModelFilter, "filter", "", "Only list models containing this text (with --list-models)")

	// Endpoint flags
	cmd.Flags().StringVar(&flags.Model, "model", flags.Model, "Model identifier (env OPENROUTER_MODEL)")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", flags.BaseURL, "OpenAI-compatible API root")

	// Batch flags
	cmd.Flags().IntVar(&flags.BatchSize, "batch-size", flags.BatchSize, "Strings per request")
	cmd.Flags().DurationVar(&flags.Delay, "delay", flags.Delay, "Pause between batches")
	cmd.Flags().IntVar(&flags.MaxTokens, "max-tokens", flags.MaxTokens, "max_tokens sent with each request")
	cmd.Flags().Float32Var(&flags.Temperature, "temperature", flags.Temperature, "Sampling temperature")
	cmd.Flags().Uint32Var(&flags.MaxFailures, "max-failures", 0, "Stop sending after this many consecutive failed batches (0 disables)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("output", cmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("input", cmd.Flags().Lookup("input"))
	viper.BindPFlag("backup", cmd.Flags().Lookup("backup"))
	viper.BindPFlag("openrouter.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("openrouter.base_url", cmd.Flags().Lookup("base-url"))
	viper.BindPFlag("translate.batch_size", cmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("translate.delay", cmd.Flags().Lookup("delay"))
	viper.BindPFlag("translate.max_tokens", cmd.Flags().Lookup("max-tokens"))
	viper.BindPFlag("translate.temperature", cmd.Flags().Lookup("temperature"))
	viper.BindPFlag("translate.max_failures", cmd.Flags().Lookup("max-failures"))

	// The endpoint's own variable names
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".ledgerlingo" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ledgerlingo")
	}

	// Environment variables
	viper.SetEnvPrefix("LEDGERLINGO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetAPIKey retrieves the endpoint API key from environment or config
func GetAPIKey() string {
	return viper.GetString("openrouter.api_key")
}

// TranslationConfig builds the translator configuration from flags,
// environment and config file. It does not validate the result.
func TranslationConfig() translation.Config {
	cfg := translation.DefaultConfig()
	cfg.APIKey = GetAPIKey()
	cfg.Model = viper.GetString("openrouter.model")
	cfg.BaseURL = viper.GetString("openrouter.base_url")
	cfg.MaxTokens = viper.GetInt("translate.max_tokens")
	cfg.Temperature = float32(viper.GetFloat64("translate.temperature"))
	cfg.MaxConsecutiveFailures = viper.GetUint32("translate.max_failures")
	return cfg
}

// ProcessorOptions builds the run options from flags and config file
func ProcessorOptions(flags *Flags) processor.Options {
	return processor.Options{
		InputPath:  viper.GetString("input"),
		OutputPath: viper.GetString("output"),
		BatchSize:  viper.GetInt("translate.batch_size"),
		Delay:      viper.GetDuration("translate.delay"),
		Backup:     viper.GetBool("backup"),
		DryRun:     flags.DryRun,
	}
}

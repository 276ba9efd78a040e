package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/maclinea/ledgerlingo/internal/cli"
	"codeberg.org/maclinea/ledgerlingo/internal/dictionary"
	"codeberg.org/maclinea/ledgerlingo/internal/export"
	"codeberg.org/maclinea/ledgerlingo/internal/models"
	"codeberg.org/maclinea/ledgerlingo/internal/processor"
	"codeberg.org/maclinea/ledgerlingo/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), flags)
	}

	exportCmd := cli.CreateExportCommand()
	exportCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runExport(flags, args[0])
	}
	rootCmd.AddCommand(exportCmd)

	// Execute command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, flags *cli.Flags) error {
	cfg := cli.TranslationConfig()

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cfg)
		return lister.ListAvailableModels(ctx, os.Stdout, flags.ModelFilter)
	}

	opts := cli.ProcessorOptions(flags)

	// Credentials are checked before the ledger is touched
	var translator processor.BatchTranslator
	if !opts.DryRun {
		t, err := translation.NewTranslator(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Using model: %s\n", t.Model())
		translator = t
	}

	proc := processor.NewProcessor(opts, translator)
	_, err := proc.Run(ctx)
	return err
}

func runExport(flags *cli.Flags, dbPath string) error {
	opts := cli.ProcessorOptions(flags)

	dict := dictionary.Load(opts.OutputPath)
	if len(dict) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s is missing or empty\n", opts.OutputPath)
	}

	n, err := export.WriteSQLite(dbPath, dict)
	if err != nil {
		return fmt.Errorf("failed to export dictionary: %w", err)
	}

	fmt.Printf("Exported %d translations to %s\n", n, dbPath)
	return nil
}

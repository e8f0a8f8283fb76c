package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "navgen",
		Short: "Synthetic auto-shopping funnel data generator",
		Long: `navgen generates a deterministic synthetic dataset of an online car
shopping funnel: customers, vehicle inventory, clickstream events,
financing eligibility decisions, leads and purchases.

The same seed and sizes always produce byte-identical tables. Outputs
can be written as Parquet or JSONL files, loaded into a local SQLite
warehouse with silver/gold models, or copied into Postgres.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./navgen.yaml when present)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newDQCmd(),
		newReadoutCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

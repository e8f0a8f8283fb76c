package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nvandessel/navigator/internal/config"
	"github.com/nvandessel/navigator/internal/generator"
	"github.com/nvandessel/navigator/internal/logging"
	"github.com/nvandessel/navigator/internal/manifest"
	"github.com/nvandessel/navigator/internal/metrics"
	"github.com/nvandessel/navigator/internal/publish"
	"github.com/nvandessel/navigator/internal/sink"
	"github.com/nvandessel/navigator/internal/tables"
	"github.com/nvandessel/navigator/internal/warehouse"
	"github.com/spf13/cobra"
)

// generateResult is the summary printed after a run.
type generateResult struct {
	RunID     string           `json:"run_id"`
	Params    generator.Params `json:"params"`
	OutputDir string           `json:"output_dir"`
	Counts    map[string]int   `json:"counts"`
	Files     []manifest.File  `json:"files"`
	Warehouse *warehouseResult `json:"warehouse,omitempty"`
	Published []string         `json:"published,omitempty"`
}

type warehouseResult struct {
	Path         string `json:"path"`
	ModelVersion int    `json:"model_version"`
	ChecksPassed bool   `json:"checks_passed"`
	ChecksFailed int    `json:"checks_failed"`
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the synthetic funnel dataset",
		Long: `Generate customers, vehicles, events, eligibility decisions, leads and
purchases, then write them to every configured output.

Flags override the config file and NAV_* environment variables.

Examples:
  navgen generate                                   # Defaults (parquet to data/raw)
  navgen generate --seed 7 --events 100000          # Smaller run
  navgen generate --format parquet,sqlite           # Also build the SQLite warehouse
  navgen generate --as-of 2026-03-01 --json         # Pin the window, JSON summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyGenerateFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			result, err := runGenerate(cmd.Context(), cfg, logger, time.Now())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			printGenerateResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output directory for raw tables")
	cmd.Flags().StringSlice("format", nil, "Output formats: parquet, jsonl, sqlite, postgres")
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().Int("customers", 0, "Number of customers")
	cmd.Flags().Int("vehicles", 0, "Number of vehicles")
	cmd.Flags().Int("days", 0, "Length of the simulated window in days")
	cmd.Flags().Int("events", 0, "Minimum number of events to generate")
	cmd.Flags().String("as-of", "", "End of the simulated window (date or RFC 3339)")
	cmd.Flags().String("db", "", "SQLite warehouse path (sqlite format)")
	cmd.Flags().Bool("publish", false, "Upload the run to S3 after writing")

	return cmd
}

// loadConfig loads configuration from the --config flag, or the default
// locations when it is empty.
func loadConfig(cmd *cobra.Command) (*config.NavigatorConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyGenerateFlags copies explicitly set flags onto cfg.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.NavigatorConfig) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("out") {
		cfg.Output.Dir, err = flags.GetString("out")
	}
	if err == nil && flags.Changed("format") {
		cfg.Output.Formats, err = flags.GetStringSlice("format")
	}
	if err == nil && flags.Changed("seed") {
		cfg.Generation.Seed, err = flags.GetInt64("seed")
	}
	if err == nil && flags.Changed("customers") {
		cfg.Generation.Customers, err = flags.GetInt("customers")
	}
	if err == nil && flags.Changed("vehicles") {
		cfg.Generation.Vehicles, err = flags.GetInt("vehicles")
	}
	if err == nil && flags.Changed("days") {
		cfg.Generation.Days, err = flags.GetInt("days")
	}
	if err == nil && flags.Changed("events") {
		cfg.Generation.EventTarget, err = flags.GetInt("events")
	}
	if err == nil && flags.Changed("as-of") {
		cfg.Generation.AsOf, err = flags.GetString("as-of")
	}
	if err == nil && flags.Changed("db") {
		cfg.Warehouse.DBPath, err = flags.GetString("db")
	}
	if err == nil && flags.Changed("publish") {
		cfg.Publish.Enabled, err = flags.GetBool("publish")
	}
	return err
}

func runGenerate(ctx context.Context, cfg *config.NavigatorConfig, logger *slog.Logger, now time.Time) (*generateResult, error) {
	params, err := cfg.Params(now)
	if err != nil {
		return nil, err
	}
	dir := cfg.Output.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	dl := logging.NewDecisionLogger(dir, cfg.Logging.Level)
	defer dl.Close()

	m := metrics.New()

	start := time.Now()
	ds, err := generator.Run(params, logger, dl)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	m.ObservePhase("generate", time.Since(start))
	m.Observe(ds)

	tabs, err := tables.FromDataset(ds)
	if err != nil {
		return nil, err
	}

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSinks()

	start = time.Now()
	outputs, err := sink.WriteAll(ctx, sinks, tabs)
	if err != nil {
		return nil, err
	}
	m.ObservePhase("write", time.Since(start))
	m.ObserveOutputs(outputs)
	logger.Info("wrote tables", "dir", dir, "outputs", len(outputs))

	man, err := manifest.Build(params, ds.Counts(), dir, outputs)
	if err != nil {
		return nil, fmt.Errorf("building manifest: %w", err)
	}
	if err := man.Write(dir); err != nil {
		return nil, err
	}

	result := &generateResult{
		RunID:     man.RunID,
		Params:    params,
		OutputDir: dir,
		Counts:    man.Counts,
		Files:     man.Files,
	}

	if cfg.HasFormat(config.FormatSQLite) {
		start = time.Now()
		wr, err := buildWarehouse(ctx, cfg.Warehouse.DBPath, tabs)
		if err != nil {
			return nil, err
		}
		m.ObservePhase("warehouse", time.Since(start))
		m.ChecksFailed.Set(float64(wr.ChecksFailed))
		logger.Info("built warehouse", "path", wr.Path, "checks_failed", wr.ChecksFailed)
		result.Warehouse = wr
	}

	if cfg.Output.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return nil, err
		}
	}

	if cfg.Publish.Enabled {
		pub, err := publish.NewS3Publisher(ctx, publish.S3Config{
			Bucket:   cfg.Publish.Bucket,
			Region:   cfg.Publish.Region,
			Endpoint: cfg.Publish.Endpoint,
			Prefix:   cfg.Publish.Prefix,
		})
		if err != nil {
			return nil, err
		}
		keys, err := pub.Publish(ctx, dir, man)
		if err != nil {
			return nil, fmt.Errorf("publishing run: %w", err)
		}
		logger.Info("published run", "bucket", cfg.Publish.Bucket, "objects", len(keys))
		result.Published = keys
	}

	return result, nil
}

// openSinks creates the table sinks for the configured formats. The returned
// func releases any connections.
func openSinks(ctx context.Context, cfg *config.NavigatorConfig) ([]sink.Sink, func(), error) {
	var sinks []sink.Sink
	var pg *sink.PostgresSink
	for _, format := range cfg.Output.Formats {
		switch format {
		case config.FormatParquet:
			sinks = append(sinks, sink.NewParquetSink(cfg.Output.Dir))
		case config.FormatJSONL:
			sinks = append(sinks, sink.NewJSONLSink(cfg.Output.Dir))
		case config.FormatPostgres:
			var err error
			pg, err = sink.ConnectPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.Schema)
			if err != nil {
				return nil, nil, fmt.Errorf("connecting to postgres %s: %w", cfg.Postgres.RedactedDSN(), err)
			}
			sinks = append(sinks, pg)
		}
	}
	closeFn := func() {
		if pg != nil {
			pg.Close()
		}
	}
	return sinks, closeFn, nil
}

// buildWarehouse loads tabs into the SQLite warehouse, builds the models
// and runs the data-quality checks.
func buildWarehouse(ctx context.Context, path string, tabs []*tables.Table) (*warehouseResult, error) {
	w, err := warehouse.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	if err := w.LoadTables(ctx, tabs); err != nil {
		return nil, fmt.Errorf("loading warehouse: %w", err)
	}
	if err := w.BuildModels(ctx); err != nil {
		return nil, err
	}
	report, err := w.RunChecks(ctx)
	if err != nil {
		return nil, err
	}
	return &warehouseResult{
		Path:         path,
		ModelVersion: warehouse.ModelVersion,
		ChecksPassed: report.Passed(),
		ChecksFailed: len(report.Failed()),
	}, nil
}

func printGenerateResult(w io.Writer, r *generateResult) {
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	fmt.Fprintf(w, "  seed: %d  as_of: %s\n", r.Params.Seed, r.Params.AsOf.Format(time.RFC3339))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rows:")
	for _, name := range tables.Names {
		fmt.Fprintf(w, "  %-20s %d\n", name, r.Counts[name])
	}
	if len(r.Files) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Files (%s):\n", r.OutputDir)
		for _, f := range r.Files {
			fmt.Fprintf(w, "  %-28s %10d bytes\n", f.Path, f.Bytes)
		}
	}
	if r.Warehouse != nil {
		fmt.Fprintln(w)
		status := "passed"
		if !r.Warehouse.ChecksPassed {
			status = fmt.Sprintf("%d failed", r.Warehouse.ChecksFailed)
		}
		fmt.Fprintf(w, "Warehouse: %s (models v%d, checks %s)\n", r.Warehouse.Path, r.Warehouse.ModelVersion, status)
	}
	if len(r.Published) > 0 {
		fmt.Fprintf(w, "\nPublished %d objects\n", len(r.Published))
	}
}

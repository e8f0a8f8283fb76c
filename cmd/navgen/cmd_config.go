package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration navgen would run with after applying the config
file, .env and NAV_* environment variables. The Postgres password is
redacted.

Examples:
  navgen config
  navgen config --config navgen.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			redacted := *cfg
			redacted.Postgres.DSN = cfg.Postgres.RedactedDSN()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(redacted)
			}

			w := cmd.OutOrStdout()
			g := cfg.Generation
			fmt.Fprintln(w, "Generation:")
			fmt.Fprintf(w, "  generation.seed:          %d\n", g.Seed)
			fmt.Fprintf(w, "  generation.customers:     %d\n", g.Customers)
			fmt.Fprintf(w, "  generation.vehicles:      %d\n", g.Vehicles)
			fmt.Fprintf(w, "  generation.days:          %d\n", g.Days)
			fmt.Fprintf(w, "  generation.event_target:  %d\n", g.EventTarget)
			fmt.Fprintf(w, "  generation.as_of:         %s\n", valueOrDefault(g.AsOf, "(start of today, UTC)"))
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Output:")
			fmt.Fprintf(w, "  output.dir:               %s\n", cfg.Output.Dir)
			fmt.Fprintf(w, "  output.formats:           %s\n", strings.Join(cfg.Output.Formats, ","))
			fmt.Fprintf(w, "  output.metrics_file:      %s\n", valueOrDefault(cfg.Output.MetricsFile, "(not set)"))
			fmt.Fprintf(w, "  warehouse.db_path:        %s\n", cfg.Warehouse.DBPath)
			fmt.Fprintf(w, "  postgres.dsn:             %s\n", valueOrDefault(redacted.Postgres.DSN, "(not set)"))
			fmt.Fprintf(w, "  postgres.schema:          %s\n", cfg.Postgres.Schema)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Publish:")
			fmt.Fprintf(w, "  publish.enabled:          %v\n", cfg.Publish.Enabled)
			fmt.Fprintf(w, "  publish.bucket:           %s\n", valueOrDefault(cfg.Publish.Bucket, "(not set)"))
			fmt.Fprintf(w, "  publish.prefix:           %s\n", valueOrDefault(cfg.Publish.Prefix, "(none)"))
			fmt.Fprintf(w, "  publish.region:           %s\n", valueOrDefault(cfg.Publish.Region, "(default)"))
			fmt.Fprintf(w, "  publish.endpoint:         %s\n", valueOrDefault(cfg.Publish.Endpoint, "(default)"))
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  logging.level:            %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

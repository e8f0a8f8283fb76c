package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nvandessel/navigator/internal/warehouse"
	"github.com/spf13/cobra"
)

const defaultDQReport = "outputs/dq_report.json"

func newDQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dq",
		Short: "Run data-quality checks against the warehouse",
		Long: `Run the data-quality checks against the silver models of a SQLite
warehouse built by 'navgen generate --format sqlite' and write a JSON
report. Exits non-zero when any check fails.

Examples:
  navgen dq
  navgen dq --db data/processed/navigator.db --out outputs/dq_report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out, _ := cmd.Flags().GetString("out")
			dbPath, err := warehousePath(cmd)
			if err != nil {
				return err
			}

			w, err := openModeled(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer w.Close()

			report, err := w.RunChecks(cmd.Context())
			if err != nil {
				return fmt.Errorf("running checks: %w", err)
			}
			if err := warehouse.WriteReport(out, report); err != nil {
				return err
			}

			if jsonOut {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(report); err != nil {
					return err
				}
			} else {
				for _, c := range report.Checks {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s (%d violations)\n", c.Status, c.Name, c.Violations)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", out)
			}

			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d data-quality checks failed", len(failed), len(report.Checks))
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite warehouse path (default from config)")
	cmd.Flags().String("out", defaultDQReport, "Report output path")

	return cmd
}

// warehousePath returns --db when set, else the configured warehouse path.
func warehousePath(cmd *cobra.Command) (string, error) {
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		return db, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.Warehouse.DBPath, nil
}

// openModeled opens an existing warehouse and rebuilds its models when they
// are missing or older than the current model version.
func openModeled(ctx context.Context, path string) (*warehouse.Warehouse, error) {
	w, err := warehouse.OpenExisting(ctx, path)
	if err != nil {
		return nil, err
	}
	built, err := w.BuiltVersion(ctx)
	if err != nil {
		w.Close()
		return nil, err
	}
	if built < warehouse.ModelVersion {
		if err := w.BuildModels(ctx); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

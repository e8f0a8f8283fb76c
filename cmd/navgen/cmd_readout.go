package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/navigator/internal/readout"
	"github.com/spf13/cobra"
)

const defaultReadout = "outputs/experiment_readout.csv"

func newReadoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readout",
		Short: "Compute the A/B experiment readout",
		Long: `Compute lead and purchase rate lift for the recommendations experiment
from the warehouse readout view, with a pooled-proportion 95% confidence
interval, and write it as CSV.

Examples:
  navgen readout
  navgen readout --db data/processed/navigator.db --out outputs/experiment_readout.csv`,
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

			variants, err := w.ReadoutMetrics(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := readout.Compute(variants)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := readout.WriteCSV(&buf, rows); err != nil {
				return fmt.Errorf("encoding readout: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("writing readout: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: control %.4f (n=%d), treatment %.4f (n=%d), lift %+.4f [%+.4f, %+.4f]\n",
					r.ExperimentID, r.Metric, r.ControlRate, r.ControlN, r.TreatmentRate, r.TreatmentN,
					r.Lift, r.CILow, r.CIHigh)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nReadout written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite warehouse path (default from config)")
	cmd.Flags().String("out", defaultReadout, "CSV output path")

	return cmd
}

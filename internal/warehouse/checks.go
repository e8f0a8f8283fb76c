package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/navigator/internal/readout"
)

// Check statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Check is one data-quality check result. Violations counts offending rows
// or groups.
type Check struct {
	Name       string `json:"check"`
	Status     string `json:"status"`
	Violations int    `json:"violations"`
}

// Report is the data-quality report.
type Report struct {
	Checks []Check `json:"checks"`
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Status != StatusPass {
			return false
		}
	}
	return true
}

// Failed returns the failing checks.
func (r Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Status != StatusPass {
			out = append(out, c)
		}
	}
	return out
}

type checkQuery struct {
	name string
	sql  string // returns the violation count
}

var checkQueries = []checkQuery{
	{
		name: "dim_customer.customer_id is unique",
		sql:  `SELECT COUNT(*) - COUNT(DISTINCT customer_id) FROM silver_dim_customer`,
	},
	{
		name: "dim_vehicle.vehicle_id is unique",
		sql:  `SELECT COUNT(*) - COUNT(DISTINCT vehicle_id) FROM silver_dim_vehicle`,
	},
	{
		name: "fact_events.event_id is unique",
		sql:  `SELECT COUNT(*) - COUNT(DISTINCT event_id) FROM silver_fact_events`,
	},
	{
		name: "purchase_complete events have matching purchases",
		sql: `
SELECT COUNT(*) FROM (
    SELECT e.customer_id, e.vehicle_id
    FROM silver_fact_events e
    LEFT JOIN silver_fact_purchase p
      ON p.customer_id = e.customer_id
     AND p.vehicle_id = e.vehicle_id
    WHERE e.event_type = 'purchase_complete'
      AND e.customer_id IS NOT NULL
      AND p.purchase_id IS NULL
    GROUP BY 1, 2
)`,
	},
	{
		name: "fact_events.event_type has no nulls",
		sql:  `SELECT COUNT(*) FROM silver_fact_events WHERE event_type IS NULL`,
	},
	{
		name: "fact_purchase.lead_id references a lead",
		sql: `
SELECT COUNT(*)
FROM silver_fact_purchase p
LEFT JOIN silver_fact_lead l ON l.lead_id = p.lead_id
WHERE l.lead_id IS NULL OR l.lead_ts >= p.purchase_ts`,
	},
	{
		name: "fact_eligibility.customer_id is in dim_customer",
		sql: `
SELECT COUNT(*)
FROM silver_fact_eligibility f
LEFT JOIN silver_dim_customer c ON c.customer_id = f.customer_id
WHERE c.customer_id IS NULL`,
	},
}

// RunChecks runs the data-quality checks against the silver models.
func (w *Warehouse) RunChecks(ctx context.Context) (Report, error) {
	report := Report{Checks: make([]Check, 0, len(checkQueries))}
	for _, q := range checkQueries {
		var violations int
		if err := w.db.QueryRowContext(ctx, q.sql).Scan(&violations); err != nil {
			return Report{}, fmt.Errorf("check %q: %w", q.name, err)
		}
		status := StatusPass
		if violations > 0 {
			status = StatusFail
		}
		report.Checks = append(report.Checks, Check{Name: q.name, Status: status, Violations: violations})
	}
	return report, nil
}

// WriteReport writes r as indented JSON to path.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadoutMetrics reads the experiment readout view ordered by variant.
func (w *Warehouse) ReadoutMetrics(ctx context.Context) ([]readout.VariantMetrics, error) {
	rows, err := w.db.QueryContext(ctx, `
SELECT experiment_id, variant, customers, lead_rate, purchase_rate
FROM gold_vw_experiment_readout
ORDER BY variant`)
	if err != nil {
		return nil, fmt.Errorf("failed to query readout view: %w", err)
	}
	defer rows.Close()

	var out []readout.VariantMetrics
	for rows.Next() {
		var m readout.VariantMetrics
		if err := rows.Scan(&m.ExperimentID, &m.Variant, &m.Customers, &m.LeadRate, &m.PurchaseRate); err != nil {
			return nil, fmt.Errorf("failed to scan readout row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

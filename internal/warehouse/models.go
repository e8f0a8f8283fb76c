package warehouse

import (
	"context"
	"fmt"
)

// ModelVersion is the version of the silver and gold model definitions.
const ModelVersion = 1

// silverModels conforms the bronze tables: typed dates, extracted
// personalization flags and purchase discounts against list price.
const silverModels = `
DROP VIEW IF EXISTS gold_vw_experiment_readout;
DROP TABLE IF EXISTS gold_funnel_daily;
DROP TABLE IF EXISTS silver_dim_customer;
DROP TABLE IF EXISTS silver_dim_vehicle;
DROP TABLE IF EXISTS silver_fact_events;
DROP TABLE IF EXISTS silver_fact_eligibility;
DROP TABLE IF EXISTS silver_fact_lead;
DROP TABLE IF EXISTS silver_fact_purchase;

CREATE TABLE silver_dim_customer AS
SELECT customer_id, state, zip3, income_band, credit_score_band,
       date(customer_since) AS customer_since, segment
FROM raw_customers;

CREATE TABLE silver_dim_vehicle AS
SELECT vehicle_id, make, model, year, body_type, msrp
FROM raw_vehicles;

CREATE TABLE silver_fact_events AS
SELECT event_id, event_ts, date(event_date) AS event_date, event_type,
       customer_id, anonymous_id, session_id, vehicle_id, campaign_id,
       experiment_id, variant, platform,
       json_extract(metadata, '$.personalization') AS personalization,
       metadata
FROM raw_events;
CREATE INDEX idx_fact_events_customer ON silver_fact_events(customer_id, event_type);
CREATE INDEX idx_fact_events_session ON silver_fact_events(session_id);

CREATE TABLE silver_fact_eligibility AS
SELECT eligibility_id, customer_id, decision_ts,
       date(substr(decision_ts, 1, 10)) AS decision_date,
       approved_flag, approval_prob, max_amount, apr_est,
       json_array_length(reason_codes) AS reason_code_count,
       reason_codes
FROM raw_eligibility_decisions;

CREATE TABLE silver_fact_lead AS
SELECT lead_id, customer_id, vehicle_id, lead_ts,
       date(substr(lead_ts, 1, 10)) AS lead_date, lead_type, campaign_id
FROM raw_leads;

CREATE TABLE silver_fact_purchase AS
SELECT p.purchase_id, p.customer_id, p.vehicle_id, p.lead_id, p.purchase_ts,
       date(substr(p.purchase_ts, 1, 10)) AS purchase_date,
       p.purchase_price, v.msrp,
       round(v.msrp - p.purchase_price, 2) AS discount
FROM raw_purchases p
LEFT JOIN raw_vehicles v ON v.vehicle_id = p.vehicle_id;
CREATE INDEX idx_fact_purchase_customer ON silver_fact_purchase(customer_id, vehicle_id);
`

// goldModels holds the analytics layer. A customer is exposed to a variant
// when they have an identified event under it; the anonymous-session arm
// draw means one customer can be exposed to both.
const goldModels = `
CREATE TABLE gold_funnel_daily AS
SELECT event_date, variant,
       COUNT(DISTINCT session_id) AS sessions,
       SUM(event_type = 'vehicle_view') AS vehicle_views,
       SUM(event_type = 'start_prequal') AS prequal_starts,
       SUM(event_type = 'view_offer') AS offers,
       SUM(event_type = 'lead_submit') AS leads,
       SUM(event_type = 'purchase_complete') AS purchases
FROM silver_fact_events
GROUP BY event_date, variant;

CREATE VIEW gold_vw_experiment_readout AS
WITH exposure AS (
    SELECT experiment_id, variant, customer_id,
           MAX(event_type = 'lead_submit') AS led,
           MAX(event_type = 'purchase_complete') AS purchased
    FROM silver_fact_events
    WHERE customer_id IS NOT NULL
    GROUP BY experiment_id, variant, customer_id
)
SELECT experiment_id, variant,
       COUNT(*) AS customers,
       SUM(led) AS lead_customers,
       SUM(purchased) AS purchase_customers,
       CAST(SUM(led) AS REAL) / COUNT(*) AS lead_rate,
       CAST(SUM(purchased) AS REAL) / COUNT(*) AS purchase_rate
FROM exposure
GROUP BY experiment_id, variant;

CREATE TABLE IF NOT EXISTS model_version (
    version INTEGER NOT NULL,
    built_at TEXT NOT NULL
);
`

// ModelTables lists the materialized silver and gold tables.
var ModelTables = []string{
	"silver_dim_customer",
	"silver_dim_vehicle",
	"silver_fact_events",
	"silver_fact_eligibility",
	"silver_fact_lead",
	"silver_fact_purchase",
	"gold_funnel_daily",
}

// BuildModels (re)materializes the silver tables and gold models from the
// loaded bronze tables in one transaction.
func (w *Warehouse) BuildModels(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, silverModels); err != nil {
		return fmt.Errorf("failed to build silver models: %w", err)
	}
	if _, err := tx.ExecContext(ctx, goldModels); err != nil {
		return fmt.Errorf("failed to build gold models: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO model_version (version, built_at) VALUES (?, datetime('now'))`,
		ModelVersion); err != nil {
		return fmt.Errorf("failed to record model version: %w", err)
	}

	return tx.Commit()
}

// BuiltVersion returns the latest recorded model version, or 0 when models
// were never built.
func (w *Warehouse) BuiltVersion(ctx context.Context) (int, error) {
	var exists int
	if err := w.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'model_version'`).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to look up model_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	if err := w.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM model_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read model version: %w", err)
	}
	return version, nil
}

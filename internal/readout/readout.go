// Package readout computes the A/B readout of the personalization
// experiment: per-variant rates, the treatment lift and a confidence
// interval for it.
package readout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// DefaultZ is the normal quantile for a two-sided 95% interval.
const DefaultZ = 1.96

// Metric names reported by Compute, in output order.
const (
	MetricLeadRate     = "lead_rate"
	MetricPurchaseRate = "purchase_rate"
)

// ErrVariantSet is returned when the readout input does not contain exactly
// the two variants control and treatment.
var ErrVariantSet = errors.New("readout: expected exactly two variants: control and treatment")

// VariantMetrics is one row of the experiment readout view.
type VariantMetrics struct {
	ExperimentID string  `json:"experiment_id"`
	Variant      string  `json:"variant"`
	Customers    int     `json:"customers"`
	LeadRate     float64 `json:"lead_rate"`
	PurchaseRate float64 `json:"purchase_rate"`
}

// Row is one metric of the readout.
type Row struct {
	ExperimentID  string  `json:"experiment_id"`
	Metric        string  `json:"metric"`
	ControlRate   float64 `json:"control_rate"`
	TreatmentRate float64 `json:"treatment_rate"`
	Lift          float64 `json:"lift"`
	CILow         float64 `json:"ci_low"`
	CIHigh        float64 `json:"ci_high"`
	ControlN      int     `json:"control_n"`
	TreatmentN    int     `json:"treatment_n"`
}

// DiffInProportionsCI returns the lift (treatment - control) and its
// confidence interval using the pooled-proportion normal approximation.
// Both sample sizes must be positive.
func DiffInProportionsCI(controlRate float64, controlN int, treatmentRate float64, treatmentN int, z float64) (lift, low, high float64) {
	x1 := controlRate * float64(controlN)
	x2 := treatmentRate * float64(treatmentN)
	pooled := (x1 + x2) / float64(controlN+treatmentN)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(controlN) + 1/float64(treatmentN)))
	lift = treatmentRate - controlRate
	return lift, lift - z*se, lift + z*se
}

// Compute builds the readout from the per-variant metrics. It fails with
// ErrVariantSet unless the input holds exactly one control and one treatment
// row.
func Compute(metrics []VariantMetrics) ([]Row, error) {
	var control, treatment *VariantMetrics
	for i := range metrics {
		m := &metrics[i]
		switch {
		case m.Variant == "control" && control == nil:
			control = m
		case m.Variant == "treatment" && treatment == nil:
			treatment = m
		default:
			return nil, fmt.Errorf("%w: unexpected variant %q", ErrVariantSet, m.Variant)
		}
	}
	if control == nil || treatment == nil {
		return nil, ErrVariantSet
	}
	if control.Customers <= 0 || treatment.Customers <= 0 {
		return nil, fmt.Errorf("readout: both variants need exposed customers (control %d, treatment %d)",
			control.Customers, treatment.Customers)
	}

	rate := func(m *VariantMetrics, metric string) float64 {
		if metric == MetricLeadRate {
			return m.LeadRate
		}
		return m.PurchaseRate
	}

	rows := make([]Row, 0, 2)
	for _, metric := range []string{MetricLeadRate, MetricPurchaseRate} {
		cr, tr := rate(control, metric), rate(treatment, metric)
		lift, low, high := DiffInProportionsCI(cr, control.Customers, tr, treatment.Customers, DefaultZ)
		rows = append(rows, Row{
			ExperimentID:  control.ExperimentID,
			Metric:        metric,
			ControlRate:   cr,
			TreatmentRate: tr,
			Lift:          lift,
			CILow:         low,
			CIHigh:        high,
			ControlN:      control.Customers,
			TreatmentN:    treatment.Customers,
		})
	}
	return rows, nil
}

var csvHeader = []string{
	"experiment_id", "metric", "control_rate", "treatment_rate",
	"lift", "ci_low", "ci_high", "control_n", "treatment_n",
}

// WriteCSV writes the readout with a header row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, r := range rows {
		record := []string{
			r.ExperimentID, r.Metric, f(r.ControlRate), f(r.TreatmentRate),
			f(r.Lift), f(r.CILow), f(r.CIHigh),
			strconv.Itoa(r.ControlN), strconv.Itoa(r.TreatmentN),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

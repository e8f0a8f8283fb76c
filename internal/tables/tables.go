// Package tables flattens a generated dataset into the six raw tables every
// sink writes. Column order and types are fixed here so each output format
// agrees on the layout.
package tables

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nvandessel/navigator/internal/models"
)

// Raw table names.
const (
	Customers   = "raw_customers"
	Vehicles    = "raw_vehicles"
	Events      = "raw_events"
	Eligibility = "raw_eligibility_decisions"
	Leads       = "raw_leads"
	Purchases   = "raw_purchases"
)

// Names lists the raw tables in write order.
var Names = []string{Customers, Vehicles, Events, Eligibility, Leads, Purchases}

// TimestampLayout is the ISO-8601 form used for text timestamps.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// DateLayout is the form used for text dates.
const DateLayout = "2006-01-02"

// Type is a column's logical type.
type Type int

const (
	String Type = iota
	Int64
	Float64
	Bool
	Timestamp
	Date
	// JSON columns hold a serialized JSON document as text.
	JSON
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case Timestamp:
		return "timestamp"
	case Date:
		return "date"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Column describes one table column. Nullable columns hold a nil value for
// NULL; every other cell is a non-nil value of the Go type matching Type:
// string, int64, float64, bool or time.Time.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Table is a named set of rows sharing one column layout.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FromDataset flattens ds into the raw tables, in Names order.
func FromDataset(ds *models.Dataset) ([]*Table, error) {
	events, err := eventTable(ds.Events)
	if err != nil {
		return nil, err
	}
	eligibility, err := eligibilityTable(ds.Eligibility)
	if err != nil {
		return nil, err
	}
	return []*Table{
		customerTable(ds.Customers),
		vehicleTable(ds.Vehicles),
		events,
		eligibility,
		leadTable(ds.Leads),
		purchaseTable(ds.Purchases),
	}, nil
}

func customerTable(rows []models.Customer) *Table {
	t := &Table{
		Name: Customers,
		Columns: []Column{
			{Name: "customer_id", Type: String},
			{Name: "state", Type: String},
			{Name: "zip3", Type: String},
			{Name: "income_band", Type: String},
			{Name: "credit_score_band", Type: String},
			{Name: "customer_since", Type: Date},
			{Name: "segment", Type: String},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, c := range rows {
		t.Rows = append(t.Rows, []any{
			c.CustomerID, c.State, c.Zip3, string(c.IncomeBand), string(c.CreditBand),
			c.CustomerSince.UTC(), string(c.Segment),
		})
	}
	return t
}

func vehicleTable(rows []models.Vehicle) *Table {
	t := &Table{
		Name: Vehicles,
		Columns: []Column{
			{Name: "vehicle_id", Type: String},
			{Name: "make", Type: String},
			{Name: "model", Type: String},
			{Name: "year", Type: Int64},
			{Name: "body_type", Type: String},
			{Name: "msrp", Type: Float64},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, v := range rows {
		t.Rows = append(t.Rows, []any{
			v.VehicleID, v.Make, v.Model, int64(v.Year), string(v.BodyType), v.MSRP,
		})
	}
	return t
}

func eventTable(rows []models.Event) (*Table, error) {
	t := &Table{
		Name: Events,
		Columns: []Column{
			{Name: "event_id", Type: String},
			{Name: "event_ts", Type: Timestamp},
			{Name: "event_date", Type: Date},
			{Name: "event_type", Type: String},
			{Name: "customer_id", Type: String, Nullable: true},
			{Name: "anonymous_id", Type: String},
			{Name: "session_id", Type: String},
			{Name: "vehicle_id", Type: String, Nullable: true},
			{Name: "campaign_id", Type: String, Nullable: true},
			{Name: "experiment_id", Type: String},
			{Name: "variant", Type: String},
			{Name: "platform", Type: String},
			{Name: "metadata", Type: JSON},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, e := range rows {
		meta, err := e.MetadataJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding metadata for %s: %w", e.EventID, err)
		}
		ts := e.Timestamp.UTC()
		t.Rows = append(t.Rows, []any{
			e.EventID, ts, DateOf(ts), string(e.Type()),
			nullable(e.CustomerID), e.AnonymousID, e.SessionID,
			nullable(e.VehicleID), nullable(e.CampaignID),
			e.ExperimentID, string(e.Variant), string(e.Platform), meta,
		})
	}
	return t, nil
}

func eligibilityTable(rows []models.EligibilityDecision) (*Table, error) {
	t := &Table{
		Name: Eligibility,
		Columns: []Column{
			{Name: "eligibility_id", Type: String},
			{Name: "customer_id", Type: String},
			{Name: "decision_ts", Type: Timestamp},
			{Name: "approved_flag", Type: Bool},
			{Name: "approval_prob", Type: Float64},
			{Name: "max_amount", Type: Float64},
			{Name: "apr_est", Type: Float64},
			{Name: "reason_codes", Type: JSON},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, d := range rows {
		codes := d.ReasonCodes
		if codes == nil {
			codes = []models.ReasonCode{}
		}
		b, err := json.Marshal(codes)
		if err != nil {
			return nil, fmt.Errorf("encoding reason codes for %s: %w", d.EligibilityID, err)
		}
		t.Rows = append(t.Rows, []any{
			d.EligibilityID, d.CustomerID, d.DecisionTS.UTC(), d.Approved,
			d.ApprovalProbability, d.MaxAmount, d.APREstimate, string(b),
		})
	}
	return t, nil
}

func leadTable(rows []models.Lead) *Table {
	t := &Table{
		Name: Leads,
		Columns: []Column{
			{Name: "lead_id", Type: String},
			{Name: "customer_id", Type: String},
			{Name: "vehicle_id", Type: String},
			{Name: "lead_ts", Type: Timestamp},
			{Name: "lead_type", Type: String},
			{Name: "campaign_id", Type: String, Nullable: true},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, l := range rows {
		t.Rows = append(t.Rows, []any{
			l.LeadID, l.CustomerID, l.VehicleID, l.LeadTS.UTC(), string(l.LeadType), nullable(l.CampaignID),
		})
	}
	return t
}

func purchaseTable(rows []models.Purchase) *Table {
	t := &Table{
		Name: Purchases,
		Columns: []Column{
			{Name: "purchase_id", Type: String},
			{Name: "customer_id", Type: String},
			{Name: "vehicle_id", Type: String},
			{Name: "lead_id", Type: String},
			{Name: "purchase_ts", Type: Timestamp},
			{Name: "purchase_price", Type: Float64},
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, p := range rows {
		t.Rows = append(t.Rows, []any{
			p.PurchaseID, p.CustomerID, p.VehicleID, p.LeadID, p.PurchaseTS.UTC(), p.PurchasePrice,
		})
	}
	return t
}

// nullable converts an optional string to a cell value: nil or a string.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatCell renders a cell as text for the text-based sinks. NULL renders
// as the empty string with ok false.
func FormatCell(col Column, v any) (s string, ok bool) {
	if v == nil {
		return "", false
	}
	switch col.Type {
	case Timestamp:
		return v.(time.Time).UTC().Format(TimestampLayout), true
	case Date:
		return v.(time.Time).UTC().Format(DateLayout), true
	case Float64:
		return strconv.FormatFloat(v.(float64), 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

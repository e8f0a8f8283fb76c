package tables

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nvandessel/navigator/internal/models"
)

var ts = time.Date(2026, 2, 20, 23, 59, 50, 0, time.UTC)

func sampleDataset() *models.Dataset {
	campaign := "cmp_email_trigger"
	return &models.Dataset{
		Customers: []models.Customer{{
			CustomerID: "c_0000001", State: "TX", Zip3: "750",
			IncomeBand: models.IncomeMedium, CreditBand: models.CreditPrime,
			CustomerSince: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), Segment: models.SegmentValueSeeker,
		}},
		Vehicles: []models.Vehicle{{
			VehicleID: "v_0000001", Make: "Toyota", Model: "RAV4", Year: 2022, BodyType: models.BodySUV, MSRP: 34500,
		}},
		Events: []models.Event{
			{
				EventID: "e_000000001", Timestamp: ts, AnonymousID: "a_00000042", SessionID: "s_000000001",
				ExperimentID: "exp_personalization_v0", Variant: models.VariantControl, Platform: models.PlatformWeb,
				Metadata: models.PageViewMeta{Personalization: false},
			},
			{
				EventID: "e_000000002", Timestamp: ts.Add(20 * time.Second), CustomerID: models.Ptr("c_0000001"),
				AnonymousID: "a_00000042", SessionID: "s_000000001", VehicleID: models.Ptr("v_0000001"),
				CampaignID: &campaign, ExperimentID: "exp_personalization_v0", Variant: models.VariantTreatment,
				Platform: models.PlatformApp, Metadata: models.ViewOfferMeta{Personalization: true, Approved: true},
			},
		},
		Eligibility: []models.EligibilityDecision{
			{EligibilityID: "el_000000001", CustomerID: "c_0000001", DecisionTS: ts, Approved: true, ApprovalProbability: 0.7, MaxAmount: 29000.5, APREstimate: 6.75},
			{EligibilityID: "el_000000002", CustomerID: "c_0000001", DecisionTS: ts, ApprovalProbability: 0.3, MaxAmount: 20000, APREstimate: 13,
				ReasonCodes: []models.ReasonCode{models.ReasonDTIHigh}},
		},
		Leads: []models.Lead{{LeadID: "l_000000001", CustomerID: "c_0000001", VehicleID: "v_0000001", LeadTS: ts, LeadType: models.LeadRequestQuote}},
		Purchases: []models.Purchase{{PurchaseID: "p_000000001", CustomerID: "c_0000001", VehicleID: "v_0000001", LeadID: "l_000000001",
			PurchaseTS: ts.Add(26 * time.Hour), PurchasePrice: 33120.25}},
	}
}

func TestFromDatasetLayout(t *testing.T) {
	tabs, err := FromDataset(sampleDataset())
	if err != nil {
		t.Fatalf("FromDataset: %v", err)
	}
	if len(tabs) != len(Names) {
		t.Fatalf("got %d tables, want %d", len(tabs), len(Names))
	}

	wantRows := map[string]int{Customers: 1, Vehicles: 1, Events: 2, Eligibility: 2, Leads: 1, Purchases: 1}
	for i, tab := range tabs {
		if tab.Name != Names[i] {
			t.Errorf("table %d = %s, want %s", i, tab.Name, Names[i])
		}
		if tab.Len() != wantRows[tab.Name] {
			t.Errorf("%s rows = %d, want %d", tab.Name, tab.Len(), wantRows[tab.Name])
		}
		for r, row := range tab.Rows {
			if len(row) != len(tab.Columns) {
				t.Fatalf("%s row %d has %d cells, want %d", tab.Name, r, len(row), len(tab.Columns))
			}
			for c, cell := range row {
				if cell == nil && !tab.Columns[c].Nullable {
					t.Errorf("%s row %d: NULL in non-nullable column %s", tab.Name, r, tab.Columns[c].Name)
				}
			}
		}
	}
}

func TestEventRows(t *testing.T) {
	tabs, err := FromDataset(sampleDataset())
	if err != nil {
		t.Fatal(err)
	}
	events := tabs[2]

	anon := events.Rows[0]
	if anon[events.Index("customer_id")] != nil || anon[events.Index("vehicle_id")] != nil || anon[events.Index("campaign_id")] != nil {
		t.Errorf("anonymous page_view should have NULL customer, vehicle and campaign: %v", anon)
	}
	if anon[events.Index("event_type")] != "page_view" {
		t.Errorf("event_type = %v", anon[events.Index("event_type")])
	}

	offer := events.Rows[1]
	if offer[events.Index("customer_id")] != "c_0000001" || offer[events.Index("campaign_id")] != "cmp_email_trigger" {
		t.Errorf("view_offer ids = %v", offer)
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(offer[events.Index("metadata")].(string)), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["approved"] != true || meta["personalization"] != true {
		t.Errorf("metadata = %v", meta)
	}

	// 23:59:50 + 20s crosses midnight; event_date follows event_ts.
	date := offer[events.Index("event_date")].(time.Time)
	if got := date.Format(DateLayout); got != "2026-02-21" {
		t.Errorf("event_date = %s, want 2026-02-21", got)
	}
}

func TestReasonCodesAlwaysJSONArray(t *testing.T) {
	tabs, err := FromDataset(sampleDataset())
	if err != nil {
		t.Fatal(err)
	}
	elig := tabs[3]
	col := elig.Index("reason_codes")
	if got := elig.Rows[0][col]; got != "[]" {
		t.Errorf("approved reason_codes = %v, want []", got)
	}
	if got := elig.Rows[1][col]; got != `["DTI_HIGH"]` {
		t.Errorf("declined reason_codes = %v", got)
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name   string
		col    Column
		value  any
		want   string
		wantOK bool
	}{
		{"timestamp", Column{Type: Timestamp}, ts, "2026-02-20T23:59:50+00:00", true},
		{"timestamp converts zone", Column{Type: Timestamp}, ts.In(time.FixedZone("X", 3600)), "2026-02-20T23:59:50+00:00", true},
		{"date", Column{Type: Date}, ts, "2026-02-20", true},
		{"float keeps plain notation", Column{Type: Float64}, 1000000.0, "1000000", true},
		{"float cents", Column{Type: Float64}, 29000.5, "29000.5", true},
		{"bool", Column{Type: Bool}, true, "true", true},
		{"int", Column{Type: Int64}, int64(2022), "2022", true},
		{"null", Column{Type: String, Nullable: true}, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatCell(tt.col, tt.value)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FormatCell() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIndexMissing(t *testing.T) {
	tab := &Table{Columns: []Column{{Name: "a"}}}
	if tab.Index("b") != -1 {
		t.Error("missing column should return -1")
	}
}

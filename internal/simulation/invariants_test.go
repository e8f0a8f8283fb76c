package simulation

import (
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/navigator/internal/models"
)

func validDataset() *models.Dataset {
	ts := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	later := ts.Add(26 * time.Hour)
	cust, veh := "c_0000001", "v_0000001"
	return &models.Dataset{
		Customers: []models.Customer{{CustomerID: cust}},
		Vehicles:  []models.Vehicle{{VehicleID: veh}},
		Events: []models.Event{
			{EventID: "e_000000001", Timestamp: ts, CustomerID: &cust, VehicleID: &veh, Metadata: models.LeadSubmitMeta{}},
			{EventID: "e_000000002", Timestamp: later, CustomerID: &cust, VehicleID: &veh, Metadata: models.PurchaseCompleteMeta{}},
		},
		Eligibility: []models.EligibilityDecision{
			{EligibilityID: "el_000000001", CustomerID: cust, Approved: true, ApprovalProbability: 0.5},
		},
		Leads:     []models.Lead{{LeadID: "l_000000001", CustomerID: cust, VehicleID: veh, LeadTS: ts}},
		Purchases: []models.Purchase{{PurchaseID: "p_000000001", CustomerID: cust, VehicleID: veh, LeadID: "l_000000001", PurchaseTS: later}},
	}
}

func TestCheckInvariantsValid(t *testing.T) {
	if err := CheckInvariants(validDataset()); err != nil {
		t.Errorf("CheckInvariants() = %v, want nil", err)
	}
}

func TestCheckInvariantsViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ds *models.Dataset)
		want   string
	}{
		{
			name:   "duplicate event id",
			mutate: func(ds *models.Dataset) { ds.Events[1].EventID = ds.Events[0].EventID },
			want:   "duplicate id",
		},
		{
			name:   "unknown eligibility customer",
			mutate: func(ds *models.Dataset) { ds.Eligibility[0].CustomerID = "c_0000099" },
			want:   "not in population",
		},
		{
			name:   "approval probability out of range",
			mutate: func(ds *models.Dataset) { ds.Eligibility[0].ApprovalProbability = 0.99 },
			want:   "out of range",
		},
		{
			name: "declined without reasons",
			mutate: func(ds *models.Dataset) {
				ds.Eligibility[0].Approved = false
			},
			want: "reason codes",
		},
		{
			name:   "purchase before lead",
			mutate: func(ds *models.Dataset) { ds.Leads[0].LeadTS = ds.Purchases[0].PurchaseTS.Add(time.Hour) },
			want:   "not after lead",
		},
		{
			name:   "purchase without event",
			mutate: func(ds *models.Dataset) { ds.Events = ds.Events[:1] },
			want:   "no matching purchase_complete event",
		},
		{
			name:   "purchase event without record",
			mutate: func(ds *models.Dataset) { ds.Purchases = nil },
			want:   "has no purchase record",
		},
		{
			name:   "missing lead",
			mutate: func(ds *models.Dataset) { ds.Purchases[0].LeadID = "l_000000404" },
			want:   "originating lead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := validDataset()
			tt.mutate(ds)
			err := CheckInvariants(ds)
			if err == nil {
				t.Fatal("CheckInvariants() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

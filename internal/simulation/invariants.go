package simulation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/outcome"
)

// maxViolations caps how many violations CheckInvariants reports.
const maxViolations = 20

// CheckInvariants verifies the guarantees generation holds by construction:
// identifier uniqueness, eligibility customers drawn from the population,
// lead and purchase records backed by their events, purchases backed by an
// earlier lead, and probabilities inside their clamp ranges. It returns nil
// or the joined violations.
func CheckInvariants(ds *models.Dataset) error {
	var errs []error
	fail := func(format string, args ...any) {
		if len(errs) < maxViolations {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	checkUnique := func(table string, n int, id func(int) string) map[string]int {
		index := make(map[string]int, n)
		for i := 0; i < n; i++ {
			key := id(i)
			if _, dup := index[key]; dup {
				fail("%s: duplicate id %s", table, key)
			}
			index[key] = i
		}
		return index
	}

	customers := checkUnique("raw_customers", len(ds.Customers), func(i int) string { return ds.Customers[i].CustomerID })
	checkUnique("raw_vehicles", len(ds.Vehicles), func(i int) string { return ds.Vehicles[i].VehicleID })
	checkUnique("raw_events", len(ds.Events), func(i int) string { return ds.Events[i].EventID })
	checkUnique("raw_eligibility_decisions", len(ds.Eligibility), func(i int) string { return ds.Eligibility[i].EligibilityID })
	leads := checkUnique("raw_leads", len(ds.Leads), func(i int) string { return ds.Leads[i].LeadID })
	checkUnique("raw_purchases", len(ds.Purchases), func(i int) string { return ds.Purchases[i].PurchaseID })

	for _, d := range ds.Eligibility {
		if _, ok := customers[d.CustomerID]; !ok {
			fail("eligibility %s: customer %s not in population", d.EligibilityID, d.CustomerID)
		}
		if d.ApprovalProbability < outcome.MinApprovalProbability || d.ApprovalProbability > outcome.MaxApprovalProbability {
			fail("eligibility %s: approval probability %v out of range", d.EligibilityID, d.ApprovalProbability)
		}
		if d.Approved == (len(d.ReasonCodes) > 0) {
			fail("eligibility %s: approved=%t with %d reason codes", d.EligibilityID, d.Approved, len(d.ReasonCodes))
		}
	}

	leadEvents := make(map[string]bool)
	purchaseEvents := make(map[string]bool)
	for _, e := range ds.Events {
		if e.CustomerID == nil || e.VehicleID == nil {
			continue
		}
		key := refKey(*e.CustomerID, *e.VehicleID, e.Timestamp.UnixNano())
		switch e.Type() {
		case models.EventLeadSubmit:
			leadEvents[key] = true
		case models.EventPurchaseComplete:
			purchaseEvents[key] = true
		}
	}

	for _, l := range ds.Leads {
		if !leadEvents[refKey(l.CustomerID, l.VehicleID, l.LeadTS.UnixNano())] {
			fail("lead %s: no matching lead_submit event", l.LeadID)
		}
	}

	purchases := make(map[string]bool, len(ds.Purchases))
	for _, p := range ds.Purchases {
		key := refKey(p.CustomerID, p.VehicleID, p.PurchaseTS.UnixNano())
		purchases[key] = true
		if !purchaseEvents[key] {
			fail("purchase %s: no matching purchase_complete event", p.PurchaseID)
		}

		i, ok := leads[p.LeadID]
		if !ok {
			fail("purchase %s: originating lead %s missing", p.PurchaseID, p.LeadID)
			continue
		}
		l := ds.Leads[i]
		if l.CustomerID != p.CustomerID || l.VehicleID != p.VehicleID {
			fail("purchase %s: lead %s is for %s/%s", p.PurchaseID, l.LeadID, l.CustomerID, l.VehicleID)
		}
		if !p.PurchaseTS.After(l.LeadTS) {
			fail("purchase %s: timestamp %v not after lead %v", p.PurchaseID, p.PurchaseTS, l.LeadTS)
		}
	}

	for key := range purchaseEvents {
		if !purchases[key] {
			fail("purchase_complete event %s has no purchase record", key)
		}
	}

	return errors.Join(errs...)
}

func refKey(customerID, vehicleID string, ts int64) string {
	return fmt.Sprintf("%s|%s|%d", customerID, vehicleID, ts)
}

package models

// Dataset holds every collection produced by one generation run.
type Dataset struct {
	Customers   []Customer
	Vehicles    []Vehicle
	Events      []Event
	Eligibility []EligibilityDecision
	Leads       []Lead
	Purchases   []Purchase
}

// Counts returns row counts keyed by raw table name.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		"raw_customers":             len(d.Customers),
		"raw_vehicles":              len(d.Vehicles),
		"raw_events":                len(d.Events),
		"raw_eligibility_decisions": len(d.Eligibility),
		"raw_leads":                 len(d.Leads),
		"raw_purchases":             len(d.Purchases),
	}
}

// Ptr returns a pointer to a copy of v. Used for nullable columns.
func Ptr[T any](v T) *T {
	return &v
}

package models

import "time"

// LeadType is the intent action a visitor submitted.
type LeadType string

const (
	LeadContactDealer     LeadType = "contact_dealer"
	LeadScheduleTestDrive LeadType = "schedule_test_drive"
	LeadRequestQuote      LeadType = "request_quote"
)

// ReasonCode explains a declined eligibility decision.
type ReasonCode string

const (
	ReasonDTIHigh            ReasonCode = "DTI_HIGH"
	ReasonCreditFileThin     ReasonCode = "CREDIT_FILE_THIN"
	ReasonIncomeInsufficient ReasonCode = "INCOME_INSUFFICIENT"
	ReasonVehiclePriceHigh   ReasonCode = "VEHICLE_PRICE_HIGH"
)

// EligibilityDecision is a synthetic financing pre-qualification outcome.
// ReasonCodes is empty unless the decision was declined.
type EligibilityDecision struct {
	EligibilityID       string       `json:"eligibility_id"`
	CustomerID          string       `json:"customer_id"`
	DecisionTS          time.Time    `json:"decision_ts"`
	Approved            bool         `json:"approved_flag"`
	ApprovalProbability float64      `json:"approval_prob"`
	MaxAmount           float64      `json:"max_amount"`
	APREstimate         float64      `json:"apr_est"`
	ReasonCodes         []ReasonCode `json:"reason_codes"`
}

// Lead is a recorded intent action tied to a vehicle. Every lead has a
// lead_submit event with the same customer, vehicle and timestamp.
type Lead struct {
	LeadID     string    `json:"lead_id"`
	CustomerID string    `json:"customer_id"`
	VehicleID  string    `json:"vehicle_id"`
	LeadTS     time.Time `json:"lead_ts"`
	LeadType   LeadType  `json:"lead_type"`
	CampaignID *string   `json:"campaign_id"`
}

// Purchase is a completed sale. LeadID names the lead that produced it, and
// PurchaseTS is always after that lead.
type Purchase struct {
	PurchaseID    string    `json:"purchase_id"`
	CustomerID    string    `json:"customer_id"`
	VehicleID     string    `json:"vehicle_id"`
	LeadID        string    `json:"lead_id"`
	PurchaseTS    time.Time `json:"purchase_ts"`
	PurchasePrice float64   `json:"purchase_price"`
}

package models

import "time"

// IncomeBand is a customer's self-reported income bracket.
type IncomeBand string

const (
	IncomeLow      IncomeBand = "Low"
	IncomeMedium   IncomeBand = "Medium"
	IncomeHigh     IncomeBand = "High"
	IncomeVeryHigh IncomeBand = "Very High"
)

// CreditBand is a customer's credit score bracket.
type CreditBand string

const (
	CreditSubprime   CreditBand = "Subprime"
	CreditNearPrime  CreditBand = "Near Prime"
	CreditPrime      CreditBand = "Prime"
	CreditSuperPrime CreditBand = "Super Prime"
)

// Segment is the behavioral segment that drives funnel intent.
type Segment string

const (
	SegmentValueSeeker    Segment = "value_seeker"
	SegmentPaymentFocused Segment = "payment_focused"
	SegmentPremiumBuyer   Segment = "premium_buyer"
	SegmentUndecided      Segment = "undecided"
)

// Customer is one known shopper, latest state.
type Customer struct {
	CustomerID    string     `json:"customer_id"`
	State         string     `json:"state"`
	Zip3          string     `json:"zip3"`
	IncomeBand    IncomeBand `json:"income_band"`
	CreditBand    CreditBand `json:"credit_score_band"`
	CustomerSince time.Time  `json:"customer_since"`
	Segment       Segment    `json:"segment"`
}

// Package outcome holds the pure probability and amount functions that drive
// funnel stage transitions. Every function is deterministic and returns values
// inside its documented clamp range.
package outcome

import (
	"math"

	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

// Approval bounds.
const (
	MinApprovalProbability = 0.05
	MaxApprovalProbability = 0.97

	// approvalPriceThreshold is the list price above which approval odds
	// decline linearly.
	approvalPriceThreshold = 25000.0
	approvalPriceSlope     = 0.0000035
)

// Purchase bounds.
const (
	MinPurchaseProbability = 0.002
	MaxPurchaseProbability = 0.22

	basePurchaseRate        = 0.045
	personalizationBuyBoost = 0.012
	approvedBuyBoost        = 0.020
	declinedBuyPenalty      = 0.020
	savedBuyBoost           = 0.010
	watchedBuyBoost         = 0.008
)

// Browsing and entry rates.
const (
	SaveRate                = 0.10
	PersonalizedSaveBoost   = 0.03
	PriceWatchRate          = 0.06
	PersonalizedPrequalLift = 0.03
	DeclinedLeadRate        = 0.07
)

var approvalBase = map[models.CreditBand]float64{
	models.CreditSubprime:   0.35,
	models.CreditNearPrime:  0.58,
	models.CreditPrime:      0.76,
	models.CreditSuperPrime: 0.88,
}

// ApprovalProbability returns the chance a pre-qualification is approved for
// a credit band and list price, clamped to [0.05, 0.97]. Unknown bands use
// the lowest base rate.
func ApprovalProbability(band models.CreditBand, price float64) float64 {
	base, ok := approvalBase[band]
	if !ok {
		base = approvalBase[models.CreditSubprime]
	}
	adj := -approvalPriceSlope * math.Max(price-approvalPriceThreshold, 0)
	return sampling.Clip(base+adj, MinApprovalProbability, MaxApprovalProbability)
}

// Intent is a segment's funnel propensity.
type Intent struct {
	StartPrequal      float64
	LeadGivenApproval float64
}

// IntentParameters returns the pre-qualification start probability and the
// lead probability given approval for a segment.
func IntentParameters(segment models.Segment) Intent {
	switch segment {
	case models.SegmentPaymentFocused:
		return Intent{StartPrequal: 0.22, LeadGivenApproval: 0.30}
	case models.SegmentValueSeeker:
		return Intent{StartPrequal: 0.18, LeadGivenApproval: 0.26}
	case models.SegmentPremiumBuyer:
		return Intent{StartPrequal: 0.28, LeadGivenApproval: 0.34}
	default:
		return Intent{StartPrequal: 0.12, LeadGivenApproval: 0.22}
	}
}

// PrequalProbability is the segment start rate plus the personalization lift.
func PrequalProbability(segment models.Segment, personalized bool) float64 {
	p := IntentParameters(segment).StartPrequal
	if personalized {
		p += PersonalizedPrequalLift
	}
	return p
}

// SaveProbability is the per-view chance of a save_vehicle.
func SaveProbability(personalized bool) float64 {
	if personalized {
		return SaveRate + PersonalizedSaveBoost
	}
	return SaveRate
}

// LeadProbability is the chance a pre-qualified visitor submits a lead.
func LeadProbability(segment models.Segment, approved bool) float64 {
	if approved {
		return IntentParameters(segment).LeadGivenApproval
	}
	return DeclinedLeadRate
}

// PurchaseSignals are the visit outcomes that shift purchase odds.
type PurchaseSignals struct {
	Personalized bool
	Approved     bool
	Saved        bool
	Watched      bool
}

// PurchaseProbability returns the chance a lead converts, clamped to
// [0.002, 0.22].
func PurchaseProbability(s PurchaseSignals) float64 {
	p := basePurchaseRate
	if s.Personalized {
		p += personalizationBuyBoost
	}
	if s.Approved {
		p += approvedBuyBoost
	} else {
		p -= declinedBuyPenalty
	}
	if s.Saved {
		p += savedBuyBoost
	}
	if s.Watched {
		p += watchedBuyBoost
	}
	return sampling.Clip(p, MinPurchaseProbability, MaxPurchaseProbability)
}

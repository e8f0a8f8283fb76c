package simulation

import (
	"fmt"
	"time"

	"github.com/nvandessel/navigator/internal/experiment"
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/outcome"
	"github.com/nvandessel/navigator/internal/sampling"
)

// visit is the mutable state of one simulated session.
type visit struct {
	customer    *models.Customer
	customerID  *string
	anonymousID string
	sessionID   string
	campaignID  *string
	variant     models.Variant
	platform    models.Platform
	clock       time.Time
	saved       bool
	watched     bool
}

func (v *visit) personalized() bool {
	return v.variant.Personalized()
}

// advance moves the session clock forward by a uniform number of seconds in
// [lo, hi).
func (v *visit) advance(src *sampling.Source, lo, hi int) {
	v.clock = v.clock.Add(time.Duration(src.IntRange(lo, hi)) * time.Second)
}

func (s *Simulator) simulateVisit(c *models.Customer) {
	src := s.src
	anonymous := src.Bernoulli(anonymousShare)

	v := &visit{
		customer:    c,
		anonymousID: fmt.Sprintf("a_%08d", src.IntRange(1, maxAnonymousID)),
		sessionID:   s.seq.Session.Next(),
	}
	if !anonymous {
		v.customerID = &c.CustomerID
	}
	windowSeconds := s.cfg.Days * 86400
	v.clock = s.start.Add(time.Duration(src.IntRange(0, windowSeconds)) * time.Second)
	v.platform = platforms.draw(src)
	v.variant = s.assigner.Resolve(c.CustomerID, anonymous)
	if src.Bernoulli(campaignShare) {
		v.campaignID = models.Ptr(campaigns.draw(src))
	}

	p := v.personalized()

	// Baseline browsing.
	v.advance(src, 1, 45)
	s.emit(v, models.PageViewMeta{Personalization: p}, nil, v.clock)
	v.advance(src, 1, 45)
	s.emit(v, models.SearchMeta{Personalization: p}, nil, v.clock)

	chosen := s.browseVehicles(v)
	if chosen == nil {
		return
	}

	s.financing(v, chosen)
}

// browseVehicles emits the vehicle views of a visit and returns the first
// viewed vehicle, or nil when the inventory is empty.
func (s *Simulator) browseVehicles(v *visit) *models.Vehicle {
	src := s.src
	p := v.personalized()

	n := src.IntRange(minVehicleViews, maxVehicleViews)
	viewed := src.SampleIndices(len(s.vehicles), n)
	if len(viewed) == 0 {
		return nil
	}

	v.advance(src, 15, 55)
	for _, idx := range viewed {
		veh := &s.vehicles[idx]

		meta := models.VehicleViewMeta{Personalization: p}
		if p {
			meta.RecRank = models.Ptr(src.IntRange(1, maxRecommendRank))
		}
		meta.LatencyMS = int(sampling.Clip(src.Normal(420, 120), 80, 2000))
		s.emit(v, meta, &veh.VehicleID, v.clock)
		v.advance(src, 15, 55)

		if src.Bernoulli(outcome.SaveProbability(p)) {
			v.saved = true
			s.emit(v, models.SaveVehicleMeta{Personalization: p}, &veh.VehicleID, v.clock)
			v.advance(src, 10, 30)
		}

		if src.Bernoulli(outcome.PriceWatchRate) {
			v.watched = true
			s.emit(v, models.PriceWatchMeta{Personalization: p}, &veh.VehicleID, v.clock)
			v.advance(src, 10, 30)
		}
	}

	return &s.vehicles[viewed[0]]
}

// financing plays the pre-qualification, lead and purchase stages against
// the chosen vehicle.
func (s *Simulator) financing(v *visit, veh *models.Vehicle) {
	src := s.src
	c := v.customer
	p := v.personalized()
	price := veh.MSRP
	vehicleID := &veh.VehicleID

	prequalP := outcome.PrequalProbability(c.Segment, p)
	didPrequal := src.Bernoulli(prequalP)
	s.trace(v, "visit.prequal", prequalP, didPrequal)
	if !didPrequal {
		return
	}

	// Pre-qualification requires sign-in, so the rest of the visit is
	// attributed to the customer even when it started anonymous.
	v.customerID = &c.CustomerID

	s.emit(v, models.StartPrequalMeta{Personalization: p}, vehicleID, v.clock)
	v.advance(src, 20, 90)
	s.emit(v, models.SubmitPrequalMeta{Personalization: p}, vehicleID, v.clock)
	v.advance(src, 10, 40)

	approvalP := outcome.ApprovalProbability(c.CreditBand, price)
	approved := src.Bernoulli(approvalP)
	terms := outcome.OfferTerms(src, price, approved)
	s.trace(v, "visit.approval", approvalP, approved)

	s.result.Eligibility = append(s.result.Eligibility, models.EligibilityDecision{
		EligibilityID:       s.seq.Eligibility.Next(),
		CustomerID:          c.CustomerID,
		DecisionTS:          v.clock,
		Approved:            approved,
		ApprovalProbability: approvalP,
		MaxAmount:           terms.MaxAmount,
		APREstimate:         terms.APR,
		ReasonCodes:         terms.ReasonCodes,
	})

	v.clock = v.clock.Add(10 * time.Second)
	s.emit(v, models.ViewOfferMeta{Personalization: p, Approved: approved}, vehicleID, v.clock)
	v.advance(src, 10, 50)

	leadP := outcome.LeadProbability(c.Segment, approved)
	didLead := src.Bernoulli(leadP)
	s.trace(v, "visit.lead", leadP, didLead)
	if !didLead {
		return
	}

	leadType := leadTypes.draw(src)
	s.emit(v, models.LeadSubmitMeta{LeadType: leadType, Personalization: p}, vehicleID, v.clock)
	lead := models.Lead{
		LeadID:     s.seq.Lead.Next(),
		CustomerID: c.CustomerID,
		VehicleID:  veh.VehicleID,
		LeadTS:     v.clock,
		LeadType:   leadType,
		CampaignID: v.campaignID,
	}
	s.result.Leads = append(s.result.Leads, lead)

	buyP := outcome.PurchaseProbability(outcome.PurchaseSignals{
		Personalized: p,
		Approved:     approved,
		Saved:        v.saved,
		Watched:      v.watched,
	})
	didBuy := src.Bernoulli(buyP)
	s.trace(v, "visit.purchase", buyP, didBuy)
	if !didBuy {
		return
	}

	purchaseTS := lead.LeadTS.
		AddDate(0, 0, src.IntRange(0, 15)).
		Add(time.Duration(src.IntRange(1, 20)) * time.Hour)
	purchasePrice := outcome.PurchasePrice(src, price)

	s.result.Purchases = append(s.result.Purchases, models.Purchase{
		PurchaseID:    s.seq.Purchase.Next(),
		CustomerID:    c.CustomerID,
		VehicleID:     veh.VehicleID,
		LeadID:        lead.LeadID,
		PurchaseTS:    purchaseTS,
		PurchasePrice: purchasePrice,
	})
	s.emit(v, models.PurchaseCompleteMeta{PurchasePrice: purchasePrice, Personalization: p}, vehicleID, purchaseTS)
}

func (s *Simulator) emit(v *visit, meta models.Metadata, vehicleID *string, at time.Time) {
	s.result.Events = append(s.result.Events, models.Event{
		EventID:      s.seq.Event.Next(),
		Timestamp:    at,
		CustomerID:   v.customerID,
		AnonymousID:  v.anonymousID,
		SessionID:    v.sessionID,
		VehicleID:    vehicleID,
		CampaignID:   v.campaignID,
		ExperimentID: experiment.ID,
		Variant:      v.variant,
		Platform:     v.platform,
		Metadata:     meta,
	})
}

func (s *Simulator) trace(v *visit, stage string, probability float64, entered bool) {
	if s.decisions == nil {
		return
	}
	s.decisions.Log(map[string]any{
		"event":       stage,
		"session_id":  v.sessionID,
		"customer_id": v.customer.CustomerID,
		"variant":     string(v.variant),
		"probability": probability,
		"entered":     entered,
	})
}

package models

import (
	"encoding/json"
	"time"
)

// EventType enumerates the browsing and funnel events.
type EventType string

const (
	EventPageView         EventType = "page_view"
	EventSearch           EventType = "search"
	EventVehicleView      EventType = "vehicle_view"
	EventSaveVehicle      EventType = "save_vehicle"
	EventPriceWatch       EventType = "price_watch"
	EventStartPrequal     EventType = "start_prequal"
	EventSubmitPrequal    EventType = "submit_prequal"
	EventViewOffer        EventType = "view_offer"
	EventLeadSubmit       EventType = "lead_submit"
	EventPurchaseComplete EventType = "purchase_complete"
)

// EventTypes lists every event type in funnel order.
var EventTypes = []EventType{
	EventPageView, EventSearch, EventVehicleView, EventSaveVehicle, EventPriceWatch,
	EventStartPrequal, EventSubmitPrequal, EventViewOffer, EventLeadSubmit, EventPurchaseComplete,
}

// Variant is an arm of the personalization experiment.
type Variant string

const (
	VariantControl   Variant = "control"
	VariantTreatment Variant = "treatment"
)

// Personalized reports whether the variant receives personalization.
func (v Variant) Personalized() bool {
	return v == VariantTreatment
}

// Platform is the surface a session ran on.
type Platform string

const (
	PlatformWeb Platform = "web"
	PlatformApp Platform = "app"
)

// Event is one row of the behavioral event stream. Its type is carried by
// the metadata variant, so a type and payload can never disagree.
type Event struct {
	EventID      string
	Timestamp    time.Time
	CustomerID   *string
	AnonymousID  string
	SessionID    string
	VehicleID    *string
	CampaignID   *string
	ExperimentID string
	Variant      Variant
	Platform     Platform
	Metadata     Metadata
}

// Type returns the event type.
func (e Event) Type() EventType {
	return e.Metadata.Kind()
}

// MetadataJSON serializes the metadata payload.
func (e Event) MetadataJSON() (string, error) {
	b, err := json.Marshal(e.Metadata)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Metadata is the per-type event payload. The concrete types below are the
// only implementations.
type Metadata interface {
	Kind() EventType
}

// PageViewMeta is the payload of a page_view event.
type PageViewMeta struct {
	Personalization bool `json:"personalization"`
}

// SearchMeta is the payload of a search event.
type SearchMeta struct {
	Personalization bool `json:"personalization"`
}

// VehicleViewMeta is the payload of a vehicle_view event. RecRank is set only
// under personalization.
type VehicleViewMeta struct {
	Personalization bool `json:"personalization"`
	RecRank         *int `json:"rec_rank"`
	LatencyMS       int  `json:"latency_ms"`
}

// SaveVehicleMeta is the payload of a save_vehicle event.
type SaveVehicleMeta struct {
	Personalization bool `json:"personalization"`
}

// PriceWatchMeta is the payload of a price_watch event.
type PriceWatchMeta struct {
	Personalization bool `json:"personalization"`
}

// StartPrequalMeta is the payload of a start_prequal event.
type StartPrequalMeta struct {
	Personalization bool `json:"personalization"`
}

// SubmitPrequalMeta is the payload of a submit_prequal event.
type SubmitPrequalMeta struct {
	Personalization bool `json:"personalization"`
}

// ViewOfferMeta is the payload of a view_offer event.
type ViewOfferMeta struct {
	Personalization bool `json:"personalization"`
	Approved        bool `json:"approved"`
}

// LeadSubmitMeta is the payload of a lead_submit event.
type LeadSubmitMeta struct {
	LeadType        LeadType `json:"lead_type"`
	Personalization bool     `json:"personalization"`
}

// PurchaseCompleteMeta is the payload of a purchase_complete event.
type PurchaseCompleteMeta struct {
	PurchasePrice   float64 `json:"purchase_price"`
	Personalization bool    `json:"personalization"`
}

func (PageViewMeta) Kind() EventType         { return EventPageView }
func (SearchMeta) Kind() EventType           { return EventSearch }
func (VehicleViewMeta) Kind() EventType      { return EventVehicleView }
func (SaveVehicleMeta) Kind() EventType      { return EventSaveVehicle }
func (PriceWatchMeta) Kind() EventType       { return EventPriceWatch }
func (StartPrequalMeta) Kind() EventType     { return EventStartPrequal }
func (SubmitPrequalMeta) Kind() EventType    { return EventSubmitPrequal }
func (ViewOfferMeta) Kind() EventType        { return EventViewOffer }
func (LeadSubmitMeta) Kind() EventType       { return EventLeadSubmit }
func (PurchaseCompleteMeta) Kind() EventType { return EventPurchaseComplete }

package models

import "testing"

func TestEventTypeFollowsMetadata(t *testing.T) {
	tests := []struct {
		meta Metadata
		want EventType
	}{
		{PageViewMeta{}, EventPageView},
		{SearchMeta{}, EventSearch},
		{VehicleViewMeta{}, EventVehicleView},
		{SaveVehicleMeta{}, EventSaveVehicle},
		{PriceWatchMeta{}, EventPriceWatch},
		{StartPrequalMeta{}, EventStartPrequal},
		{SubmitPrequalMeta{}, EventSubmitPrequal},
		{ViewOfferMeta{}, EventViewOffer},
		{LeadSubmitMeta{}, EventLeadSubmit},
		{PurchaseCompleteMeta{}, EventPurchaseComplete},
	}
	if len(tests) != len(EventTypes) {
		t.Fatalf("test table covers %d types, EventTypes has %d", len(tests), len(EventTypes))
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			e := Event{Metadata: tt.meta}
			if got := e.Type(); got != tt.want {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadataJSON(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{"page view", PageViewMeta{Personalization: true}, `{"personalization":true}`},
		{"vehicle view control", VehicleViewMeta{LatencyMS: 400}, `{"personalization":false,"rec_rank":null,"latency_ms":400}`},
		{"vehicle view treatment", VehicleViewMeta{Personalization: true, RecRank: Ptr(3), LatencyMS: 81}, `{"personalization":true,"rec_rank":3,"latency_ms":81}`},
		{"offer", ViewOfferMeta{Approved: true}, `{"personalization":false,"approved":true}`},
		{"lead", LeadSubmitMeta{LeadType: LeadRequestQuote}, `{"lead_type":"request_quote","personalization":false}`},
		{"purchase", PurchaseCompleteMeta{PurchasePrice: 31250.5}, `{"purchase_price":31250.5,"personalization":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Event{Metadata: tt.meta}.MetadataJSON()
			if err != nil {
				t.Fatalf("MetadataJSON: %v", err)
			}
			if got != tt.want {
				t.Errorf("MetadataJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVariantPersonalized(t *testing.T) {
	if VariantControl.Personalized() {
		t.Error("control should not be personalized")
	}
	if !VariantTreatment.Personalized() {
		t.Error("treatment should be personalized")
	}
}

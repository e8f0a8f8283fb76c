package outcome

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

var allBands = []interface{}{
	models.CreditSubprime, models.CreditNearPrime, models.CreditPrime, models.CreditSuperPrime,
}

func TestApprovalProbabilityBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("approval probability stays in [0.05, 0.97]", prop.ForAll(
		func(band models.CreditBand, price float64) bool {
			p := ApprovalProbability(band, price)
			return p >= MinApprovalProbability && p <= MaxApprovalProbability
		},
		gen.OneConstOf(allBands...),
		gen.Float64Range(-1e6, 1e7),
	))

	properties.Property("approval never rises with price", prop.ForAll(
		func(band models.CreditBand, price, extra float64) bool {
			return ApprovalProbability(band, price+extra) <= ApprovalProbability(band, price)
		},
		gen.OneConstOf(allBands...),
		gen.Float64Range(0, 200000),
		gen.Float64Range(0, 200000),
	))

	properties.TestingRun(t)
}

func TestPurchaseProbabilityBounds(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("purchase probability stays in [0.002, 0.22]", prop.ForAll(
		func(personalized, approved, saved, watched bool) bool {
			p := PurchaseProbability(PurchaseSignals{
				Personalized: personalized,
				Approved:     approved,
				Saved:        saved,
				Watched:      watched,
			})
			return p >= MinPurchaseProbability && p <= MaxPurchaseProbability
		},
		gen.Bool(), gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestApprovalProbability(t *testing.T) {
	tests := []struct {
		name  string
		band  models.CreditBand
		price float64
		want  float64
	}{
		{"subprime at threshold", models.CreditSubprime, 25000, 0.35},
		{"subprime below threshold", models.CreditSubprime, 10000, 0.35},
		{"near prime", models.CreditNearPrime, 20000, 0.58},
		{"prime discounted", models.CreditPrime, 45000, 0.76 - 0.07},
		{"super prime", models.CreditSuperPrime, 25000, 0.88},
		{"floor", models.CreditSubprime, 1e6, MinApprovalProbability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApprovalProbability(tt.band, tt.price)
			if !approx(got, tt.want) {
				t.Errorf("ApprovalProbability(%q, %v) = %v, want %v", tt.band, tt.price, got, tt.want)
			}
		})
	}
}

func TestApprovalDropsForExpensiveVehicle(t *testing.T) {
	expensive := ApprovalProbability(models.CreditSubprime, 80000)
	cheap := ApprovalProbability(models.CreditSubprime, 20000)
	if !(expensive < cheap) {
		t.Errorf("subprime approval at 80k (%v) should be below 20k (%v)", expensive, cheap)
	}
}

func TestIntentParameters(t *testing.T) {
	tests := []struct {
		segment models.Segment
		want    Intent
	}{
		{models.SegmentPaymentFocused, Intent{0.22, 0.30}},
		{models.SegmentValueSeeker, Intent{0.18, 0.26}},
		{models.SegmentPremiumBuyer, Intent{0.28, 0.34}},
		{models.SegmentUndecided, Intent{0.12, 0.22}},
		{"other", Intent{0.12, 0.22}},
	}
	for _, tt := range tests {
		t.Run(string(tt.segment), func(t *testing.T) {
			if got := IntentParameters(tt.segment); got != tt.want {
				t.Errorf("IntentParameters(%q) = %+v, want %+v", tt.segment, got, tt.want)
			}
		})
	}
}

func TestStageProbabilities(t *testing.T) {
	if got := PrequalProbability(models.SegmentPremiumBuyer, true); !approx(got, 0.31) {
		t.Errorf("PrequalProbability(premium, personalized) = %v", got)
	}
	if got := SaveProbability(false); got != SaveRate {
		t.Errorf("SaveProbability(false) = %v", got)
	}
	if got := SaveProbability(true); !approx(got, 0.13) {
		t.Errorf("SaveProbability(true) = %v", got)
	}
	if got := LeadProbability(models.SegmentValueSeeker, true); got != 0.26 {
		t.Errorf("LeadProbability(value_seeker, approved) = %v", got)
	}
	if got := LeadProbability(models.SegmentValueSeeker, false); got != DeclinedLeadRate {
		t.Errorf("LeadProbability(value_seeker, declined) = %v", got)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-12 && d > -1e-12
}

func TestPurchaseProbability(t *testing.T) {
	tests := []struct {
		name    string
		signals PurchaseSignals
		want    float64
	}{
		{"declined control", PurchaseSignals{}, 0.025},
		{"approved control", PurchaseSignals{Approved: true}, 0.065},
		{"everything", PurchaseSignals{true, true, true, true}, 0.095},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PurchaseProbability(tt.signals)
			if !approx(got, tt.want) {
				t.Errorf("PurchaseProbability(%+v) = %v, want %v", tt.signals, got, tt.want)
			}
		})
	}
}

func TestOfferTerms(t *testing.T) {
	src := sampling.New(42)
	for i := 0; i < 500; i++ {
		approved := i%2 == 0
		terms := OfferTerms(src, 40000, approved)

		if terms.MaxAmount < MinMaxAmount || terms.MaxAmount > MaxMaxAmount {
			t.Fatalf("max amount %v out of range", terms.MaxAmount)
		}
		if terms.APR < MinAPR || terms.APR > MaxAPR {
			t.Fatalf("apr %v out of range", terms.APR)
		}
		if approved && len(terms.ReasonCodes) != 0 {
			t.Fatalf("approved decision has reason codes %v", terms.ReasonCodes)
		}
		if !approved {
			if n := len(terms.ReasonCodes); n < 1 || n > 2 {
				t.Fatalf("declined decision has %d reason codes", n)
			}
			if len(terms.ReasonCodes) == 2 && terms.ReasonCodes[0] == terms.ReasonCodes[1] {
				t.Fatalf("reason codes repeat: %v", terms.ReasonCodes)
			}
		}
	}
}

func TestPurchasePrice(t *testing.T) {
	src := sampling.New(1)
	for i := 0; i < 200; i++ {
		p := PurchasePrice(src, 200000)
		if p < MinPurchasePrice || p > MaxPurchasePrice {
			t.Fatalf("purchase price %v out of range", p)
		}
	}
}

package outcome

import (
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

// Offer amount and rate bounds.
const (
	MinMaxAmount = 5000.0
	MaxMaxAmount = 100000.0
	MinAPR       = 1.9
	MaxAPR       = 29.9

	MinPurchasePrice = 5000.0
	MaxPurchasePrice = 120000.0
)

// ReasonCodes is the fixed decline reason set, in draw order.
var ReasonCodes = []models.ReasonCode{
	models.ReasonDTIHigh,
	models.ReasonCreditFileThin,
	models.ReasonIncomeInsufficient,
	models.ReasonVehiclePriceHigh,
}

// Terms are the financing terms attached to an eligibility decision.
type Terms struct {
	MaxAmount   float64
	APR         float64
	ReasonCodes []models.ReasonCode
}

// OfferTerms draws the maximum amount and APR for a decision, and for
// declines one or two distinct reason codes. Amounts are rounded to cents.
func OfferTerms(src *sampling.Source, price float64, approved bool) Terms {
	amountShare, aprMean := 0.65, 13.0
	if approved {
		amountShare, aprMean = 0.85, 7.0
	}

	t := Terms{
		MaxAmount: sampling.Round(sampling.Clip(src.Normal(price*amountShare, price*0.12), MinMaxAmount, MaxMaxAmount), 2),
		APR:       sampling.Round(sampling.Clip(src.Normal(aprMean, 2.0), MinAPR, MaxAPR), 2),
	}

	if !approved {
		n := src.IntRange(1, 3)
		for _, i := range src.SampleIndices(len(ReasonCodes), n) {
			t.ReasonCodes = append(t.ReasonCodes, ReasonCodes[i])
		}
	}

	return t
}

// PurchasePrice perturbs a list price into a sale price, clamped to
// [5000, 120000] and rounded to cents.
func PurchasePrice(src *sampling.Source, listPrice float64) float64 {
	p := src.Normal(listPrice*0.96, listPrice*0.05)
	return sampling.Round(sampling.Clip(p, MinPurchasePrice, MaxPurchasePrice), 2)
}

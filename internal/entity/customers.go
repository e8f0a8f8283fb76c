// Package entity generates the customer population and vehicle inventory.
//
// Generation is total: every population size, including zero, yields a
// population of exactly that size, and the same source reproduces it.
package entity

import (
	"strconv"
	"time"

	"github.com/nvandessel/navigator/internal/ids"
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

func (w weighted[T]) draw(src *sampling.Source) T {
	return w.values[src.WeightedIndex(w.weights)]
}

// GenerateCustomers returns n customers. CustomerSince is computed back from
// the asOf date.
func GenerateCustomers(n int, src *sampling.Source, asOf time.Time) []models.Customer {
	customers := make([]models.Customer, 0, n)
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	for i := 1; i <= n; i++ {
		income := incomeBands.draw(src)
		c := models.Customer{
			CustomerID: ids.CustomerID(i),
			State:      states.draw(src),
			Zip3:       strconv.Itoa(src.IntRange(zip3Min, zip3Max)),
			IncomeBand: income,
			CreditBand: creditBands[src.WeightedIndex(CreditWeights(income))],
			Segment:    segments.draw(src),
		}
		c.CustomerSince = today.AddDate(0, 0, -src.IntRange(tenureMinDays, tenureMaxDays))
		customers = append(customers, c)
	}

	return customers
}

// CreditWeights returns the normalized credit band distribution for an
// income band, in the order Subprime, Near Prime, Prime, Super Prime.
func CreditWeights(income models.IncomeBand) []float64 {
	adj, ok := creditAdjustments[income]
	if !ok {
		adj = creditAdjustments[models.IncomeVeryHigh]
	}

	w := make([]float64, len(baseCreditWeights))
	var total float64
	for i, base := range baseCreditWeights {
		w[i] = base + adj[i]
		if w[i] < creditWeightFloor {
			w[i] = creditWeightFloor
		}
		total += w[i]
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

// Package experiment assigns visitors to arms of the personalization
// experiment.
package experiment

import (
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

// ID is the experiment identifier stamped on every event.
const ID = "exp_personalization_v0"

// Variants lists the experiment arms. Arms are drawn with equal probability.
var Variants = []models.Variant{models.VariantControl, models.VariantTreatment}

// Assigner holds the persistent per-customer assignment and draws
// independent arms for anonymous sessions.
//
// Anonymous sessions are not linked to any assignment, so one person browsing
// anonymously twice may see both arms.
type Assigner struct {
	src         *sampling.Source
	assignments map[string]models.Variant
}

// NewAssigner assigns every customer an arm, in population order.
func NewAssigner(customers []models.Customer, src *sampling.Source) *Assigner {
	a := &Assigner{
		src:         src,
		assignments: make(map[string]models.Variant, len(customers)),
	}
	for _, c := range customers {
		a.assignments[c.CustomerID] = a.draw()
	}
	return a
}

func (a *Assigner) draw() models.Variant {
	return Variants[a.src.IntN(len(Variants))]
}

// Variant returns the persistent arm of a customer.
func (a *Assigner) Variant(customerID string) (models.Variant, bool) {
	v, ok := a.assignments[customerID]
	return v, ok
}

// AnonymousVariant draws a fresh arm for an anonymous session.
func (a *Assigner) AnonymousVariant() models.Variant {
	return a.draw()
}

// Resolve returns the arm a session sees. Anonymous sessions, and sessions of
// customers unknown to the assigner, get an independent draw.
func (a *Assigner) Resolve(customerID string, anonymous bool) models.Variant {
	if !anonymous {
		if v, ok := a.assignments[customerID]; ok {
			return v
		}
	}
	return a.AnonymousVariant()
}

// Len returns the number of persisted assignments.
func (a *Assigner) Len() int {
	return len(a.assignments)
}

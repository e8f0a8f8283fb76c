package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/nvandessel/navigator/internal/experiment"
	"github.com/nvandessel/navigator/internal/ids"
	"github.com/nvandessel/navigator/internal/logging"
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

// Stream is the derived sampling stream reserved for event simulation.
const Stream = 21

// ErrEmptyPopulation is returned when events are requested but there is no
// customer to sample visits from.
var ErrEmptyPopulation = errors.New("simulation: event target is positive but the customer population is empty")

// Session-level rates.
const (
	anonymousShare   = 0.40
	campaignShare    = 0.25
	maxAnonymousID   = 25_000_000
	minVehicleViews  = 1
	maxVehicleViews  = 7 // exclusive
	maxRecommendRank = 21
)

type choice[T any] struct {
	values  []T
	weights []float64
}

func (c choice[T]) draw(src *sampling.Source) T {
	return c.values[src.WeightedIndex(c.weights)]
}

var platforms = choice[models.Platform]{
	values:  []models.Platform{models.PlatformWeb, models.PlatformApp},
	weights: []float64{0.62, 0.38},
}

// Campaigns lists the campaign identifiers attached to attributed sessions.
var Campaigns = []string{"cmp_email_trigger", "cmp_push_trigger", "cmp_paid_search"}

var campaigns = choice[string]{
	values:  Campaigns,
	weights: []float64{0.35, 0.25, 0.40},
}

var leadTypes = choice[models.LeadType]{
	values:  []models.LeadType{models.LeadContactDealer, models.LeadScheduleTestDrive, models.LeadRequestQuote},
	weights: []float64{0.50, 0.30, 0.20},
}

// Config controls one simulation run. The simulated window is
// [End - Days, End).
type Config struct {
	Days        int
	EventTarget int
	End         time.Time
}

// Result holds the simulated collections.
type Result struct {
	Events      []models.Event
	Eligibility []models.EligibilityDecision
	Leads       []models.Lead
	Purchases   []models.Purchase
	Visits      int
}

// Simulator owns the per-type identifier sequences and the output
// collections of one run. It is single use.
type Simulator struct {
	cfg       Config
	customers []models.Customer
	vehicles  []models.Vehicle
	assigner  *experiment.Assigner
	src       *sampling.Source
	seq       *ids.Sequences
	decisions *logging.DecisionLogger
	start     time.Time
	result    Result
}

// New validates the inputs and returns a ready simulator.
func New(cfg Config, customers []models.Customer, vehicles []models.Vehicle, assigner *experiment.Assigner, src *sampling.Source) (*Simulator, error) {
	if cfg.EventTarget > 0 && len(customers) == 0 {
		return nil, ErrEmptyPopulation
	}
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("simulation: days must be positive, got %d", cfg.Days)
	}
	if cfg.End.IsZero() {
		return nil, fmt.Errorf("simulation: end of window is required")
	}

	return &Simulator{
		cfg:       cfg,
		customers: customers,
		vehicles:  vehicles,
		assigner:  assigner,
		src:       src,
		seq:       ids.NewSequences(),
		start:     cfg.End.AddDate(0, 0, -cfg.Days),
	}, nil
}

// SetDecisionLogger enables per-visit decision tracing. A nil logger
// disables it.
func (s *Simulator) SetDecisionLogger(dl *logging.DecisionLogger) {
	s.decisions = dl
}

// Run simulates visits until at least EventTarget events exist. Every visit
// adds at least two events, so Run always terminates.
func (s *Simulator) Run() (Result, error) {
	if s.result.Visits > 0 {
		return Result{}, fmt.Errorf("simulation: Run called twice")
	}

	for len(s.result.Events) < s.cfg.EventTarget {
		c := &s.customers[s.src.IntN(len(s.customers))]
		s.simulateVisit(c)
		s.result.Visits++
	}

	return s.result, nil
}

// Sequences exposes the identifier sequences, mainly for tests.
func (s *Simulator) Sequences() *ids.Sequences {
	return s.seq
}

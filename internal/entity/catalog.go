package entity

import "github.com/nvandessel/navigator/internal/models"

// weighted pairs a categorical value list with its sampling weights.
type weighted[T any] struct {
	values  []T
	weights []float64
}

var states = weighted[string]{
	values: []string{"CA", "TX", "FL", "NY", "PA", "IL", "OH", "GA", "NC", "MI",
		"NJ", "VA", "WA", "AZ", "MA", "TN", "IN", "MO", "MD", "WI"},
	weights: []float64{0.12, 0.09, 0.07, 0.06, 0.04, 0.04, 0.04, 0.035, 0.035, 0.03,
		0.03, 0.03, 0.03, 0.03, 0.025, 0.025, 0.02, 0.02, 0.02, 0.02},
}

var incomeBands = weighted[models.IncomeBand]{
	values:  []models.IncomeBand{models.IncomeLow, models.IncomeMedium, models.IncomeHigh, models.IncomeVeryHigh},
	weights: []float64{0.25, 0.45, 0.22, 0.08},
}

var creditBands = []models.CreditBand{
	models.CreditSubprime, models.CreditNearPrime, models.CreditPrime, models.CreditSuperPrime,
}

// baseCreditWeights is the population credit mix before the income adjustment.
var baseCreditWeights = []float64{0.18, 0.30, 0.37, 0.15}

// creditAdjustments shifts the base credit mix per income band.
var creditAdjustments = map[models.IncomeBand][]float64{
	models.IncomeLow:      {0.10, 0.05, -0.10, -0.05},
	models.IncomeMedium:   {0.03, 0.03, -0.04, -0.02},
	models.IncomeHigh:     {-0.05, -0.02, 0.04, 0.03},
	models.IncomeVeryHigh: {-0.08, -0.04, 0.05, 0.07},
}

// creditWeightFloor keeps every credit band reachable after adjustment.
const creditWeightFloor = 0.01

var segments = weighted[models.Segment]{
	values: []models.Segment{
		models.SegmentValueSeeker, models.SegmentPaymentFocused,
		models.SegmentPremiumBuyer, models.SegmentUndecided,
	},
	weights: []float64{0.34, 0.30, 0.16, 0.20},
}

const (
	zip3Min = 100
	zip3Max = 999 // exclusive

	tenureMinDays = 30
	tenureMaxDays = 3650 // exclusive
)

var makes = weighted[string]{
	values: []string{"Toyota", "Honda", "Ford", "Chevrolet", "Nissan", "Hyundai", "Kia", "BMW",
		"Mercedes-Benz", "Audi", "Tesla", "Jeep", "Subaru", "Volkswagen", "Mazda", "Lexus"},
	weights: []float64{0.12, 0.10, 0.10, 0.09, 0.07, 0.07, 0.06, 0.05,
		0.04, 0.04, 0.03, 0.06, 0.05, 0.04, 0.04, 0.04},
}

// ModelsByMake is the fixed make to model catalog.
var ModelsByMake = map[string][]string{
	"Toyota":        {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma"},
	"Honda":         {"Civic", "Accord", "CR-V", "Pilot"},
	"Ford":          {"F-150", "Escape", "Explorer", "Mustang"},
	"Chevrolet":     {"Silverado", "Equinox", "Malibu", "Tahoe"},
	"Nissan":        {"Altima", "Sentra", "Rogue", "Pathfinder"},
	"Hyundai":       {"Elantra", "Sonata", "Tucson", "Santa Fe"},
	"Kia":           {"Forte", "K5", "Sportage", "Sorento"},
	"BMW":           {"3 Series", "X3", "X5"},
	"Mercedes-Benz": {"C-Class", "GLC", "E-Class"},
	"Audi":          {"A4", "Q5", "A6"},
	"Tesla":         {"Model 3", "Model Y", "Model S"},
	"Jeep":          {"Wrangler", "Grand Cherokee", "Compass"},
	"Subaru":        {"Outback", "Forester", "Crosstrek"},
	"Volkswagen":    {"Jetta", "Tiguan", "Atlas"},
	"Mazda":         {"Mazda3", "CX-5", "CX-9"},
	"Lexus":         {"ES", "RX", "NX"},
}

var bodyTypeByModel = func() map[string]models.BodyType {
	m := make(map[string]models.BodyType)
	for _, name := range []string{"RAV4", "Highlander", "CR-V", "Pilot", "Escape", "Explorer",
		"Rogue", "Pathfinder", "Tucson", "Santa Fe", "Sportage", "Sorento", "X3", "X5", "GLC",
		"Q5", "Model Y", "Grand Cherokee", "Compass", "Outback", "Forester", "Crosstrek",
		"Tiguan", "Atlas", "CX-5", "CX-9", "RX", "NX"} {
		m[name] = models.BodySUV
	}
	for _, name := range []string{"F-150", "Silverado", "Tacoma"} {
		m[name] = models.BodyTruck
	}
	m["Mustang"] = models.BodyCoupe
	m["Mazda3"] = models.BodyHatchback
	return m
}()

var premiumMakes = map[string]bool{
	"BMW": true, "Mercedes-Benz": true, "Audi": true, "Lexus": true, "Tesla": true,
}

const (
	modelYearMin = 2015
	modelYearMax = 2026 // exclusive; also the reference year for vehicle age

	basePriceTruck = 42000.0
	basePriceSUV   = 38000.0
	basePriceOther = 28000.0

	premiumMakePremium = 18000.0
	teslaPremium       = 12000.0

	depreciationMean   = 900.0
	depreciationStddev = 200.0
	priceNoiseStddev   = 2500.0

	minListPrice = 9000.0
	maxListPrice = 95000.0
)

package entity

import (
	"github.com/nvandessel/navigator/internal/ids"
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

// GenerateVehicles returns n vehicle listings. Attributes and price noise are
// drawn from src; per-unit depreciation rates come from depreciation, which
// should be a separate stream.
func GenerateVehicles(n int, src, depreciation *sampling.Source) []models.Vehicle {
	vehicles := make([]models.Vehicle, 0, n)

	for i := 1; i <= n; i++ {
		brand := makes.draw(src)
		lineup := ModelsByMake[brand]
		model := lineup[src.IntN(len(lineup))]
		year := src.IntRange(modelYearMin, modelYearMax)
		body := BodyTypeFor(model)

		rate := depreciation.Normal(depreciationMean, depreciationStddev)
		noise := src.Normal(0, priceNoiseStddev)

		vehicles = append(vehicles, models.Vehicle{
			VehicleID: ids.VehicleID(i),
			Make:      brand,
			Model:     model,
			Year:      year,
			BodyType:  body,
			MSRP:      ListPrice(brand, body, year, rate, noise),
		})
	}

	return vehicles
}

// BodyTypeFor returns the body type of a model, defaulting to Sedan.
func BodyTypeFor(model string) models.BodyType {
	if b, ok := bodyTypeByModel[model]; ok {
		return b
	}
	return models.BodySedan
}

// ListPrice computes a listing price from its drivers. rate is the per-year
// depreciation and noise the additive perturbation. The result is clamped to
// [9000, 95000] and rounded to whole units.
func ListPrice(brand string, body models.BodyType, year int, rate, noise float64) float64 {
	var base float64
	switch body {
	case models.BodyTruck:
		base = basePriceTruck
	case models.BodySUV:
		base = basePriceSUV
	default:
		base = basePriceOther
	}
	if premiumMakes[brand] {
		base += premiumMakePremium
	}
	if brand == "Tesla" {
		base += teslaPremium
	}

	age := float64(modelYearMax - year)
	price := base - age*rate + noise
	return sampling.Round(sampling.Clip(price, minListPrice, maxListPrice), 0)
}

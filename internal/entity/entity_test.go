package entity

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/navigator/internal/models"
	"github.com/nvandessel/navigator/internal/sampling"
)

var asOf = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

func TestGenerateCustomersDeterministic(t *testing.T) {
	a := GenerateCustomers(200, sampling.New(42), asOf)
	b := GenerateCustomers(200, sampling.New(42), asOf)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("customers differ between runs (-first +second):\n%s", diff)
	}
}

func TestGenerateCustomersShape(t *testing.T) {
	customers := GenerateCustomers(500, sampling.New(1), asOf)
	if len(customers) != 500 {
		t.Fatalf("len = %d, want 500", len(customers))
	}

	seen := make(map[string]bool)
	earliest := asOf.AddDate(0, 0, -tenureMaxDays)
	latest := asOf.AddDate(0, 0, -tenureMinDays+1)
	for i, c := range customers {
		if seen[c.CustomerID] {
			t.Fatalf("duplicate customer id %s", c.CustomerID)
		}
		seen[c.CustomerID] = true

		if len(c.Zip3) != 3 {
			t.Errorf("customer %d: zip3 %q is not 3 digits", i, c.Zip3)
		}
		if c.CustomerSince.Before(earliest) || c.CustomerSince.After(latest) {
			t.Errorf("customer %d: customer_since %v outside tenure window", i, c.CustomerSince)
		}
		if _, ok := creditAdjustments[c.IncomeBand]; !ok {
			t.Errorf("customer %d: unknown income band %q", i, c.IncomeBand)
		}
	}
	if customers[0].CustomerID != "c_0000001" {
		t.Errorf("first id = %q, want c_0000001", customers[0].CustomerID)
	}
}

func TestGenerateEmptyPopulations(t *testing.T) {
	if got := GenerateCustomers(0, sampling.New(1), asOf); len(got) != 0 {
		t.Errorf("GenerateCustomers(0) returned %d rows", len(got))
	}
	if got := GenerateVehicles(0, sampling.New(1), sampling.New(2)); len(got) != 0 {
		t.Errorf("GenerateVehicles(0) returned %d rows", len(got))
	}
}

func TestCreditWeights(t *testing.T) {
	for income := range creditAdjustments {
		t.Run(string(income), func(t *testing.T) {
			w := CreditWeights(income)
			var total float64
			for _, v := range w {
				if v < creditWeightFloor/2 {
					t.Errorf("weight %v below floor", v)
				}
				total += v
			}
			if math.Abs(total-1) > 1e-9 {
				t.Errorf("weights sum to %v, want 1", total)
			}
		})
	}

	low := CreditWeights(models.IncomeLow)
	veryHigh := CreditWeights(models.IncomeVeryHigh)
	if low[0] <= veryHigh[0] {
		t.Errorf("low income subprime weight %v should exceed very high %v", low[0], veryHigh[0])
	}
}

func TestBodyTypeFor(t *testing.T) {
	tests := []struct {
		model string
		want  models.BodyType
	}{
		{"RAV4", models.BodySUV},
		{"F-150", models.BodyTruck},
		{"Mustang", models.BodyCoupe},
		{"Mazda3", models.BodyHatchback},
		{"Camry", models.BodySedan},
		{"unknown", models.BodySedan},
	}
	for _, tt := range tests {
		if got := BodyTypeFor(tt.model); got != tt.want {
			t.Errorf("BodyTypeFor(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestListPrice(t *testing.T) {
	tests := []struct {
		name  string
		make  string
		body  models.BodyType
		year  int
		rate  float64
		noise float64
		want  float64
	}{
		{"new sedan no noise", "Toyota", models.BodySedan, 2025, 900, 0, 27100},
		{"premium suv", "BMW", models.BodySUV, 2025, 1000, 0, 55000},
		{"tesla stacks both premiums", "Tesla", models.BodySedan, 2025, 0, 0, 58000},
		{"clamped low", "Kia", models.BodySedan, 2015, 3000, -5000, 9000},
		{"clamped high", "Tesla", models.BodySUV, 2025, 0, 40000, 95000},
		{"rounded", "Honda", models.BodySedan, 2025, 0, 0.6, 28001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListPrice(tt.make, tt.body, tt.year, tt.rate, tt.noise)
			if got != tt.want {
				t.Errorf("ListPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateVehicles(t *testing.T) {
	vehicles := GenerateVehicles(300, sampling.New(42), sampling.New(43))
	again := GenerateVehicles(300, sampling.New(42), sampling.New(43))
	if diff := cmp.Diff(vehicles, again); diff != "" {
		t.Fatalf("vehicles differ between runs:\n%s", diff)
	}

	for _, v := range vehicles {
		found := false
		for _, m := range ModelsByMake[v.Make] {
			if m == v.Model {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: model %q not in %s lineup", v.VehicleID, v.Model, v.Make)
		}
		if v.Year < modelYearMin || v.Year >= modelYearMax {
			t.Errorf("%s: year %d out of range", v.VehicleID, v.Year)
		}
		if v.BodyType != BodyTypeFor(v.Model) {
			t.Errorf("%s: body type %q does not match model %q", v.VehicleID, v.BodyType, v.Model)
		}
		if v.MSRP < minListPrice || v.MSRP > maxListPrice || v.MSRP != math.Round(v.MSRP) {
			t.Errorf("%s: msrp %v not a whole price in range", v.VehicleID, v.MSRP)
		}
	}
}

package models

// BodyType is the vehicle body style, derived from the model.
type BodyType string

const (
	BodySUV       BodyType = "SUV"
	BodyTruck     BodyType = "Truck"
	BodyCoupe     BodyType = "Coupe"
	BodyHatchback BodyType = "Hatchback"
	BodySedan     BodyType = "Sedan"
)

// Vehicle is one listing in the inventory.
type Vehicle struct {
	VehicleID string   `json:"vehicle_id"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	BodyType  BodyType `json:"body_type"`
	MSRP      float64  `json:"msrp"`
}

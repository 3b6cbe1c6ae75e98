package appointment

import "github.com/salonworks/booking-api/internal/models"

// Calculation aggregates the attached services of an appointment.
// TotalPrice is in minor units, TotalDuration in minutes.
type Calculation struct {
	ServiceCount  int   `json:"service_count"`
	TotalPrice    int64 `json:"total_price"`
	TotalDuration int   `json:"total_duration_min"`
}

func Calculate(services []models.AppointmentService) Calculation {
	var calc Calculation
	for _, s := range services {
		calc.ServiceCount++
		calc.TotalPrice += s.Product.Price
		calc.TotalDuration += s.Product.DurationMin
	}
	return calc
}

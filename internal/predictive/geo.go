package predictive

import (
	"math"

	"github.com/chrisdamba/foodpredict/internal/models"
)

const earthRadiusKm = 6371.0

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// haversineKm is the great-circle distance between two points in kilometers.
func haversineKm(a, b models.Location) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dlat := lat2 - lat1
	dlon := degreesToRadians(b.Lon - a.Lon)

	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

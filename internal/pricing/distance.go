package pricing

import (
	"math"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates
// in kilometres using the haversine formula.
func DistanceKm(from, to model.Coordinates) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// DeliveryFee computes the delivery fee in cents for delivering from
// the restaurant to the customer. It returns fault.ErrOutOfRange when
// the distance exceeds the restaurant's maximum radius. The fee is zero
// within the free radius and linear in the excess distance beyond it,
// rounded half-up to whole cents.
func DeliveryFee(restaurant, customer model.Coordinates, s model.DeliverySettings) (int64, error) {
	d := DistanceKm(restaurant, customer)
	if d > s.MaxRadiusKm {
		return 0, fault.ErrOutOfRange
	}
	if d <= s.FreeRadiusKm {
		return 0, nil
	}
	return roundHalfUpCents((d - s.FreeRadiusKm) * float64(s.PerKmCents)), nil
}

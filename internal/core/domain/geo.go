// internal/core/domain/geo.go
package domain

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// Coordinate is a semantic latitude/longitude pair. Note that the wire
// format (GeoPoint) stores coordinates in the reversed [lng, lat] order.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate holds finite values inside the
// WGS 84 domain. Invalid coordinates must be treated as absent and never
// fed into distance math.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return false
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// ToCoordinate converts a raw GeoJSON coordinate pair into a Coordinate,
// performing the [lng, lat] -> {lat, lng} swap. It returns nil for any
// malformed input (wrong length, NaN/Inf, out-of-range values) and never
// panics.
func ToCoordinate(raw []float64) *Coordinate {
	if len(raw) != 2 {
		return nil
	}
	c := Coordinate{Lat: raw[1], Lng: raw[0]}
	if !c.Valid() {
		return nil
	}
	return &c
}

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers.
func HaversineKm(a, b Coordinate) float64 {
	latA := toRadians(a.Lat)
	latB := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// Clamp before Asin: floating-point error can push sqrt(h) a hair
	// past 1 for antipodal or identical points.
	root := math.Sqrt(h)
	if root > 1 {
		root = 1
	}

	return 2 * earthRadiusKm * math.Asin(root)
}

// RoundDistanceKm rounds a distance to one decimal place, half away
// from zero.
func RoundDistanceKm(km float64) float64 {
	return math.Trunc(km*10+math.Copysign(0.5, km)) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// AnnotateDistances pairs every item with its rounded distance from the
// origin. The distance is set only when both the origin and the item
// location are valid; otherwise the item passes through unannotated. A
// nil origin annotates nothing and drops nothing.
func AnnotateDistances(items []Item, origin *Coordinate) []ItemWithDistance {
	out := make([]ItemWithDistance, 0, len(items))
	for _, item := range items {
		annotated := ItemWithDistance{Item: item}
		if origin != nil && origin.Valid() && item.Location != nil {
			if c := item.Location.Coordinate(); c != nil {
				km := RoundDistanceKm(HaversineKm(*origin, *c))
				annotated.DistanceKm = &km
			}
		}
		out = append(out, annotated)
	}
	return out
}

package geo

import "math"

// DegreesToMiles scales a planar distance in degrees to miles. It is a
// local-latitude approximation (one degree of latitude), not a geodesic
// conversion.
const DegreesToMiles = 68.703

// Location is a (lat, lon) pair in degrees.
type Location struct {
	Lat float64
	Lon float64
}

// Dist2 returns the squared planar distance between a and b in degree space.
// It is both the edge cost and the A* heuristic.
func Dist2(a, b Location) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}

// Dist returns the planar distance between a and b in degrees.
func Dist(a, b Location) float64 {
	return math.Sqrt(Dist2(a, b))
}

// Point returns the location as an [lat, lon] pair for spatial indexes.
func (l Location) Point() [2]float64 {
	return [2]float64{l.Lat, l.Lon}
}

// Bounds is an axis-aligned box in degree space.
type Bounds struct {
	Min Location
	Max Location
}

// EmptyBounds returns inverted bounds that any Extend call will replace.
func EmptyBounds() Bounds {
	return Bounds{
		Min: Location{Lat: math.MaxFloat64, Lon: math.MaxFloat64},
		Max: Location{Lat: -math.MaxFloat64, Lon: -math.MaxFloat64},
	}
}

// Extend grows b to include l.
func (b *Bounds) Extend(l Location) {
	b.Min.Lat = min(b.Min.Lat, l.Lat)
	b.Min.Lon = min(b.Min.Lon, l.Lon)
	b.Max.Lat = max(b.Max.Lat, l.Lat)
	b.Max.Lon = max(b.Max.Lon, l.Lon)
}

// IsEmpty reports whether no location has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min.Lat > b.Max.Lat
}

// Contains returns true if the point is inside the box.
func (b Bounds) Contains(l Location) bool {
	return l.Lat >= b.Min.Lat && l.Lat <= b.Max.Lat && l.Lon >= b.Min.Lon && l.Lon <= b.Max.Lon
}

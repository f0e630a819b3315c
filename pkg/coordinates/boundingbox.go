package coordinates

import "math"

// BoundingBox is a rectangular lat/lon region used to scope API queries.
type BoundingBox struct {
	// LatMin is the southern boundary in decimal degrees
	LatMin float64 `json:"lat_min"`

	// LatMax is the northern boundary in decimal degrees
	LatMax float64 `json:"lat_max"`

	// LonMin is the western boundary in decimal degrees
	LonMin float64 `json:"lon_min"`

	// LonMax is the eastern boundary in decimal degrees
	LonMax float64 `json:"lon_max"`
}

// Contains reports whether a point lies within the box (inclusive).
func (b BoundingBox) Contains(p Geographic) bool {
	return p.Latitude >= b.LatMin && p.Latitude <= b.LatMax &&
		p.Longitude >= b.LonMin && p.Longitude <= b.LonMax
}

// AreaSquareDegrees returns the box area in square degrees.
// This is the unit OpenSky prices API credits in.
func (b BoundingBox) AreaSquareDegrees() float64 {
	return (b.LatMax - b.LatMin) * (b.LonMax - b.LonMin)
}

// Valid reports whether the box has positive extent and sane bounds.
func (b BoundingBox) Valid() bool {
	return b.LatMin < b.LatMax && b.LonMin < b.LonMax &&
		b.LatMin >= -90 && b.LatMax <= 90 &&
		b.LonMin >= -180 && b.LonMax <= 180
}

// BoundingBoxAround calculates the box extending distanceKm from a center
// point in every direction.
//
// The conversion from kilometers to degrees is approximate: one degree of
// latitude is treated as a constant arc, and the longitude span is widened
// by 1/cos(lat) to account for meridian convergence. Boundaries are clamped
// to valid lat/lon ranges near the poles and the antimeridian.
func BoundingBoxAround(center Geographic, distanceKm float64) BoundingBox {
	degLat := (distanceKm / EarthRadiusKm) * RadiansToDegrees
	degLon := degLat / math.Cos(center.Latitude*DegreesToRadians)

	return BoundingBox{
		LatMin: math.Max(center.Latitude-degLat, -90.0),
		LatMax: math.Min(center.Latitude+degLat, 90.0),
		LonMin: math.Max(center.Longitude-degLon, -180.0),
		LonMax: math.Min(center.Longitude+degLon, 180.0),
	}
}

// AreaForRadius returns the bounding-box area in square degrees that a
// given monitoring radius produces at a given latitude, before clamping.
func AreaForRadius(centerLat, distanceKm float64) float64 {
	degLat := (distanceKm / EarthRadiusKm) * RadiansToDegrees
	degLon := degLat / math.Cos(centerLat*DegreesToRadians)

	// Both spans are doubled: the distance runs from center to edge.
	return (2 * degLat) * (2 * degLon)
}

// MaxRadiusForArea finds the largest monitoring radius in kilometers whose
// bounding box stays under targetArea square degrees at the given latitude.
// Uses binary search to the given precision in kilometers.
func MaxRadiusForArea(centerLat, targetArea, precisionKm float64) float64 {
	minDist := 0.0
	maxDist := 1000.0

	for maxDist-minDist > precisionKm {
		mid := (minDist + maxDist) / 2
		if AreaForRadius(centerLat, mid) < targetArea {
			minDist = mid
		} else {
			maxDist = mid
		}
	}

	// The lower bound is the safe side of the threshold.
	return minDist
}

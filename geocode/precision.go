// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

// LocationType classifies how precise a geocoded coordinate is. The values
// mirror the taxonomy used by commercial geocoders: a ROOFTOP coordinate
// points at a building, a GEOMETRIC_CENTER at the centerline of a street
// segment, an APPROXIMATE one at little more than the neighborhood.
type LocationType string

const (
	Rooftop           LocationType = "ROOFTOP"
	RangeInterpolated LocationType = "RANGE_INTERPOLATED"
	GeometricCenter   LocationType = "GEOMETRIC_CENTER"
	Approximate       LocationType = "APPROXIMATE"
)

// scoreUnknown ranks below every known location type.
const scoreUnknown = 4

// Score returns the precision rank of the location type. Lower is more
// precise; unrecognized tags get the lowest priority.
func (t LocationType) Score() int {
	switch t {
	case Rooftop:
		return 0
	case RangeInterpolated:
		return 1
	case GeometricCenter:
		return 2
	case Approximate:
		return 3
	default:
		return scoreUnknown
	}
}

// Known reports whether the tag belongs to the closed set.
func (t LocationType) Known() bool {
	return t.Score() < scoreUnknown
}

// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "github.com/avaldiviap/serenigeo/spatial"

// Source identifies where a resolved coordinate came from.
type Source string

const (
	// SourceDatabase marks a coordinate approximated from the local address store.
	SourceDatabase Source = "database"
	// SourceRemoteAPI marks a coordinate obtained from the remote geocoding API.
	SourceRemoteAPI Source = "remote_api"
)

// GeocodeResult is the single output contract of the geocoding core. It is
// created per request and never persisted here; storing the coordinates on
// the incident record is the caller's responsibility.
type GeocodeResult struct {
	Success         bool          `json:"success"`
	Geocoded        bool          `json:"geocoded"`
	Latitude        *float64      `json:"latitude"`
	Longitude       *float64      `json:"longitude"`
	LocationType    *LocationType `json:"location_type"`
	Source          *Source       `json:"source"`
	Method          *Source       `json:"method"`
	Parsed          Components    `json:"parsed"`
	ReferenceID     *int64        `json:"reference_id"`
	ReferenceText   *string       `json:"reference_text"`
	NumericDistance *int          `json:"numeric_distance"`
	Message         string        `json:"message,omitempty"`
}

// Candidate is a single geocoded coordinate produced by a remote provider,
// already classified into the closed LocationType set.
type Candidate struct {
	Lat          float64
	Lng          float64
	LocationType LocationType
	DisplayName  string
	Provider     string
}

// Point returns the candidate's coordinate.
func (c *Candidate) Point() *spatial.Point {
	return &spatial.Point{Lat: c.Lat, Lng: c.Lng}
}

// bestOf keeps the more precise of two candidates. Ties keep the
// earlier-found one, so folding candidates in strategy order is stable.
func bestOf(a, b *Candidate) *Candidate {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	if b.LocationType.Score() < a.LocationType.Score() {
		return b
	}

	return a
}

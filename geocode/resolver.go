// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text Peruvian street addresses into GPS
// coordinates. Resolution is two-tiered: a prior geocode on the same street
// segment of the local address store is preferred; failing that, a remote
// geocoding API is consulted with progressively looser query strategies.
package geocode

import (
	"context"
	"log"
)

// Resolver is the single entry point of the geocoding core.
type Resolver struct {
	local  *LocalMatcher
	remote *RemoteResolver
}

// NewResolver wires the local matcher over the given store with the remote
// resolver.
func NewResolver(repo AddressRepository, remote *RemoteResolver) *Resolver {
	return &Resolver{
		local:  NewLocalMatcher(repo),
		remote: remote,
	}
}

// Resolve converts a raw address into a GeocodeResult. It always returns a
// well-formed result: every failure mode degrades to success=false with a
// diagnostic message, never to an error or a panic. Each invocation is a
// single best-effort resolution; there is no pipeline-level retry.
func (r *Resolver) Resolve(ctx context.Context, raw string) GeocodeResult {
	components := ParseAddress(raw)

	match, err := r.local.Find(components)
	if err != nil {
		// A broken local store must not block resolution
		log.Printf("Geocode - local lookup for %q failed: %v", raw, err)
	}

	if match != nil {
		return databaseResult(components, match)
	}

	if candidate := r.remote.Resolve(ctx, raw, components); candidate != nil {
		return remoteResult(components, candidate)
	}

	return GeocodeResult{
		Success:  false,
		Geocoded: false,
		Parsed:   components,
		Message:  "no se pudo geocodificar la dirección: sin referencia local y sin resultados remotos",
	}
}

func databaseResult(components Components, match *LocalMatch) GeocodeResult {
	source := SourceDatabase
	locationType := Approximate
	referenceText := match.Address.FullText

	result := GeocodeResult{
		Success:         true,
		Geocoded:        true,
		LocationType:    &locationType,
		Source:          &source,
		Method:          &source,
		Parsed:          components,
		ReferenceID:     &match.Address.ID,
		ReferenceText:   &referenceText,
		NumericDistance: match.Distance,
	}

	if match.Address.Point != nil {
		result.Latitude = &match.Address.Point.Lat
		result.Longitude = &match.Address.Point.Lng
	}

	return result
}

func remoteResult(components Components, candidate *Candidate) GeocodeResult {
	source := SourceRemoteAPI
	locationType := candidate.LocationType

	return GeocodeResult{
		Success:      true,
		Geocoded:     true,
		Latitude:     &candidate.Lat,
		Longitude:    &candidate.Lng,
		LocationType: &locationType,
		Source:       &source,
		Method:       &source,
		Parsed:       components,
	}
}

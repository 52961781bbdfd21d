// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

func TestResolvePrefersLocalReference(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	seedLocalFixtures(t, repo)

	fake := newFakeNominatim(func(_ int, _ url.Values) (int, []nominatimPlace) {
		return http.StatusOK, rooftopPlace("-16.3988", "-71.5520")
	})
	defer fake.server.Close()

	resolver := NewResolver(repo, NewRemoteResolver(fake.options()))

	result := resolver.Resolve(context.Background(), "Ca. Santa Teresa 115")

	if !result.Success || !result.Geocoded {
		t.Fatalf("Resolve() = %+v, want success", result)
	}

	if result.Source == nil || *result.Source != SourceDatabase {
		t.Errorf("Source = %v, want %s", result.Source, SourceDatabase)
	}

	if result.LocationType == nil || *result.LocationType != Approximate {
		t.Errorf("LocationType = %v, want %s: a borrowed coordinate is never precise", result.LocationType, Approximate)
	}

	if result.NumericDistance == nil || *result.NumericDistance != 5 {
		t.Errorf("NumericDistance = %v, want 5", result.NumericDistance)
	}

	if result.ReferenceID == nil || *result.ReferenceID != 1 {
		t.Errorf("ReferenceID = %v, want 1", result.ReferenceID)
	}

	if result.ReferenceText == nil || *result.ReferenceText != "Calle Santa Teresa 110" {
		t.Errorf("ReferenceText = %v, want the reference full text", result.ReferenceText)
	}

	if result.Latitude == nil || result.Longitude == nil {
		t.Fatal("coordinates missing from a successful result")
	}

	// the local tier answered; the remote API must not have been touched
	if len(fake.requests) != 0 {
		t.Errorf("remote API received %d requests, want 0", len(fake.requests))
	}
}

func TestResolveFallsBackToRemote(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	fake := newFakeNominatim(func(_ int, _ url.Values) (int, []nominatimPlace) {
		return http.StatusOK, rooftopPlace("-16.3988", "-71.5520")
	})
	defer fake.server.Close()

	resolver := NewResolver(repo, NewRemoteResolver(fake.options()))

	result := resolver.Resolve(context.Background(), "Av. Ejército 1450")

	if !result.Success || !result.Geocoded {
		t.Fatalf("Resolve() = %+v, want success", result)
	}

	if result.Source == nil || *result.Source != SourceRemoteAPI {
		t.Errorf("Source = %v, want %s", result.Source, SourceRemoteAPI)
	}

	if result.LocationType == nil || *result.LocationType != Rooftop {
		t.Errorf("LocationType = %v, want %s", result.LocationType, Rooftop)
	}

	if result.NumericDistance != nil {
		t.Errorf("NumericDistance = %v, want nil for a remote result", *result.NumericDistance)
	}

	if result.Latitude == nil || *result.Latitude != -16.3988 {
		t.Errorf("Latitude = %v, want -16.3988", result.Latitude)
	}
}

func TestResolveBlockMatchHasNoDistance(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	seedLocalFixtures(t, repo)

	fake := newFakeNominatim(func(_ int, _ url.Values) (int, []nominatimPlace) {
		return http.StatusOK, nil
	})
	defer fake.server.Close()

	resolver := NewResolver(repo, NewRemoteResolver(fake.options()))

	result := resolver.Resolve(context.Background(), "Jr. Los Olivos Mz B Lt 15")

	if !result.Success {
		t.Fatalf("Resolve() = %+v, want success", result)
	}

	if result.Source == nil || *result.Source != SourceDatabase {
		t.Errorf("Source = %v, want %s", result.Source, SourceDatabase)
	}

	if result.NumericDistance != nil {
		t.Errorf("NumericDistance = %v, want nil for a block match", *result.NumericDistance)
	}
}

func TestResolveEverythingFails(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	fake := newFakeNominatim(func(_ int, _ url.Values) (int, []nominatimPlace) {
		return http.StatusServiceUnavailable, nil
	})
	defer fake.server.Close()

	resolver := NewResolver(repo, NewRemoteResolver(fake.options()))

	result := resolver.Resolve(context.Background(), "Calle Desconocida 999")

	if result.Success || result.Geocoded {
		t.Fatalf("Resolve() = %+v, want a failure result", result)
	}

	if result.Message == "" {
		t.Error("Message is empty, want a diagnostic")
	}

	if result.Latitude != nil || result.Longitude != nil {
		t.Error("a failure result must not carry coordinates")
	}

	// the parse still succeeded and its components are reported
	if result.Parsed.StreetName != "Desconocida" || result.Parsed.HouseNumber != "999" {
		t.Errorf("Parsed = %+v, want the parsed components even on failure", result.Parsed)
	}
}

func TestLocalApproxDescription(t *testing.T) {
	distance := 5

	got := LocalApproxDescription("Calle Santa Teresa 110", &distance)

	want := "aproximado por referencia local: Calle Santa Teresa 110 (Δ5)"
	if got != want {
		t.Errorf("LocalApproxDescription() = %q, want %q", got, want)
	}

	got = LocalApproxDescription("Jirón Los Olivos Mz B Lt 12", nil)

	want = "aproximado por referencia local: Jirón Los Olivos Mz B Lt 12 (por manzana)"
	if got != want {
		t.Errorf("LocalApproxDescription() = %q, want %q", got, want)
	}
}

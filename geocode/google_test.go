// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGoogleGeocoder(server *httptest.Server) *GoogleMapsGeocoder {
	g := NewGoogleMapsGeocoder("test-key", "pe")
	g.baseURL = server.URL

	return g
}

func TestGoogleMapsGeocode(t *testing.T) {
	var query string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("address")

		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key = %q, want test-key", key)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Av. Ejército 1450, Arequipa, Perú",
				"geometry": {
					"location": {"lat": -16.3988, "lng": -71.5520},
					"location_type": "RANGE_INTERPOLATED"
				}
			}]
		}`))
	}))
	defer server.Close()

	geocoder := newTestGoogleGeocoder(server)

	got, err := geocoder.Geocode(context.Background(), "Av. Ejército 1450, Arequipa, Arequipa, Perú")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	if query != "Av. Ejército 1450, Arequipa, Arequipa, Perú" {
		t.Errorf("address param = %q", query)
	}

	if got == nil {
		t.Fatal("Geocode() = nil, want a candidate")
	}

	if got.LocationType != RangeInterpolated {
		t.Errorf("LocationType = %s, want %s", got.LocationType, RangeInterpolated)
	}

	if got.Lat != -16.3988 || got.Lng != -71.5520 {
		t.Errorf("coordinates = (%f, %f)", got.Lat, got.Lng)
	}

	if got.Provider != "google_maps" {
		t.Errorf("Provider = %q, want google_maps", got.Provider)
	}
}

func TestGoogleMapsGeocodeZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	got, err := newTestGoogleGeocoder(server).Geocode(context.Background(), "Calle Desconocida 999")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	if got != nil {
		t.Errorf("Geocode() = %+v, want nil on zero results", got)
	}
}

func TestGoogleMapsGeocodeUnknownLocationType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Arequipa, Perú",
				"geometry": {
					"location": {"lat": -16.4, "lng": -71.5},
					"location_type": "PLUS_CODE"
				}
			}]
		}`))
	}))
	defer server.Close()

	got, err := newTestGoogleGeocoder(server).Geocode(context.Background(), "algo")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	if got == nil || got.LocationType != Approximate {
		t.Fatalf("Geocode() = %+v, want a candidate demoted to %s", got, Approximate)
	}
}

func TestGoogleMapsGeocodeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "results": [{}]}`))
	}))
	defer server.Close()

	if _, err := newTestGoogleGeocoder(server).Geocode(context.Background(), "algo"); err == nil {
		t.Fatal("Geocode() error = nil, want non-OK status error")
	}
}

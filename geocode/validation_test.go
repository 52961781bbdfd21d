// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strings"
	"testing"

	"github.com/avaldiviap/serenigeo/spatial"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{
			name:    "valid arequipa coordinates",
			lat:     -16.3989,
			lng:     -71.5350,
			wantErr: false,
		},
		{
			name:    "valid lima coordinates",
			lat:     -12.0464,
			lng:     -77.0428,
			wantErr: false,
		},
		{
			name:    "latitude too high",
			lat:     91.0,
			lng:     -71.0,
			wantErr: true,
		},
		{
			name:    "latitude too low",
			lat:     -91.0,
			lng:     -71.0,
			wantErr: true,
		},
		{
			name:    "longitude too high",
			lat:     -16.0,
			lng:     181.0,
			wantErr: true,
		},
		{
			name:    "longitude too low",
			lat:     -16.0,
			lng:     -181.0,
			wantErr: true,
		},
		{
			name:    "outside peru - montevideo",
			lat:     -34.9011,
			lng:     -56.1645,
			wantErr: true,
		},
		{
			name:    "outside peru - too far south",
			lat:     -25.0,
			lng:     -71.0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%f, %f) error = %v, wantErr %v",
					tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStreet(t *testing.T) {
	tests := []struct {
		name    string
		street  *Street
		wantErr bool
	}{
		{"valid", &Street{ID: 1, Name: "Calle Santa Teresa"}, false},
		{"nil street", nil, true},
		{"zero id", &Street{ID: 0, Name: "Calle Uno"}, true},
		{"negative id", &Street{ID: -1, Name: "Calle Uno"}, true},
		{"empty name", &Street{ID: 1, Name: "   "}, true},
		{"name too long", &Street{ID: 1, Name: strings.Repeat("a", 201)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStreet(tt.street)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateStreet() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	valid := func() *Address {
		return &Address{
			ID:           1,
			StreetID:     1,
			Number:       "110",
			FullText:     "Calle Santa Teresa 110",
			Point:        &spatial.Point{Lat: -16.3989, Lng: -71.5350},
			Geocoded:     true,
			Active:       true,
			LocationType: Rooftop,
		}
	}

	tests := []struct {
		name    string
		mutate  func(a *Address)
		wantErr bool
	}{
		{"valid", func(_ *Address) {}, false},
		{"zero id", func(a *Address) { a.ID = 0 }, true},
		{"zero street id", func(a *Address) { a.StreetID = 0 }, true},
		{"empty full text", func(a *Address) { a.FullText = " " }, true},
		{"geocoded without point", func(a *Address) { a.Point = nil }, true},
		{"geocoded outside peru", func(a *Address) { a.Point = &spatial.Point{Lat: -34.9, Lng: -56.1} }, true},
		{"not geocoded without point", func(a *Address) { a.Geocoded, a.Point, a.LocationType = false, nil, "" }, false},
		{"unknown location type", func(a *Address) { a.LocationType = "PLUS_CODE" }, true},
		{"empty location type is fine", func(a *Address) { a.LocationType = "" }, false},
		{"source description too long", func(a *Address) { a.SourceDescription = strings.Repeat("x", 501) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := valid()
			tt.mutate(addr)

			err := validateAddress(addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAddress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := validateAddress(nil); err == nil {
		t.Error("validateAddress(nil) = nil, want error")
	}
}

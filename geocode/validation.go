// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avaldiviap/serenigeo/spatial"
)

// validLocationTypes contiene las etiquetas de precisión permitidas.
var validLocationTypes = map[LocationType]bool{
	Rooftop:           true,
	RangeInterpolated: true,
	GeometricCenter:   true,
	Approximate:       true,
}

// Límites razonables para el Perú (con margen de ~1 grado)
// Perú: aproximadamente 0°S a 18.4°S, 68.6°W a 81.4°W.
var peruBounds = spatial.BoundingBox{
	MinLat: -19.5,
	MaxLat: 1.0,
	MinLng: -82.5,
	MaxLng: -67.5,
}

// ValidateCoordinates verifica que las coordenadas sean válidas.
func ValidateCoordinates(lat, lng float64) error {
	// Límites globales
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitud debe estar entre -90 y 90 (recibido: %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitud debe estar entre -180 y 180 (recibido: %f)", lng)
	}

	if !peruBounds.Contains(&spatial.Point{Lat: lat, Lng: lng}) {
		return fmt.Errorf("coordenadas fuera de los límites del Perú: (%f, %f)", lat, lng)
	}

	return nil
}

// validateStreet verifica que una calle del semillero tenga datos válidos.
func validateStreet(s *Street) error {
	if s == nil {
		return errors.New("street no puede ser nil")
	}

	if s.ID <= 0 {
		return errors.New("street id debe ser positivo")
	}

	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name no puede estar vacío")
	}

	if len(s.Name) > 200 {
		return errors.New("name demasiado largo (máximo 200 caracteres)")
	}

	return nil
}

// validateAddress verifica que una dirección del semillero tenga datos válidos.
func validateAddress(a *Address) error {
	if a == nil {
		return errors.New("address no puede ser nil")
	}

	if a.ID <= 0 {
		return errors.New("address id debe ser positivo")
	}

	if a.StreetID <= 0 {
		return errors.New("street_id debe ser positivo")
	}

	if strings.TrimSpace(a.FullText) == "" {
		return errors.New("full_text no puede estar vacío")
	}

	if len(a.FullText) > 500 {
		return errors.New("full_text demasiado largo (máximo 500 caracteres)")
	}

	// Una dirección geocodificada debe tener coordenadas válidas
	if a.Geocoded {
		if a.Point == nil {
			return errors.New("dirección geocodificada sin coordenadas")
		}

		if err := ValidateCoordinates(a.Point.Lat, a.Point.Lng); err != nil {
			return fmt.Errorf("coordenadas inválidas: %w", err)
		}
	}

	if a.LocationType != "" && !validLocationTypes[a.LocationType] {
		return fmt.Errorf("location_type inválido: %s", a.LocationType)
	}

	if len(a.SourceDescription) > 500 {
		return errors.New("source_description demasiado largo (máximo 500 caracteres)")
	}

	return nil
}

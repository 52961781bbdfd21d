// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avaldiviap/serenigeo/geocode/utils"
)

// Components is the structured form of a free-text Peruvian street address.
// Every field is optional: parsing never fails, it degrades to whatever
// information the input carries.
type Components struct {
	StreetPrefix string `json:"street_prefix,omitempty"` // canonical road type, e.g. "Avenida"
	StreetName   string `json:"street_name"`
	FullStreet   string `json:"full_street"`
	HouseNumber  string `json:"house_number,omitempty"` // may carry a suffix ("450-A") or the "S/N" marker
	Block        string `json:"block,omitempty"`        // Manzana code
	Lot          string `json:"lot,omitempty"`          // Lote code
}

// NoNumberMarker is the canonical "sin número" house-number value.
const NoNumberMarker = "S/N"

// streetPrefixes maps folded road-type tokens, abbreviated or full, to their
// canonical form.
var streetPrefixes = map[string]string{
	"avenida":      "Avenida",
	"avda":         "Avenida",
	"ave":          "Avenida",
	"av":           "Avenida",
	"calle":        "Calle",
	"cl":           "Calle",
	"ca":           "Calle",
	"jiron":        "Jirón",
	"jr":           "Jirón",
	"pasaje":       "Pasaje",
	"psje":         "Pasaje",
	"psj":          "Pasaje",
	"pje":          "Pasaje",
	"callejon":     "Callejón",
	"cjon":         "Callejón",
	"prolongacion": "Prolongación",
	"prol":         "Prolongación",
	"malecon":      "Malecón",
	"alameda":      "Alameda",
}

var (
	// "Mz B Lt 15", "Mza. C-1", "Manzana D Lote 4" at the end of the address.
	reBlockLot = regexp.MustCompile(
		`(?i)(?:^|\s)(?:mz|mza|manzana)\b\.?\s*([a-zñ0-9]+(?:-[a-z0-9]+)?)` +
			`(?:\s+(?:lt|lte|lote)\b\.?\s*([a-z0-9]+(?:-[a-z0-9]+)?))?[\s.]*$`)

	// "450", "Nº 450", "N° 120-B", "#36", "450A" at the end of the address.
	reHouseNumber = regexp.MustCompile(
		`(?i)(?:^|\s)(?:(?:nº|n°|#)\s*)?(\d+(?:\s*-\s*[a-z0-9]+|[a-z])?)[\s.]*$`)

	// "S/N" ("sin número") at the end of the address.
	reNoNumber = regexp.MustCompile(`(?i)(?:^|\s)s\s*/\s*n\.?\s*$`)

	reLeadingDigits = regexp.MustCompile(`^\d+`)
)

// ParseAddress extracts structured components from a raw address string. It
// never fails; anything it cannot account for ends up as the street name.
func ParseAddress(raw string) Components {
	c := Components{}
	rest := utils.CollapseSpaces(raw)

	rest, c.StreetPrefix = extractPrefix(rest)
	rest, c.Block, c.Lot = extractBlockLot(rest)
	rest, c.HouseNumber = extractHouseNumber(rest)

	c.StreetName = strings.Trim(rest, " ,.-")

	switch {
	case c.StreetPrefix != "" && c.StreetName != "":
		c.FullStreet = c.StreetPrefix + " " + c.StreetName
	case c.StreetPrefix != "":
		c.FullStreet = c.StreetPrefix
	default:
		c.FullStreet = c.StreetName
	}

	return c
}

// extractPrefix matches a road-type token at the start of the string and
// returns the remainder plus the canonical prefix.
func extractPrefix(s string) (string, string) {
	first, rest, _ := strings.Cut(s, " ")

	token := utils.LowerASCIIFolding(strings.TrimRight(first, "."))
	if token == "" {
		return s, ""
	}

	canonical, ok := streetPrefixes[token]
	if !ok {
		return s, ""
	}

	return strings.TrimSpace(rest), canonical
}

// extractBlockLot strips a trailing "Mz <code> [Lt <code>]" pattern.
func extractBlockLot(s string) (rest, block, lot string) {
	m := reBlockLot.FindStringSubmatchIndex(s)
	if m == nil {
		return s, "", ""
	}

	block = strings.ToUpper(s[m[2]:m[3]])
	if m[4] >= 0 {
		lot = strings.ToUpper(s[m[4]:m[5]])
	}

	return strings.TrimSpace(s[:m[0]]), block, lot
}

// extractHouseNumber strips a trailing house-number token, dropping any
// "Nº"/"N°"/"#" decoration. The "S/N" marker is kept literally.
func extractHouseNumber(s string) (rest, number string) {
	if m := reNoNumber.FindStringIndex(s); m != nil {
		return strings.TrimSpace(s[:m[0]]), NoNumberMarker
	}

	m := reHouseNumber.FindStringSubmatchIndex(s)
	if m == nil {
		return s, ""
	}

	number = s[m[2]:m[3]]
	// "450 - A" and "450-A" are the same token
	number = strings.ToUpper(strings.ReplaceAll(number, " ", ""))

	return strings.TrimSpace(s[:m[0]]), number
}

// HouseNumberValue returns the numeric part of the house number ("450-A"
// yields 450). The boolean is false when there is nothing numeric to use,
// including the S/N marker.
func (c Components) HouseNumberValue() (int, bool) {
	digits := reLeadingDigits.FindString(c.HouseNumber)
	if digits == "" {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SeedData represents the JSON seed file format: the street cadastre plus
// the reference addresses the local matcher works against.
type SeedData struct {
	Version     string     `json:"version"`
	LastUpdated time.Time  `json:"last_updated"`
	Streets     []*Street  `json:"streets"`
	Addresses   []*Address `json:"addresses"`
}

// ExportToJSON exports the whole store to a JSON file, sorted by id to
// minimize diffs when checked into version control.
func ExportToJSON(repo AddressRepository, filepath string) error {
	streets, err := repo.AllStreetsSorted()
	if err != nil {
		return fmt.Errorf("listing streets: %w", err)
	}

	addresses, err := repo.AllAddressesSorted()
	if err != nil {
		return fmt.Errorf("listing addresses: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now(),
		Streets:     streets,
		Addresses:   addresses,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	err = os.WriteFile(filepath, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// ReadSeed parses and validates a seed file without touching the database.
func ReadSeed(filepath string) (*SeedData, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// a JSON null in either list decodes to a nil pointer, so the index is
	// the only identifier that is always safe to report
	for i, street := range seed.Streets {
		if err := validateStreet(street); err != nil {
			return nil, fmt.Errorf("calle inválida (índice %d): %w", i, err)
		}
	}

	for i, addr := range seed.Addresses {
		if err := validateAddress(addr); err != nil {
			return nil, fmt.Errorf("dirección inválida (índice %d): %w", i, err)
		}
	}

	return &seed, nil
}

// ImportFromJSON imports streets and addresses from a seed file. Returns the
// number of records imported.
func ImportFromJSON(repo AddressRepository, filepath string) (int, error) {
	seed, err := ReadSeed(filepath)
	if err != nil {
		return 0, err
	}

	if err := repo.BulkInsertStreets(seed.Streets); err != nil {
		return 0, fmt.Errorf("inserting streets: %w", err)
	}

	if err := repo.BulkInsertAddresses(seed.Addresses); err != nil {
		return len(seed.Streets), fmt.Errorf("inserting addresses: %w", err)
	}

	return len(seed.Streets) + len(seed.Addresses), nil
}

// SeedIfEmpty seeds the database from a JSON file if no addresses exist.
func SeedIfEmpty(repo AddressRepository, filepath string) (bool, int, error) {
	count, err := repo.CountAddresses()
	if err != nil {
		return false, 0, fmt.Errorf("counting addresses: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}
	// Database is empty, try to seed
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		// No seed file exists, that's okay
		return false, 0, nil
	}

	imported, err := ImportFromJSON(repo, filepath)
	if err != nil {
		return false, 0, err
	}

	return true, imported, nil
}

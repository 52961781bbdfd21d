// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/avaldiviap/serenigeo/geocode/utils"
	"github.com/avaldiviap/serenigeo/spatial"
	"github.com/uber/h3-go/v4"
)

// Street is a named street segment of the district cadastre.
type Street struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	AltName string `json:"alt_name,omitempty"` // previous or popular name, searched too
}

// Address is a reference address of the local store: a point somebody (or a
// previous resolution) already geocoded on a street.
type Address struct {
	ID                int64          `json:"id"`
	StreetID          int64          `json:"street_id"`
	Number            string         `json:"number,omitempty"`
	Block             string         `json:"block,omitempty"`
	Lot               string         `json:"lot,omitempty"`
	FullText          string         `json:"full_text"`
	Point             *spatial.Point `json:"point"`
	Geocoded          bool           `json:"geocoded"`
	Active            bool           `json:"active"`
	LocationType      LocationType   `json:"location_type,omitempty"`
	SourceDescription string         `json:"source_description,omitempty"`
	H3Res7            int64          `json:"-"`
	H3Res8            int64          `json:"-"`
	H3Res9            int64          `json:"-"`
}

// LocalApproxMarker tags the source description of coordinates that were
// themselves approximated from a neighbor in the local store. Records so
// tagged are never used as a reference for a new approximation; otherwise
// imprecision compounds across successive degraded lookups.
const LocalApproxMarker = "aproximado por referencia local"

// LocalApproxDescription builds the source description the caller should
// persist alongside a database-sourced result.
func LocalApproxDescription(referenceText string, numericDistance *int) string {
	if numericDistance == nil {
		return fmt.Sprintf("%s: %s (por manzana)", LocalApproxMarker, referenceText)
	}

	return fmt.Sprintf("%s: %s (Δ%d)", LocalApproxMarker, referenceText, *numericDistance)
}

func (a *Address) computeH3() error {
	if a.Point == nil {
		a.H3Res7, a.H3Res8, a.H3Res9 = 0, 0, 0

		return nil
	}

	latLng := h3.NewLatLng(a.Point.Lat, a.Point.Lng)
	for res := 7; res <= 9; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 7:
			a.H3Res7 = int64(cell)
		case 8:
			a.H3Res8 = int64(cell)
		case 9:
			a.H3Res9 = int64(cell)
		}
	}

	return nil
}

// AddressRepository is the read-mostly view of the local address store. The
// resolution pipeline only ever reads; the write operations exist for
// seeding and for tests.
type AddressRepository interface {
	// CreateSchema creates the streets and addresses tables
	CreateSchema() error

	// SearchStreets returns streets whose folded name contains the folded
	// input as a substring, capped to limit
	SearchStreets(name string, limit int) ([]*Street, error)

	// ReferenceAddresses returns usable reference addresses for the given
	// streets: geocoded, active, with coordinates, and not themselves a
	// local approximation. Capped to limit
	ReferenceAddresses(streetIDs []int64, limit int) ([]*Address, error)

	// BulkInsertStreets inserts a slice of streets
	BulkInsertStreets(streets []*Street) error

	// BulkInsertAddresses inserts a slice of addresses
	BulkInsertAddresses(addresses []*Address) error

	// CountStreets returns the total number of streets
	CountStreets() (int, error)

	// CountAddresses returns the total number of addresses
	CountAddresses() (int, error)

	// AllStreetsSorted returns every street ordered by id
	AllStreetsSorted() ([]*Street, error)

	// AllAddressesSorted returns every address ordered by id
	AllAddressesSorted() ([]*Address, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlAddressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a repository over the given connection.
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &sqlAddressRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlAddressRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlAddressRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS streets (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL,
			alt_name VARCHAR,
			name_folded VARCHAR NOT NULL
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id BIGINT PRIMARY KEY,
			street_id BIGINT NOT NULL,
			number VARCHAR,
			block VARCHAR,
			lot VARCHAR,
			full_text VARCHAR NOT NULL,
			point POINT_2D,
			geocoded BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			location_type VARCHAR,
			source_description VARCHAR,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT,
			h3_res9 UBIGINT
		);
	`)

	return err
}

// foldedName is what street search matches against: the folded canonical
// name plus any alternate name.
func foldedName(s *Street) string {
	return utils.LowerASCIIFolding(strings.TrimSpace(s.Name + " " + s.AltName))
}

func (r *sqlAddressRepository) SearchStreets(name string, limit int) ([]*Street, error) {
	folded := utils.LowerASCIIFolding(name)
	if folded == "" {
		return nil, nil
	}

	rows, err := r.db.Query(`
		SELECT id, name, alt_name
		FROM streets
		WHERE name_folded LIKE '%' || ? || '%'
		ORDER BY id
		LIMIT ?
	`, folded, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streets []*Street

	for rows.Next() {
		street := &Street{}

		var altName sql.NullString

		if err := rows.Scan(&street.ID, &street.Name, &altName); err != nil {
			return nil, err
		}

		if altName.Valid {
			street.AltName = altName.String
		}

		streets = append(streets, street)
	}

	return streets, rows.Err()
}

var addressSelect = `
	SELECT id, street_id, number, block, lot, full_text, point,
	       geocoded, active, location_type, source_description,
	       h3_res7, h3_res8, h3_res9
	FROM addresses
`

func (r *sqlAddressRepository) ReferenceAddresses(streetIDs []int64, limit int) ([]*Address, error) {
	if len(streetIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(streetIDs)), ",")

	args := make([]any, 0, len(streetIDs)+2)
	for _, id := range streetIDs {
		args = append(args, id)
	}

	args = append(args, "%"+LocalApproxMarker+"%", limit)

	query := addressSelect + fmt.Sprintf(`
		WHERE street_id IN (%s)
		  AND geocoded
		  AND active
		  AND point IS NOT NULL
		  AND (source_description IS NULL OR source_description NOT LIKE ?)
		ORDER BY id
		LIMIT ?
	`, placeholders)

	return r.list(query, args)
}

func (r *sqlAddressRepository) list(query string, args []any) ([]*Address, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []*Address

	for rows.Next() {
		addr := &Address{}

		var number, block, lot, locationType, sourceDescription sql.NullString

		var h3Res7, h3Res8, h3Res9 sql.NullInt64

		var point spatial.NullPoint

		err := rows.Scan(
			&addr.ID, &addr.StreetID, &number, &block, &lot,
			&addr.FullText, &point, &addr.Geocoded, &addr.Active,
			&locationType, &sourceDescription,
			&h3Res7, &h3Res8, &h3Res9,
		)
		if err != nil {
			return nil, err
		}

		if point.Valid {
			addr.Point = &point.Point
		}

		if number.Valid {
			addr.Number = number.String
		}

		if block.Valid {
			addr.Block = block.String
		}

		if lot.Valid {
			addr.Lot = lot.String
		}

		if locationType.Valid {
			addr.LocationType = LocationType(locationType.String)
		}

		if sourceDescription.Valid {
			addr.SourceDescription = sourceDescription.String
		}

		if h3Res7.Valid {
			addr.H3Res7 = h3Res7.Int64
		}

		if h3Res8.Valid {
			addr.H3Res8 = h3Res8.Int64
		}

		if h3Res9.Valid {
			addr.H3Res9 = h3Res9.Int64
		}

		addresses = append(addresses, addr)
	}

	return addresses, rows.Err()
}

func (r *sqlAddressRepository) BulkInsertStreets(streets []*Street) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO streets(id, name, alt_name, name_folded)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for _, s := range streets {
		altName := &s.AltName
		if *altName == "" {
			altName = nil
		}

		if _, err := stmt.Exec(s.ID, s.Name, altName, foldedName(s)); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

func (r *sqlAddressRepository) BulkInsertAddresses(addresses []*Address) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO addresses(
			id,
			street_id,
			number,
			block,
			lot,
			full_text,
			point,
			geocoded,
			active,
			location_type,
			source_description,
			h3_res7,
			h3_res8,
			h3_res9
		)
		VALUES (?, ?, ?, ?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for _, a := range addresses {
		if err := a.computeH3(); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}

		var lng, lat *float64
		if a.Point != nil {
			lng, lat = &a.Point.Lng, &a.Point.Lat
		}

		locationType := string(a.LocationType)

		_, err := stmt.Exec(
			a.ID,
			a.StreetID,
			nullable(a.Number),
			nullable(a.Block),
			nullable(a.Lot),
			a.FullText,
			lng,
			lat,
			a.Geocoded,
			a.Active,
			nullable(locationType),
			nullable(a.SourceDescription),
			a.H3Res7,
			a.H3Res8,
			a.H3Res9,
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func (r *sqlAddressRepository) CountStreets() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM streets").Scan(&count)

	return count, err
}

func (r *sqlAddressRepository) CountAddresses() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM addresses").Scan(&count)

	return count, err
}

func (r *sqlAddressRepository) AllStreetsSorted() ([]*Street, error) {
	rows, err := r.db.Query(`SELECT id, name, alt_name FROM streets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streets []*Street

	for rows.Next() {
		street := &Street{}

		var altName sql.NullString

		if err := rows.Scan(&street.ID, &street.Name, &altName); err != nil {
			return nil, err
		}

		if altName.Valid {
			street.AltName = altName.String
		}

		streets = append(streets, street)
	}

	return streets, rows.Err()
}

func (r *sqlAddressRepository) AllAddressesSorted() ([]*Address, error) {
	return r.list(addressSelect+` ORDER BY id`, nil)
}

// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/avaldiviap/serenigeo/geocode"
)

// geocodeOptions holds the flags shared by the serve and resolve commands.
type geocodeOptions struct {
	// DbPath is the root path for the database
	DbPath string

	// SeedFile is the JSON seed consulted when the database is empty
	SeedFile string

	// Geographic context for every remote query
	Locality    string
	Region      string
	Country     string
	CountryCode string

	// UserAgent sent on every remote call
	UserAgent string

	// MinInterval between remote calls, Timeout per call
	MinInterval time.Duration
	Timeout     time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// GoogleFallback enables the keyed fallback provider when a key is available
	GoogleFallback bool
}

var geocodeOpts = geocodeOptions{}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&geocodeOpts.DbPath, "db", "db", "directory holding the address database")
	pf.StringVar(&geocodeOpts.SeedFile, "seed-file", "seed.json", "JSON seed used when the database is empty")
	pf.StringVar(&geocodeOpts.Locality, "locality", "", "default locality scoping remote queries")
	pf.StringVar(&geocodeOpts.Region, "region", "", "default region scoping remote queries")
	pf.StringVar(&geocodeOpts.Country, "country", "", "default country scoping remote queries")
	pf.StringVar(&geocodeOpts.CountryCode, "country-code", "", "country-code restriction for remote queries")
	pf.StringVar(&geocodeOpts.UserAgent, "user-agent", "", "User-Agent header for remote queries")
	pf.DurationVar(&geocodeOpts.MinInterval, "min-interval", 0, "minimum delay between remote calls")
	pf.DurationVar(&geocodeOpts.Timeout, "timeout", 0, "timeout per remote call")
	pf.BoolVar(&geocodeOpts.EnableHTTPTrace, "http-trace", false, "trace HTTP requests and responses")
	pf.BoolVar(&geocodeOpts.EnableHTTPBodyTrace, "http-body-trace", false, "trace full HTTP bodies")
	pf.BoolVar(&geocodeOpts.GoogleFallback, "google-fallback", false, "use Google Maps as a final fallback when a key is configured")
}

func (o *geocodeOptions) dbFile() string {
	return filepath.Join(o.DbPath, "serenigeo.duckdb")
}

func (o *geocodeOptions) remoteOptions() geocode.RemoteOptions {
	if o.UserAgent == "" {
		o.UserAgent = "serenigeo/" + Version + " (geocodificacion de incidencias de serenazgo)"
	}

	return geocode.RemoteOptions{
		UserAgent:           o.UserAgent,
		Locality:            o.Locality,
		Region:              o.Region,
		Country:             o.Country,
		CountryCode:         o.CountryCode,
		MinInterval:         o.MinInterval,
		Timeout:             o.Timeout,
		EnableHTTPTrace:     o.EnableHTTPTrace,
		EnableHTTPBodyTrace: o.EnableHTTPBodyTrace,
	}
}

// openRepository opens the database and makes sure the schema exists.
func openRepository(o *geocodeOptions, mustExist bool) (*sql.DB, geocode.AddressRepository, error) {
	if err := os.MkdirAll(o.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	dbpath := o.dbFile()

	if mustExist {
		if _, err := os.Stat(dbpath); errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("database not found at %s - run 'seed' first", dbpath)
		}
	}

	db, err := sql.Open("duckdb", dbpath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := geocode.NewAddressRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

// buildResolver assembles the whole pipeline, including the optional keyed
// fallback.
func buildResolver(ctx context.Context, o *geocodeOptions, repo geocode.AddressRepository) *geocode.Resolver {
	remote := geocode.NewRemoteResolver(o.remoteOptions())

	if o.GoogleFallback {
		apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
		if apiKey == "" {
			var err error

			apiKey, err = geocode.GoogleAPIKeyFromADC(ctx)
			if err != nil {
				log.Printf("Google fallback requested but no key available: %v", err)
			}
		}

		if apiKey != "" {
			countryCode := o.CountryCode
			if countryCode == "" {
				countryCode = "pe"
			}

			remote = remote.WithFallback(geocode.NewGoogleMapsGeocoder(apiKey, countryCode))
		}
	}

	return geocode.NewResolver(repo, remote)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the geocoding HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := openRepository(&geocodeOpts, false)
		if err != nil {
			return err
		}
		defer db.Close()

		seeded, count, err := geocode.SeedIfEmpty(repo, geocodeOpts.SeedFile)
		if err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}

		if seeded {
			log.Printf("Seeded %d records from %s", count, geocodeOpts.SeedFile)
		}

		resolver := buildResolver(cmd.Context(), &geocodeOpts, repo)
		server := geocode.NewServer(resolver, repo)

		listen, err := cmd.Flags().GetString("listen")
		if err != nil {
			return err
		}

		log.Printf("Geocoding server listening on %s", listen)

		return server.Run(listen)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <direccion>",
	Short: "Resolve a single address and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, repo, err := openRepository(&geocodeOpts, false)
		if err != nil {
			return err
		}
		defer db.Close()

		resolver := buildResolver(cmd.Context(), &geocodeOpts, repo)

		result := resolver.Resolve(cmd.Context(), args[0])

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}

		fmt.Println(string(data))

		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "address to listen on")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
}

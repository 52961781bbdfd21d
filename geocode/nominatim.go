// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avaldiviap/serenigeo/utils/httputils"
)

// Provider geocodes a single free-form query. Implemented by the optional
// keyed fallback and by test doubles.
type Provider interface {
	Geocode(ctx context.Context, query string) (*Candidate, error)
}

// RemoteOptions configures the remote geocoding client and the fixed
// geographic context every query is scoped to.
type RemoteOptions struct {
	// BaseURL of the geocoding API
	BaseURL string

	// UserAgent identifies this service to the API. The public Nominatim
	// instance bans anonymous or generic agents.
	UserAgent string

	// Locality, Region and Country scope every structured query
	Locality string
	Region   string
	Country  string

	// CountryCode restricts results ("pe")
	CountryCode string

	// MinInterval is the politeness delay between outbound calls
	MinInterval time.Duration

	// Timeout applies per outbound call
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

func (o RemoteOptions) withDefaults() RemoteOptions {
	if o.BaseURL == "" {
		o.BaseURL = "https://nominatim.openstreetmap.org"
	}

	if o.UserAgent == "" {
		o.UserAgent = "serenigeo/1.0 (geocodificacion de incidencias de serenazgo)"
	}

	if o.Locality == "" {
		o.Locality = "Arequipa"
	}

	if o.Region == "" {
		o.Region = "Arequipa"
	}

	if o.Country == "" {
		o.Country = "Perú"
	}

	if o.CountryCode == "" {
		o.CountryCode = "pe"
	}

	if o.MinInterval == 0 {
		o.MinInterval = time.Second
	}

	if o.Timeout == 0 {
		o.Timeout = 5 * time.Second
	}

	return o
}

type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

// placeClassification maps the API's category/type taxonomy into the closed
// LocationType set. Keys are "category/type" for exact pairs and bare
// category for the rest; anything absent classifies as APPROXIMATE. The API
// never emits RANGE_INTERPOLATED; the tag exists for completeness.
var placeClassification = map[string]LocationType{
	"building":            Rooftop,
	"place/house":         Rooftop,
	"place/houses":        Rooftop,
	"highway":             GeometricCenter,
	"place/square":        GeometricCenter,
	"place/quarter":       Approximate,
	"place/suburb":        Approximate,
	"place/neighbourhood": Approximate,
}

func classifyPlace(category, placeType string) LocationType {
	if t, ok := placeClassification[category+"/"+placeType]; ok {
		return t
	}

	if t, ok := placeClassification[category]; ok {
		return t
	}

	return Approximate
}

// NominatimClient issues single structured or free-form queries against a
// Nominatim-compatible endpoint. Only the top-ranked candidate of each
// response is consumed.
type NominatimClient struct {
	client *http.Client
	opts   RemoteOptions
}

// NewNominatimClient creates a client with the politeness throttle and the
// distinctive User-Agent wired into the transport.
func NewNominatimClient(opts RemoteOptions) *NominatimClient {
	opts = opts.withDefaults()

	var httpLogWriter io.Writer
	if opts.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableKeepAlives:     false,
		DisableCompression:    false,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  opts.EnableHTTPBodyTrace,
		Transport: transport,
	}

	headersTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers:   map[string]string{"User-Agent": opts.UserAgent},
		Transport: loggingTransport,
	}

	throttledTransport := &httputils.ThrottledRoundTripper{
		MinInterval: opts.MinInterval,
		Transport:   headersTransport,
	}

	return &NominatimClient{
		client: &http.Client{
			Transport: throttledTransport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// StructuredSearch geocodes "<number> <street>" scoped to the configured
// locality, region and country. A nil candidate with nil error means the
// API had no results.
func (c *NominatimClient) StructuredSearch(ctx context.Context, street string) (*Candidate, error) {
	params := url.Values{}
	params.Set("street", street)
	params.Set("city", c.opts.Locality)
	params.Set("state", c.opts.Region)
	params.Set("country", c.opts.Country)

	return c.search(ctx, params)
}

// FreeFormSearch geocodes an unstructured query string.
func (c *NominatimClient) FreeFormSearch(ctx context.Context, query string) (*Candidate, error) {
	params := url.Values{}
	params.Set("q", query)

	return c.search(ctx, params)
}

func (c *NominatimClient) search(ctx context.Context, params url.Values) (*Candidate, error) {
	params.Set("countrycodes", c.opts.CountryCode)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	reqURL := c.opts.BaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating geocoding request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, resp.Status)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(places) == 0 {
		return nil, nil
	}

	top := places[0]

	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", top.Lat, err)
	}

	lng, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", top.Lon, err)
	}

	return &Candidate{
		Lat:          lat,
		Lng:          lng,
		LocationType: classifyPlace(top.Category, top.Type),
		DisplayName:  top.DisplayName,
		Provider:     "nominatim",
	}, nil
}

// honorificPairs are common Spanish honorific abbreviation pairs used to
// generate alternate street-name spellings.
var honorificPairs = [][2]string{
	{"Santa", "Sta."},
	{"Santo", "Sto."},
	{"San", "S."},
}

// nameVariants generates alternate spellings of a street name by swapping
// each honorific for its abbreviated or long form.
func nameVariants(name string) []string {
	tokens := strings.Fields(name)

	var variants []string

	for _, pair := range honorificPairs {
		for d := range 2 {
			from, to := pair[d], pair[1-d]
			replaced := false

			out := make([]string, len(tokens))
			for i, tok := range tokens {
				if strings.EqualFold(tok, from) {
					out[i] = to
					replaced = true
				} else {
					out[i] = tok
				}
			}

			if replaced {
				variants = append(variants, strings.Join(out, " "))
			}
		}
	}

	return variants
}

// RemoteResolver queries the geocoding API with progressively looser
// strategies, keeping the most precise candidate seen so far.
type RemoteResolver struct {
	client   *NominatimClient
	fallback Provider
	opts     RemoteOptions
}

// NewRemoteResolver creates a resolver over a fresh Nominatim client.
func NewRemoteResolver(opts RemoteOptions) *RemoteResolver {
	opts = opts.withDefaults()

	return &RemoteResolver{
		client: NewNominatimClient(opts),
		opts:   opts,
	}
}

// WithFallback adds a keyed provider queried once, after every Nominatim
// strategy, when the best result so far is not yet building-level.
func (r *RemoteResolver) WithFallback(p Provider) *RemoteResolver {
	r.fallback = p

	return r
}

// structuredQueries builds the ordered street strings for the structured
// strategies: number + canonical prefix + name, number + name, then number +
// each honorific variant. Duplicates collapse into the earlier slot.
func (r *RemoteResolver) structuredQueries(c Components) []string {
	number := ""
	if _, ok := c.HouseNumberValue(); ok {
		number = c.HouseNumber
	}

	var queries []string

	add := func(parts ...string) {
		kept := parts[:0]

		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}

		q := strings.Join(kept, " ")
		if q == "" {
			return
		}

		for _, seen := range queries {
			if seen == q {
				return
			}
		}

		queries = append(queries, q)
	}

	add(number, c.StreetPrefix, c.StreetName)
	add(number, c.StreetName)

	for _, variant := range nameVariants(c.StreetName) {
		add(number, variant)
	}

	return queries
}

// logQueryFailure distinguishes a throttled or slow provider from a plain
// failure in the logs.
func logQueryFailure(kind, query string, err error) {
	switch {
	case IsRateLimitError(err):
		log.Printf("Geocode - %s query %q rate limited: %v", kind, query, err)
	case IsTimeoutError(err):
		log.Printf("Geocode - %s query %q timed out: %v", kind, query, err)
	default:
		log.Printf("Geocode - %s query %q failed: %v", kind, query, err)
	}
}

// fallbackDivergenceWarn is the distance in meters beyond which two
// providers' answers for the same address get flagged in the logs.
const fallbackDivergenceWarn = 500.0

// Resolve runs the strategy sequence for the given address and returns the
// best candidate, or nil when every strategy failed or came back empty.
// Individual call failures are logged and skipped; they never abort the
// sequence.
func (r *RemoteResolver) Resolve(ctx context.Context, raw string, components Components) *Candidate {
	var best *Candidate

	for _, query := range r.structuredQueries(components) {
		cand, err := r.client.StructuredSearch(ctx, query)
		if err != nil {
			logQueryFailure("structured", query, err)

			continue
		}

		best = bestOf(best, cand)
		if best != nil && best.LocationType == Rooftop {
			return best
		}
	}

	// Good enough: street-level interpolation or better needs no looser query.
	if best != nil && best.LocationType.Score() <= RangeInterpolated.Score() {
		return best
	}

	freeForm := strings.Join([]string{
		strings.TrimSpace(raw), r.opts.Locality, r.opts.Region, r.opts.Country,
	}, ", ")

	cand, err := r.client.FreeFormSearch(ctx, freeForm)
	if err != nil {
		logQueryFailure("free-form", freeForm, err)
	} else {
		best = bestOf(best, cand)
	}

	if r.fallback != nil && (best == nil || best.LocationType != Rooftop) {
		cand, err := r.fallback.Geocode(ctx, freeForm)
		if err != nil {
			logQueryFailure("fallback", freeForm, err)
		} else {
			if best != nil && cand != nil {
				if d := best.Point().HaversineDistance(cand.Point()); d > fallbackDivergenceWarn {
					log.Printf("Geocode - %s and %s disagree by %.0fm for %q",
						best.Provider, cand.Provider, d, freeForm)
				}
			}

			best = bestOf(best, cand)
		}
	}

	return best
}

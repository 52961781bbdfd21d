// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerTest wires a gin router over an in-memory store plus a fake
// remote API that always comes back empty.
func setupServerTest(t *testing.T) (*gin.Engine, AddressRepository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, repo := setupTestDB(t)
	seedLocalFixtures(t, repo)

	fake := newFakeNominatim(func(_ int, _ url.Values) (int, []nominatimPlace) {
		return http.StatusOK, nil
	})

	server := NewServer(NewResolver(repo, NewRemoteResolver(fake.options())), repo)

	cleanup := func() {
		fake.server.Close()
		db.Close()
	}

	return server.Router(), repo, cleanup
}

func TestHealthAPI(t *testing.T) {
	router, _, cleanup := setupServerTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 5, body["addresses"])
}

func TestGeocodeAPIRequiresAddress(t *testing.T) {
	router, _, cleanup := setupServerTest(t)
	defer cleanup()

	for _, target := range []string{"/api/geocode", "/api/geocode?direccion=%20%20"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
	}
}

func TestGeocodeAPILocalMatch(t *testing.T) {
	router, _, cleanup := setupServerTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/geocode?direccion="+url.QueryEscape("Ca. Santa Teresa 115"), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result GeocodeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.True(t, result.Success)
	require.NotNil(t, result.Source)
	assert.Equal(t, SourceDatabase, *result.Source)
	require.NotNil(t, result.NumericDistance)
	assert.Equal(t, 5, *result.NumericDistance)
	assert.Equal(t, "Santa Teresa", result.Parsed.StreetName)
}

func TestGeocodeAPIFailureIsStill200(t *testing.T) {
	router, _, cleanup := setupServerTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/geocode?direccion="+url.QueryEscape("Calle Desconocida 999"), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result GeocodeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.Latitude)
	assert.Equal(t, "Desconocida", result.Parsed.StreetName)
}

// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Server exposes the resolver over HTTP so the incident backend can call the
// core out of process. The surface is deliberately small: the rest of the
// application owns persistence and authorization.
type Server struct {
	resolver *Resolver
	repo     AddressRepository
}

// NewServer wires the HTTP surface over an already-built resolver.
func NewServer(resolver *Resolver, repo AddressRepository) *Server {
	return &Server{resolver: resolver, repo: repo}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", s.health)
	r.GET("/api/geocode", s.resolve)

	return r
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) health(c *gin.Context) {
	addresses, err := s.repo.CountAddresses()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "addresses": addresses})
}

// resolve handles GET /api/geocode?direccion=... A failed resolution is
// still a 200: the result contract carries success=false with a diagnostic.
func (s *Server) resolve(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("direccion"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parámetro 'direccion' requerido"})

		return
	}

	result := s.resolver.Resolve(c.Request.Context(), raw)

	c.JSON(http.StatusOK, result)
}

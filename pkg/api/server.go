/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api exposes the presence feed and identity management over HTTP.
// Rendering stays external; everything here speaks JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	whHttp "github.com/carverauto/whodis/pkg/http"
	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

// HeatmapEngine is the aggregation read path the feed consumes.
type HeatmapEngine interface {
	Snapshot(ctx context.Context, latest time.Time, step time.Duration, count int) ([]models.HeatmapCell, error)
}

// IdentityRegistry is the slice of the registry the API manages.
type IdentityRegistry interface {
	SetAlias(ctx context.Context, mac, name string) error
	GetAliases(ctx context.Context, macs []string) ([]string, error)
	RemoveAlias(ctx context.Context, mac string) error
	ListIgnored(ctx context.Context) (map[string]struct{}, error)
	AddIgnored(ctx context.Context, macs ...string) error
	RemoveIgnored(ctx context.Context, mac string) error
	ListKnown(ctx context.Context) (map[string]struct{}, error)
}

// SnapshotManager moves identity state to and from the snapshot file.
type SnapshotManager interface {
	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
}

// Pinger reports store reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the whodis HTTP API.
type Server struct {
	router       *mux.Router
	engine       HeatmapEngine
	registry     IdentityRegistry
	snapshots    SnapshotManager
	pinger       Pinger
	snapshotPath string
	listenAddr   string
	logger       logger.Logger
	httpServer   *http.Server
}

// NewServer builds the API server with the given options applied in order.
func NewServer(listenAddr string, log logger.Logger, options ...func(*Server)) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		listenAddr: listenAddr,
		logger:     log,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithHeatmapEngine attaches the aggregation engine.
func WithHeatmapEngine(e HeatmapEngine) func(*Server) {
	return func(s *Server) { s.engine = e }
}

// WithRegistry attaches the identity registry.
func WithRegistry(r IdentityRegistry) func(*Server) {
	return func(s *Server) { s.registry = r }
}

// WithSnapshots attaches the snapshot manager and its target path.
func WithSnapshots(m SnapshotManager, path string) func(*Server) {
	return func(s *Server) {
		s.snapshots = m
		s.snapshotPath = path
	}
}

// WithPinger attaches the health-check dependency.
func WithPinger(p Pinger) func(*Server) {
	return func(s *Server) { s.pinger = p }
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.getHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/heatmap", s.getHeatmap).Methods("GET")
	api.HandleFunc("/devices", s.getDevices).Methods("GET")
	api.HandleFunc("/devices/{mac}/alias", s.putAlias).Methods("PUT")
	api.HandleFunc("/devices/{mac}/alias", s.deleteAlias).Methods("DELETE")
	api.HandleFunc("/devices/{mac}/ignore", s.putIgnore).Methods("PUT")
	api.HandleFunc("/devices/{mac}/ignore", s.deleteIgnore).Methods("DELETE")
	api.HandleFunc("/snapshot/export", s.postSnapshotExport).Methods("POST")
	api.HandleFunc("/snapshot/import", s.postSnapshotImport).Methods("POST")
}

// Handler returns the routed handler with common middleware applied.
func (s *Server) Handler() http.Handler {
	return whHttp.CommonMiddleware(s.router, s.logger)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        s.listenAddr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", s.listenAddr).Msg("Starting API server")

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

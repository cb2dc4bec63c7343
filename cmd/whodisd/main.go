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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/whodis/pkg/api"
	"github.com/carverauto/whodis/pkg/config"
	"github.com/carverauto/whodis/pkg/eventlog"
	"github.com/carverauto/whodis/pkg/heatmap"
	"github.com/carverauto/whodis/pkg/identity"
	"github.com/carverauto/whodis/pkg/ingest"
	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
	"github.com/carverauto/whodis/pkg/scan"
	"github.com/carverauto/whodis/pkg/scheduler"
	"github.com/carverauto/whodis/pkg/snapshot"
)

const storePingTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/whodis/whodisd.json", "Path to whodisd config file")
	flag.Parse()

	ctx := context.Background()

	var cfg models.DaemonConfig
	if err := config.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mainLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store := eventlog.NewRedisStore(&cfg.Redis, mainLogger)
	defer store.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, storePingTimeout)
	defer pingCancel()

	if err := store.Ping(pingCtx); err != nil {
		return fmt.Errorf("presence store unreachable: %w", err)
	}

	registry := identity.NewRegistry(store.Client(), mainLogger)
	scanner := scan.NewArpScanner(&cfg.Scan, mainLogger)

	pipeline, err := ingest.NewPipeline(scanner, store, registry, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to build ingestion pipeline: %w", err)
	}

	trigger, err := scheduler.NewTrigger(time.Duration(cfg.ScanInterval), pipeline, nil, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to build scan trigger: %w", err)
	}

	engine := heatmap.NewEngine(store, nil, mainLogger)
	snapshots := snapshot.NewManager(registry, mainLogger)

	server := api.NewServer(cfg.ListenAddr, mainLogger,
		api.WithHeatmapEngine(engine),
		api.WithRegistry(registry),
		api.WithSnapshots(snapshots, cfg.SnapshotPath),
		api.WithPinger(store),
	)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		if err := trigger.Start(runCtx); err != nil && runCtx.Err() == nil {
			errCh <- fmt.Errorf("scan trigger failed: %w", err)
		}
	}()

	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("api server failed: %w", err)
		}
	}()

	select {
	case <-runCtx.Done():
		mainLogger.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		return err
	}

	trigger.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

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

// Package ingest turns one scan batch into presence events: filter ignored
// devices, drop in-batch duplicates, truncate vendor strings, and commit all
// resulting writes as one atomic unit.
package ingest

//go:generate mockgen -destination=mock_scanner.go -package=ingest github.com/carverauto/whodis/pkg/ingest Scanner,IgnoreLister

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carverauto/whodis/pkg/eventlog"
	"github.com/carverauto/whodis/pkg/identity"
	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

// Scanner yields one batch of device sightings per invocation. May return an
// empty batch; a failure skips the whole cycle.
type Scanner interface {
	Scan(ctx context.Context) ([]models.ScanResult, error)
}

// IgnoreLister is the slice of the identity registry the pipeline consumes.
type IgnoreLister interface {
	ListIgnored(ctx context.Context) (map[string]struct{}, error)
}

const (
	// vendorMaxRunes bounds stored vendor strings, truncation marker
	// included.
	vendorMaxRunes = 15

	truncationMark = "…"
)

var errNilDependency = errors.New("pipeline dependency cannot be nil")

// Pipeline ingests scan batches. Stateless between runs: the ignore snapshot
// is re-read every batch and nothing is cached across triggers.
type Pipeline struct {
	scanner  Scanner
	store    eventlog.Store
	registry IgnoreLister
	logger   logger.Logger
}

func NewPipeline(scanner Scanner, store eventlog.Store, registry IgnoreLister, log logger.Logger) (*Pipeline, error) {
	if scanner == nil || store == nil || registry == nil {
		return nil, errNilDependency
	}

	return &Pipeline{
		scanner:  scanner,
		store:    store,
		registry: registry,
		logger:   log,
	}, nil
}

// Run executes one ingestion cycle and returns the number of accepted
// sightings. A failed commit applies nothing; the next trigger self-heals.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	runID := uuid.NewString()
	log := p.logger.With().Str("run_id", runID).Logger()

	results, err := p.scanner.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrScanFailed, err)
	}

	// Snapshot once; a concurrent ignore-list change does not retroactively
	// affect this batch.
	ignored, err := p.registry.ListIgnored(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(results))
	accepted := make([]string, 0, len(results))
	aggregate := make([]models.Field, 0, len(results))
	batch := p.store.Batch()

	for _, result := range results {
		mac, err := models.NormalizeMAC(result.MAC)
		if err != nil {
			log.Debug().Str("mac", result.MAC).Err(err).Msg("Dropping malformed scan record")
			continue
		}

		if _, dup := seen[mac]; dup {
			continue
		}

		if _, skip := ignored[mac]; skip {
			continue
		}

		vendor := TruncateVendor(result.Vendor)

		batch.Append(ctx, eventlog.EntityStream(mac), []models.Field{
			{Key: "ip", Value: result.IP},
			{Key: "hw", Value: vendor},
		})

		aggregate = append(aggregate, models.Field{Key: mac, Value: vendor})
		seen[mac] = struct{}{}
		accepted = append(accepted, mac)
	}

	// The store rejects zero-field events, so an empty batch's aggregate
	// event carries a reserved marker instead.
	if len(aggregate) == 0 {
		aggregate = append(aggregate, models.Field{Key: eventlog.EmptyBatchField, Value: "1"})
	}

	batch.Append(ctx, eventlog.AggregateStream, aggregate)
	batch.AddSet(ctx, identity.KeyKnown, accepted...)

	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}

	log.Info().
		Int("scanned", len(results)).
		Int("accepted", len(accepted)).
		Int("ignored", len(results)-len(accepted)).
		Msg("Ingestion batch committed")

	return len(accepted), nil
}

// TruncateVendor bounds a vendor string to 15 runes, marking truncation.
func TruncateVendor(vendor string) string {
	runes := []rune(vendor)
	if len(runes) <= vendorMaxRunes {
		return vendor
	}

	return string(runes[:vendorMaxRunes-1]) + truncationMark
}

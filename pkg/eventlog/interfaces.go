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

// Package eventlog is the append-only presence event store. Every device
// sighting lands in a per-device stream plus one aggregate stream; the store
// assigns strictly increasing "<ms>-<seq>" identifiers.
package eventlog

import (
	"context"

	"github.com/carverauto/whodis/pkg/models"
)

// Store is the typed event log client. One method per store command, each
// with its own parse step. An absent stream reads as an empty log, never as
// an error.
type Store interface {
	// Append writes one event and returns the assigned identifier.
	Append(ctx context.Context, stream string, fields []models.Field) (models.EventID, error)

	// Length returns the number of events in a stream.
	Length(ctx context.Context, stream string) (int64, error)

	// Range returns events between from and to inclusive, ascending.
	Range(ctx context.Context, stream string, from, to Bound) ([]models.Event, error)

	// RangeReverse returns events between from and to inclusive, descending.
	RangeReverse(ctx context.Context, stream string, from, to Bound) ([]models.Event, error)

	// Batch starts an atomic multi-stream write. Nothing queued on the batch
	// is visible until Commit, and a failed Commit applies nothing.
	Batch() Batch

	// Ping verifies store reachability.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// Batch accumulates writes for one atomic commit.
type Batch interface {
	// Append queues one event write.
	Append(ctx context.Context, stream string, fields []models.Field)

	// AddSet queues members onto a set key in the same atomic unit.
	AddSet(ctx context.Context, key string, members ...string)

	// Commit applies every queued write all-or-nothing and returns the
	// assigned event identifiers in queue order.
	Commit(ctx context.Context) ([]models.EventID, error)
}

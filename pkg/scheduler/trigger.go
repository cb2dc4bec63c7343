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

// Package scheduler fires the ingestion job on a fixed period. At most one
// run is in flight; a firing that would overlap is dropped outright, and a
// firing not picked up within its expiry runs never instead of late. A stale
// presence scan is worse than a skipped one.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/whodis/pkg/logger"
)

const minExpiry = 10 * time.Second

var (
	errInvalidInterval = errors.New("trigger interval must be positive")
	errNilJob          = errors.New("trigger job cannot be nil")
)

// Expiry returns the staleness window for a firing at the given interval:
// a quarter of the period, floored at ten seconds.
func Expiry(interval time.Duration) time.Duration {
	expiry := interval / 4
	if expiry < minExpiry {
		expiry = minExpiry
	}

	return expiry
}

type firing struct {
	scheduledAt time.Time
}

// Trigger drives a Job at a fixed interval.
type Trigger struct {
	interval time.Duration
	expiry   time.Duration
	job      Job
	clock    Clock
	logger   logger.Logger
	firings  chan firing
	inFlight atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewTrigger builds a trigger. A nil clock means wall-clock time.
func NewTrigger(interval time.Duration, job Job, clock Clock, log logger.Logger) (*Trigger, error) {
	if interval <= 0 {
		return nil, errInvalidInterval
	}

	if job == nil {
		return nil, errNilJob
	}

	if clock == nil {
		clock = realClock{}
	}

	return &Trigger{
		interval: interval,
		expiry:   Expiry(interval),
		job:      job,
		clock:    clock,
		logger:   log,
		firings:  make(chan firing, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start runs the trigger loop until the context is canceled or Stop is
// called. The first firing happens immediately, then every interval.
func (t *Trigger) Start(ctx context.Context) error {
	t.logger.Info().
		Dur("interval", t.interval).
		Dur("expiry", t.expiry).
		Msg("Starting scan trigger")

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		t.consume(ctx)
	}()

	defer wg.Wait()

	t.dispatch()

	ticker := t.clock.Ticker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.done:
			return nil
		case <-ticker.Chan():
			t.dispatch()
		}
	}
}

// Stop halts the trigger loop. Safe to call more than once.
func (t *Trigger) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

// dispatch hands a firing to the worker without queueing. A firing that
// would overlap a run still in flight is dropped, not deferred.
func (t *Trigger) dispatch() {
	if !t.inFlight.CompareAndSwap(false, true) {
		t.logger.Warn().Msg("Dropping trigger firing, previous run still in flight")
		return
	}

	t.firings <- firing{scheduledAt: t.clock.Now()}
}

func (t *Trigger) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		case f := <-t.firings:
			t.execute(ctx, f)
		}
	}
}

func (t *Trigger) execute(ctx context.Context, f firing) {
	defer t.inFlight.Store(false)

	if age := t.clock.Now().Sub(f.scheduledAt); age > t.expiry {
		t.logger.Warn().
			Dur("age", age).
			Dur("expiry", t.expiry).
			Msg("Dropping stale trigger firing")

		return
	}

	log := t.logger.With().Str("trigger_id", uuid.NewString()).Logger()

	accepted, err := t.job.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled ingestion failed, next cycle proceeds normally")
		return
	}

	log.Debug().Int("accepted", accepted).Msg("Scheduled ingestion completed")
}

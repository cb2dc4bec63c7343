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

// Package heatmap summarizes the aggregate presence log into fixed-width
// time windows with a derived intensity tier and color. Pure read path: no
// writes, no state between calls, safe alongside ingestion.
package heatmap

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/carverauto/whodis/pkg/eventlog"
	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

// RangeReader is the slice of the event log store the engine consumes.
type RangeReader interface {
	Range(ctx context.Context, stream string, from, to eventlog.Bound) ([]models.Event, error)
}

// Engine builds heatmap cells from the aggregate log.
type Engine struct {
	reader  RangeReader
	palette Palette
	logger  logger.Logger
}

// NewEngine builds an engine. A nil palette means the built-in gradient.
func NewEngine(reader RangeReader, palette Palette, log logger.Logger) *Engine {
	if palette == nil {
		palette = NewDefaultPalette()
	}

	return &Engine{reader: reader, palette: palette, logger: log}
}

// Snapshot summarizes count windows of width step walking backward from
// latest, most recent window first. Re-running over the same closed interval
// with no intervening writes yields identical cells.
func (e *Engine) Snapshot(ctx context.Context, latest time.Time, step time.Duration, count int) ([]models.HeatmapCell, error) {
	cells := make([]models.HeatmapCell, 0, count)

	for w := range Windows(latest, step, count) {
		cell, err := e.summarize(ctx, w)
		if err != nil {
			return nil, err
		}

		cells = append(cells, cell)
	}

	return cells, nil
}

func (e *Engine) summarize(ctx context.Context, w Window) (models.HeatmapCell, error) {
	events, err := e.reader.Range(ctx, eventlog.AggregateStream,
		eventlog.AtTime(w.Start), eventlog.AtTime(w.Stop))
	if err != nil {
		return models.HeatmapCell{}, err
	}

	deviceCount := 0

	for _, ev := range events {
		for _, f := range ev.Fields {
			if !eventlog.IsReservedField(f.Key) {
				deviceCount++
			}
		}
	}

	var earliest time.Time
	if len(events) > 0 {
		earliest = events[0].ID.Time()
	}

	// The five tiers are the authoritative signal; the palette lookup is
	// cosmetic, with the count clamped into the table.
	return models.HeatmapCell{
		WindowStart: w.Start,
		WindowStop:  w.Stop,
		DeviceCount: deviceCount,
		Intensity:   models.ClassifyIntensity(deviceCount),
		Color:       e.palette.Color(deviceCount).Hex(),
		Tooltip:     tooltip(deviceCount, earliest),
	}, nil
}

func tooltip(deviceCount int, earliest time.Time) string {
	if deviceCount == 0 {
		return "no devices seen"
	}

	noun := "devices"
	if deviceCount == 1 {
		noun = "device"
	}

	return fmt.Sprintf("%d %s seen, first %s", deviceCount, noun, humanize.Time(earliest))
}

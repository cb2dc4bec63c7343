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

// Package snapshot exports and imports operator identity state (aliases and
// the ignore list) as a JSON document. Export writes atomically; import
// validates the whole document before replacing anything.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

// Document is the on-disk snapshot format: normalized address to display
// name, plus a sorted list of ignored addresses.
type Document struct {
	Aliases map[string]string `json:"aliases"`
	Ignores []string          `json:"ignores"`
}

// Registry is the slice of the identity registry the snapshot layer uses.
type Registry interface {
	ListAliases(ctx context.Context) (map[string]string, error)
	ListIgnored(ctx context.Context) (map[string]struct{}, error)
	ReplaceAll(ctx context.Context, aliases map[string]string, ignores []string) error
}

// Manager moves identity state between the registry and snapshot files.
type Manager struct {
	registry Registry
	logger   logger.Logger
}

func NewManager(registry Registry, log logger.Logger) *Manager {
	return &Manager{registry: registry, logger: log}
}

// Export writes the current aliases and ignore list to path. The write is
// atomic: a temp file in the target directory renamed into place.
func (m *Manager) Export(ctx context.Context, path string) error {
	aliases, err := m.registry.ListAliases(ctx)
	if err != nil {
		return err
	}

	ignoredSet, err := m.registry.ListIgnored(ctx)
	if err != nil {
		return err
	}

	ignores := make([]string, 0, len(ignoredSet))
	for mac := range ignoredSet {
		ignores = append(ignores, mac)
	}

	sort.Strings(ignores)

	if aliases == nil {
		aliases = map[string]string{}
	}

	doc := Document{Aliases: aliases, Ignores: ignores}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", models.ErrSnapshotIO, err)
	}

	if err := writeAtomic(path, data); err != nil {
		return err
	}

	m.logger.Info().
		Str("path", path).
		Int("aliases", len(aliases)).
		Int("ignores", len(ignores)).
		Msg("Wrote configuration snapshot")

	return nil
}

// Import loads a snapshot document and replaces the alias map and ignore set
// wholesale. Every address must validate or nothing is applied; the
// known-device set is never touched.
func (m *Manager) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", models.ErrSnapshotIO, path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parse %s: %w", models.ErrSnapshotInvalid, path, err)
	}

	aliases := make(map[string]string, len(doc.Aliases))

	for mac, name := range doc.Aliases {
		normalized, err := models.NormalizeMAC(mac)
		if err != nil {
			return fmt.Errorf("%w: alias key: %w", models.ErrSnapshotInvalid, err)
		}

		aliases[normalized] = name
	}

	ignores := make([]string, 0, len(doc.Ignores))

	for _, mac := range doc.Ignores {
		normalized, err := models.NormalizeMAC(mac)
		if err != nil {
			return fmt.Errorf("%w: ignore entry: %w", models.ErrSnapshotInvalid, err)
		}

		ignores = append(ignores, normalized)
	}

	if err := m.registry.ReplaceAll(ctx, aliases, ignores); err != nil {
		return err
	}

	m.logger.Info().
		Str("path", path).
		Int("aliases", len(aliases)).
		Int("ignores", len(ignores)).
		Msg("Imported configuration snapshot")

	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %w", models.ErrSnapshotIO, dir, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("%w: write %s: %w", models.ErrSnapshotIO, tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", models.ErrSnapshotIO, tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %w", models.ErrSnapshotIO, path, err)
	}

	return nil
}

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

// Package identity holds operator-managed device identity state: display
// aliases, the ignore list, and the set of every device ever ingested.
package identity

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

// Redis key layout, compatible with data written by earlier deployments.
const (
	// KeyAliases maps hardware address to display name.
	KeyAliases = "mac_addr_aliases"

	// KeyKnown is the set of every hardware address ever ingested. The
	// ingestion batch adds to it inside its atomic commit.
	KeyKnown = "mac_addrs"

	// KeyIgnored is the set of hardware addresses excluded from ingestion.
	KeyIgnored = "mac_addrs_ignored"
)

// Registry is the identity store client. Every address input is case-folded
// before lookup or storage; no operation fails except on store
// unavailability.
type Registry struct {
	client *redis.Client
	logger logger.Logger
}

func NewRegistry(client *redis.Client, log logger.Logger) *Registry {
	return &Registry{client: client, logger: log}
}

// SetAlias creates or overwrites the display name for an address.
func (r *Registry) SetAlias(ctx context.Context, mac, name string) error {
	if err := r.client.HSet(ctx, KeyAliases, models.FoldMAC(mac), name).Err(); err != nil {
		return storeErr("hset alias", err)
	}

	return nil
}

// GetAlias returns the display name for an address, or the address itself
// when no alias exists.
func (r *Registry) GetAlias(ctx context.Context, mac string) (string, error) {
	folded := models.FoldMAC(mac)

	name, err := r.client.HGet(ctx, KeyAliases, folded).Result()
	if err == redis.Nil {
		return folded, nil
	}

	if err != nil {
		return "", storeErr("hget alias", err)
	}

	return name, nil
}

// GetAliases returns display names aligned with the input order. Addresses
// without an alias yield an empty string.
func (r *Registry) GetAliases(ctx context.Context, macs []string) ([]string, error) {
	if len(macs) == 0 {
		return nil, nil
	}

	folded := make([]string, len(macs))
	for i, mac := range macs {
		folded[i] = models.FoldMAC(mac)
	}

	raw, err := r.client.HMGet(ctx, KeyAliases, folded...).Result()
	if err != nil {
		return nil, storeErr("hmget aliases", err)
	}

	names := make([]string, len(macs))

	for i, v := range raw {
		if s, ok := v.(string); ok {
			names[i] = s
		}
	}

	return names, nil
}

// ListAliases returns every alias mapping.
func (r *Registry) ListAliases(ctx context.Context) (map[string]string, error) {
	aliases, err := r.client.HGetAll(ctx, KeyAliases).Result()
	if err != nil {
		return nil, storeErr("hgetall aliases", err)
	}

	return aliases, nil
}

// ReplaceAll swaps the alias map and ignore set wholesale in one atomic
// transaction. The known-device set is untouched. Used by snapshot import.
func (r *Registry) ReplaceAll(ctx context.Context, aliases map[string]string, ignores []string) error {
	pipe := r.client.TxPipeline()

	pipe.Del(ctx, KeyAliases, KeyIgnored)

	for mac, name := range aliases {
		pipe.HSet(ctx, KeyAliases, models.FoldMAC(mac), name)
	}

	if len(ignores) > 0 {
		pipe.SAdd(ctx, KeyIgnored, foldAll(ignores)...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("replace identity state", err)
	}

	return nil
}

// RemoveAlias deletes the display name for an address.
func (r *Registry) RemoveAlias(ctx context.Context, mac string) error {
	if err := r.client.HDel(ctx, KeyAliases, models.FoldMAC(mac)).Err(); err != nil {
		return storeErr("hdel alias", err)
	}

	return nil
}

// ListIgnored returns the current ignore set. Callers snapshot this once per
// ingestion batch; concurrent mutation never affects an in-flight batch.
func (r *Registry) ListIgnored(ctx context.Context) (map[string]struct{}, error) {
	return r.readSet(ctx, KeyIgnored)
}

// AddIgnored excludes addresses from future ingestion. Historical events for
// the address are preserved.
func (r *Registry) AddIgnored(ctx context.Context, macs ...string) error {
	return r.addSet(ctx, KeyIgnored, macs)
}

// RemoveIgnored re-admits an address to ingestion.
func (r *Registry) RemoveIgnored(ctx context.Context, mac string) error {
	if err := r.client.SRem(ctx, KeyIgnored, models.FoldMAC(mac)).Err(); err != nil {
		return storeErr("srem ignored", err)
	}

	return nil
}

// ListKnown returns every address that has ever been ingested.
func (r *Registry) ListKnown(ctx context.Context) (map[string]struct{}, error) {
	return r.readSet(ctx, KeyKnown)
}

// AddKnown records addresses as ingested. The ingestion pipeline performs
// this inside its atomic batch instead; this entry point serves operator
// tooling.
func (r *Registry) AddKnown(ctx context.Context, macs ...string) error {
	return r.addSet(ctx, KeyKnown, macs)
}

// RemoveKnown forgets addresses.
func (r *Registry) RemoveKnown(ctx context.Context, macs ...string) error {
	if len(macs) == 0 {
		return nil
	}

	args := foldAll(macs)

	if err := r.client.SRem(ctx, KeyKnown, args...).Err(); err != nil {
		return storeErr("srem known", err)
	}

	return nil
}

// FlushKnown clears the known-device set entirely.
func (r *Registry) FlushKnown(ctx context.Context) error {
	if err := r.client.Del(ctx, KeyKnown).Err(); err != nil {
		return storeErr("del known", err)
	}

	return nil
}

func (r *Registry) readSet(ctx context.Context, key string) (map[string]struct{}, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, storeErr("smembers "+key, err)
	}

	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}

	return set, nil
}

func (r *Registry) addSet(ctx context.Context, key string, macs []string) error {
	if len(macs) == 0 {
		return nil
	}

	if err := r.client.SAdd(ctx, key, foldAll(macs)...).Err(); err != nil {
		return storeErr("sadd "+key, err)
	}

	return nil
}

func foldAll(macs []string) []interface{} {
	args := make([]interface{}, len(macs))
	for i, mac := range macs {
		args[i] = models.FoldMAC(mac)
	}

	return args
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
}

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

package eventlog

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/carverauto/whodis/pkg/logger"
	"github.com/carverauto/whodis/pkg/models"
)

// RedisStore implements Store on Redis Streams.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisStore connects a store client. SocketPath takes precedence over
// Addr when both are configured.
func NewRedisStore(cfg *models.RedisConfig, log logger.Logger) *RedisStore {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	if cfg.SocketPath != "" {
		opts.Network = "unix"
		opts.Addr = cfg.SocketPath
	}

	return &RedisStore{
		client: redis.NewClient(opts),
		logger: log,
	}
}

// NewRedisStoreWithClient wraps an existing client, mainly for tests.
func NewRedisStoreWithClient(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{client: client, logger: log}
}

func (s *RedisStore) Append(ctx context.Context, stream string, fields []models.Field) (models.EventID, error) {
	raw, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: flattenFields(fields),
	}).Result()
	if err != nil {
		return models.EventID{}, fmt.Errorf("%w: xadd %s: %w", models.ErrStoreUnavailable, stream, err)
	}

	return models.ParseEventID(raw)
}

func (s *RedisStore) Length(ctx context.Context, stream string) (int64, error) {
	n, err := s.client.XLen(ctx, stream).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: xlen %s: %w", models.ErrStoreUnavailable, stream, err)
	}

	return n, nil
}

func (s *RedisStore) Range(ctx context.Context, stream string, from, to Bound) ([]models.Event, error) {
	msgs, err := s.client.XRange(ctx, stream, from.raw, to.raw).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: xrange %s: %w", models.ErrStoreUnavailable, stream, err)
	}

	return parseMessages(stream, msgs)
}

func (s *RedisStore) RangeReverse(ctx context.Context, stream string, from, to Bound) ([]models.Event, error) {
	msgs, err := s.client.XRevRange(ctx, stream, to.raw, from.raw).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: xrevrange %s: %w", models.ErrStoreUnavailable, stream, err)
	}

	return parseMessages(stream, msgs)
}

// Batch starts a MULTI/EXEC transaction. All queued writes become visible
// together or not at all.
func (s *RedisStore) Batch() Batch {
	return &redisBatch{pipe: s.client.TxPipeline()}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", models.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client exposes the underlying connection for collaborators sharing the
// same Redis instance (the identity registry).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

type redisBatch struct {
	pipe    redis.Pipeliner
	appends []*redis.StringCmd
}

func (b *redisBatch) Append(ctx context.Context, stream string, fields []models.Field) {
	cmd := b.pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: flattenFields(fields),
	})
	b.appends = append(b.appends, cmd)
}

func (b *redisBatch) AddSet(ctx context.Context, key string, members ...string) {
	if len(members) == 0 {
		return
	}

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}

	b.pipe.SAdd(ctx, key, args...)
}

func (b *redisBatch) Commit(ctx context.Context) ([]models.EventID, error) {
	if _, err := b.pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: batch commit: %w", models.ErrStoreUnavailable, err)
	}

	ids := make([]models.EventID, 0, len(b.appends))

	for _, cmd := range b.appends {
		id, err := models.ParseEventID(cmd.Val())
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func flattenFields(fields []models.Field) []interface{} {
	flat := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		flat = append(flat, f.Key, f.Value)
	}

	return flat
}

// parseMessages converts raw stream entries. The client surfaces fields as a
// map, so read-side field order is normalized by key to keep repeated reads
// of the same range identical.
func parseMessages(stream string, msgs []redis.XMessage) ([]models.Event, error) {
	events := make([]models.Event, 0, len(msgs))

	for _, msg := range msgs {
		id, err := models.ParseEventID(msg.ID)
		if err != nil {
			return nil, err
		}

		keys := make([]string, 0, len(msg.Values))
		for k := range msg.Values {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		fields := make([]models.Field, 0, len(keys))

		for _, k := range keys {
			v, _ := msg.Values[k].(string)
			fields = append(fields, models.Field{Key: k, Value: v})
		}

		events = append(events, models.Event{Stream: stream, ID: id, Fields: fields})
	}

	return events, nil
}

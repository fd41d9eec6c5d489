package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"tienda-api/internal/model"
)

// HistoryCache keeps the rendered chat history of a session in redis. Writers
// mark the session dirty so readers skip a snapshot that predates the write.
type HistoryCache struct {
	client         redisv9.Cmdable
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewHistoryCache(client redisv9.Cmdable, historyTTL, dirtyMarkerTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &HistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

// Get returns the cached messages and whether the entry was usable.
func (c *HistoryCache) Get(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error) {
	dirty, err := c.IsDirty(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if dirty {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, historyKey(sessionID)).Bytes()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get chat history failed: %w", err)
	}

	var messages []model.ChatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached chat history failed: %w", err)
	}
	return messages, true, nil
}

// setUnlessDirty stores KEYS[1] only while the dirty marker KEYS[2] is absent.
var setUnlessDirty = redisv9.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// Set stores a snapshot read from the database. It reports false without
// storing anything when a write marked the session dirty in the meantime,
// since the snapshot may predate that write.
func (c *HistoryCache) Set(ctx context.Context, sessionID uint, messages []model.ChatMessage) (bool, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return false, fmt.Errorf("marshal chat history failed: %w", err)
	}
	stored, err := setUnlessDirty.Run(ctx, c.client,
		[]string{historyKey(sessionID), dirtyKey(sessionID)},
		payload, c.historyTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set chat history failed: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the snapshot and leaves a short-lived dirty marker behind.
func (c *HistoryCache) Invalidate(ctx context.Context, sessionID uint) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, historyKey(sessionID))
	pipe.Set(ctx, dirtyKey(sessionID), "1", c.dirtyMarkerTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate chat history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) IsDirty(ctx context.Context, sessionID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, dirtyKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check chat history marker failed: %w", err)
	}
	return exists > 0, nil
}

func historyKey(sessionID uint) string {
	return fmt.Sprintf("shop:chat:history:%d", sessionID)
}

func dirtyKey(sessionID uint) string {
	return fmt.Sprintf("shop:chat:history:dirty:%d", sessionID)
}

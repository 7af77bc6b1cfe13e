package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

const (
	defaultStateTTL = 24 * time.Hour
	opTimeout       = 3 * time.Second
)

// RedisManager keeps user states in Redis so a restart does not lose a
// half-finished entry
type RedisManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisManager creates a Redis-based state manager on an existing client.
// A non-positive ttl falls back to 24 hours.
func NewRedisManager(client *redis.Client, prefix string, ttl time.Duration) *RedisManager {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &RedisManager{client: client, prefix: prefix, ttl: ttl}
}

func (m *RedisManager) stateKey(userID int64) string {
	return fmt.Sprintf("%suser:%d:state", m.prefix, userID)
}

func (m *RedisManager) tempKey(userID int64) string {
	return fmt.Sprintf("%suser:%d:temp", m.prefix, userID)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := m.client.Set(ctx, m.stateKey(userID), state, m.ttl).Err(); err != nil {
		logger.Warn("Failed to store bot state", "user_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	state, err := m.client.Get(ctx, m.stateKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Failed to read bot state", "user_id", userID, "error", err)
		}
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *RedisManager) ClearUserState(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	m.client.Del(ctx, m.stateKey(userID))
}

// SetTempData sets temporary data for a user
func (m *RedisManager) SetTempData(userID int64, key string, value interface{}) {
	tempData := m.getTempDataMap(userID)
	if tempData == nil {
		tempData = make(map[string]interface{})
	}
	tempData[key] = value
	m.saveTempDataMap(userID, tempData)
}

// GetTempData gets temporary data for a user. Values come back JSON-decoded,
// so numbers are float64.
func (m *RedisManager) GetTempData(userID int64, key string) (interface{}, bool) {
	tempData := m.getTempDataMap(userID)
	if tempData == nil {
		return nil, false
	}
	value, exists := tempData[key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	m.client.Del(ctx, m.tempKey(userID))
}

func (m *RedisManager) getTempDataMap(userID int64) map[string]interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := m.client.Get(ctx, m.tempKey(userID)).Bytes()
	if err != nil {
		return nil
	}

	var tempData map[string]interface{}
	if err := json.Unmarshal(data, &tempData); err != nil {
		return nil
	}
	return tempData
}

func (m *RedisManager) saveTempDataMap(userID int64, tempData map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := json.Marshal(tempData)
	if err != nil {
		return
	}
	if err := m.client.Set(ctx, m.tempKey(userID), data, m.ttl).Err(); err != nil {
		logger.Warn("Failed to store bot temp data", "user_id", userID, "error", err)
	}
}

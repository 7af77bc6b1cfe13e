package state

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisManager(t *testing.T) (*RedisManager, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisManager(client, "test:", time.Hour), mr
}

func managers(t *testing.T) map[string]StateManager {
	redisManager, _ := setupRedisManager(t)
	return map[string]StateManager{
		"memory": NewManager(),
		"redis":  redisManager,
	}
}

func TestStateManager_UserState(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, None, m.GetUserState(1))

			m.SetUserState(1, WaitingForValue)
			assert.Equal(t, WaitingForValue, m.GetUserState(1))
			assert.Equal(t, None, m.GetUserState(2))

			m.ClearUserState(1)
			assert.Equal(t, None, m.GetUserState(1))
		})
	}
}

func TestStateManager_TempData(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := m.GetTempData(1, KeyActivityType)
			assert.False(t, ok)

			m.SetTempData(1, KeyActivityType, "spo2")
			m.SetTempData(1, "other", "x")

			v, ok := m.GetTempData(1, KeyActivityType)
			require.True(t, ok)
			assert.Equal(t, "spo2", v)

			m.ClearTempData(1)
			_, ok = m.GetTempData(1, "other")
			assert.False(t, ok)
		})
	}
}

func TestRedisManager_KeysAndTTL(t *testing.T) {
	m, mr := setupRedisManager(t)

	m.SetUserState(42, WaitingForValue)
	m.SetTempData(42, KeyActivityType, "steps")

	assert.True(t, mr.Exists("test:user:42:state"))
	assert.True(t, mr.Exists("test:user:42:temp"))
	assert.Equal(t, time.Hour, mr.TTL("test:user:42:state"))

	mr.FastForward(2 * time.Hour)
	assert.Equal(t, None, m.GetUserState(42))
}

func TestRedisManager_DefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	m := NewRedisManager(client, "", 0)
	m.SetUserState(1, WaitingForValue)

	assert.Equal(t, 24*time.Hour, mr.TTL("user:1:state"))
}

func TestRedisManager_ServerDown(t *testing.T) {
	m, mr := setupRedisManager(t)
	mr.Close()

	m.SetUserState(1, WaitingForValue)
	assert.Equal(t, None, m.GetUserState(1))
	_, ok := m.GetTempData(1, KeyActivityType)
	assert.False(t, ok)
}

package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisLimiter_DisabledAllowsEverything(t *testing.T) {
	var nilLimiter *RedisLimiter
	ok, err := nilLimiter.Allow(context.Background(), "a@example.com")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewRedisLimiter(nil, 1, time.Minute).Allow(context.Background(), "a@example.com")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ok, err := NewRedisLimiter(client, 5, time.Minute).Allow(context.Background(), "a@example.com")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect("not a url")
	assert.ErrorContains(t, err, "REDIS_URL")
}

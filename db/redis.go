package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const (
	resultKeyPrefix = "punchline:result:"
	resultTTL       = 24 * time.Hour
)

func ConnectRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		fmt.Println("REDIS_URL environment variable is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// CacheResult stores a serialized completed-extraction response so repeat
// reads skip the three-table lookup.
func CacheResult(requestID string, payload []byte) error {
	return Redis.Set(Ctx, resultKeyPrefix+requestID, payload, resultTTL).Err()
}

// Cache adapts the package-level helpers to the handler's cache interface.
type Cache struct{}

func (Cache) CacheResult(requestID string, payload []byte) error {
	return CacheResult(requestID, payload)
}

func (Cache) GetCachedResult(requestID string) ([]byte, error) {
	return GetCachedResult(requestID)
}

// GetCachedResult returns the cached response for a request, or nil on miss.
func GetCachedResult(requestID string) ([]byte, error) {
	payload, err := Redis.Get(Ctx, resultKeyPrefix+requestID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

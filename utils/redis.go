package utils

import (
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/goccy/go-json"
)

// GetRedis returns a *redis.Client instance
func GetRedis(addr string) *redis.Client {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	return client
}

// SetJSON marshals value and stores it under key with a ttl.
func SetJSON(r *redis.Client, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Set(key, payload, ttl).Err()
}

// GetJSON loads key into dest. Returns redis.Nil when the key is absent.
func GetJSON(r *redis.Client, key string, dest any) error {
	raw, err := r.Get(key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

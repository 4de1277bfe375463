package session

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

type FactoryResult struct {
	Driver string
	Store  Store
}

func FromEnv() (FactoryResult, error) {
	driver := os.Getenv("SESSION_DRIVER")
	if driver == "" {
		driver = "memory"
	}

	ttl := 30 * time.Minute
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return FactoryResult{}, fmt.Errorf("bad SESSION_TTL: %w", err)
		}
		ttl = d
	}

	switch driver {
	case "memory":
		return FactoryResult{Driver: "memory", Store: NewMemory(ttl)}, nil

	case "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			return FactoryResult{}, fmt.Errorf("redis session store: REDIS_ADDR required")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		return FactoryResult{Driver: "redis", Store: NewRedis(rdb, ttl)}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown SESSION_DRIVER: %s", driver)
	}
}

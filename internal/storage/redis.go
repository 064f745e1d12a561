package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const markerTTL = 24 * time.Hour

// RedisCache keeps short-lived dedup markers and robots.txt bodies so
// the service does not re-archive a page or re-fetch robots rules on
// every frontier message.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(address string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})

	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

func (rc *RedisCache) SetArchivedURL(ctx context.Context, url string) error {
	return rc.client.Set(ctx, "archived:"+url, "1", markerTTL).Err()
}

func (rc *RedisCache) HasArchivedURL(ctx context.Context, url string) (bool, error) {
	exists, err := rc.client.Exists(ctx, "archived:"+url).Result()
	return exists == 1, err
}

func (rc *RedisCache) SetRobotsTXT(ctx context.Context, domain string, content string) (string, error) {
	return rc.client.Set(ctx, "robots:"+domain, content, markerTTL).Result()
}

func (rc *RedisCache) GetRobotsTXT(ctx context.Context, domain string) (string, error) {
	content, err := rc.client.Get(ctx, "robots:"+domain).Result()
	if err != nil {
		return "", err
	}
	return content, nil
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

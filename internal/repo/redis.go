package repo

import (
	"SecureDrop/config"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

const (
	// expireMarkerPrefix keys carry a TTL matching a link's expires_at.
	// When the marker lapses the keyspace listener evicts the cached
	// status view so preview pages flip to Expired without a DB poll.
	expireMarkerPrefix = "share:expire:"
	statusViewPrefix   = "share:view:"
)

// InitRedis initializes the Redis client.
func InitRedis() {
	RedisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	_, err := RedisClient.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("init redis fail", err)
	}
	log.Println("init redis success")
	Redis = RedisClient
}

// EnableKeyspaceNotifications enables Redis expired-key events.
func EnableKeyspaceNotifications(ctx context.Context) error {
	if Redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	return Redis.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}

// StatusViewKey builds the cache key for a link's status view.
func StatusViewKey(token string) string {
	return statusViewPrefix + token
}

// SetExpireMarker stores a marker key whose TTL tracks the link expiry.
func SetExpireMarker(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return Redis.Set(ctx, expireMarkerPrefix+token, "1", ttl).Err()
}

// InvalidateStatusView drops the cached status view for a token.
func InvalidateStatusView(ctx context.Context, token string) {
	if Redis == nil {
		return
	}
	if err := Redis.Del(ctx, StatusViewKey(token)).Err(); err != nil {
		log.Printf("invalidate status view %s failed: %v", token, err)
	}
}

// ListenRedisExpired listens for Redis expired events.
func ListenRedisExpired(ctx context.Context, rdb *redis.Client, ready chan<- struct{}) {
	pubsub := rdb.Subscribe(ctx, fmt.Sprintf("__keyevent@%d__:expired", config.AppConfig.RedisDB))
	_, err := pubsub.Receive(ctx)
	if err != nil {
		log.Fatalf("subscribe failed: %v", err)
	}
	close(ready)
	ch := pubsub.Channel()

	for msg := range ch {
		handleExpiredKey(ctx, msg.Payload)
	}
}

// handleExpiredKey dispatches expired-key handlers.
func handleExpiredKey(ctx context.Context, key string) {
	switch {
	case strings.HasPrefix(key, expireMarkerPrefix):
		handleShareExpired(ctx, key)
	default:
	}
}

// handleShareExpired evicts the stale status view once a link's TTL lapses.
// Expiry itself stays derived from expires_at in MySQL; nothing is written
// to the share_link row here.
func handleShareExpired(ctx context.Context, key string) {
	token := strings.TrimPrefix(key, expireMarkerPrefix)
	InvalidateStatusView(ctx, token)
	log.Println("share link expired:", token)
}

package webhook

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/trueup/internal/config"
	"go.uber.org/zap"
)

const seenEventTTL = 24 * time.Hour

// SeenEvents suppresses replays of already-handled events. Delivery is
// at-least-once so this is purely an optimization: a cache miss (or no redis
// at all) just means the event runs through the idempotent reconcile path
// again.
type SeenEvents struct {
	client *redis.Client
}

// NewSeenEvents returns a nil cache when redis is not configured; all
// methods tolerate the nil receiver.
func NewSeenEvents(cfg config.Config, log *zap.Logger) *SeenEvents {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Named("webhook.dedup").Info("webhook replay cache enabled", zap.String("addr", cfg.RedisAddr))
	return &SeenEvents{client: client}
}

func (s *SeenEvents) Seen(ctx context.Context, eventID string) bool {
	if s == nil || s.client == nil {
		return false
	}
	n, err := s.client.Exists(ctx, seenKey(eventID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (s *SeenEvents) Mark(ctx context.Context, eventID string) {
	if s == nil || s.client == nil {
		return
	}
	_ = s.client.Set(ctx, seenKey(eventID), 1, seenEventTTL).Err()
}

func seenKey(eventID string) string {
	return "webhook:event:" + eventID
}

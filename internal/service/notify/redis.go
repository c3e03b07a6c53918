package notify

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// RedisSink publishes events as JSON on a Redis pub/sub channel.
type RedisSink struct {
	rdb     goredis.UniversalClient
	channel string
}

func NewRedisSink(rdb goredis.UniversalClient, channel string) *RedisSink {
	return &RedisSink{
		rdb:     rdb,
		channel: channel,
	}
}

func (s *RedisSink) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Name, err)
	}
	if err := s.rdb.Publish(ctx, s.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Name, err)
	}
	return nil
}

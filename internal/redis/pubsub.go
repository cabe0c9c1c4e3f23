package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CapacityPubSub fans out "a seat was sold or released" notifications so
// every instance can drop its cached availability counters.
type CapacityPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewCapacityPubSub(rdb *redis.Client) *CapacityPubSub {
	return &CapacityPubSub{
		rdb:     rdb,
		channel: ChannelCapacityChanged(),
	}
}

type capacityChangedMsg struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *CapacityPubSub) PublishCapacityChanged(ctx context.Context, session string) error {
	msg := capacityChangedMsg{
		Type:    "capacity_changed",
		Session: session,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *CapacityPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, session string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg capacityChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil &&
				msg.Type == "capacity_changed" {
				handler(ctx, msg.Session)
			}
		}
	}
}

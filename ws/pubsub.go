package ws

import (
	"context"
	"encoding/json"

	"freelancehub/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const relayChannel = "ws:push"

// relayFrame carries one push across instances. Origin lets an instance
// skip frames it published itself.
type relayFrame struct {
	Origin  string          `json:"origin"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay fans pushes out to the manager of every instance subscribed
// to the same redis channel.
type RedisRelay struct {
	rdb        *redis.Client
	instanceID string
}

func NewRedisRelay(rdb *redis.Client) *RedisRelay {
	return &RedisRelay{
		rdb:        rdb,
		instanceID: uuid.NewString(),
	}
}

// Publish forwards a push to the other instances. Best-effort: a relay
// failure never fails the local delivery.
func (r *RedisRelay) Publish(userID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("relay marshal failed", "user_id", userID, "error", err)
		return
	}
	frame, err := json.Marshal(relayFrame{
		Origin:  r.instanceID,
		UserID:  userID,
		Payload: raw,
	})
	if err != nil {
		return
	}
	if err := r.rdb.Publish(context.Background(), relayChannel, frame).Err(); err != nil {
		logger.Warn("relay publish failed", "user_id", userID, "error", err)
	}
}

// Listen subscribes to the relay channel and delivers foreign frames to
// local connections. Blocks until ctx is cancelled.
func (r *RedisRelay) Listen(ctx context.Context, manager *Manager) {
	sub := r.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame relayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				logger.Warn("relay decode failed", "error", err)
				continue
			}
			if frame.Origin == r.instanceID {
				continue
			}
			manager.pushLocal(frame.UserID, frame.Payload)
		}
	}
}

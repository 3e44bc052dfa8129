package progress

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// DefaultRedisChannel 多实例部署时进度事件的广播频道
const DefaultRedisChannel = "internships:progress"

// PubSub 发布/订阅能力，由 pkg/redis.Client 实现
type PubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error
}

type envelope struct {
	Topic     string          `json:"topic"`
	Recipient string          `json:"recipient"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// RedisTransport 经 Redis 广播事件，各实例再投递给本地 Hub 上的连接
type RedisTransport struct {
	ps      PubSub
	channel string
	logger  *zap.Logger
}

// NewRedisTransport 创建 Redis 进度传输
func NewRedisTransport(ps PubSub, channel string, logger *zap.Logger) *RedisTransport {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisTransport{ps: ps, channel: channel, logger: logger.Named("progress")}
}

// Emit 实现 Transport；发布失败只记录日志
func (t *RedisTransport) Emit(topic, recipient string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Warn("进度事件序列化失败", zap.String("topic", topic), zap.Error(err))
		return
	}
	msg, err := json.Marshal(envelope{Topic: topic, Recipient: recipient, Data: data})
	if err != nil {
		t.logger.Warn("进度事件序列化失败", zap.String("topic", topic), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := t.ps.Publish(ctx, t.channel, msg); err != nil {
		t.logger.Warn("进度事件发布失败", zap.String("topic", topic), zap.Error(err))
	}
}

// Forward 订阅广播频道并转发到本地 Hub，阻塞直到 ctx 取消
func (t *RedisTransport) Forward(ctx context.Context, hub *Hub) error {
	return t.ps.Subscribe(ctx, t.channel, func(payload []byte) {
		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			t.logger.Warn("进度广播消息格式错误", zap.Error(err))
			return
		}
		hub.Emit(env.Topic, env.Recipient, env.Data)
	})
}

// Package notify 投递面向导师的通知任务（邮件由下游消费者发送）。
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/model"
)

// ErrRecipientMissing 导师缺少邮箱
var ErrRecipientMissing = errors.New("通知接收人邮箱为空")

// Sender 通知发送接口
type Sender interface {
	SendCampaignCreated(ctx context.Context, mentor *model.Mentor, campaign *model.Campaign) error
	Close() error
}

// CampaignCreatedEvent 批次发布通知消息体
type CampaignCreatedEvent struct {
	Kind         string    `json:"kind"`
	To           string    `json:"to"`
	MentorName   string    `json:"mentor_name"`
	CampaignID   string    `json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	Semester     string    `json:"semester"`
	EndAt        *int64    `json:"end_at,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

const kindCampaignCreated = "campaign_created"

func newCampaignCreated(mentor *model.Mentor, campaign *model.Campaign) (*CampaignCreatedEvent, error) {
	if mentor == nil || mentor.Email == "" {
		return nil, ErrRecipientMissing
	}
	ev := &CampaignCreatedEvent{
		Kind:         kindCampaignCreated,
		To:           mentor.Email,
		MentorName:   mentor.FullName(),
		CampaignID:   campaign.CampaignID,
		CampaignName: campaign.Name,
		Semester:     campaign.Semester,
		SentAt:       time.Now().UTC(),
	}
	if campaign.EndAt != nil {
		ms := campaign.EndAt.UnixMilli()
		ev.EndAt = &ms
	}
	return ev, nil
}

// New 按配置选择发送实现
func New(cfg *config.NotifyConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Driver {
	case "kafka":
		return NewKafkaSender(cfg.Brokers, cfg.Topic, logger), nil
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("未知的通知驱动: %s", cfg.Driver)
	}
}

// ── Kafka ──

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender 将通知写入 Kafka 主题，消息键为导师邮箱
type KafkaSender struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaSender 创建 Kafka 通知发送器
func NewKafkaSender(brokers []string, topic string, logger *zap.Logger) *KafkaSender {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaSender{writer: w, logger: logger.Named("notify")}
}

func (s *KafkaSender) SendCampaignCreated(ctx context.Context, mentor *model.Mentor, campaign *model.Campaign) error {
	ev, err := newCampaignCreated(mentor, campaign)
	if err != nil {
		return err
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("序列化通知失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.To),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(kindCampaignCreated)},
		},
	}
	injectTraceContext(ctx, &msg.Headers)

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Error("投递批次通知失败",
			zap.String("campaign_id", campaign.CampaignID),
			zap.String("to", ev.To),
			zap.Error(err),
		)
		return fmt.Errorf("投递批次通知失败: %w", err)
	}
	return nil
}

// Close 关闭底层 writer
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// headerCarrier 让 otel 传播器读写 Kafka 消息头
type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func injectTraceContext(ctx context.Context, headers *[]kafka.Header) {
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: headers})
}

var _ propagation.TextMapCarrier = headerCarrier{}

// ── 日志 ──

// LogSender 只记录日志，用于本地开发
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender 创建日志通知发送器
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("notify")}
}

func (s *LogSender) SendCampaignCreated(_ context.Context, mentor *model.Mentor, campaign *model.Campaign) error {
	ev, err := newCampaignCreated(mentor, campaign)
	if err != nil {
		return err
	}
	s.logger.Info("批次发布通知",
		zap.String("to", ev.To),
		zap.String("mentor", ev.MentorName),
		zap.String("campaign_id", ev.CampaignID),
		zap.String("campaign", ev.CampaignName),
	)
	return nil
}

func (s *LogSender) Close() error { return nil }

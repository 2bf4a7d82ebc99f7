package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
	"github.com/wyfcoding/lsmbench/pkg/mq"
)

// eventEnvelope 事件信封，统一不同事件类型的消息结构
type eventEnvelope struct {
	EventType  string    `json:"event_type"`
	OccurredOn time.Time `json:"occurred_on"`
	Payload    any       `json:"payload"`
}

// KafkaEventPublisher 实现 EventPublisher 接口，将领域事件发布到 Kafka
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建新的 KafkaEventPublisher 实例
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

// PublishExperimentCompleted 发布实验完成事件
func (p *KafkaEventPublisher) PublishExperimentCompleted(ctx context.Context, event domain.ExperimentCompletedEvent) error {
	return p.publish(ctx, domain.ExperimentCompletedEventType, event.TaskID, event.OccurredOn, event)
}

// PublishExperimentFailed 发布实验失败事件
func (p *KafkaEventPublisher) PublishExperimentFailed(ctx context.Context, event domain.ExperimentFailedEvent) error {
	return p.publish(ctx, domain.ExperimentFailedEventType, event.TaskID, event.OccurredOn, event)
}

// publish 以任务 ID 为分区键发送，同一任务的事件保持有序。
func (p *KafkaEventPublisher) publish(ctx context.Context, eventType, key string, occurredOn time.Time, payload any) error {
	envelope := eventEnvelope{
		EventType:  eventType,
		OccurredOn: occurredOn,
		Payload:    payload,
	}
	return p.producer.SendMessage(ctx, p.topic, key, envelope)
}

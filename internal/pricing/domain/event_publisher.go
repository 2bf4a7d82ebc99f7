package domain

import "context"

// EventPublisher 事件发布者接口，基础设施层以 Kafka 实现。
// 未启用消息队列时应用层以 nil 发布者装配。
type EventPublisher interface {
	// PublishExperimentCompleted 发布实验完成事件
	PublishExperimentCompleted(ctx context.Context, event ExperimentCompletedEvent) error

	// PublishExperimentFailed 发布实验失败事件
	PublishExperimentFailed(ctx context.Context, event ExperimentFailedEvent) error
}

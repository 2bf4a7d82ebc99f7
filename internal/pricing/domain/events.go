package domain

import "time"

const (
	ExperimentCompletedEventType = "ExperimentCompleted"
	ExperimentFailedEventType    = "ExperimentFailed"
)

// ExperimentCompletedEvent 实验任务完成事件
type ExperimentCompletedEvent struct {
	TaskID     string    `json:"task_id"`
	Backends   []string  `json:"backends"`
	RunCount   int       `json:"run_count"`
	DurationMS float64   `json:"duration_ms"`
	OccurredOn time.Time `json:"occurred_on"`
}

// ExperimentFailedEvent 实验任务失败事件
type ExperimentFailedEvent struct {
	TaskID     string    `json:"task_id"`
	Error      string    `json:"error"`
	OccurredOn time.Time `json:"occurred_on"`
}

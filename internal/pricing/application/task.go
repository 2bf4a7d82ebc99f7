package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
)

// TaskStatus 实验任务的生命周期状态
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
)

// Task 一次实验任务的内存态快照。查询接口返回的都是快照，
// 结果记录创建后不再修改，可安全共享。
type Task struct {
	ID        string              `json:"task_id"`
	Status    TaskStatus          `json:"status"`
	Progress  string              `json:"progress"`
	Results   []*domain.RunRecord `json:"results"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// TaskStore 读写锁保护的任务表。任务只存在于内存中，进程重启即
// 丢失；持久留痕由运行记录仓储负责。
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskStore 创建空任务表
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task)}
}

// Create 登记一个 PENDING 任务并返回其快照
func (s *TaskStore) Create() Task {
	now := time.Now()
	task := &Task{
		ID:        uuid.New().String(),
		Status:    TaskPending,
		Progress:  "Queued",
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()
	return *task
}

// Get 返回任务快照
func (s *TaskStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return snapshot(task), true
}

// MarkRunning 任务进入 RUNNING 状态
func (s *TaskStore) MarkRunning(id string) {
	s.update(id, func(task *Task) {
		task.Status = TaskRunning
		task.Progress = "Starting"
	})
}

// SetProgress 更新进度描述
func (s *TaskStore) SetProgress(id, progress string) {
	s.update(id, func(task *Task) {
		task.Progress = progress
	})
}

// Complete 任务完成并挂载全部结果
func (s *TaskStore) Complete(id string, results []*domain.RunRecord) {
	s.update(id, func(task *Task) {
		task.Status = TaskCompleted
		task.Progress = "Done"
		task.Results = results
	})
}

// Fail 任务失败并记录原因
func (s *TaskStore) Fail(id string, err error) {
	s.update(id, func(task *Task) {
		task.Status = TaskFailed
		task.Error = err.Error()
	})
}

func (s *TaskStore) update(id string, fn func(*Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task, ok := s.tasks[id]; ok {
		fn(task)
		task.UpdatedAt = time.Now()
	}
}

func snapshot(task *Task) Task {
	out := *task
	out.Results = make([]*domain.RunRecord, len(task.Results))
	copy(out.Results, task.Results)
	return out
}

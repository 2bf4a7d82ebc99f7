package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
	"github.com/wyfcoding/lsmbench/pkg/logger"
	"github.com/wyfcoding/lsmbench/pkg/metrics"
)

// ErrPersistenceDisabled 未启用结果持久化时查询历史记录返回该错误
var ErrPersistenceDisabled = errors.New("run record persistence is not enabled")

// ExperimentService 实验编排服务：接收实验请求，在后台任务中对
// (扫描值 × 后端) 的每个组合同步执行一次定价并计时。结果保留在
// 任务内存态，可选落库与发布领域事件。
type ExperimentService struct {
	store     *TaskStore
	records   domain.RunRecordRepository // 可为 nil
	publisher domain.EventPublisher      // 可为 nil
	metrics   *metrics.Metrics           // 可为 nil
	workers   int
	arenaCap  int // Arena 容量（字节），0 表示按任务内最大配置估算
	sem       chan struct{}
}

// NewExperimentService 创建实验编排服务。
// workers 控制并行后端的 worker 数（0 取 GOMAXPROCS）；
// maxConcurrentTasks 限制同时执行的实验任务数，超出的任务排队等待。
func NewExperimentService(workers, maxConcurrentTasks, arenaCapacity int, records domain.RunRecordRepository, publisher domain.EventPublisher, m *metrics.Metrics) *ExperimentService {
	if maxConcurrentTasks <= 0 {
		maxConcurrentTasks = 4
	}
	return &ExperimentService{
		store:     NewTaskStore(),
		records:   records,
		publisher: publisher,
		metrics:   m,
		workers:   workers,
		arenaCap:  arenaCapacity,
		sem:       make(chan struct{}, maxConcurrentTasks),
	}
}

// SubmitExperiment 校验请求后登记任务并在后台执行，立即返回任务快照
func (s *ExperimentService) SubmitExperiment(ctx context.Context, req *ExperimentRequest) (Task, error) {
	if err := ValidateSweep(req.Sweep); err != nil {
		return Task{}, err
	}

	task := s.store.Create()
	if s.metrics != nil {
		s.metrics.ExperimentsTotal.Inc()
	}
	logger.Info(ctx, "Experiment submitted", "task_id", task.ID, "backends", req.Backends)

	go s.runExperiment(task.ID, req)
	return task, nil
}

// GetTask 查询任务状态与结果
func (s *ExperimentService) GetTask(id string) (Task, bool) {
	return s.store.Get(id)
}

// Backends 列出全部已注册的定价后端
func (s *ExperimentService) Backends() []domain.Backend {
	return domain.Backends()
}

// ListRecords 按时间倒序查询最近的历史运行记录
func (s *ExperimentService) ListRecords(ctx context.Context, backend string, limit int) ([]*domain.RunRecord, error) {
	if s.records == nil {
		return nil, ErrPersistenceDisabled
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.records.ListRecent(ctx, backend, limit)
}

// runExperiment 在后台执行一次实验的全部运行。
// 单次运行失败即终止任务并标记 FAILED，已完成的运行保留在失败
// 现场之外不再追加；任务间靠信号量限流。
func (s *ExperimentService) runExperiment(taskID string, req *ExperimentRequest) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	ctx := context.Background()
	started := time.Now()

	s.store.MarkRunning(taskID)
	if s.metrics != nil {
		s.metrics.ExperimentsRunning.Inc()
		defer s.metrics.ExperimentsRunning.Dec()
	}

	configs := expandRuns(req)
	totalRuns := len(configs) * len(req.Backends)

	engine := domain.NewEngine(s.workers)
	defer engine.Close()
	arena := s.buildArena(req.Backends, configs)
	sysInfo := CollectSystemInfo()

	results := make([]*domain.RunRecord, 0, totalRuns)
	runCount := 0
	for _, cfg := range configs {
		for _, key := range req.Backends {
			runCount++
			s.store.SetProgress(taskID, fmt.Sprintf("Running %d/%d (%s)", runCount, totalRuns, key))

			backend, ok := domain.LookupBackend(key)
			if !ok {
				// 未注册的后端跳过而非失败，保持实验其余部分可用
				logger.Warn(ctx, "Skipping unknown backend", "task_id", taskID, "backend", key)
				continue
			}
			var runArena *domain.Arena
			if backend.NeedsArena {
				runArena = arena
			}

			runStart := time.Now()
			price, err := engine.PriceBackend(key, cfg, runArena)
			elapsed := time.Since(runStart)
			if err != nil {
				s.failExperiment(ctx, taskID, fmt.Errorf("backend %s: %w", key, err))
				return
			}

			if s.metrics != nil {
				s.metrics.ObservePricing(key, elapsed.Seconds())
			}
			results = append(results, &domain.RunRecord{
				CaseName:     "dynamic_run",
				Backend:      key,
				TimestampUTC: time.Now().UTC(),
				Inputs:       cfg,
				Outputs: domain.RunOutputs{
					Price:  price,
					TimeMS: float64(elapsed.Nanoseconds()) / 1e6,
				},
				SystemInfo: sysInfo,
			})
		}
	}

	s.store.Complete(taskID, results)
	s.persistResults(ctx, taskID, results)

	if s.publisher != nil {
		event := domain.ExperimentCompletedEvent{
			TaskID:     taskID,
			Backends:   req.Backends,
			RunCount:   len(results),
			DurationMS: float64(time.Since(started).Nanoseconds()) / 1e6,
			OccurredOn: time.Now(),
		}
		if err := s.publisher.PublishExperimentCompleted(ctx, event); err != nil {
			logger.Error(ctx, "Failed to publish completion event", "task_id", taskID, "error", err)
		}
	}
	logger.Info(ctx, "Experiment finished", "task_id", taskID, "runs", len(results),
		"duration_ms", time.Since(started).Milliseconds())
}

// buildArena 为任务内需要 Arena 的后端预留一块，全任务复用、逐次
// Reset。容量取配置覆盖值，否则按任务内最大的单次调用估算。
func (s *ExperimentService) buildArena(backendKeys []string, configs []domain.SimulationConfig) *domain.Arena {
	needed := false
	for _, key := range backendKeys {
		if backend, ok := domain.LookupBackend(key); ok && backend.NeedsArena {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	if s.arenaCap > 0 {
		return domain.NewArena(s.arenaCap)
	}
	size := 0
	for _, cfg := range configs {
		size = max(size, domain.ArenaSizeFor(cfg))
	}
	return domain.NewArena(size)
}

func (s *ExperimentService) failExperiment(ctx context.Context, taskID string, err error) {
	logger.Error(ctx, "Experiment failed", "task_id", taskID, "error", err)
	s.store.Fail(taskID, err)
	if s.metrics != nil {
		s.metrics.ExperimentsFailed.Inc()
	}

	if s.publisher != nil {
		event := domain.ExperimentFailedEvent{
			TaskID:     taskID,
			Error:      err.Error(),
			OccurredOn: time.Now(),
		}
		if pubErr := s.publisher.PublishExperimentFailed(ctx, event); pubErr != nil {
			logger.Error(ctx, "Failed to publish failure event", "task_id", taskID, "error", pubErr)
		}
	}
}

func (s *ExperimentService) persistResults(ctx context.Context, taskID string, results []*domain.RunRecord) {
	if s.records == nil || len(results) == 0 {
		return
	}

	if err := s.records.SaveBatch(ctx, results); err != nil {
		// 落库失败不影响任务状态，结果仍在内存态可查
		logger.Error(ctx, "Failed to persist run records", "task_id", taskID, "count", len(results), "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordsPersisted.Add(float64(len(results)))
	}
}

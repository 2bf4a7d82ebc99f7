package domain

import "context"

// RunRecordRepository 运行记录仓储。持久化是可选能力，未启用数据库
// 时应用层以 nil 仓储装配，结果只保留在任务内存态。
type RunRecordRepository interface {
	// Save 保存单条运行记录
	Save(ctx context.Context, record *RunRecord) error
	// SaveBatch 在一个事务内保存一次实验的全部运行记录
	SaveBatch(ctx context.Context, records []*RunRecord) error
	// ListRecent 按运行时间倒序返回最近的记录，backend 为空表示不过滤
	ListRecent(ctx context.Context, backend string, limit int) ([]*RunRecord, error)
}

package mysql

import (
	"context"

	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
	"github.com/wyfcoding/lsmbench/pkg/db"
	"gorm.io/gorm"
)

const insertBatchSize = 200

type runRecordRepository struct {
	database *db.DB
}

// NewRunRecordRepository 创建并返回一个新的 runRecordRepository 实例。
func NewRunRecordRepository(database *db.DB) domain.RunRecordRepository {
	return &runRecordRepository{database: database}
}

func (r *runRecordRepository) Save(ctx context.Context, rec *domain.RunRecord) error {
	model := toRunRecordModel(rec)
	if model == nil {
		return nil
	}
	return r.database.WithContext(ctx).Create(model).Error
}

// SaveBatch 在单个事务内批量写入，实验中途失败不会留下半截结果。
func (r *runRecordRepository) SaveBatch(ctx context.Context, recs []*domain.RunRecord) error {
	if len(recs) == 0 {
		return nil
	}
	models := make([]*RunRecordModel, 0, len(recs))
	for _, rec := range recs {
		if m := toRunRecordModel(rec); m != nil {
			models = append(models, m)
		}
	}
	return r.database.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.CreateInBatches(models, insertBatchSize).Error
	})
}

func (r *runRecordRepository) ListRecent(ctx context.Context, backend string, limit int) ([]*domain.RunRecord, error) {
	query := r.database.WithContext(ctx).Model(&RunRecordModel{})
	if backend != "" {
		query = query.Where("backend = ?", backend)
	}

	var models []*RunRecordModel
	if err := query.Order("timestamp_utc desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.RunRecord, 0, len(models))
	for _, m := range models {
		records = append(records, toRunRecord(m))
	}
	return records, nil
}

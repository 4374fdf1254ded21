package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"gorm.io/gorm"
)

// LotRunRepository 批次执行仓库
type LotRunRepository struct {
	db *gorm.DB
}

func NewLotRunRepository(db *gorm.DB) *LotRunRepository {
	return &LotRunRepository{db: db}
}

// Create 创建批次执行记录（不含步骤）
func (r *LotRunRepository) Create(ctx context.Context, run *entity.ProcessLotRun) error {
	return r.db.WithContext(ctx).Omit("Steps").Create(run).Error
}

// CreateStepRun 创建步骤实例
func (r *LotRunRepository) CreateStepRun(ctx context.Context, step *entity.StepRun) error {
	return r.db.WithContext(ctx).Create(step).Error
}

// Delete 删除执行记录（部分写入失败时的补偿动作使用）
func (r *LotRunRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ProcessLotRun{}).Error
}

// DeleteStepRuns 删除执行记录的全部步骤实例
func (r *LotRunRepository) DeleteStepRuns(ctx context.Context, runID string) error {
	return r.db.WithContext(ctx).Where("process_lot_run_id = ?", runID).Delete(&entity.StepRun{}).Error
}

// FindByID 根据ID查询执行记录（带步骤，按顺序）
func (r *LotRunRepository) FindByID(ctx context.Context, id string) (*entity.ProcessLotRun, error) {
	var run entity.ProcessLotRun
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByBatchAndProcess 查询(批次, 工艺)下的执行记录
// 不存在是正常控制流（触发创建），调用方据此判断，不作为错误处理
func (r *LotRunRepository) FindByBatchAndProcess(ctx context.Context, batchID, processID string) (*entity.ProcessLotRun, error) {
	var run entity.ProcessLotRun
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("supply_batch_id = ? AND process_id = ?", batchID, processID).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindAll 分页查询执行记录
func (r *LotRunRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProcessLotRun, int64, error) {
	var items []entity.ProcessLotRun
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProcessLotRun{})
	if v := filters["status"]; v != "" {
		query = query.Where("status = ?", v)
	}
	if v := filters["process_id"]; v != "" {
		query = query.Where("process_id = ?", v)
	}
	if v := filters["supply_batch_id"]; v != "" {
		query = query.Where("supply_batch_id = ?", v)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// Update 更新执行记录
func (r *LotRunRepository) Update(ctx context.Context, run *entity.ProcessLotRun) error {
	return r.db.WithContext(ctx).Omit("Steps").Save(run).Error
}

// FindStepRunByID 根据ID查询步骤实例
func (r *LotRunRepository) FindStepRunByID(ctx context.Context, id string) (*entity.StepRun, error) {
	var step entity.StepRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &step, nil
}

// UpdateStepRun 更新步骤实例
func (r *LotRunRepository) UpdateStepRun(ctx context.Context, step *entity.StepRun) error {
	return r.db.WithContext(ctx).Save(step).Error
}

// CountIncompleteSteps 统计执行记录下未完成的步骤数
func (r *LotRunRepository) CountIncompleteSteps(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.StepRun{}).
		Where("process_lot_run_id = ? AND status <> ?", runID, entity.StepRunStatusCompleted).
		Count(&count).Error
	return count, err
}

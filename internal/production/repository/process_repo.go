package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"gorm.io/gorm"
)

// ProcessRepository 工艺定义仓库
type ProcessRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// Create 创建工艺定义（不含步骤）
func (r *ProcessRepository) Create(ctx context.Context, p *entity.ProcessDefinition) error {
	return r.db.WithContext(ctx).Omit("Steps").Create(p).Error
}

// CreateStep 创建工艺步骤
func (r *ProcessRepository) CreateStep(ctx context.Context, step *entity.ProcessStep) error {
	return r.db.WithContext(ctx).Create(step).Error
}

// Delete 删除工艺定义（部分写入失败时的补偿动作使用）
func (r *ProcessRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ProcessDefinition{}).Error
}

// DeleteSteps 删除工艺的全部步骤
func (r *ProcessRepository) DeleteSteps(ctx context.Context, processID string) error {
	return r.db.WithContext(ctx).Where("process_id = ?", processID).Delete(&entity.ProcessStep{}).Error
}

// FindByID 根据ID查询工艺定义（带步骤，按顺序）
func (r *ProcessRepository) FindByID(ctx context.Context, id string) (*entity.ProcessDefinition, error) {
	var p entity.ProcessDefinition
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAll 查询工艺定义列表
func (r *ProcessRepository) FindAll(ctx context.Context, page, pageSize int) ([]entity.ProcessDefinition, int64, error) {
	var items []entity.ProcessDefinition
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProcessDefinition{})
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

package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"gorm.io/gorm"
)

// SortingRepository 分选产出仓库
type SortingRepository struct {
	db *gorm.DB
}

func NewSortingRepository(db *gorm.DB) *SortingRepository {
	return &SortingRepository{db: db}
}

// CreateOutput 创建分选产出
func (r *SortingRepository) CreateOutput(ctx context.Context, output *entity.SortingOutput) error {
	return r.db.WithContext(ctx).Omit("Wastes").Create(output).Error
}

// FindOutputByID 根据ID查询分选产出（带损耗）
func (r *SortingRepository) FindOutputByID(ctx context.Context, id string) (*entity.SortingOutput, error) {
	var output entity.SortingOutput
	err := r.db.WithContext(ctx).
		Preload("Wastes").
		Where("id = ?", id).First(&output).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &output, nil
}

// FindOutputsByStepRun 查询步骤实例下的分选产出列表
func (r *SortingRepository) FindOutputsByStepRun(ctx context.Context, stepRunID string) ([]entity.SortingOutput, error) {
	var items []entity.SortingOutput
	err := r.db.WithContext(ctx).
		Preload("Wastes").
		Where("step_run_id = ?", stepRunID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CreateWaste 创建分选损耗记录
func (r *SortingRepository) CreateWaste(ctx context.Context, waste *entity.SortingWaste) error {
	return r.db.WithContext(ctx).Create(waste).Error
}

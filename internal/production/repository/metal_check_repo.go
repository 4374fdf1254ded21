package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"gorm.io/gorm"
)

// MetalCheckRepository 金属检测仓库
type MetalCheckRepository struct {
	db *gorm.DB
}

func NewMetalCheckRepository(db *gorm.DB) *MetalCheckRepository {
	return &MetalCheckRepository{db: db}
}

// CreateAttempt 创建检测记录
func (r *MetalCheckRepository) CreateAttempt(ctx context.Context, attempt *entity.MetalCheckAttempt) error {
	return r.db.WithContext(ctx).Omit("Rejections").Create(attempt).Error
}

// CreateRejection 创建剔除记录
func (r *MetalCheckRepository) CreateRejection(ctx context.Context, rejection *entity.MetalCheckRejection) error {
	return r.db.WithContext(ctx).Create(rejection).Error
}

// DeleteAttempt 删除检测记录（部分写入失败时的补偿动作使用）
func (r *MetalCheckRepository) DeleteAttempt(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.MetalCheckAttempt{}).Error
}

// FindAttemptByID 根据ID查询检测记录（带剔除明细）
func (r *MetalCheckRepository) FindAttemptByID(ctx context.Context, id string) (*entity.MetalCheckAttempt, error) {
	var attempt entity.MetalCheckAttempt
	err := r.db.WithContext(ctx).
		Preload("Rejections").
		Where("id = ?", id).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// FindAttemptsByOutput 查询分选产出的检测历史，按检测次序倒序
func (r *MetalCheckRepository) FindAttemptsByOutput(ctx context.Context, outputID string) ([]entity.MetalCheckAttempt, error) {
	var items []entity.MetalCheckAttempt
	err := r.db.WithContext(ctx).
		Preload("Rejections").
		Where("sorting_output_id = ?", outputID).
		Order("attempt_no DESC").
		Find(&items).Error
	return items, err
}

// GetMaxAttemptNo 获取分选产出的最大检测次序
func (r *MetalCheckRepository) GetMaxAttemptNo(ctx context.Context, outputID string) (int, error) {
	var maxNo int
	err := r.db.WithContext(ctx).
		Model(&entity.MetalCheckAttempt{}).
		Select("COALESCE(MAX(attempt_no), 0)").
		Where("sorting_output_id = ?", outputID).
		Scan(&maxNo).Error
	return maxNo, err
}

// FindLatestByOutput 查询分选产出的有效检测（最高次序），无记录返回ErrNotFound
func (r *MetalCheckRepository) FindLatestByOutput(ctx context.Context, outputID string) (*entity.MetalCheckAttempt, error) {
	var attempt entity.MetalCheckAttempt
	err := r.db.WithContext(ctx).
		Preload("Rejections").
		Where("sorting_output_id = ?", outputID).
		Order("attempt_no DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

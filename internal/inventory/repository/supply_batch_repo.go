package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/entity"
	"gorm.io/gorm"
)

// SupplyBatchRepository 原料批次仓库
type SupplyBatchRepository struct {
	db *gorm.DB
}

func NewSupplyBatchRepository(db *gorm.DB) *SupplyBatchRepository {
	return &SupplyBatchRepository{db: db}
}

// Create 创建原料批次
func (r *SupplyBatchRepository) Create(ctx context.Context, batch *entity.SupplyBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// FindByID 根据ID查询原料批次
func (r *SupplyBatchRepository) FindByID(ctx context.Context, id string) (*entity.SupplyBatch, error) {
	var batch entity.SupplyBatch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindAll 分页查询原料批次
func (r *SupplyBatchRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SupplyBatch, int64, error) {
	var items []entity.SupplyBatch
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SupplyBatch{})
	if v := filters["status"]; v != "" {
		query = query.Where("status = ?", v)
	}
	if v := filters["product_name"]; v != "" {
		query = query.Where("product_name LIKE ?", "%"+v+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// Update 更新原料批次
func (r *SupplyBatchRepository) Update(ctx context.Context, batch *entity.SupplyBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

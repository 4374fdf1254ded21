package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"gorm.io/gorm"
)

// StorageRepository 仓储分配仓库
type StorageRepository struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Create 创建仓储分配
func (r *StorageRepository) Create(ctx context.Context, alloc *entity.StorageAllocation) error {
	return r.db.WithContext(ctx).Create(alloc).Error
}

// FindByID 根据ID查询仓储分配
func (r *StorageRepository) FindByID(ctx context.Context, id string) (*entity.StorageAllocation, error) {
	var alloc entity.StorageAllocation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alloc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &alloc, nil
}

// FindByPackEntry 查询包装条目的全部仓储分配
func (r *StorageRepository) FindByPackEntry(ctx context.Context, packEntryID string) ([]entity.StorageAllocation, error) {
	var items []entity.StorageAllocation
	err := r.db.WithContext(ctx).
		Where("pack_entry_id = ?", packEntryID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// Update 更新仓储分配
func (r *StorageRepository) Update(ctx context.Context, alloc *entity.StorageAllocation) error {
	return r.db.WithContext(ctx).Save(alloc).Error
}

// Delete 删除仓储分配
func (r *StorageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.StorageAllocation{}).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"gorm.io/gorm"
)

// PackagingRepository 包装仓库
type PackagingRepository struct {
	db *gorm.DB
}

func NewPackagingRepository(db *gorm.DB) *PackagingRepository {
	return &PackagingRepository{db: db}
}

// Create 创建包装记录
func (r *PackagingRepository) Create(ctx context.Context, run *entity.PackagingRun) error {
	return r.db.WithContext(ctx).
		Omit("WeightChecks", "Photos", "Wastes", "PackEntries", "MetalChecks", "Allocations").
		Create(run).Error
}

// FindByID 根据ID查询包装记录（带全部子记录）
func (r *PackagingRepository) FindByID(ctx context.Context, id string) (*entity.PackagingRun, error) {
	var run entity.PackagingRun
	err := r.db.WithContext(ctx).
		Preload("WeightChecks").
		Preload("Photos").
		Preload("Wastes").
		Preload("PackEntries").
		Preload("MetalChecks", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_no DESC")
		}).
		Preload("MetalChecks.Rejections").
		Preload("Allocations").
		Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByStepRunID 查询步骤实例的包装记录，创建前查重使用
func (r *PackagingRepository) FindByStepRunID(ctx context.Context, stepRunID string) (*entity.PackagingRun, error) {
	var run entity.PackagingRun
	err := r.db.WithContext(ctx).
		Where("step_run_id = ?", stepRunID).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// CreatePackEntry 创建包装条目
func (r *PackagingRepository) CreatePackEntry(ctx context.Context, entry *entity.PackEntry) error {
	return r.db.WithContext(ctx).Omit("Allocations").Create(entry).Error
}

// FindPackEntryByID 根据ID查询包装条目（带仓储分配）
func (r *PackagingRepository) FindPackEntryByID(ctx context.Context, id string) (*entity.PackEntry, error) {
	var entry entity.PackEntry
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CreateWeightCheck 创建称重记录
func (r *PackagingRepository) CreateWeightCheck(ctx context.Context, check *entity.WeightCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

// CreatePhoto 创建照片引用
func (r *PackagingRepository) CreatePhoto(ctx context.Context, photo *entity.PackagingPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// CreateWaste 创建包装损耗记录
func (r *PackagingRepository) CreateWaste(ctx context.Context, waste *entity.PackagingWaste) error {
	return r.db.WithContext(ctx).Create(waste).Error
}

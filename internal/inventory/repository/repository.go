package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 库存仓库集合
type Repositories struct {
	SupplyBatch *SupplyBatchRepository
}

// NewRepositories 创建库存仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		SupplyBatch: NewSupplyBatchRepository(db),
	}
}

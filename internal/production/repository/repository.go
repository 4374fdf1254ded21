package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 生产仓库集合
type Repositories struct {
	Process    *ProcessRepository
	LotRun     *LotRunRepository
	Sorting    *SortingRepository
	MetalCheck *MetalCheckRepository
	Packaging  *PackagingRepository
	Storage    *StorageRepository
}

// NewRepositories 创建生产仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Process:    NewProcessRepository(db),
		LotRun:     NewLotRunRepository(db),
		Sorting:    NewSortingRepository(db),
		MetalCheck: NewMetalCheckRepository(db),
		Packaging:  NewPackagingRepository(db),
		Storage:    NewStorageRepository(db),
	}
}

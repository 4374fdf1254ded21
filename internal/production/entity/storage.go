package entity

import (
	"time"
)

// StorageType 仓储单元类型
const (
	StorageTypeBox         = "BOX"
	StorageTypeBag         = "BAG"
	StorageTypeShopPacking = "SHOP_PACKING"
)

// ValidStorageTypes 允许的仓储单元类型
var ValidStorageTypes = map[string]bool{
	StorageTypeBox:         true,
	StorageTypeBag:         true,
	StorageTypeShopPacking: true,
}

// StorageAllocation 仓储分配：把一个包装条目的整数包数装入仓储单元
// TotalPacks = UnitsCount × PacksPerUnit；TotalWeight = TotalPacks × 单包规格
// 同一包装条目所有分配的TotalPacks之和不得超过其产出包数；
// 剩余可分配包数始终按现有记录推导，不单独存储
type StorageAllocation struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	PackEntryID    string    `json:"pack_entry_id" gorm:"size:32;not null;index"`
	PackagingRunID string    `json:"packaging_run_id" gorm:"size:32;not null;index"`
	StorageType    string    `json:"storage_type" gorm:"size:20;not null"` // BOX/BAG/SHOP_PACKING
	UnitsCount     int       `json:"units_count" gorm:"not null"`
	PacksPerUnit   int       `json:"packs_per_unit" gorm:"not null"`
	TotalPacks     int       `json:"total_packs" gorm:"not null"`
	TotalWeight    float64   `json:"total_weight" gorm:"type:decimal(12,4)"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedBy      string    `json:"created_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (StorageAllocation) TableName() string {
	return "storage_allocations"
}

package entity

import (
	"time"
)

// PackagingRun 包装步骤的聚合根
// 每个步骤实例最多一个包装记录（创建前先查重），持有称重、照片、损耗、
// 包装条目、金属检测与仓储分配等子记录
type PackagingRun struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	StepRunID string    `json:"step_run_id" gorm:"size:32;not null;uniqueIndex"`
	CreatedBy string    `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WeightChecks []WeightCheck       `json:"weight_checks,omitempty" gorm:"foreignKey:PackagingRunID;references:ID"`
	Photos       []PackagingPhoto    `json:"photos,omitempty" gorm:"foreignKey:PackagingRunID;references:ID"`
	Wastes       []PackagingWaste    `json:"wastes,omitempty" gorm:"foreignKey:PackagingRunID;references:ID"`
	PackEntries  []PackEntry         `json:"pack_entries,omitempty" gorm:"foreignKey:PackagingRunID;references:ID"`
	MetalChecks  []MetalCheckAttempt `json:"metal_checks,omitempty" gorm:"foreignKey:PackagingRunID;references:ID"`
	Allocations  []StorageAllocation `json:"allocations,omitempty" gorm:"foreignKey:PackagingRunID;references:ID"`
}

func (PackagingRun) TableName() string {
	return "packaging_runs"
}

// PackEntry 包装条目：从一个分选产出实际装包的数量
// 创建时快照当时有效金属检测的关键字段，后续再次检测不回写
type PackEntry struct {
	ID              string  `json:"id" gorm:"primaryKey;size:32"`
	PackagingRunID  string  `json:"packaging_run_id" gorm:"size:32;not null;index"`
	SortingOutputID string  `json:"sorting_output_id" gorm:"size:32;not null;index"`
	PackIdentifier  string  `json:"pack_identifier" gorm:"size:64;not null"`
	PackingType     string  `json:"packing_type" gorm:"size:32"`
	PackSize        float64 `json:"pack_size" gorm:"type:decimal(12,4)"` // 单包规格 kg
	Quantity        float64 `json:"quantity" gorm:"type:decimal(12,4);not null"` // 装包总质量 kg
	PackCount       int     `json:"pack_count" gorm:"not null;default:0"`        // 产出包数

	// 金属检测快照（创建时有效检测的审计信息）
	MetalCheckID       string     `json:"metal_check_id" gorm:"size:32"`
	MetalCheckStatus   string     `json:"metal_check_status" gorm:"size:10"`
	MetalCheckAttempts int        `json:"metal_check_attempts"`
	MetalCheckBy       string     `json:"metal_check_by" gorm:"size:64"`
	MetalCheckAt       *time.Time `json:"metal_check_at"`

	CreatedBy string    `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Allocations []StorageAllocation `json:"allocations,omitempty" gorm:"foreignKey:PackEntryID;references:ID"`
}

func (PackEntry) TableName() string {
	return "pack_entries"
}

// WeightCheck 抽样称重记录
type WeightCheck struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	PackagingRunID string    `json:"packaging_run_id" gorm:"size:32;not null;index"`
	SampleNo       int       `json:"sample_no"`
	Weight         float64   `json:"weight" gorm:"type:decimal(12,4);not null"`
	Result         string    `json:"result" gorm:"size:20"` // ok/underweight/overweight
	Notes          string    `json:"notes" gorm:"type:text"`
	CheckedBy      string    `json:"checked_by" gorm:"size:64"`
	CheckedAt      time.Time `json:"checked_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (WeightCheck) TableName() string {
	return "weight_checks"
}

// PackagingPhoto 包装现场照片引用，文件本体存对象存储
type PackagingPhoto struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	PackagingRunID string    `json:"packaging_run_id" gorm:"size:32;not null;index"`
	FileName       string    `json:"file_name" gorm:"size:255"`
	FilePath       string    `json:"file_path" gorm:"size:512;not null"`
	FileSize       int64     `json:"file_size"`
	Caption        string    `json:"caption" gorm:"size:255"`
	UploadedBy     string    `json:"uploaded_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
}

func (PackagingPhoto) TableName() string {
	return "packaging_photos"
}

// PackagingWaste 包装损耗记录
type PackagingWaste struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	PackagingRunID string    `json:"packaging_run_id" gorm:"size:32;not null;index"`
	WasteType      string    `json:"waste_type" gorm:"size:64;not null"`
	Quantity       float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedBy      string    `json:"created_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
}

func (PackagingWaste) TableName() string {
	return "packaging_wastes"
}

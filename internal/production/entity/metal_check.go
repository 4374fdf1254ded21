package entity

import (
	"time"
)

// MetalCheckStatus 金属检测结果
const (
	MetalCheckStatusPass = "PASS"
	MetalCheckStatusFail = "FAIL"
)

// MetalCheckAttempt 金属检测记录
// 按分选产出记录检测历史，AttemptNo从1开始严格递增（max+1）
// 最高AttemptNo的记录为该产出的有效检测结论
type MetalCheckAttempt struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	SortingOutputID string    `json:"sorting_output_id" gorm:"size:32;not null;index"`
	PackagingRunID  string    `json:"packaging_run_id" gorm:"size:32;not null;index"`
	AttemptNo       int       `json:"attempt_no" gorm:"not null"`
	Status          string    `json:"status" gorm:"size:10;not null"` // PASS/FAIL
	CheckedBy       string    `json:"checked_by" gorm:"size:64"`
	CheckedByName   string    `json:"checked_by_name" gorm:"size:64"`
	CheckedAt       time.Time `json:"checked_at"`
	Remarks         string    `json:"remarks" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`

	Rejections []MetalCheckRejection `json:"rejections,omitempty" gorm:"foreignKey:AttemptID;references:ID"`
}

func (MetalCheckAttempt) TableName() string {
	return "metal_check_attempts"
}

// MetalCheckRejection 金属检测剔除记录
// FAIL的检测必须至少有一条剔除记录（强制校验，不只是界面约定）
type MetalCheckRejection struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	AttemptID        string    `json:"attempt_id" gorm:"size:32;not null;index"`
	ObjectType       string    `json:"object_type" gorm:"size:64;not null"` // 金属/玻璃/石子等
	Weight           float64   `json:"weight" gorm:"type:decimal(12,4);not null"`
	CorrectiveAction string    `json:"corrective_action" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
}

func (MetalCheckRejection) TableName() string {
	return "metal_check_rejections"
}

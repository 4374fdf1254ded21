package entity

import (
	"time"
)

// ProcessDefinition 加工工艺定义
// 一个工艺由有序的加工步骤组成（清洗、烘干、分选、金属检测、包装、入库）
type ProcessDefinition struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Code        string    `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	ProductType string    `json:"product_type" gorm:"size:64"` // 适用产品类型（腰果/核桃/夏威夷果等）
	Description string    `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:20;not null;default:active"` // active/disabled
	CreatedBy   string    `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Steps []ProcessStep `json:"steps,omitempty" gorm:"foreignKey:ProcessID;references:ID"`
}

func (ProcessDefinition) TableName() string {
	return "process_definitions"
}

// ProcessStep 工艺步骤模板，Sequence为执行顺序
type ProcessStep struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ProcessID string    `json:"process_id" gorm:"size:32;not null;index"`
	Sequence  int       `json:"sequence" gorm:"not null"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	StepType  string    `json:"step_type" gorm:"size:32;not null"` // washing/drying/sorting/metal_detection/packaging/storage
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProcessStep) TableName() string {
	return "process_steps"
}

// 步骤类型
const (
	StepTypeWashing        = "washing"
	StepTypeDrying         = "drying"
	StepTypeSorting        = "sorting"
	StepTypeMetalDetection = "metal_detection"
	StepTypePackaging      = "packaging"
	StepTypeStorage        = "storage"
)

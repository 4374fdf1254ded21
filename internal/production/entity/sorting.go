package entity

import (
	"time"
)

// SortingOutput 分选产出（在制品）
// 由分选步骤从清洗/烘干后的批次中分出的一个类型化子批次
// 注意：分选产出+损耗与投入量之间不做系统校验，由车间人工对账（业务约定）
type SortingOutput struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	StepRunID   string    `json:"step_run_id" gorm:"size:32;not null;index"`
	ProductID   string    `json:"product_id" gorm:"size:32;not null"`
	ProductName string    `json:"product_name" gorm:"size:128"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,4);not null"` // kg
	Moisture    *float64  `json:"moisture" gorm:"type:decimal(6,3)"`           // 水分读数 %
	Remarks     string    `json:"remarks" gorm:"type:text"`
	CreatedBy   string    `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Wastes []SortingWaste `json:"wastes,omitempty" gorm:"foreignKey:SortingOutputID;references:ID"`
}

func (SortingOutput) TableName() string {
	return "sorting_outputs"
}

// SortingWaste 分选损耗记录，按损耗原因记录损失质量
type SortingWaste struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	SortingOutputID string    `json:"sorting_output_id" gorm:"size:32;not null;index"`
	WasteType       string    `json:"waste_type" gorm:"size:64;not null"` // 碎壳/霉变/虫蛀等
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	CreatedBy       string    `json:"created_by" gorm:"size:64"`
	CreatedAt       time.Time `json:"created_at"`
}

func (SortingWaste) TableName() string {
	return "sorting_wastes"
}

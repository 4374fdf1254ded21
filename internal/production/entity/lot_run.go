package entity

import (
	"time"
)

// LotRunStatus 批次执行状态
const (
	LotRunStatusPending    = "PENDING"
	LotRunStatusInProgress = "IN_PROGRESS"
	LotRunStatusCompleted  = "COMPLETED"
)

// StepRunStatus 步骤执行状态
const (
	StepRunStatusPending    = "PENDING"
	StepRunStatusInProgress = "IN_PROGRESS"
	StepRunStatusCompleted  = "COMPLETED"
)

// ProcessLotRun 一个原料批次在一个工艺下的执行记录
// 同一(批次, 工艺)下最多一个有效执行记录；只标记COMPLETED，不物理删除
type ProcessLotRun struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	ProcessID     string     `json:"process_id" gorm:"size:32;not null;index"`
	SupplyBatchID string     `json:"supply_batch_id" gorm:"size:32;not null;index"`
	Status        string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	// 返工链路：返工批次指向原始执行记录（单向引用）
	IsRework                bool    `json:"is_rework" gorm:"default:false"`
	OriginalProcessLotRunID *string `json:"original_process_lot_run_id" gorm:"size:32;index"`

	CreatedBy string    `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Steps []StepRun `json:"steps,omitempty" gorm:"foreignKey:ProcessLotRunID;references:ID"`
}

func (ProcessLotRun) TableName() string {
	return "process_lot_runs"
}

// StepRun 批次执行中的单个步骤实例，按Sequence排序
type StepRun struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	ProcessLotRunID string     `json:"process_lot_run_id" gorm:"size:32;not null;index"`
	ProcessStepID   string     `json:"process_step_id" gorm:"size:32;not null"`
	Sequence        int        `json:"sequence" gorm:"not null"`
	Name            string     `json:"name" gorm:"size:128"`
	StepType        string     `json:"step_type" gorm:"size:32"`
	Status          string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	OperatorID      string     `json:"operator_id" gorm:"size:64"`
	OperatorName    string     `json:"operator_name" gorm:"size:64"`
	Location        string     `json:"location" gorm:"size:128"`
	StartedAt       *time.Time `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (StepRun) TableName() string {
	return "step_runs"
}

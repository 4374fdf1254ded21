package entity

import (
	"time"
)

// SupplyBatchStatus 原料批次状态
const (
	SupplyBatchStatusReceived   = "received"
	SupplyBatchStatusProcessing = "processing"
	SupplyBatchStatusProcessed  = "processed"
)

// SupplyBatch 原料批次（可追溯的物理批次）
type SupplyBatch struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	BatchCode    string     `json:"batch_code" gorm:"size:50;not null;uniqueIndex"`
	ProductName  string     `json:"product_name" gorm:"size:128;not null"`
	SupplierName string     `json:"supplier_name" gorm:"size:128"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,4);not null"` // kg
	Unit         string     `json:"unit" gorm:"size:20;not null;default:kg"`
	Status       string     `json:"status" gorm:"size:20;not null;default:received"`
	ReceivedAt   *time.Time `json:"received_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (SupplyBatch) TableName() string {
	return "supply_batches"
}

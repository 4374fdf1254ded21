package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/repository"
	"github.com/google/uuid"
)

// InventoryService 库存服务
// 生产引擎的协作方：批次执行完成后由生产侧调用MarkProcessed翻转批次状态
type InventoryService struct {
	batchRepo *repository.SupplyBatchRepository
}

func NewInventoryService(batchRepo *repository.SupplyBatchRepository) *InventoryService {
	return &InventoryService{batchRepo: batchRepo}
}

// CreateBatchRequest 创建原料批次请求
type CreateBatchRequest struct {
	BatchCode    string  `json:"batch_code" binding:"required"`
	ProductName  string  `json:"product_name" binding:"required"`
	SupplierName string  `json:"supplier_name"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	Notes        string  `json:"notes"`
}

// CreateBatch 创建原料批次
func (s *InventoryService) CreateBatch(ctx context.Context, req CreateBatchRequest, userID string) (*entity.SupplyBatch, error) {
	now := time.Now()
	batch := &entity.SupplyBatch{
		ID:           uuid.New().String()[:32],
		BatchCode:    req.BatchCode,
		ProductName:  req.ProductName,
		SupplierName: req.SupplierName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Status:       entity.SupplyBatchStatusReceived,
		ReceivedAt:   &now,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if batch.Unit == "" {
		batch.Unit = "kg"
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("创建原料批次失败: %w", err)
	}
	return batch, nil
}

// ListBatches 获取原料批次列表
func (s *InventoryService) ListBatches(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SupplyBatch, int64, error) {
	return s.batchRepo.FindAll(ctx, page, pageSize, filters)
}

// GetBatch 获取原料批次详情
func (s *InventoryService) GetBatch(ctx context.Context, id string) (*entity.SupplyBatch, error) {
	return s.batchRepo.FindByID(ctx, id)
}

// MarkProcessing 批次进入加工，由生产侧在首次创建执行记录时调用
func (s *InventoryService) MarkProcessing(ctx context.Context, batchID string) error {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("原料批次不存在: %w", err)
	}
	if batch.Status != entity.SupplyBatchStatusReceived {
		return nil
	}
	batch.Status = entity.SupplyBatchStatusProcessing
	return s.batchRepo.Update(ctx, batch)
}

// MarkProcessed 批次加工完成，由生产侧在执行记录完成时调用
func (s *InventoryService) MarkProcessed(ctx context.Context, batchID string) error {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("原料批次不存在: %w", err)
	}
	now := time.Now()
	batch.Status = entity.SupplyBatchStatusProcessed
	batch.ProcessedAt = &now
	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return fmt.Errorf("更新批次状态失败: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/google/uuid"
)

// SortingService 分选服务
// 把清洗/烘干后的批次拆成一个或多个类型化产出及损耗记录。
// 产出+损耗与投入量不做守恒校验：车间按盘点单人工对账，这是业务边界
type SortingService struct {
	sortingRepo *repository.SortingRepository
	lotRunRepo  *repository.LotRunRepository
}

func NewSortingService(sortingRepo *repository.SortingRepository, lotRunRepo *repository.LotRunRepository) *SortingService {
	return &SortingService{sortingRepo: sortingRepo, lotRunRepo: lotRunRepo}
}

// AddOutputRequest 创建分选产出请求
type AddOutputRequest struct {
	ProductID   string   `json:"product_id" binding:"required"`
	ProductName string   `json:"product_name"`
	Quantity    float64  `json:"quantity" binding:"required,gt=0"`
	Moisture    *float64 `json:"moisture"`
	Remarks     string   `json:"remarks"`
}

// AddOutput 在分选步骤下创建产出
func (s *SortingService) AddOutput(ctx context.Context, stepRunID string, req AddOutputRequest, userID string) (*entity.SortingOutput, error) {
	if _, err := s.lotRunRepo.FindStepRunByID(ctx, stepRunID); err != nil {
		return nil, fmt.Errorf("步骤实例不存在: %w", err)
	}

	output := &entity.SortingOutput{
		ID:          uuid.New().String()[:32],
		StepRunID:   stepRunID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Moisture:    req.Moisture,
		Remarks:     req.Remarks,
		CreatedBy:   userID,
	}

	if err := s.sortingRepo.CreateOutput(ctx, output); err != nil {
		return nil, fmt.Errorf("创建分选产出失败: %w", err)
	}
	return output, nil
}

// AddSortingWasteRequest 创建分选损耗请求
type AddSortingWasteRequest struct {
	WasteType string  `json:"waste_type" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// AddWaste 在分选产出下附加损耗记录
func (s *SortingService) AddWaste(ctx context.Context, outputID string, req AddSortingWasteRequest, userID string) (*entity.SortingWaste, error) {
	if _, err := s.sortingRepo.FindOutputByID(ctx, outputID); err != nil {
		return nil, fmt.Errorf("分选产出不存在: %w", err)
	}

	waste := &entity.SortingWaste{
		ID:              uuid.New().String()[:32],
		SortingOutputID: outputID,
		WasteType:       req.WasteType,
		Quantity:        req.Quantity,
		CreatedBy:       userID,
	}

	if err := s.sortingRepo.CreateWaste(ctx, waste); err != nil {
		return nil, fmt.Errorf("创建分选损耗失败: %w", err)
	}
	return waste, nil
}

// ListOutputs 查询步骤实例下的分选产出
func (s *SortingService) ListOutputs(ctx context.Context, stepRunID string) ([]entity.SortingOutput, error) {
	return s.sortingRepo.FindOutputsByStepRun(ctx, stepRunID)
}

// GetOutput 获取分选产出详情
func (s *SortingService) GetOutput(ctx context.Context, id string) (*entity.SortingOutput, error) {
	return s.sortingRepo.FindOutputByID(ctx, id)
}

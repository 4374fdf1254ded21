package service

import (
	"context"
	"fmt"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/google/uuid"
)

// ProcessService 工艺定义服务
type ProcessService struct {
	processRepo *repository.ProcessRepository
}

func NewProcessService(processRepo *repository.ProcessRepository) *ProcessService {
	return &ProcessService{processRepo: processRepo}
}

// CreateProcessRequest 创建工艺请求
type CreateProcessRequest struct {
	Code        string              `json:"code" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	ProductType string              `json:"product_type"`
	Description string              `json:"description"`
	Steps       []CreateStepRequest `json:"steps" binding:"required,min=1,dive"`
}

// CreateStepRequest 创建工艺步骤请求
type CreateStepRequest struct {
	Name     string `json:"name" binding:"required"`
	StepType string `json:"step_type" binding:"required"`
}

// CreateProcess 创建工艺定义及其有序步骤
// 定义与步骤是多条独立写入，步骤写入失败时逆序执行补偿删除，
// 避免留下没有步骤的工艺定义
func (s *ProcessService) CreateProcess(ctx context.Context, req CreateProcessRequest, userID string) (*entity.ProcessDefinition, error) {
	process := &entity.ProcessDefinition{
		ID:          uuid.New().String()[:32],
		Code:        req.Code,
		Name:        req.Name,
		ProductType: req.ProductType,
		Description: req.Description,
		Status:      "active",
		CreatedBy:   userID,
	}

	var comp compensations

	if err := s.processRepo.Create(ctx, process); err != nil {
		return nil, fmt.Errorf("创建工艺定义失败: %w", err)
	}
	comp.add(func(ctx context.Context) error {
		return s.processRepo.Delete(ctx, process.ID)
	})

	for i, stepReq := range req.Steps {
		step := &entity.ProcessStep{
			ID:        uuid.New().String()[:32],
			ProcessID: process.ID,
			Sequence:  i + 1,
			Name:      stepReq.Name,
			StepType:  stepReq.StepType,
		}
		if err := s.processRepo.CreateStep(ctx, step); err != nil {
			comp.add(func(ctx context.Context) error {
				return s.processRepo.DeleteSteps(ctx, process.ID)
			})
			comp.rollback(ctx)
			return nil, fmt.Errorf("创建工艺步骤失败: %w", err)
		}
	}

	return s.processRepo.FindByID(ctx, process.ID)
}

// ListProcesses 获取工艺定义列表
func (s *ProcessService) ListProcesses(ctx context.Context, page, pageSize int) ([]entity.ProcessDefinition, int64, error) {
	return s.processRepo.FindAll(ctx, page, pageSize)
}

// GetProcess 获取工艺定义详情
func (s *ProcessService) GetProcess(ctx context.Context, id string) (*entity.ProcessDefinition, error) {
	return s.processRepo.FindByID(ctx, id)
}

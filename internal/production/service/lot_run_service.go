package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryentity "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/entity"
	inventorysvc "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LotRunService 批次执行状态机
// 负责(批次, 工艺)执行记录的创建查找、步骤推进与整体完成判定
type LotRunService struct {
	lotRunRepo   *repository.LotRunRepository
	processRepo  *repository.ProcessRepository
	inventorySvc *inventorysvc.InventoryService
}

func NewLotRunService(
	lotRunRepo *repository.LotRunRepository,
	processRepo *repository.ProcessRepository,
	inventorySvc *inventorysvc.InventoryService,
) *LotRunService {
	return &LotRunService{
		lotRunRepo:   lotRunRepo,
		processRepo:  processRepo,
		inventorySvc: inventorySvc,
	}
}

// EnsureRunRequest 创建/查找执行记录请求
type EnsureRunRequest struct {
	SupplyBatchID string `json:"supply_batch_id" binding:"required"`
	ProcessID     string `json:"process_id" binding:"required"`

	// 返工：新执行记录回指原执行记录
	IsRework                bool    `json:"is_rework"`
	OriginalProcessLotRunID *string `json:"original_process_lot_run_id"`
}

// EnsureRun 查找(批次, 工艺)下的执行记录，不存在则创建
// 先读后写保证重复调用幂等；没有跨记录事务可用，步骤实例写入失败时
// 逆序补偿删除，不留下半初始化的执行记录
func (s *LotRunService) EnsureRun(ctx context.Context, req EnsureRunRequest, userID string) (*entity.ProcessLotRun, error) {
	existing, err := s.lotRunRepo.FindByBatchAndProcess(ctx, req.SupplyBatchID, req.ProcessID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("查询执行记录失败: %w", err)
	}

	process, err := s.processRepo.FindByID(ctx, req.ProcessID)
	if err != nil {
		return nil, fmt.Errorf("工艺不存在: %w", err)
	}
	if len(process.Steps) == 0 {
		return nil, fmt.Errorf("工艺 %s 没有配置步骤", process.Name)
	}

	if req.IsRework && req.OriginalProcessLotRunID != nil {
		if _, err := s.lotRunRepo.FindByID(ctx, *req.OriginalProcessLotRunID); err != nil {
			return nil, fmt.Errorf("原执行记录不存在: %w", err)
		}
	}

	now := time.Now()
	run := &entity.ProcessLotRun{
		ID:                      uuid.New().String()[:32],
		ProcessID:               req.ProcessID,
		SupplyBatchID:           req.SupplyBatchID,
		Status:                  entity.LotRunStatusInProgress,
		StartedAt:               &now,
		IsRework:                req.IsRework,
		OriginalProcessLotRunID: req.OriginalProcessLotRunID,
		CreatedBy:               userID,
	}

	var comp compensations

	if err := s.lotRunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("创建执行记录失败: %w", err)
	}
	comp.add(func(ctx context.Context) error {
		return s.lotRunRepo.Delete(ctx, run.ID)
	})

	for _, procStep := range process.Steps {
		step := &entity.StepRun{
			ID:              uuid.New().String()[:32],
			ProcessLotRunID: run.ID,
			ProcessStepID:   procStep.ID,
			Sequence:        procStep.Sequence,
			Name:            procStep.Name,
			StepType:        procStep.StepType,
			Status:          entity.StepRunStatusPending,
		}
		if err := s.lotRunRepo.CreateStepRun(ctx, step); err != nil {
			comp.add(func(ctx context.Context) error {
				return s.lotRunRepo.DeleteStepRuns(ctx, run.ID)
			})
			comp.rollback(ctx)
			return nil, fmt.Errorf("创建步骤实例失败: %w", err)
		}
	}

	// 通知库存侧批次进入加工；失败不回滚执行记录，批次状态可重试
	if s.inventorySvc != nil {
		if err := s.inventorySvc.MarkProcessing(ctx, req.SupplyBatchID); err != nil {
			zap.L().Warn("通知库存批次进入加工失败",
				zap.String("supply_batch_id", req.SupplyBatchID),
				zap.Error(err))
		}
	}

	return s.lotRunRepo.FindByID(ctx, run.ID)
}

// GetRun 获取执行记录详情（带步骤）
func (s *LotRunService) GetRun(ctx context.Context, id string) (*entity.ProcessLotRun, error) {
	return s.lotRunRepo.FindByID(ctx, id)
}

// ListRuns 分页查询执行记录
func (s *LotRunService) ListRuns(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProcessLotRun, int64, error) {
	return s.lotRunRepo.FindAll(ctx, page, pageSize, filters)
}

// AdvanceStepRequest 步骤推进请求（部分更新，nil字段不动）
type AdvanceStepRequest struct {
	Status    *string `json:"status"`
	Location  *string `json:"location"`
	StartedAt *string `json:"started_at"` // RFC3339
	EndedAt   *string `json:"ended_at"`   // RFC3339
	Notes     *string `json:"notes"`
}

// AdvanceStep 把部分更新合并到指定步骤实例
// 存储失败时错误原样上抛，步骤状态不前进；草稿保留由前端负责
func (s *LotRunService) AdvanceStep(ctx context.Context, runID, stepRunID string, req AdvanceStepRequest, userID, userName string) (*entity.StepRun, error) {
	run, err := s.lotRunRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("执行记录不存在: %w", err)
	}

	step, err := s.lotRunRepo.FindStepRunByID(ctx, stepRunID)
	if err != nil {
		return nil, fmt.Errorf("步骤实例不存在: %w", err)
	}
	if step.ProcessLotRunID != run.ID {
		return nil, fmt.Errorf("步骤不属于该执行记录")
	}

	if req.Status != nil {
		switch *req.Status {
		case entity.StepRunStatusPending, entity.StepRunStatusInProgress, entity.StepRunStatusCompleted:
			step.Status = *req.Status
		default:
			return nil, fmt.Errorf("无效的步骤状态: %s", *req.Status)
		}
	}
	if req.Location != nil {
		step.Location = *req.Location
	}
	if req.StartedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("开始时间格式错误: %w", err)
		}
		step.StartedAt = &t
	}
	if req.EndedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("结束时间格式错误: %w", err)
		}
		step.EndedAt = &t
	}
	if req.Notes != nil {
		step.Notes = *req.Notes
	}

	// 操作人取自身份凭证，不信任请求体
	step.OperatorID = userID
	step.OperatorName = userName

	now := time.Now()
	if step.Status == entity.StepRunStatusInProgress && step.StartedAt == nil {
		step.StartedAt = &now
	}
	if step.Status == entity.StepRunStatusCompleted && step.EndedAt == nil {
		step.EndedAt = &now
	}

	if err := s.lotRunRepo.UpdateStepRun(ctx, step); err != nil {
		return nil, fmt.Errorf("更新步骤失败: %w", err)
	}

	// 首个步骤动起来时执行记录进入进行中
	if run.Status == entity.LotRunStatusPending && step.Status != entity.StepRunStatusPending {
		run.Status = entity.LotRunStatusInProgress
		if run.StartedAt == nil {
			run.StartedAt = &now
		}
		if err := s.lotRunRepo.Update(ctx, run); err != nil {
			return nil, fmt.Errorf("更新执行记录状态失败: %w", err)
		}
	}

	return step, nil
}

// CompleteRun 完成执行记录
// 仅当全部步骤COMPLETED时允许；完成后通知库存侧翻转批次为已加工。
// 状态更新与库存通知是两次独立写入：通知失败时执行记录已是COMPLETED，
// 重复调用走已完成分支补发通知，批次不会卡在processing
func (s *LotRunService) CompleteRun(ctx context.Context, runID string) (*entity.ProcessLotRun, error) {
	run, err := s.lotRunRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("执行记录不存在: %w", err)
	}
	if run.Status == entity.LotRunStatusCompleted {
		if err := s.notifyProcessed(ctx, run.SupplyBatchID); err != nil {
			return nil, err
		}
		return run, nil
	}

	incomplete, err := s.lotRunRepo.CountIncompleteSteps(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("统计未完成步骤失败: %w", err)
	}
	if incomplete > 0 {
		return nil, fmt.Errorf("还有%d个步骤未完成，不能结束执行", incomplete)
	}

	now := time.Now()
	run.Status = entity.LotRunStatusCompleted
	run.CompletedAt = &now
	if err := s.lotRunRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("更新执行记录失败: %w", err)
	}

	if err := s.notifyProcessed(ctx, run.SupplyBatchID); err != nil {
		return nil, err
	}

	return run, nil
}

// notifyProcessed 通知库存侧批次已加工，批次已是processed时跳过
func (s *LotRunService) notifyProcessed(ctx context.Context, batchID string) error {
	if s.inventorySvc == nil {
		return nil
	}
	batch, err := s.inventorySvc.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("查询原料批次失败: %w", err)
	}
	if batch.Status == inventoryentity.SupplyBatchStatusProcessed {
		return nil
	}
	if err := s.inventorySvc.MarkProcessed(ctx, batchID); err != nil {
		return fmt.Errorf("通知库存批次完成失败: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/google/uuid"
)

// MetalCheckService 金属检测门禁
// 维护分选产出的检测历史；最高次序记录决定产出能否进入包装
type MetalCheckService struct {
	metalCheckRepo *repository.MetalCheckRepository
	sortingRepo    *repository.SortingRepository
	packagingRepo  *repository.PackagingRepository
}

func NewMetalCheckService(
	metalCheckRepo *repository.MetalCheckRepository,
	sortingRepo *repository.SortingRepository,
	packagingRepo *repository.PackagingRepository,
) *MetalCheckService {
	return &MetalCheckService{
		metalCheckRepo: metalCheckRepo,
		sortingRepo:    sortingRepo,
		packagingRepo:  packagingRepo,
	}
}

// RejectionRequest FAIL检测的剔除明细
type RejectionRequest struct {
	ObjectType       string  `json:"object_type" binding:"required"`
	Weight           float64 `json:"weight" binding:"required,gt=0"`
	CorrectiveAction string  `json:"corrective_action"`
}

// RecordAttemptRequest 记录检测请求
type RecordAttemptRequest struct {
	Status     string             `json:"status" binding:"required"` // PASS/FAIL
	Remarks    string             `json:"remarks"`
	Rejections []RejectionRequest `json:"rejections"`
}

// RecordAttempt 记录一次金属检测
// 校验在任何写入之前：FAIL必须至少带一条剔除记录。
// 检测与剔除是多条独立写入，剔除写入失败时补偿删除检测记录
func (s *MetalCheckService) RecordAttempt(ctx context.Context, outputID, packagingRunID string, req RecordAttemptRequest, userID, userName string) (*entity.MetalCheckAttempt, error) {
	if req.Status != entity.MetalCheckStatusPass && req.Status != entity.MetalCheckStatusFail {
		return nil, fmt.Errorf("无效的检测结果: %s", req.Status)
	}
	if req.Status == entity.MetalCheckStatusFail && len(req.Rejections) == 0 {
		return nil, fmt.Errorf("检测不通过时至少需要一条剔除记录")
	}

	// 检测记录挂在真实的产出和包装记录下，拒绝给不存在的ID建孤儿历史
	if _, err := s.sortingRepo.FindOutputByID(ctx, outputID); err != nil {
		return nil, fmt.Errorf("分选产出不存在: %w", err)
	}
	if _, err := s.packagingRepo.FindByID(ctx, packagingRunID); err != nil {
		return nil, fmt.Errorf("包装记录不存在: %w", err)
	}

	maxNo, err := s.metalCheckRepo.GetMaxAttemptNo(ctx, outputID)
	if err != nil {
		return nil, fmt.Errorf("查询检测次序失败: %w", err)
	}

	now := time.Now()
	attempt := &entity.MetalCheckAttempt{
		ID:              uuid.New().String()[:32],
		SortingOutputID: outputID,
		PackagingRunID:  packagingRunID,
		AttemptNo:       maxNo + 1,
		Status:          req.Status,
		CheckedBy:       userID,
		CheckedByName:   userName,
		CheckedAt:       now,
		Remarks:         req.Remarks,
	}

	var comp compensations

	if err := s.metalCheckRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("创建检测记录失败: %w", err)
	}
	comp.add(func(ctx context.Context) error {
		return s.metalCheckRepo.DeleteAttempt(ctx, attempt.ID)
	})

	if req.Status == entity.MetalCheckStatusFail {
		for _, rejReq := range req.Rejections {
			rejection := &entity.MetalCheckRejection{
				ID:               uuid.New().String()[:32],
				AttemptID:        attempt.ID,
				ObjectType:       rejReq.ObjectType,
				Weight:           rejReq.Weight,
				CorrectiveAction: rejReq.CorrectiveAction,
			}
			if err := s.metalCheckRepo.CreateRejection(ctx, rejection); err != nil {
				comp.rollback(ctx)
				return nil, fmt.Errorf("创建剔除记录失败: %w", err)
			}
		}
	}

	// 写后重查，返回含剔除明细的完整记录
	return s.metalCheckRepo.FindAttemptByID(ctx, attempt.ID)
}

// Latest 产出的有效检测（最高次序），无记录返回nil
func (s *MetalCheckService) Latest(ctx context.Context, outputID string) (*entity.MetalCheckAttempt, error) {
	attempt, err := s.metalCheckRepo.FindLatestByOutput(ctx, outputID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return attempt, nil
}

// History 产出的全部检测历史，按次序倒序
func (s *MetalCheckService) History(ctx context.Context, outputID string) ([]entity.MetalCheckAttempt, error) {
	return s.metalCheckRepo.FindAttemptsByOutput(ctx, outputID)
}

// FailedRejectedMass 产出全部FAIL检测的剔除质量合计
func (s *MetalCheckService) FailedRejectedMass(ctx context.Context, outputID string) (float64, error) {
	attempts, err := s.metalCheckRepo.FindAttemptsByOutput(ctx, outputID)
	if err != nil {
		return 0, fmt.Errorf("查询检测历史失败: %w", err)
	}
	return FailedRejectedMass(attempts), nil
}

// AttemptCount 产出的检测总次数
func (s *MetalCheckService) AttemptCount(ctx context.Context, outputID string) (int, error) {
	return s.metalCheckRepo.GetMaxAttemptNo(ctx, outputID)
}

package service

import (
	"context"
	"fmt"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/google/uuid"
)

// StorageService 仓储分配服务
// 剩余可分配包数始终由当前记录现算（写前快照读）。两个操作员同时给
// 同一条目分配时存在读后写竞态，服务端没有条件更新或乐观锁兜底——
// 这是沿用现有设计的已知缺口，修复需要二选一落地后再收紧
type StorageService struct {
	storageRepo   *repository.StorageRepository
	packagingRepo *repository.PackagingRepository
}

func NewStorageService(storageRepo *repository.StorageRepository, packagingRepo *repository.PackagingRepository) *StorageService {
	return &StorageService{storageRepo: storageRepo, packagingRepo: packagingRepo}
}

// RemainingPacks 包装条目当前剩余可分配包数
func (s *StorageService) RemainingPacks(ctx context.Context, packEntryID string) (int, error) {
	entry, err := s.packagingRepo.FindPackEntryByID(ctx, packEntryID)
	if err != nil {
		return 0, fmt.Errorf("包装条目不存在: %w", err)
	}
	allocations, err := s.storageRepo.FindByPackEntry(ctx, packEntryID)
	if err != nil {
		return 0, fmt.Errorf("查询仓储分配失败: %w", err)
	}
	return RemainingPacks(entry, allocations), nil
}

// AddAllocationRequest 创建仓储分配请求
type AddAllocationRequest struct {
	StorageType  string `json:"storage_type" binding:"required"`
	UnitsCount   int    `json:"units_count" binding:"required,gt=0"`
	PacksPerUnit int    `json:"packs_per_unit" binding:"required,gt=0"`
	Notes        string `json:"notes"`
}

// AddAllocation 把包装条目的整数包数装入仓储单元
// 校验：单包规格必须大于0；申请包数不得超过当前剩余，超出时错误里带剩余数
func (s *StorageService) AddAllocation(ctx context.Context, packEntryID string, req AddAllocationRequest, userID string) (*entity.StorageAllocation, error) {
	if !entity.ValidStorageTypes[req.StorageType] {
		return nil, fmt.Errorf("无效的仓储类型: %s", req.StorageType)
	}

	entry, err := s.packagingRepo.FindPackEntryByID(ctx, packEntryID)
	if err != nil {
		return nil, fmt.Errorf("包装条目不存在: %w", err)
	}
	if entry.PackSize <= 0 {
		return nil, fmt.Errorf("包装条目未设置单包规格，不能分配仓储")
	}

	allocations, err := s.storageRepo.FindByPackEntry(ctx, packEntryID)
	if err != nil {
		return nil, fmt.Errorf("查询仓储分配失败: %w", err)
	}

	requested := req.UnitsCount * req.PacksPerUnit
	remaining := RemainingPacks(entry, allocations)
	if requested > remaining {
		return nil, fmt.Errorf("申请分配%d包，超过剩余可分配包数%d", requested, remaining)
	}

	alloc := &entity.StorageAllocation{
		ID:             uuid.New().String()[:32],
		PackEntryID:    entry.ID,
		PackagingRunID: entry.PackagingRunID,
		StorageType:    req.StorageType,
		UnitsCount:     req.UnitsCount,
		PacksPerUnit:   req.PacksPerUnit,
		TotalPacks:     requested,
		TotalWeight:    float64(requested) * entry.PackSize,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if err := s.storageRepo.Create(ctx, alloc); err != nil {
		return nil, fmt.Errorf("创建仓储分配失败: %w", err)
	}
	return alloc, nil
}

// UpdateAllocationRequest 更新仓储分配请求（部分更新）
type UpdateAllocationRequest struct {
	StorageType  *string `json:"storage_type"`
	UnitsCount   *int    `json:"units_count"`
	PacksPerUnit *int    `json:"packs_per_unit"`
	Notes        *string `json:"notes"`
}

// UpdateAllocation 原地调整仓储分配
// 重新校验时把被编辑的分配自身排除在已分配数之外，否则改小也会和自己冲突
func (s *StorageService) UpdateAllocation(ctx context.Context, id string, req UpdateAllocationRequest, userID string) (*entity.StorageAllocation, error) {
	alloc, err := s.storageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("仓储分配不存在: %w", err)
	}

	if req.StorageType != nil {
		if !entity.ValidStorageTypes[*req.StorageType] {
			return nil, fmt.Errorf("无效的仓储类型: %s", *req.StorageType)
		}
		alloc.StorageType = *req.StorageType
	}
	if req.UnitsCount != nil {
		if *req.UnitsCount <= 0 {
			return nil, fmt.Errorf("仓储单元数必须大于0")
		}
		alloc.UnitsCount = *req.UnitsCount
	}
	if req.PacksPerUnit != nil {
		if *req.PacksPerUnit <= 0 {
			return nil, fmt.Errorf("每单元包数必须大于0")
		}
		alloc.PacksPerUnit = *req.PacksPerUnit
	}
	if req.Notes != nil {
		alloc.Notes = *req.Notes
	}

	entry, err := s.packagingRepo.FindPackEntryByID(ctx, alloc.PackEntryID)
	if err != nil {
		return nil, fmt.Errorf("包装条目不存在: %w", err)
	}
	allocations, err := s.storageRepo.FindByPackEntry(ctx, alloc.PackEntryID)
	if err != nil {
		return nil, fmt.Errorf("查询仓储分配失败: %w", err)
	}

	requested := alloc.UnitsCount * alloc.PacksPerUnit
	remaining := entry.PackCount - AllocatedPacksExcluding(allocations, alloc.ID)
	if remaining < 0 {
		remaining = 0
	}
	if requested > remaining {
		return nil, fmt.Errorf("申请分配%d包，超过剩余可分配包数%d", requested, remaining)
	}

	alloc.TotalPacks = requested
	alloc.TotalWeight = float64(requested) * entry.PackSize

	if err := s.storageRepo.Update(ctx, alloc); err != nil {
		return nil, fmt.Errorf("更新仓储分配失败: %w", err)
	}
	return alloc, nil
}

// DeleteAllocation 删除仓储分配
// 剩余包数是推导值，删除后无需任何重平衡
func (s *StorageService) DeleteAllocation(ctx context.Context, id string) error {
	if _, err := s.storageRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("仓储分配不存在: %w", err)
	}
	if err := s.storageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除仓储分配失败: %w", err)
	}
	return nil
}

// ListAllocations 查询包装条目的仓储分配及剩余包数
func (s *StorageService) ListAllocations(ctx context.Context, packEntryID string) ([]entity.StorageAllocation, int, error) {
	entry, err := s.packagingRepo.FindPackEntryByID(ctx, packEntryID)
	if err != nil {
		return nil, 0, fmt.Errorf("包装条目不存在: %w", err)
	}
	allocations, err := s.storageRepo.FindByPackEntry(ctx, packEntryID)
	if err != nil {
		return nil, 0, fmt.Errorf("查询仓储分配失败: %w", err)
	}
	return allocations, RemainingPacks(entry, allocations), nil
}

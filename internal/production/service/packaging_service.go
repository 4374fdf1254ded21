package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/shared/objectstore"
	"github.com/google/uuid"
)

// PackagingService 包装服务
// 包装记录是包装步骤的聚合根；创建子记录前先查找/创建包装记录，
// 包装条目入口支持首次使用时自动建父（操作员不必先保存父表单）
type PackagingService struct {
	packagingRepo *repository.PackagingRepository
	sortingRepo   *repository.SortingRepository
	lotRunRepo    *repository.LotRunRepository
	metalCheckSvc *MetalCheckService
	store         *objectstore.Client
}

func NewPackagingService(
	packagingRepo *repository.PackagingRepository,
	sortingRepo *repository.SortingRepository,
	lotRunRepo *repository.LotRunRepository,
	metalCheckSvc *MetalCheckService,
	store *objectstore.Client,
) *PackagingService {
	return &PackagingService{
		packagingRepo: packagingRepo,
		sortingRepo:   sortingRepo,
		lotRunRepo:    lotRunRepo,
		metalCheckSvc: metalCheckSvc,
		store:         store,
	}
}

// EnsureRun 查找步骤实例的包装记录，不存在则创建
// 先读后写，重复调用幂等
func (s *PackagingService) EnsureRun(ctx context.Context, stepRunID, userID string) (*entity.PackagingRun, error) {
	existing, err := s.packagingRepo.FindByStepRunID(ctx, stepRunID)
	if err == nil {
		return s.packagingRepo.FindByID(ctx, existing.ID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("查询包装记录失败: %w", err)
	}

	if _, err := s.lotRunRepo.FindStepRunByID(ctx, stepRunID); err != nil {
		return nil, fmt.Errorf("步骤实例不存在: %w", err)
	}

	run := &entity.PackagingRun{
		ID:        uuid.New().String()[:32],
		StepRunID: stepRunID,
		CreatedBy: userID,
	}
	if err := s.packagingRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("创建包装记录失败: %w", err)
	}
	return s.packagingRepo.FindByID(ctx, run.ID)
}

// GetRun 获取包装记录详情（带全部子记录）
func (s *PackagingService) GetRun(ctx context.Context, id string) (*entity.PackagingRun, error) {
	return s.packagingRepo.FindByID(ctx, id)
}

// AddPackEntryRequest 创建包装条目请求
type AddPackEntryRequest struct {
	SortingOutputID string  `json:"sorting_output_id" binding:"required"`
	PackIdentifier  string  `json:"pack_identifier" binding:"required"`
	PackingType     string  `json:"packing_type"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"` // 装包总质量 kg
	PackSize        float64 `json:"pack_size"`                        // 单包规格 kg
}

// AddPackEntry 在包装步骤下创建包装条目
// 门禁：产出的有效金属检测必须为PASS；创建时快照该检测的审计字段，
// 之后再次检测不影响既有条目
func (s *PackagingService) AddPackEntry(ctx context.Context, stepRunID string, req AddPackEntryRequest, userID string) (*entity.PackEntry, error) {
	output, err := s.sortingRepo.FindOutputByID(ctx, req.SortingOutputID)
	if err != nil {
		return nil, fmt.Errorf("分选产出不存在: %w", err)
	}

	latest, err := s.metalCheckSvc.Latest(ctx, output.ID)
	if err != nil {
		return nil, fmt.Errorf("查询金属检测失败: %w", err)
	}
	if latest == nil || latest.Status != entity.MetalCheckStatusPass {
		return nil, fmt.Errorf("金属检测未通过，不能包装该产出")
	}

	// 包装记录首次使用时自动创建
	run, err := s.EnsureRun(ctx, stepRunID, userID)
	if err != nil {
		return nil, err
	}

	checkedAt := latest.CheckedAt
	entry := &entity.PackEntry{
		ID:              uuid.New().String()[:32],
		PackagingRunID:  run.ID,
		SortingOutputID: output.ID,
		PackIdentifier:  req.PackIdentifier,
		PackingType:     req.PackingType,
		PackSize:        req.PackSize,
		Quantity:        req.Quantity,
		PackCount:       PackCountFor(req.Quantity, req.PackSize),

		MetalCheckID:       latest.ID,
		MetalCheckStatus:   latest.Status,
		MetalCheckAttempts: latest.AttemptNo,
		MetalCheckBy:       latest.CheckedBy,
		MetalCheckAt:       &checkedAt,

		CreatedBy: userID,
	}

	if err := s.packagingRepo.CreatePackEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("创建包装条目失败: %w", err)
	}
	return s.packagingRepo.FindPackEntryByID(ctx, entry.ID)
}

// AddWeightCheckRequest 创建称重记录请求
type AddWeightCheckRequest struct {
	SampleNo int     `json:"sample_no"`
	Weight   float64 `json:"weight" binding:"required,gt=0"`
	Result   string  `json:"result"`
	Notes    string  `json:"notes"`
}

// AddWeightCheck 创建抽样称重记录
func (s *PackagingService) AddWeightCheck(ctx context.Context, packagingRunID string, req AddWeightCheckRequest, userID string) (*entity.WeightCheck, error) {
	run, err := s.packagingRepo.FindByID(ctx, packagingRunID)
	if err != nil {
		return nil, fmt.Errorf("包装记录不存在: %w", err)
	}

	check := &entity.WeightCheck{
		ID:             uuid.New().String()[:32],
		PackagingRunID: run.ID,
		SampleNo:       req.SampleNo,
		Weight:         req.Weight,
		Result:         req.Result,
		Notes:          req.Notes,
		CheckedBy:      userID,
		CheckedAt:      time.Now(),
	}
	if err := s.packagingRepo.CreateWeightCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("创建称重记录失败: %w", err)
	}
	return check, nil
}

// AddPhoto 上传包装照片并登记引用
// 文件本体进对象存储，记录只存路径
func (s *PackagingService) AddPhoto(ctx context.Context, packagingRunID string, reader io.Reader, fileName string, fileSize int64, contentType, caption, userID string) (*entity.PackagingPhoto, error) {
	run, err := s.packagingRepo.FindByID(ctx, packagingRunID)
	if err != nil {
		return nil, fmt.Errorf("包装记录不存在: %w", err)
	}

	objectName := fmt.Sprintf("packaging-photos/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.store != nil {
		if err := s.store.Put(ctx, objectName, reader, fileSize, contentType); err != nil {
			return nil, fmt.Errorf("上传照片失败: %w", err)
		}
	}

	photo := &entity.PackagingPhoto{
		ID:             uuid.New().String()[:32],
		PackagingRunID: run.ID,
		FileName:       fileName,
		FilePath:       objectName,
		FileSize:       fileSize,
		Caption:        caption,
		UploadedBy:     userID,
	}
	if err := s.packagingRepo.CreatePhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("登记照片失败: %w", err)
	}
	return photo, nil
}

// AddPackagingWasteRequest 创建包装损耗请求
type AddPackagingWasteRequest struct {
	WasteType string  `json:"waste_type" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Notes     string  `json:"notes"`
}

// AddWaste 创建包装损耗记录
func (s *PackagingService) AddWaste(ctx context.Context, packagingRunID string, req AddPackagingWasteRequest, userID string) (*entity.PackagingWaste, error) {
	run, err := s.packagingRepo.FindByID(ctx, packagingRunID)
	if err != nil {
		return nil, fmt.Errorf("包装记录不存在: %w", err)
	}

	waste := &entity.PackagingWaste{
		ID:             uuid.New().String()[:32],
		PackagingRunID: run.ID,
		WasteType:      req.WasteType,
		Quantity:       req.Quantity,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if err := s.packagingRepo.CreateWaste(ctx, waste); err != nil {
		return nil, fmt.Errorf("创建包装损耗失败: %w", err)
	}
	return waste, nil
}

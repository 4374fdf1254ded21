package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DashboardService 生产看板服务
// 状态计数走redis短缓存，避免看板轮询反复打数据库
type DashboardService struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewDashboardService(db *gorm.DB, rdb *redis.Client) *DashboardService {
	return &DashboardService{db: db, rdb: rdb}
}

const (
	dashboardCacheKey = "production:dashboard:summary"
	dashboardCacheTTL = 60 * time.Second
)

// Summary 生产看板汇总
type Summary struct {
	PendingRuns      int64 `json:"pending_runs"`
	InProgressRuns   int64 `json:"in_progress_runs"`
	CompletedRuns    int64 `json:"completed_runs"`
	ReworkRuns       int64 `json:"rework_runs"`
	PendingSteps     int64 `json:"pending_steps"`
	InProgressSteps  int64 `json:"in_progress_steps"`
	CompletedSteps   int64 `json:"completed_steps"`
	FailedMetalCheck int64 `json:"failed_metal_checks"`
}

// GetSummary 获取看板汇总，命中缓存直接返回
func (s *DashboardService) GetSummary(ctx context.Context) (*Summary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var summary Summary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary := &Summary{}
	row := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(CASE WHEN status = 'PENDING' THEN 1 END),
			COUNT(CASE WHEN status = 'IN_PROGRESS' THEN 1 END),
			COUNT(CASE WHEN status = 'COMPLETED' THEN 1 END),
			COUNT(CASE WHEN is_rework THEN 1 END)
		FROM process_lot_runs
	`).Row()
	if err := row.Scan(&summary.PendingRuns, &summary.InProgressRuns, &summary.CompletedRuns, &summary.ReworkRuns); err != nil {
		return nil, err
	}

	row = s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(CASE WHEN status = 'PENDING' THEN 1 END),
			COUNT(CASE WHEN status = 'IN_PROGRESS' THEN 1 END),
			COUNT(CASE WHEN status = 'COMPLETED' THEN 1 END)
		FROM step_runs
	`).Row()
	if err := row.Scan(&summary.PendingSteps, &summary.InProgressSteps, &summary.CompletedSteps); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM metal_check_attempts WHERE status = 'FAIL'
	`).Scan(&summary.FailedMetalCheck).Error; err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			s.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL)
		}
	}

	return summary, nil
}

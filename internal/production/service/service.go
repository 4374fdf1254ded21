package service

import (
	"context"

	inventorysvc "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/shared/objectstore"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services 生产服务集合
type Services struct {
	Process    *ProcessService
	LotRun     *LotRunService
	Sorting    *SortingService
	MetalCheck *MetalCheckService
	Packaging  *PackagingService
	Storage    *StorageService
	Dashboard  *DashboardService
}

// NewServices 创建生产服务集合
func NewServices(
	db *gorm.DB,
	repos *repository.Repositories,
	inventorySvc *inventorysvc.InventoryService,
	store *objectstore.Client,
	rdb *redis.Client,
) *Services {
	metalCheckSvc := NewMetalCheckService(repos.MetalCheck, repos.Sorting, repos.Packaging)
	return &Services{
		Process:    NewProcessService(repos.Process),
		LotRun:     NewLotRunService(repos.LotRun, repos.Process, inventorySvc),
		Sorting:    NewSortingService(repos.Sorting, repos.LotRun),
		MetalCheck: metalCheckSvc,
		Packaging:  NewPackagingService(repos.Packaging, repos.Sorting, repos.LotRun, metalCheckSvc, store),
		Storage:    NewStorageService(repos.Storage, repos.Packaging),
		Dashboard:  NewDashboardService(db, rdb),
	}
}

// undoFunc 补偿动作
type undoFunc func(ctx context.Context) error

// compensations 多记录写入的补偿动作列表
// 没有跨记录事务可用时，父记录先写入并登记补偿删除，
// 后续子记录写入失败则逆序执行补偿，避免留下孤儿父记录
type compensations struct {
	undos []undoFunc
}

func (c *compensations) add(u undoFunc) {
	c.undos = append(c.undos, u)
}

// rollback 逆序执行补偿动作；补偿自身的错误只能放弃（无处可报）
func (c *compensations) rollback(ctx context.Context) {
	for i := len(c.undos) - 1; i >= 0; i-- {
		_ = c.undos[i](ctx)
	}
}

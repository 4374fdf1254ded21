package handler

import (
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// BatchHandler 原料批次处理器
type BatchHandler struct {
	svc *service.InventoryService
}

func NewBatchHandler(svc *service.InventoryService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// CreateBatch 创建原料批次
// POST /api/v1/inventory/batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		InternalError(c, "创建原料批次失败: "+err.Error())
		return
	}
	Created(c, batch)
}

// ListBatches 原料批次列表
// GET /api/v1/inventory/batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":       c.Query("status"),
		"product_name": c.Query("product_name"),
	}

	items, total, err := h.svc.ListBatches(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取批次列表失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// GetBatch 原料批次详情
// GET /api/v1/inventory/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.svc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "原料批次不存在")
			return
		}
		InternalError(c, "获取原料批次失败: "+err.Error())
		return
	}
	Success(c, batch)
}

package handler

import (
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// StorageHandler 仓储分配处理器
type StorageHandler struct {
	svc *service.StorageService
}

func NewStorageHandler(svc *service.StorageService) *StorageHandler {
	return &StorageHandler{svc: svc}
}

// ListAllocations 包装条目的仓储分配列表（含剩余包数）
// GET /api/v1/production/pack-entries/:id/allocations
func (h *StorageHandler) ListAllocations(c *gin.Context) {
	items, remaining, err := h.svc.ListAllocations(c.Request.Context(), c.Param("id"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{
		"items":           items,
		"remaining_packs": remaining,
	})
}

// AddAllocation 创建仓储分配
// POST /api/v1/production/pack-entries/:id/allocations
func (h *StorageHandler) AddAllocation(c *gin.Context) {
	var req service.AddAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	alloc, err := h.svc.AddAllocation(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, alloc)
}

// UpdateAllocation 调整仓储分配
// PUT /api/v1/production/storage-allocations/:id
func (h *StorageHandler) UpdateAllocation(c *gin.Context) {
	var req service.UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	alloc, err := h.svc.UpdateAllocation(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, alloc)
}

// DeleteAllocation 删除仓储分配
// DELETE /api/v1/production/storage-allocations/:id
func (h *StorageHandler) DeleteAllocation(c *gin.Context) {
	if err := h.svc.DeleteAllocation(c.Request.Context(), c.Param("id")); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}

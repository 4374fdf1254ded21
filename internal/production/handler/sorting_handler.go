package handler

import (
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// SortingHandler 分选处理器
type SortingHandler struct {
	svc *service.SortingService
}

func NewSortingHandler(svc *service.SortingService) *SortingHandler {
	return &SortingHandler{svc: svc}
}

// AddOutput 创建分选产出
// POST /api/v1/production/step-runs/:id/sorting-outputs
func (h *SortingHandler) AddOutput(c *gin.Context) {
	var req service.AddOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	output, err := h.svc.AddOutput(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, output)
}

// ListOutputs 步骤实例下的分选产出列表
// GET /api/v1/production/step-runs/:id/sorting-outputs
func (h *SortingHandler) ListOutputs(c *gin.Context) {
	items, err := h.svc.ListOutputs(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "获取分选产出列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// GetOutput 分选产出详情
// GET /api/v1/production/sorting-outputs/:id
func (h *SortingHandler) GetOutput(c *gin.Context) {
	output, err := h.svc.GetOutput(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "分选产出不存在")
			return
		}
		InternalError(c, "获取分选产出失败: "+err.Error())
		return
	}
	Success(c, output)
}

// AddWaste 创建分选损耗
// POST /api/v1/production/sorting-outputs/:id/waste
func (h *SortingHandler) AddWaste(c *gin.Context) {
	var req service.AddSortingWasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	waste, err := h.svc.AddWaste(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, waste)
}

package handler

import (
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// MetalCheckHandler 金属检测处理器
type MetalCheckHandler struct {
	svc *service.MetalCheckService
}

func NewMetalCheckHandler(svc *service.MetalCheckService) *MetalCheckHandler {
	return &MetalCheckHandler{svc: svc}
}

// recordAttemptBody 记录检测请求体
type recordAttemptBody struct {
	PackagingRunID string                     `json:"packaging_run_id" binding:"required"`
	Status         string                     `json:"status" binding:"required"`
	Remarks        string                     `json:"remarks"`
	Rejections     []service.RejectionRequest `json:"rejections"`
}

// RecordAttempt 记录一次金属检测
// POST /api/v1/production/sorting-outputs/:id/metal-checks
func (h *MetalCheckHandler) RecordAttempt(c *gin.Context) {
	var body recordAttemptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	attempt, err := h.svc.RecordAttempt(c.Request.Context(), c.Param("id"), body.PackagingRunID,
		service.RecordAttemptRequest{
			Status:     body.Status,
			Remarks:    body.Remarks,
			Rejections: body.Rejections,
		}, GetUserID(c), GetUserName(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, attempt)
}

// History 检测历史（含有效结论与FAIL剔除总量）
// GET /api/v1/production/sorting-outputs/:id/metal-checks
func (h *MetalCheckHandler) History(c *gin.Context) {
	outputID := c.Param("id")
	ctx := c.Request.Context()

	items, err := h.svc.History(ctx, outputID)
	if err != nil {
		InternalError(c, "获取检测历史失败: "+err.Error())
		return
	}

	latest, err := h.svc.Latest(ctx, outputID)
	if err != nil {
		InternalError(c, "获取有效检测失败: "+err.Error())
		return
	}

	rejectedMass, err := h.svc.FailedRejectedMass(ctx, outputID)
	if err != nil {
		InternalError(c, "计算剔除总量失败: "+err.Error())
		return
	}

	Success(c, gin.H{
		"items":                items,
		"latest":               latest,
		"failed_rejected_mass": rejectedMass,
	})
}

package handler

import (
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// LotRunHandler 批次执行处理器
type LotRunHandler struct {
	svc *service.LotRunService
}

func NewLotRunHandler(svc *service.LotRunService) *LotRunHandler {
	return &LotRunHandler{svc: svc}
}

// EnsureRun 查找或创建(批次, 工艺)执行记录
// POST /api/v1/production/lot-runs/ensure
func (h *LotRunHandler) EnsureRun(c *gin.Context) {
	var req service.EnsureRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	run, err := h.svc.EnsureRun(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, run)
}

// ListRuns 执行记录列表
// GET /api/v1/production/lot-runs
func (h *LotRunHandler) ListRuns(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":          c.Query("status"),
		"process_id":      c.Query("process_id"),
		"supply_batch_id": c.Query("supply_batch_id"),
	}

	items, total, err := h.svc.ListRuns(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取执行记录列表失败: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages(total, pageSize),
		},
	})
}

// GetRun 执行记录详情
// GET /api/v1/production/lot-runs/:id
func (h *LotRunHandler) GetRun(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "执行记录不存在")
			return
		}
		InternalError(c, "获取执行记录失败: "+err.Error())
		return
	}
	Success(c, run)
}

// AdvanceStep 推进步骤（部分更新）
// PUT /api/v1/production/lot-runs/:id/steps/:stepId
func (h *LotRunHandler) AdvanceStep(c *gin.Context) {
	var req service.AdvanceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	step, err := h.svc.AdvanceStep(c.Request.Context(), c.Param("id"), c.Param("stepId"), req, GetUserID(c), GetUserName(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, step)
}

// CompleteRun 完成执行记录
// POST /api/v1/production/lot-runs/:id/complete
func (h *LotRunHandler) CompleteRun(c *gin.Context) {
	run, err := h.svc.CompleteRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, run)
}

package handler

import (
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// ProcessHandler 工艺定义处理器
type ProcessHandler struct {
	svc *service.ProcessService
}

func NewProcessHandler(svc *service.ProcessService) *ProcessHandler {
	return &ProcessHandler{svc: svc}
}

// CreateProcess 创建工艺定义
// POST /api/v1/production/processes
func (h *ProcessHandler) CreateProcess(c *gin.Context) {
	var req service.CreateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	process, err := h.svc.CreateProcess(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		InternalError(c, "创建工艺失败: "+err.Error())
		return
	}
	Created(c, process)
}

// ListProcesses 工艺定义列表
// GET /api/v1/production/processes
func (h *ProcessHandler) ListProcesses(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListProcesses(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "获取工艺列表失败: "+err.Error())
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

// GetProcess 工艺定义详情
// GET /api/v1/production/processes/:id
func (h *ProcessHandler) GetProcess(c *gin.Context) {
	process, err := h.svc.GetProcess(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "工艺不存在")
			return
		}
		InternalError(c, "获取工艺失败: "+err.Error())
		return
	}
	Success(c, process)
}

package handler

import (
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 生产看板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetSummary 生产看板汇总
// GET /api/v1/production/dashboard
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context())
	if err != nil {
		InternalError(c, "获取看板汇总失败: "+err.Error())
		return
	}
	Success(c, summary)
}

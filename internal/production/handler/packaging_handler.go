package handler

import (
	"errors"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// PackagingHandler 包装处理器
type PackagingHandler struct {
	svc *service.PackagingService
}

func NewPackagingHandler(svc *service.PackagingService) *PackagingHandler {
	return &PackagingHandler{svc: svc}
}

// EnsureRun 查找或创建步骤实例的包装记录
// POST /api/v1/production/step-runs/:id/packaging
func (h *PackagingHandler) EnsureRun(c *gin.Context) {
	run, err := h.svc.EnsureRun(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, run)
}

// GetRun 包装记录详情
// GET /api/v1/production/packaging/:id
func (h *PackagingHandler) GetRun(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "包装记录不存在")
			return
		}
		InternalError(c, "获取包装记录失败: "+err.Error())
		return
	}
	Success(c, run)
}

// AddPackEntry 创建包装条目（包装记录不存在则自动创建）
// POST /api/v1/production/step-runs/:id/pack-entries
func (h *PackagingHandler) AddPackEntry(c *gin.Context) {
	var req service.AddPackEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	entry, err := h.svc.AddPackEntry(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, entry)
}

// AddWeightCheck 创建称重记录
// POST /api/v1/production/packaging/:id/weight-checks
func (h *PackagingHandler) AddWeightCheck(c *gin.Context) {
	var req service.AddWeightCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	check, err := h.svc.AddWeightCheck(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, check)
}

// AddPhoto 上传包装照片
// POST /api/v1/production/packaging/:id/photos (multipart)
func (h *PackagingHandler) AddPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "没有上传文件")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer src.Close()

	photo, err := h.svc.AddPhoto(c.Request.Context(), c.Param("id"),
		src, fileHeader.Filename, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"), c.PostForm("caption"), GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, photo)
}

// AddWaste 创建包装损耗
// POST /api/v1/production/packaging/:id/waste
func (h *PackagingHandler) AddWaste(c *gin.Context) {
	var req service.AddPackagingWasteRequest
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

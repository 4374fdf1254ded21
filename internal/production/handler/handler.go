package handler

import (
	"strconv"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/gin-gonic/gin"
)

// Handlers 生产处理器集合
type Handlers struct {
	Process    *ProcessHandler
	LotRun     *LotRunHandler
	Sorting    *SortingHandler
	MetalCheck *MetalCheckHandler
	Packaging  *PackagingHandler
	Storage    *StorageHandler
	Dashboard  *DashboardHandler
}

// NewHandlers 创建生产处理器集合
func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Process:    NewProcessHandler(svcs.Process),
		LotRun:     NewLotRunHandler(svcs.LotRun),
		Sorting:    NewSortingHandler(svcs.Sorting),
		MetalCheck: NewMetalCheckHandler(svcs.MetalCheck),
		Packaging:  NewPackagingHandler(svcs.Packaging),
		Storage:    NewStorageHandler(svcs.Storage),
		Dashboard:  NewDashboardHandler(svcs.Dashboard),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetUserName(c *gin.Context) string {
	userName, _ := c.Get("user_name")
	if name, ok := userName.(string); ok {
		return name
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/jalalon11/vsmartnewsms/internal/shop/service"
)

// PartHandler 配件库存处理器
type PartHandler struct {
	svc *service.PartService
}

func NewPartHandler(svc *service.PartService) *PartHandler {
	return &PartHandler{svc: svc}
}

// List 配件列表
// GET /api/v1/parts?category=&stock_status=&status=&search=
func (h *PartHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.PartListParams{
		Category:    c.Query("category"),
		StockStatus: c.Query("stock_status"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		Page:        page,
		Size:        pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取配件列表失败: "+err.Error())
		return
	}
	Success(c, ListResult(items, page, pageSize, total))
}

// Get 配件详情
func (h *PartHandler) Get(c *gin.Context) {
	part, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取配件失败")
		return
	}
	Success(c, part)
}

// Create 创建配件
func (h *PartHandler) Create(c *gin.Context) {
	var req service.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "创建配件失败")
		return
	}
	Created(c, part)
}

// Update 更新配件基础信息
func (h *PartHandler) Update(c *gin.Context) {
	var req service.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "更新配件失败")
		return
	}
	Success(c, part)
}

// AdjustStock 库存调整
// POST /api/v1/parts/:id/stock
func (h *PartHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.AdjustStock(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		respondError(c, err, "库存调整失败")
		return
	}
	Success(c, part)
}

// UpdateStatus 配件采购状态流转
// POST /api/v1/parts/:id/status
func (h *PartHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdatePartStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "更新配件状态失败")
		return
	}
	Success(c, part)
}

// Alerts 低库存告警
// GET /api/v1/parts/alerts
func (h *PartHandler) Alerts(c *gin.Context) {
	items, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		InternalError(c, "获取低库存告警失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// Movements 库存流水
// GET /api/v1/parts/:id/movements
func (h *PartHandler) Movements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.Movements(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err, "获取库存流水失败")
		return
	}
	Success(c, ListResult(items, page, pageSize, total))
}

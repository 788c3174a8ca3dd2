package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/jalalon11/vsmartnewsms/internal/shop/service"
)

// OrderHandler 维修工单处理器
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List 工单列表
// GET /api/v1/repair-orders?status=&priority=&assignee_type=&assignee_id=&customer_id=&search=
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.OrderListParams{
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		AssigneeType: c.Query("assignee_type"),
		AssigneeID:   c.Query("assignee_id"),
		CustomerID:   c.Query("customer_id"),
		Search:       c.Query("search"),
		Page:         page,
		Size:         pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取工单列表失败: "+err.Error())
		return
	}
	Success(c, ListResult(items, page, pageSize, total))
}

// Get 工单详情
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取工单失败")
		return
	}
	Success(c, order)
}

// Create 创建工单
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		respondError(c, err, "创建工单失败")
		return
	}
	Created(c, order)
}

// Update 编辑工单
func (h *OrderHandler) Update(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		respondError(c, err, "编辑工单失败")
		return
	}
	Success(c, order)
}

// UpdateStatusRequest 状态流转请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 工单状态流转
// PUT /api/v1/repair-orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "更新工单状态失败")
		return
	}
	Success(c, order)
}

// CancelOrderRequest 取消工单请求
type CancelOrderRequest struct {
	Reason       string `json:"reason" binding:"required"`
	RestoreParts bool   `json:"restore_parts"`
}

// Cancel 取消工单
// POST /api/v1/repair-orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason, req.RestoreParts, GetUserID(c))
	if err != nil {
		respondError(c, err, "取消工单失败")
		return
	}
	Success(c, order)
}

// Deliver 交付工单
// POST /api/v1/repair-orders/:id/deliver
func (h *OrderHandler) Deliver(c *gin.Context) {
	order, err := h.svc.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "交付工单失败")
		return
	}
	Success(c, order)
}

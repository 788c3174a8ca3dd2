package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/jalalon11/vsmartnewsms/internal/shop/service"
)

// InvoiceHandler 发票与收款处理器
type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List 发票列表
// GET /api/v1/invoices?status=&customer_id=&search=
func (h *InvoiceHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.InvoiceListParams{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		Search:     c.Query("search"),
		Page:       page,
		Size:       pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取发票列表失败: "+err.Error())
		return
	}
	Success(c, ListResult(items, page, pageSize, total))
}

// Get 发票详情
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取发票失败")
		return
	}
	Success(c, invoice)
}

// GenerateRequest 按工单生成发票请求
type GenerateRequest struct {
	RepairOrderID string `json:"repair_order_id" binding:"required"`
}

// Generate 按工单生成发票，重复生成返回现有发票
// POST /api/v1/invoices/generate
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	invoice, err := h.svc.GenerateFromOrder(c.Request.Context(), req.RepairOrderID, GetUserID(c))
	if err != nil {
		respondError(c, err, "生成发票失败")
		return
	}
	Created(c, invoice)
}

// Create 手工开票
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	invoice, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		respondError(c, err, "创建发票失败")
		return
	}
	Created(c, invoice)
}

// AddPayment 登记收款
// POST /api/v1/invoices/:id/payments
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	var req service.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	invoice, err := h.svc.AddPayment(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		respondError(c, err, "登记收款失败")
		return
	}
	Success(c, invoice)
}

// Delete 作废发票
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "作废发票失败")
		return
	}
	Success(c, gin.H{"message": "发票已作废"})
}

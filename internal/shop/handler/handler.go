package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/jalalon11/vsmartnewsms/internal/shop/service"
)

// Handlers 处理器集合
type Handlers struct {
	Catalog *CatalogHandler
	Part    *PartHandler
	Order   *OrderHandler
	Invoice *InvoiceHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Catalog: NewCatalogHandler(svc.Catalog),
		Part:    NewPartHandler(svc.Part),
		Order:   NewOrderHandler(svc.Order),
		Invoice: NewInvoiceHandler(svc.Invoice),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
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

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Unprocessable 业务规则拒绝响应
func Unprocessable(c *gin.Context, message string) {
	Error(c, 42200, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// 业务规则类错误统一映射到 422
var businessErrs = []error{
	service.ErrInsufficientStock,
	service.ErrOutOfStock,
	service.ErrPartInactive,
	service.ErrIllegalStatusTransition,
	service.ErrDuplicateServiceLine,
	service.ErrAssigneeInvalid,
	service.ErrOrderNotCancellable,
	service.ErrInvalidDeliveryState,
	service.ErrOrderNotEligible,
	service.ErrInvoiceAlreadyExists,
	service.ErrExceedsBalance,
	service.ErrInvoicePaid,
	service.ErrInvoiceCancelled,
}

// respondError 把服务层错误映射为响应：
// 记录不存在→404，业务规则拒绝→422，其余→500
func respondError(c *gin.Context, err error, message string) {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrPartNotFound) || errors.Is(err, service.ErrServiceNotFound) {
		NotFound(c, message+": "+err.Error())
		return
	}
	for _, be := range businessErrs {
		if errors.Is(err, be) {
			Unprocessable(c, message+": "+err.Error())
			return
		}
	}
	InternalError(c, message+": "+err.Error())
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
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

// ListResult 组装分页列表响应
func ListResult(items interface{}, page, pageSize int, total int64) ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	}
}

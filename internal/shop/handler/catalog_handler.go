package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jalalon11/vsmartnewsms/internal/shop/service"
)

// CatalogHandler 基础档案处理器
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListCustomers 客户列表
// GET /api/v1/customers?search=
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListCustomers(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		InternalError(c, "获取客户列表失败: "+err.Error())
		return
	}
	Success(c, ListResult(items, page, pageSize, total))
}

// GetCustomer 客户详情
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	customer, err := h.svc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取客户失败")
		return
	}
	Success(c, customer)
}

// CreateCustomer 创建客户
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	customer, err := h.svc.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "创建客户失败")
		return
	}
	Created(c, customer)
}

// ListCustomerDevices 客户设备列表
// GET /api/v1/customers/:id/devices
func (h *CatalogHandler) ListCustomerDevices(c *gin.Context) {
	items, err := h.svc.ListCustomerDevices(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "获取设备列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateDevice 登记送修设备
func (h *CatalogHandler) CreateDevice(c *gin.Context) {
	var req service.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	device, err := h.svc.CreateDevice(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "登记设备失败")
		return
	}
	Created(c, device)
}

// ListTechnicians 技师列表
// GET /api/v1/technicians?active_only=true
func (h *CatalogHandler) ListTechnicians(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	items, err := h.svc.ListTechnicians(c.Request.Context(), activeOnly)
	if err != nil {
		InternalError(c, "获取技师列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateTechnician 创建技师
func (h *CatalogHandler) CreateTechnician(c *gin.Context) {
	var req service.CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tech, err := h.svc.CreateTechnician(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "创建技师失败")
		return
	}
	Created(c, tech)
}

// ListServices 服务目录
// GET /api/v1/services?active_only=true
func (h *CatalogHandler) ListServices(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	items, err := h.svc.ListServices(c.Request.Context(), activeOnly)
	if err != nil {
		InternalError(c, "获取服务目录失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateService 创建服务目录项
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req service.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	svc, err := h.svc.CreateService(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "创建服务失败")
		return
	}
	Created(c, svc)
}

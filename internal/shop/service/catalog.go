package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/shopspring/decimal"
)

// CatalogService 基础档案服务：客户、设备、技师与服务目录
type CatalogService struct {
	custRepo *repository.CustomerRepository
	techRepo *repository.TechnicianRepository
	svcRepo  *repository.ServiceRepository
}

func NewCatalogService(
	custRepo *repository.CustomerRepository,
	techRepo *repository.TechnicianRepository,
	svcRepo *repository.ServiceRepository,
) *CatalogService {
	return &CatalogService{custRepo: custRepo, techRepo: techRepo, svcRepo: svcRepo}
}

// CreateCustomerRequest 创建客户请求
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Notes     string `json:"notes"`
}

func (s *CatalogService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*entity.Customer, error) {
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Notes:     req.Notes,
	}
	if err := s.custRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	return customer, nil
}

func (s *CatalogService) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	return s.custRepo.FindByID(ctx, id)
}

func (s *CatalogService) ListCustomers(ctx context.Context, page, pageSize int, search string) ([]entity.Customer, int64, error) {
	return s.custRepo.FindAll(ctx, page, pageSize, search)
}

// CreateDeviceRequest 登记送修设备请求
type CreateDeviceRequest struct {
	CustomerID     string `json:"customer_id" binding:"required"`
	Brand          string `json:"brand" binding:"required"`
	Model          string `json:"model" binding:"required"`
	SerialNumber   string `json:"serial_number"`
	IMEI           string `json:"imei"`
	Year           int    `json:"year"`
	Color          string `json:"color"`
	ConditionNotes string `json:"condition_notes"`
}

func (s *CatalogService) CreateDevice(ctx context.Context, req CreateDeviceRequest) (*entity.Device, error) {
	if _, err := s.custRepo.FindByID(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}
	device := &entity.Device{
		ID:             uuid.New().String(),
		CustomerID:     req.CustomerID,
		Brand:          req.Brand,
		Model:          req.Model,
		SerialNumber:   req.SerialNumber,
		IMEI:           req.IMEI,
		Year:           req.Year,
		Color:          req.Color,
		ConditionNotes: req.ConditionNotes,
	}
	if err := s.custRepo.CreateDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("登记设备失败: %w", err)
	}
	return device, nil
}

func (s *CatalogService) ListCustomerDevices(ctx context.Context, customerID string) ([]entity.Device, error) {
	return s.custRepo.FindDevicesByCustomer(ctx, customerID)
}

// CreateTechnicianRequest 创建技师请求
type CreateTechnicianRequest struct {
	UserID         string  `json:"user_id" binding:"required"`
	EmployeeID     string  `json:"employee_id" binding:"required"`
	Phone          string  `json:"phone"`
	Specialization string  `json:"specialization"`
	HourlyRate     float64 `json:"hourly_rate" binding:"gte=0"`
	Notes          string  `json:"notes"`
}

func (s *CatalogService) CreateTechnician(ctx context.Context, req CreateTechnicianRequest) (*entity.Technician, error) {
	if _, err := s.techRepo.FindUserByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("用户不存在: %w", err)
	}
	tech := &entity.Technician{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		EmployeeID:     req.EmployeeID,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		HourlyRate:     decimal.NewFromFloat(req.HourlyRate),
		IsActive:       true,
		Notes:          req.Notes,
	}
	if err := s.techRepo.Create(ctx, tech); err != nil {
		return nil, fmt.Errorf("创建技师失败: %w", err)
	}
	return tech, nil
}

func (s *CatalogService) ListTechnicians(ctx context.Context, activeOnly bool) ([]entity.Technician, error) {
	return s.techRepo.FindAll(ctx, activeOnly)
}

// CreateServiceRequest 创建服务目录项请求
type CreateServiceRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	BasePrice         float64 `json:"base_price" binding:"gte=0"`
	EstimatedDuration int     `json:"estimated_duration" binding:"gte=0"`
}

func (s *CatalogService) CreateService(ctx context.Context, req CreateServiceRequest) (*entity.Service, error) {
	svc := &entity.Service{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		BasePrice:         decimal.NewFromFloat(req.BasePrice),
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          true,
	}
	if err := s.svcRepo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("创建服务失败: %w", err)
	}
	return svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]entity.Service, error) {
	return s.svcRepo.FindAll(ctx, activeOnly)
}

// ResolveAssigneeName 受理人名称展示，未指派时返回 Unassigned
func (s *CatalogService) ResolveAssigneeName(ctx context.Context, assignee entity.Assignee) string {
	if !assignee.IsAssigned() {
		return "Unassigned"
	}
	switch assignee.Type {
	case entity.AssigneeTechnician:
		tech, err := s.techRepo.FindByID(ctx, assignee.ID)
		if err == nil && tech.User != nil {
			return tech.User.Name
		}
	case entity.AssigneeStaff:
		user, err := s.techRepo.FindUserByID(ctx, assignee.ID)
		if err == nil {
			return user.Name
		}
	}
	return "Unassigned"
}

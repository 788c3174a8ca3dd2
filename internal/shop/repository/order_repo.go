package repository

import (
	"context"
	"errors"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 维修工单仓库
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderListParams 工单列表查询参数
type OrderListParams struct {
	Status       string
	Priority     string
	AssigneeType string
	AssigneeID   string
	CustomerID   string
	Search       string
	Page         int
	Size         int
}

// FindAll 查询工单列表
func (r *OrderRepository) FindAll(ctx context.Context, params OrderListParams) ([]entity.RepairOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.RepairOrder{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.AssigneeType != "" {
		query = query.Where("assignee_type = ?", params.AssigneeType)
	}
	if params.AssigneeID != "" {
		query = query.Where("assignee_id = ?", params.AssigneeID)
	}
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("order_number LIKE ? OR issue_description LIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.RepairOrder
	err := query.
		Preload("Customer").
		Preload("Device").
		Preload("Services").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找工单（含服务行与配件行）
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.RepairOrder, error) {
	var order entity.RepairOrder
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Device").
		Preload("Services").
		Preload("Services.Service").
		Preload("Parts").
		Preload("Parts.Part").
		Preload("Invoice").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.RepairOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update 只保存工单本体，预加载的关联行不随之写回
func (r *OrderRepository) Update(ctx context.Context, order *entity.RepairOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository 发票仓库
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// InvoiceListParams 发票列表查询参数
type InvoiceListParams struct {
	Status     string
	CustomerID string
	Search     string
	Page       int
	Size       int
}

// FindAll 查询发票列表
func (r *InvoiceRepository) FindAll(ctx context.Context, params InvoiceListParams) ([]entity.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).Where("deleted_at IS NULL")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("invoice_number LIKE ?", kw)
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
	var items []entity.Invoice
	err := query.
		Preload("Customer").
		Preload("RepairOrder").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找发票（含收款记录）
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("RepairOrder").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC")
		}).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByOrderID 根据工单ID查找发票
func (r *InvoiceRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Where("repair_order_id = ? AND deleted_at IS NULL", orderID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

// Delete 软删除，作废的发票不再出现在查询结果中
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
)

// CustomerRepository 客户与设备仓库
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindAll 查询客户列表
func (r *CustomerRepository) FindAll(ctx context.Context, page, pageSize int, search string) ([]entity.Customer, int64, error) {
	var items []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if search != "" {
		kw := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?", kw, kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	err := query.
		Order("first_name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找客户（含设备）
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).
		Preload("Devices").
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// FindDeviceByID 根据ID查找设备
func (r *CustomerRepository) FindDeviceByID(ctx context.Context, id string) (*entity.Device, error) {
	var device entity.Device
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("id = ?", id).
		First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// FindDevicesByCustomer 查询客户名下设备
func (r *CustomerRepository) FindDevicesByCustomer(ctx context.Context, customerID string) ([]entity.Device, error) {
	var devices []entity.Device
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&devices).Error
	return devices, err
}

func (r *CustomerRepository) CreateDevice(ctx context.Context, device *entity.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

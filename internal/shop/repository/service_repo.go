package repository

import (
	"context"
	"errors"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
)

// ServiceRepository 服务目录仓库
type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindAll 查询服务目录
func (r *ServiceRepository) FindAll(ctx context.Context, activeOnly bool) ([]entity.Service, error) {
	var items []entity.Service
	query := r.db.WithContext(ctx).Model(&entity.Service{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

// FindByID 根据ID查找服务
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	var svc entity.Service
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (r *ServiceRepository) Create(ctx context.Context, svc *entity.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *ServiceRepository) Update(ctx context.Context, svc *entity.Service) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

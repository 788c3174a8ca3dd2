package repository

import (
	"context"
	"errors"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
)

// TechnicianRepository 技师与员工仓库
type TechnicianRepository struct {
	db *gorm.DB
}

func NewTechnicianRepository(db *gorm.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// FindAll 查询技师列表
func (r *TechnicianRepository) FindAll(ctx context.Context, activeOnly bool) ([]entity.Technician, error) {
	var items []entity.Technician
	query := r.db.WithContext(ctx).Preload("User")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("employee_id ASC").Find(&items).Error
	return items, err
}

// FindByID 根据ID查找技师
func (r *TechnicianRepository) FindByID(ctx context.Context, id string) (*entity.Technician, error) {
	var tech entity.Technician
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&tech).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tech, nil
}

func (r *TechnicianRepository) Create(ctx context.Context, tech *entity.Technician) error {
	return r.db.WithContext(ctx).Create(tech).Error
}

func (r *TechnicianRepository) Update(ctx context.Context, tech *entity.Technician) error {
	return r.db.WithContext(ctx).Save(tech).Error
}

// FindUserByID 根据ID查找用户
func (r *TechnicianRepository) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *TechnicianRepository) CreateUser(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

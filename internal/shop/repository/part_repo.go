package repository

import (
	"context"
	"errors"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartRepository 配件库存仓库
type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// PartListParams 配件列表查询参数
type PartListParams struct {
	Category    string
	StockStatus string // low_stock, out_of_stock, in_stock
	Status      string
	Search      string
	Page        int
	Size        int
}

// List 查询配件列表
func (r *PartRepository) List(ctx context.Context, params PartListParams) ([]entity.Part, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Part{})

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	switch params.StockStatus {
	case "low_stock":
		query = query.Where("quantity_in_stock <= minimum_stock_level")
	case "out_of_stock":
		query = query.Where("quantity_in_stock = 0")
	case "in_stock":
		query = query.Where("quantity_in_stock > 0")
	}
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("part_number LIKE ? OR name LIKE ?", kw, kw)
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
	var items []entity.Part
	err := query.
		Order("name ASC").
		Offset((params.Page - 1) * params.Size).
		Limit(params.Size).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找配件
func (r *PartRepository) FindByID(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByIDForUpdate 在事务内按行锁查找配件。
// 占用/回补的读改写序列必须走这里，避免并发扣减把库存打穿。
func (r *PartRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*entity.Part, error) {
	var part entity.Part
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

func (r *PartRepository) Create(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// LowStockAlerts 查询库存低于告警线的在用配件
func (r *PartRepository) LowStockAlerts(ctx context.Context) ([]entity.Part, error) {
	var items []entity.Part
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND quantity_in_stock <= minimum_stock_level", true).
		Order("quantity_in_stock ASC").
		Find(&items).Error
	return items, err
}

// CreateMovement 在事务内写入库存变动流水，
// 与触发它的库存变更一并提交或回滚
func (r *PartRepository) CreateMovement(tx *gorm.DB, mv *entity.StockMovement) error {
	return tx.Create(mv).Error
}

// ListMovements 查询库存变动流水
func (r *PartRepository) ListMovements(ctx context.Context, partID string, page, size int) ([]entity.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockMovement{})
	if partID != "" {
		query = query.Where("part_id = ?", partID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var items []entity.StockMovement
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&items).Error
	return items, total, err
}

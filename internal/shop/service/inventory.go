package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	alertsCacheKey = "shop:stock:alerts"
	alertsCacheTTL = 30 * time.Second
)

// PartService 配件库存服务。
// quantity_in_stock 只允许通过占用/回补/显式调整变动，
// 普通编辑不触碰库存数。
type PartService struct {
	repo *repository.PartRepository
	db   *gorm.DB
	rdb  *redis.Client
}

func NewPartService(repo *repository.PartRepository, db *gorm.DB, rdb *redis.Client) *PartService {
	return &PartService{repo: repo, db: db, rdb: rdb}
}

// lockPart 行锁读取配件。占用与回补的读改写序列必须持锁，
// 否则两个并发占用会同时通过余量检查。
func lockPart(repo *repository.PartRepository, tx *gorm.DB, partID string) (*entity.Part, error) {
	part, err := repo.FindByIDForUpdate(tx, partID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, fmt.Errorf("读取配件失败: %w", err)
	}
	return part, nil
}

// reservePart 在已持锁的配件上执行检查并扣减
func reservePart(tx *gorm.DB, part *entity.Part, quantity int) error {
	if !part.IsActive {
		return ErrPartInactive
	}
	if quantity > part.QuantityInStock {
		return ErrInsufficientStock
	}
	part.QuantityInStock -= quantity
	if part.QuantityInStock < 0 {
		// 持锁扣减不可能为负，兜底归零
		part.QuantityInStock = 0
	}
	if err := tx.Save(part).Error; err != nil {
		return fmt.Errorf("更新库存失败: %w", err)
	}
	return nil
}

// restorePart 在已持锁的配件上回补库存，无上限检查
func restorePart(tx *gorm.DB, part *entity.Part, quantity int) error {
	part.QuantityInStock += quantity
	if err := tx.Save(part).Error; err != nil {
		return fmt.Errorf("更新库存失败: %w", err)
	}
	return nil
}

// recordMovement 在事务内写入库存变动流水
func recordMovement(repo *repository.PartRepository, tx *gorm.DB, part *entity.Part, movementType string, quantity int, refType, refID, refCode, notes, userID string) error {
	mv := &entity.StockMovement{
		ID:            uuid.New().String(),
		PartID:        part.ID,
		PartNumber:    part.PartNumber,
		MovementType:  movementType,
		Quantity:      quantity,
		UnitCost:      part.CostPrice,
		ReferenceType: refType,
		ReferenceID:   refID,
		ReferenceCode: refCode,
		Notes:         notes,
		CreatedBy:     userID,
	}
	if err := repo.CreateMovement(tx, mv); err != nil {
		return fmt.Errorf("写入库存流水失败: %w", err)
	}
	return nil
}

// Reserve 占用库存。检查与扣减在同一事务的行锁下完成。
func (s *PartService) Reserve(ctx context.Context, partID string, quantity int, refType, refID, refCode, userID string) (*entity.Part, error) {
	var part *entity.Part
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPart(s.repo, tx, partID)
		if err != nil {
			return err
		}
		if err := reservePart(tx, p, quantity); err != nil {
			return err
		}
		if err := recordMovement(s.repo, tx, p, entity.MovementReserve, -quantity, refType, refID, refCode, "", userID); err != nil {
			return err
		}
		part = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateAlerts(ctx)
	return part, nil
}

// Restore 回补库存。仅由工单取消调用。
func (s *PartService) Restore(ctx context.Context, partID string, quantity int, refType, refID, refCode, userID string) (*entity.Part, error) {
	var part *entity.Part
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPart(s.repo, tx, partID)
		if err != nil {
			return err
		}
		if err := restorePart(tx, p, quantity); err != nil {
			return err
		}
		if err := recordMovement(s.repo, tx, p, entity.MovementRestore, quantity, refType, refID, refCode, "", userID); err != nil {
			return err
		}
		part = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateAlerts(ctx)
	return part, nil
}

// AdjustStockRequest 人工库存调整请求
type AdjustStockRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Type     string `json:"type" binding:"required,oneof=add subtract set"`
	Notes    string `json:"notes"`
}

// AdjustStock 显式库存调整（盘点/纠错），减法下限为零
func (s *PartService) AdjustStock(ctx context.Context, partID string, req AdjustStockRequest, userID string) (*entity.Part, error) {
	var part *entity.Part
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPart(s.repo, tx, partID)
		if err != nil {
			return err
		}
		old := p.QuantityInStock
		switch req.Type {
		case "add":
			p.QuantityInStock += req.Quantity
		case "subtract":
			p.QuantityInStock -= req.Quantity
			if p.QuantityInStock < 0 {
				p.QuantityInStock = 0
			}
		case "set":
			p.QuantityInStock = req.Quantity
		}
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("更新库存失败: %w", err)
		}
		if err := recordMovement(s.repo, tx, p, entity.MovementAdjust, p.QuantityInStock-old, "ADJUST", "", "", req.Notes, userID); err != nil {
			return err
		}
		part = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateAlerts(ctx)
	return part, nil
}

// UpdatePartStatusRequest 配件采购状态流转请求
type UpdatePartStatusRequest struct {
	Status              string     `json:"status" binding:"required,oneof=ordered in_transit in_stock"`
	OrderDate           *time.Time `json:"order_date"`
	ExpectedArrivalDate *time.Time `json:"expected_arrival_date"`
	ReceivedDate        *time.Time `json:"received_date"`
	StatusNotes         string     `json:"status_notes"`
}

// UpdateStatus 配件状态子状态机。
// 非法流转整体拒绝，不落任何变更；流转时补齐对应日期。
func (s *PartService) UpdateStatus(ctx context.Context, partID string, req UpdatePartStatusRequest) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}
	if !part.CanTransitionTo(req.Status) {
		return nil, ErrIllegalStatusTransition
	}

	now := time.Now()
	part.Status = req.Status
	switch req.Status {
	case entity.PartStatusOrdered:
		if req.OrderDate != nil {
			part.OrderDate = req.OrderDate
		} else {
			part.OrderDate = &now
		}
		part.ExpectedArrivalDate = req.ExpectedArrivalDate
	case entity.PartStatusInTransit:
		// 保留原下单日期
	case entity.PartStatusInStock:
		if req.ReceivedDate != nil {
			part.ReceivedDate = req.ReceivedDate
		} else {
			part.ReceivedDate = &now
		}
	}
	if req.StatusNotes != "" {
		part.StatusNotes = req.StatusNotes
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("更新配件状态失败: %w", err)
	}
	return part, nil
}

// CreatePartRequest 创建配件请求
type CreatePartRequest struct {
	PartNumber        string  `json:"part_number" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	CostPrice         float64 `json:"cost_price" binding:"gte=0"`
	SellingPrice      float64 `json:"selling_price" binding:"gte=0"`
	QuantityInStock   int     `json:"quantity_in_stock" binding:"gte=0"`
	MinimumStockLevel int     `json:"minimum_stock_level" binding:"gte=0"`
	Supplier          string  `json:"supplier"`
	Status            string  `json:"status"`
}

// Create 创建配件
func (s *PartService) Create(ctx context.Context, req CreatePartRequest) (*entity.Part, error) {
	status := req.Status
	if status == "" {
		status = entity.PartStatusInStock
	}
	part := &entity.Part{
		ID:                uuid.New().String(),
		PartNumber:        req.PartNumber,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		CostPrice:         decimal.NewFromFloat(req.CostPrice),
		SellingPrice:      decimal.NewFromFloat(req.SellingPrice),
		QuantityInStock:   req.QuantityInStock,
		MinimumStockLevel: req.MinimumStockLevel,
		Supplier:          req.Supplier,
		IsActive:          true,
		Status:            status,
	}
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, fmt.Errorf("创建配件失败: %w", err)
	}
	return part, nil
}

// UpdatePartRequest 更新配件请求。不含库存数——
// 库存只通过占用/回补/显式调整变动。
type UpdatePartRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	CostPrice         *float64 `json:"cost_price"`
	SellingPrice      *float64 `json:"selling_price"`
	MinimumStockLevel *int     `json:"minimum_stock_level"`
	Supplier          *string  `json:"supplier"`
	IsActive          *bool    `json:"is_active"`
}

// Update 更新配件基础信息
func (s *PartService) Update(ctx context.Context, partID string, req UpdatePartRequest) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Description != nil {
		part.Description = *req.Description
	}
	if req.Category != nil {
		part.Category = *req.Category
	}
	if req.CostPrice != nil {
		part.CostPrice = decimal.NewFromFloat(*req.CostPrice)
	}
	if req.SellingPrice != nil {
		part.SellingPrice = decimal.NewFromFloat(*req.SellingPrice)
	}
	if req.MinimumStockLevel != nil {
		part.MinimumStockLevel = *req.MinimumStockLevel
	}
	if req.Supplier != nil {
		part.Supplier = *req.Supplier
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("更新配件失败: %w", err)
	}
	return part, nil
}

func (s *PartService) Get(ctx context.Context, id string) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}
	return part, nil
}

func (s *PartService) List(ctx context.Context, params repository.PartListParams) ([]entity.Part, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *PartService) Movements(ctx context.Context, partID string, page, size int) ([]entity.StockMovement, int64, error) {
	return s.repo.ListMovements(ctx, partID, page, size)
}

// Alerts 低库存告警列表，Redis 缓存 30 秒
func (s *PartService) Alerts(ctx context.Context) ([]entity.Part, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, alertsCacheKey).Bytes(); err == nil {
			var items []entity.Part
			if err := json.Unmarshal(cached, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.repo.LowStockAlerts(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(items); err == nil {
			s.rdb.Set(ctx, alertsCacheKey, data, alertsCacheTTL)
		}
	}
	return items, nil
}

// invalidateAlerts 库存变动后清掉告警缓存
func (s *PartService) invalidateAlerts(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, alertsCacheKey)
	}
}

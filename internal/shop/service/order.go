package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService 维修工单服务。
// 工单级操作（创建、编辑、取消、交付）各自在单个事务内完成，
// 任何一步失败整体回滚。
type OrderService struct {
	repo     *repository.OrderRepository
	custRepo *repository.CustomerRepository
	svcRepo  *repository.ServiceRepository
	techRepo *repository.TechnicianRepository
	seqRepo  *repository.SequenceRepository
	parts    *PartService
	db       *gorm.DB
}

func NewOrderService(
	repo *repository.OrderRepository,
	custRepo *repository.CustomerRepository,
	svcRepo *repository.ServiceRepository,
	techRepo *repository.TechnicianRepository,
	seqRepo *repository.SequenceRepository,
	parts *PartService,
	db *gorm.DB,
) *OrderService {
	return &OrderService{
		repo:     repo,
		custRepo: custRepo,
		svcRepo:  svcRepo,
		techRepo: techRepo,
		seqRepo:  seqRepo,
		parts:    parts,
		db:       db,
	}
}

// AssigneeInput 受理人指派
type AssigneeInput struct {
	Type string `json:"type" binding:"required,oneof=technician staff"`
	ID   string `json:"id" binding:"required"`
}

// ServiceLineInput 服务行输入，Price 为空时回落到目录基础价
type ServiceLineInput struct {
	ServiceID string   `json:"service_id" binding:"required"`
	Price     *float64 `json:"price"`
	Notes     string   `json:"notes"`
}

// PartLineInput 配件占用输入
type PartLineInput struct {
	PartID    string  `json:"part_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
}

// CreateOrderRequest 创建工单请求
type CreateOrderRequest struct {
	CustomerID       string             `json:"customer_id" binding:"required"`
	DeviceID         string             `json:"device_id" binding:"required"`
	Services         []ServiceLineInput `json:"services" binding:"required,min=1,dive"`
	Parts            []PartLineInput    `json:"parts" binding:"dive"`
	Assignee         *AssigneeInput     `json:"assignee"`
	IssueDescription string             `json:"issue_description" binding:"required"`
	Priority         string             `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CustomerNotes    string             `json:"customer_notes"`
}

// Create 创建维修工单。服务行、配件占用、库存扣减与
// 费用汇总在同一事务内落库。
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest, userID string) (*entity.RepairOrder, error) {
	if _, err := s.custRepo.FindByID(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}
	if _, err := s.custRepo.FindDeviceByID(ctx, req.DeviceID); err != nil {
		return nil, fmt.Errorf("设备不存在: %w", err)
	}

	assignee, err := s.resolveAssignee(ctx, req.Assignee)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}

	order := &entity.RepairOrder{
		ID:               uuid.New().String(),
		CustomerID:       req.CustomerID,
		DeviceID:         req.DeviceID,
		Assignee:         assignee,
		Status:           entity.OrderStatusPending,
		Priority:         priority,
		IssueDescription: req.IssueDescription,
		CustomerNotes:    req.CustomerNotes,
		CreatedBy:        userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.generateOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("创建工单失败: %w", err)
		}
		if err := attachServiceLines(tx, order, req.Services); err != nil {
			return err
		}
		if err := allocateParts(tx, s.parts.repo, order, req.Parts, userID); err != nil {
			return err
		}
		return updateOrderTotals(tx, order)
	})
	if err != nil {
		return nil, err
	}
	s.parts.invalidateAlerts(ctx)

	return s.repo.FindByID(ctx, order.ID)
}

// UpdateOrderRequest 编辑工单请求。服务与配件走整单替换。
type UpdateOrderRequest struct {
	Services         []ServiceLineInput `json:"services" binding:"required,min=1,dive"`
	Parts            []PartLineInput    `json:"parts" binding:"dive"`
	Assignee         *AssigneeInput     `json:"assignee"`
	IssueDescription *string            `json:"issue_description"`
	Diagnosis        *string            `json:"diagnosis"`
	Solution         *string            `json:"solution"`
	Status           *string            `json:"status" binding:"omitempty,oneof=pending in_progress waiting_parts completed cancelled delivered"`
	Priority         *string            `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CustomerNotes    *string            `json:"customer_notes"`
	InternalNotes    *string            `json:"internal_notes"`
}

// Update 编辑工单。服务行与配件行先整单拆除再重建；
// 配件替换不回补库存——已消耗的库存只在显式取消时回补，
// 对已占用工单的编辑视为数据修正而非补货。
func (s *OrderService) Update(ctx context.Context, id string, req UpdateOrderRequest, userID string) (*entity.RepairOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Assignee != nil {
		assignee, err := s.resolveAssignee(ctx, req.Assignee)
		if err != nil {
			return nil, err
		}
		order.Assignee = assignee
	}
	if req.IssueDescription != nil {
		order.IssueDescription = *req.IssueDescription
	}
	if req.Diagnosis != nil {
		order.Diagnosis = *req.Diagnosis
	}
	if req.Solution != nil {
		order.Solution = *req.Solution
	}
	if req.Priority != nil {
		order.Priority = *req.Priority
	}
	if req.CustomerNotes != nil {
		order.CustomerNotes = *req.CustomerNotes
	}
	if req.InternalNotes != nil {
		order.InternalNotes = *req.InternalNotes
	}

	if req.Status != nil && *req.Status != order.Status {
		if err := applyStatusChange(order, *req.Status); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("repair_order_id = ?", order.ID).Delete(&entity.ServiceLine{}).Error; err != nil {
			return fmt.Errorf("拆除服务行失败: %w", err)
		}
		if err := attachServiceLines(tx, order, req.Services); err != nil {
			return err
		}

		if err := tx.Where("repair_order_id = ?", order.ID).Delete(&entity.PartAllocation{}).Error; err != nil {
			return fmt.Errorf("拆除配件行失败: %w", err)
		}
		for _, input := range req.Parts {
			line := &entity.PartAllocation{
				ID:            uuid.New().String(),
				RepairOrderID: order.ID,
				PartID:        input.PartID,
				QuantityUsed:  input.Quantity,
				UnitPrice:     decimal.NewFromFloat(input.UnitPrice),
				TotalPrice:    decimal.NewFromFloat(input.UnitPrice).Mul(decimal.NewFromInt(int64(input.Quantity))),
			}
			if err := tx.Create(line).Error; err != nil {
				return fmt.Errorf("创建配件行失败: %w", err)
			}
		}

		return updateOrderTotals(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, order.ID)
}

// UpdateStatus 工单状态流转。取消必须走 Cancel。
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*entity.RepairOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == order.Status {
		return order, nil
	}
	if err := applyStatusChange(order, status); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新工单状态失败: %w", err)
	}
	return order, nil
}

// applyStatusChange 校验并应用状态流转与时间戳
func applyStatusChange(order *entity.RepairOrder, status string) error {
	switch status {
	case entity.OrderStatusCancelled:
		// 取消需要原因与回补决策，必须走 Cancel 操作
		return ErrOrderNotCancellable
	case entity.OrderStatusDelivered:
		if order.Status != entity.OrderStatusCompleted {
			return ErrInvalidDeliveryState
		}
		now := time.Now()
		order.DeliveredAt = &now
	default:
		if !order.CanTransitionTo(status) {
			return ErrIllegalStatusTransition
		}
	}
	if status == entity.OrderStatusCompleted && order.ActualCompletion == nil {
		now := time.Now()
		order.ActualCompletion = &now
	}
	order.Status = status
	return nil
}

// Cancel 取消工单。按需把全部配件占用回补进库存，
// 回补、状态与时间戳在同一事务内提交，任何一步失败整体回滚。
func (s *OrderService) Cancel(ctx context.Context, id, reason string, restoreParts bool, userID string) (*entity.RepairOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, ErrOrderNotCancellable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if restoreParts {
			for _, alloc := range order.Parts {
				part, err := lockPart(s.parts.repo, tx, alloc.PartID)
				if err != nil {
					return err
				}
				if err := restorePart(tx, part, alloc.QuantityUsed); err != nil {
					return err
				}
				if err := recordMovement(s.parts.repo, tx, part, entity.MovementRestore, alloc.QuantityUsed,
					"RO", order.ID, order.OrderNumber, reason, userID); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		order.Status = entity.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancellationReason = reason
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return fmt.Errorf("更新工单失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.parts.invalidateAlerts(ctx)
	return order, nil
}

// MarkDelivered 交付工单，仅允许从 completed 进入
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (*entity.RepairOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusCompleted {
		return nil, ErrInvalidDeliveryState
	}
	now := time.Now()
	order.Status = entity.OrderStatusDelivered
	order.DeliveredAt = &now
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新工单失败: %w", err)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.RepairOrder, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, params repository.OrderListParams) ([]entity.RepairOrder, int64, error) {
	return s.repo.FindAll(ctx, params)
}

// generateOrderNumber 生成工单号 RO-{年}-{6位序号}，序号按年归零
func (s *OrderService) generateOrderNumber(tx *gorm.DB) (string, error) {
	year := time.Now().Year()
	seq, err := s.seqRepo.NextInTx(tx, fmt.Sprintf("RO-%d", year))
	if err != nil {
		return "", fmt.Errorf("生成工单号失败: %w", err)
	}
	return fmt.Sprintf("RO-%d-%06d", year, seq), nil
}

// resolveAssignee 解析并校验受理人。技师与内部员工互斥，
// 结构上只存在一个 (type, id) 对。
func (s *OrderService) resolveAssignee(ctx context.Context, input *AssigneeInput) (entity.Assignee, error) {
	if input == nil {
		return entity.Assignee{}, nil
	}
	switch input.Type {
	case entity.AssigneeTechnician:
		tech, err := s.techRepo.FindByID(ctx, input.ID)
		if err != nil || !tech.IsActive {
			return entity.Assignee{}, ErrAssigneeInvalid
		}
	case entity.AssigneeStaff:
		user, err := s.techRepo.FindUserByID(ctx, input.ID)
		if err != nil || !user.IsActive {
			return entity.Assignee{}, ErrAssigneeInvalid
		}
	default:
		return entity.Assignee{}, ErrAssigneeInvalid
	}
	return entity.Assignee{Type: input.Type, ID: input.ID}, nil
}

// attachServiceLines 创建服务行。同一次请求内服务不可重复，
// 首个服务记为工单的主服务，仅用于展示。
func attachServiceLines(tx *gorm.DB, order *entity.RepairOrder, inputs []ServiceLineInput) error {
	if len(inputs) == 0 {
		return ErrServiceNotFound
	}

	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		if seen[input.ServiceID] {
			return ErrDuplicateServiceLine
		}
		seen[input.ServiceID] = true
	}

	for i, input := range inputs {
		var svc entity.Service
		if err := tx.Where("id = ?", input.ServiceID).First(&svc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("读取服务失败: %w", err)
		}

		price := svc.BasePrice
		if input.Price != nil {
			price = decimal.NewFromFloat(*input.Price)
		}

		line := &entity.ServiceLine{
			ID:                uuid.New().String(),
			RepairOrderID:     order.ID,
			ServiceID:         svc.ID,
			Price:             price,
			EstimatedDuration: svc.EstimatedDuration,
			Status:            entity.LineStatusPending,
			Notes:             input.Notes,
		}
		if err := tx.Create(line).Error; err != nil {
			return fmt.Errorf("创建服务行失败: %w", err)
		}

		if i == 0 {
			order.PrimaryServiceID = svc.ID
		}
	}
	return nil
}

// allocateParts 创建配件占用并扣减库存。
// 零库存与余量不足分别报 ErrOutOfStock / ErrInsufficientStock。
func allocateParts(tx *gorm.DB, partRepo *repository.PartRepository, order *entity.RepairOrder, inputs []PartLineInput, userID string) error {
	for _, input := range inputs {
		part, err := lockPart(partRepo, tx, input.PartID)
		if err != nil {
			return err
		}
		if part.QuantityInStock == 0 {
			return ErrOutOfStock
		}
		if err := reservePart(tx, part, input.Quantity); err != nil {
			return err
		}

		unitPrice := decimal.NewFromFloat(input.UnitPrice)
		line := &entity.PartAllocation{
			ID:            uuid.New().String(),
			RepairOrderID: order.ID,
			PartID:        part.ID,
			QuantityUsed:  input.Quantity,
			UnitPrice:     unitPrice,
			TotalPrice:    unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
		}
		if err := tx.Create(line).Error; err != nil {
			return fmt.Errorf("创建配件行失败: %w", err)
		}
		if err := recordMovement(partRepo, tx, part, entity.MovementReserve, -input.Quantity,
			"RO", order.ID, order.OrderNumber, "", userID); err != nil {
			return err
		}
	}
	return nil
}

// updateOrderTotals 按服务行与配件行重算工单费用。
// labor_cost = Σ 服务行价格，parts_cost = Σ 配件行总价，
// total_cost 恒等于两者之和。
func updateOrderTotals(tx *gorm.DB, order *entity.RepairOrder) error {
	var lines []entity.ServiceLine
	if err := tx.Where("repair_order_id = ?", order.ID).Find(&lines).Error; err != nil {
		return fmt.Errorf("读取服务行失败: %w", err)
	}
	labor := decimal.Zero
	duration := 0
	for _, line := range lines {
		labor = labor.Add(line.Price)
		duration += line.EstimatedDuration
	}

	var allocs []entity.PartAllocation
	if err := tx.Where("repair_order_id = ?", order.ID).Find(&allocs).Error; err != nil {
		return fmt.Errorf("读取配件行失败: %w", err)
	}
	parts := decimal.Zero
	for _, alloc := range allocs {
		parts = parts.Add(alloc.TotalPrice)
	}

	order.LaborCost = labor
	order.PartsCost = parts
	order.TotalCost = labor.Add(parts)
	order.TotalEstimatedDuration = duration
	if duration > 0 {
		eta := time.Now().Add(time.Duration(duration) * time.Minute)
		order.EstimatedCompletion = &eta
	}

	// 预加载的关联行不可随 Save 写回，编辑场景下旧行已被拆除
	if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
		return fmt.Errorf("更新工单费用失败: %w", err)
	}
	return nil
}

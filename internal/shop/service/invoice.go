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

// InvoiceService 发票与收款服务。
// 收款写入与发票余额更新在同一事务内，发票行加行锁串行化并发收款。
type InvoiceService struct {
	repo      *repository.InvoiceRepository
	orderRepo *repository.OrderRepository
	seqRepo   *repository.SequenceRepository
	db        *gorm.DB
}

func NewInvoiceService(
	repo *repository.InvoiceRepository,
	orderRepo *repository.OrderRepository,
	seqRepo *repository.SequenceRepository,
	db *gorm.DB,
) *InvoiceService {
	return &InvoiceService{repo: repo, orderRepo: orderRepo, seqRepo: seqRepo, db: db}
}

// 默认付款期限
const defaultPaymentTermDays = 30

// GenerateFromOrder 按工单快照生成发票。幂等：
// 已存在发票时直接返回现有发票而不报错。
func (s *InvoiceService) GenerateFromOrder(ctx context.Context, orderID, userID string) (*entity.Invoice, error) {
	existing, err := s.repo.FindByOrderID(ctx, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusCompleted && order.Status != entity.OrderStatusDelivered {
		return nil, ErrOrderNotEligible
	}
	subtotal := order.LaborCost.Add(order.PartsCost)
	if !subtotal.GreaterThan(decimal.Zero) {
		return nil, ErrOrderNotEligible
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:             uuid.New().String(),
		RepairOrderID:  order.ID,
		CustomerID:     order.CustomerID,
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, defaultPaymentTermDays),
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		TotalAmount:    subtotal,
		AmountPaid:     decimal.Zero,
		BalanceDue:     subtotal,
		Status:         entity.InvoiceStatusPending,
		CreatedBy:      userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.generateInvoiceNumber(tx, now)
		if err != nil {
			return err
		}
		// 序列行锁串行化同周期开票，持锁后复查在用发票，
		// 并发生成同一工单的发票不会落下重行
		if err := ensureNoLiveInvoice(tx, order.ID); err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("创建发票失败: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvoiceAlreadyExists) {
			return s.repo.FindByOrderID(ctx, orderID)
		}
		return nil, err
	}
	return s.repo.FindByID(ctx, invoice.ID)
}

// ensureNoLiveInvoice 事务内复查工单是否已有在用发票。
// 作废的发票不占用工单，可以重新开票。
func ensureNoLiveInvoice(tx *gorm.DB, orderID string) error {
	var live int64
	if err := tx.Model(&entity.Invoice{}).
		Where("repair_order_id = ? AND deleted_at IS NULL", orderID).
		Count(&live).Error; err != nil {
		return fmt.Errorf("读取发票失败: %w", err)
	}
	if live > 0 {
		return ErrInvoiceAlreadyExists
	}
	return nil
}

// CreateInvoiceRequest 手工开票请求
type CreateInvoiceRequest struct {
	RepairOrderID  string  `json:"repair_order_id" binding:"required"`
	DiscountAmount float64 `json:"discount_amount" binding:"gte=0"`
	DueDate        string  `json:"due_date"`
	Notes          string  `json:"notes"`
}

// Create 手工开票。与 GenerateFromOrder 不同，
// 工单已有发票时显式报错而非返回现有发票。
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest, userID string) (*entity.Invoice, error) {
	if _, err := s.repo.FindByOrderID(ctx, req.RepairOrderID); err == nil {
		return nil, ErrInvoiceAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, req.RepairOrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusCompleted && order.Status != entity.OrderStatusDelivered {
		return nil, ErrOrderNotEligible
	}

	subtotal := order.LaborCost.Add(order.PartsCost)
	discount := decimal.NewFromFloat(req.DiscountAmount)
	total := subtotal.Sub(discount)
	if !total.GreaterThan(decimal.Zero) {
		return nil, ErrOrderNotEligible
	}

	now := time.Now()
	dueDate := now.AddDate(0, 0, defaultPaymentTermDays)
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("付款期限格式错误: %w", err)
		}
		dueDate = parsed
	}

	invoice := &entity.Invoice{
		ID:             uuid.New().String(),
		RepairOrderID:  order.ID,
		CustomerID:     order.CustomerID,
		IssueDate:      now,
		DueDate:        dueDate,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TotalAmount:    total,
		AmountPaid:     decimal.Zero,
		BalanceDue:     total,
		Status:         entity.InvoiceStatusPending,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.generateInvoiceNumber(tx, now)
		if err != nil {
			return err
		}
		if err := ensureNoLiveInvoice(tx, order.ID); err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("创建发票失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, invoice.ID)
}

// AddPaymentRequest 收款请求
type AddPaymentRequest struct {
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod   string  `json:"payment_method" binding:"required,oneof=cash card bank_transfer check"`
	PaymentDate     string  `json:"payment_date"`
	ReferenceNumber string  `json:"reference_number"`
	Notes           string  `json:"notes"`
}

// AddPayment 登记收款。超出余额的收款整笔拒绝，
// 发票保持原状；余额与状态由全部收款记录重算得出。
func (s *InvoiceService) AddPayment(ctx context.Context, invoiceID string, req AddPaymentRequest, userID string) (*entity.Invoice, error) {
	amount := decimal.NewFromFloat(req.Amount)

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("收款日期格式错误: %w", err)
		}
		paymentDate = parsed
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice entity.Invoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND deleted_at IS NULL", invoiceID).
			First(&invoice).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("读取发票失败: %w", err)
		}
		if invoice.Status == entity.InvoiceStatusCancelled {
			return ErrInvoiceCancelled
		}
		if amount.GreaterThan(invoice.BalanceDue) {
			return ErrExceedsBalance
		}

		payment := &entity.Payment{
			ID:              uuid.New().String(),
			InvoiceID:       invoice.ID,
			Amount:          amount,
			PaymentMethod:   req.PaymentMethod,
			PaymentDate:     paymentDate,
			Notes:           req.Notes,
			ReferenceNumber: req.ReferenceNumber,
			CreatedBy:       userID,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("创建收款记录失败: %w", err)
		}

		return recalcInvoice(tx, &invoice, req.PaymentMethod, paymentDate)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, invoiceID)
}

// recalcInvoice 按全部收款记录重算发票余额与状态
func recalcInvoice(tx *gorm.DB, invoice *entity.Invoice, method string, paidAt time.Time) error {
	var payments []entity.Payment
	if err := tx.Where("invoice_id = ?", invoice.ID).Find(&payments).Error; err != nil {
		return fmt.Errorf("读取收款记录失败: %w", err)
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	invoice.AmountPaid = paid
	invoice.BalanceDue = invoice.TotalAmount.Sub(paid)
	invoice.PaymentMethod = method
	if invoice.BalanceDue.LessThanOrEqual(decimal.Zero) {
		invoice.Status = entity.InvoiceStatusPaid
		invoice.PaidDate = &paidAt
	} else if paid.GreaterThan(decimal.Zero) {
		invoice.Status = entity.InvoiceStatusPartiallyPaid
	}

	if err := tx.Save(invoice).Error; err != nil {
		return fmt.Errorf("更新发票失败: %w", err)
	}
	return nil
}

// Get 读取发票，读取时派生逾期状态
func (s *InvoiceService) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.deriveOverdue(ctx, invoice)
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, params repository.InvoiceListParams) ([]entity.Invoice, int64, error) {
	invoices, total, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	for i := range invoices {
		s.deriveOverdue(ctx, &invoices[i])
	}
	return invoices, total, nil
}

// deriveOverdue 逾期属于派生状态：pending 且超过付款期限即转 overdue。
// 落库失败不影响读取结果，状态下次读取时再补写。
func (s *InvoiceService) deriveOverdue(ctx context.Context, invoice *entity.Invoice) {
	if invoice.IsOverdue(time.Now()) {
		invoice.Status = entity.InvoiceStatusOverdue
		_ = s.repo.Update(ctx, invoice)
	}
}

// Delete 作废发票。已结清的发票不允许删除。
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if invoice.IsFullyPaid() {
		return ErrInvoicePaid
	}
	return s.repo.Delete(ctx, id)
}

// generateInvoiceNumber 生成发票号 INV-{年月}-{4位序号}，序号按月归零
func (s *InvoiceService) generateInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	period := now.Format("200601")
	seq, err := s.seqRepo.NextInTx(tx, fmt.Sprintf("INV-%s", period))
	if err != nil {
		return "", fmt.Errorf("生成发票号失败: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", period, seq), nil
}

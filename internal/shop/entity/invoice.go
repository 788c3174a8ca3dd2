package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus 发票状态
const (
	InvoiceStatusPending       = "pending"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusOverdue       = "overdue"
	InvoiceStatusCancelled     = "cancelled"
)

// PaymentMethod 收款方式
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentBankTransfer = "bank_transfer"
	PaymentCheck        = "check"
)

// Invoice 维修发票，一张工单至多一张发票
type Invoice struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	InvoiceNumber  string          `json:"invoice_number" gorm:"size:50;not null;uniqueIndex"`
	// 一张工单至多一张在用发票，由服务层在开票事务内保证；
	// 作废（软删除）的发票不占用工单，不能用列级唯一索引
	RepairOrderID  string          `json:"repair_order_id" gorm:"size:36;not null;index"`
	CustomerID     string          `json:"customer_id" gorm:"size:36;not null;index"`
	IssueDate      time.Time       `json:"issue_date" gorm:"not null"`
	DueDate        time.Time       `json:"due_date" gorm:"not null"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	AmountPaid     decimal.Decimal `json:"amount_paid" gorm:"type:decimal(12,2);not null;default:0"`
	BalanceDue     decimal.Decimal `json:"balance_due" gorm:"type:decimal(12,2);not null;default:0"`
	Status         string          `json:"status" gorm:"size:20;not null;default:pending;index"`
	PaymentMethod  string          `json:"payment_method" gorm:"size:20"`
	PaidDate       *time.Time      `json:"paid_date"`
	Notes          string          `json:"notes" gorm:"type:text"`
	CreatedBy      string          `json:"created_by" gorm:"size:36;not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at" gorm:"index"`

	RepairOrder *RepairOrder `json:"repair_order,omitempty" gorm:"foreignKey:RepairOrderID"`
	Customer    *Customer    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Payments    []Payment    `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string {
	return "shop_invoices"
}

// IsFullyPaid 是否已结清
func (i *Invoice) IsFullyPaid() bool {
	return i.Status == InvoiceStatusPaid || i.BalanceDue.LessThanOrEqual(decimal.Zero)
}

// IsPartiallyPaid 是否部分支付
func (i *Invoice) IsPartiallyPaid() bool {
	return i.Status == InvoiceStatusPartiallyPaid &&
		i.AmountPaid.GreaterThan(decimal.Zero) &&
		i.BalanceDue.GreaterThan(decimal.Zero)
}

// IsOverdue 是否逾期未付
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusPending && i.DueDate.Before(now)
}

// Payment 收款记录，只追加不修改
type Payment struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	InvoiceID       string          `json:"invoice_id" gorm:"size:36;not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `json:"payment_method" gorm:"size:20;not null"`
	PaymentDate     time.Time       `json:"payment_date" gorm:"not null"`
	Notes           string          `json:"notes" gorm:"size:500"`
	ReferenceNumber string          `json:"reference_number" gorm:"size:100"`
	CreatedBy       string          `json:"created_by" gorm:"size:36"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Payment) TableName() string {
	return "shop_invoice_payments"
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 维修工单状态
const (
	OrderStatusPending      = "pending"
	OrderStatusInProgress   = "in_progress"
	OrderStatusWaitingParts = "waiting_parts"
	OrderStatusCompleted    = "completed"
	OrderStatusCancelled    = "cancelled"
	OrderStatusDelivered    = "delivered"
)

// OrderPriority 工单优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidOrderTransitions 合法的工单状态流转。
// cancelled 与 delivered 为终态；取消只能走 Cancel 操作，
// delivered 只能从 completed 进入。
var ValidOrderTransitions = map[string][]string{
	OrderStatusPending:      {OrderStatusInProgress, OrderStatusWaitingParts, OrderStatusCompleted},
	OrderStatusInProgress:   {OrderStatusPending, OrderStatusWaitingParts, OrderStatusCompleted},
	OrderStatusWaitingParts: {OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted},
	OrderStatusCompleted:    {OrderStatusDelivered},
}

// AssigneeType 工单受理人类型
const (
	AssigneeTechnician = "technician"
	AssigneeStaff      = "staff"
)

// Assignee 工单受理人。Type 为空表示未指派，
// 同一时刻只可能指向技师或内部员工其一。
type Assignee struct {
	Type string `json:"type" gorm:"column:assignee_type;size:20"`
	ID   string `json:"id" gorm:"column:assignee_id;size:36"`
}

// IsAssigned 是否已指派
func (a Assignee) IsAssigned() bool {
	return a.Type != "" && a.ID != ""
}

// RepairOrder 维修工单
type RepairOrder struct {
	ID                     string          `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber            string          `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	CustomerID             string          `json:"customer_id" gorm:"size:36;not null;index"`
	DeviceID               string          `json:"device_id" gorm:"size:36;not null;index"`
	PrimaryServiceID       string          `json:"primary_service_id" gorm:"size:36"` // 仅用于列表展示
	Assignee               Assignee        `json:"assignee" gorm:"embedded"`
	Status                 string          `json:"status" gorm:"size:20;not null;default:pending;index"`
	Priority               string          `json:"priority" gorm:"size:20;not null;default:medium"`
	IssueDescription       string          `json:"issue_description" gorm:"type:text;not null"`
	Diagnosis              string          `json:"diagnosis" gorm:"type:text"`
	Solution               string          `json:"solution" gorm:"type:text"`
	LaborCost              decimal.Decimal `json:"labor_cost" gorm:"type:decimal(12,2);not null;default:0"`
	PartsCost              decimal.Decimal `json:"parts_cost" gorm:"type:decimal(12,2);not null;default:0"`
	TotalCost              decimal.Decimal `json:"total_cost" gorm:"type:decimal(12,2);not null;default:0"`
	TotalEstimatedDuration int             `json:"total_estimated_duration" gorm:"not null;default:0"` // 分钟
	EstimatedCompletion    *time.Time      `json:"estimated_completion"`
	ActualCompletion       *time.Time      `json:"actual_completion"`
	DeliveredAt            *time.Time      `json:"delivered_at"`
	CancelledAt            *time.Time      `json:"cancelled_at"`
	CancellationReason     string          `json:"cancellation_reason" gorm:"size:1000"`
	CustomerNotes          string          `json:"customer_notes" gorm:"type:text"`
	InternalNotes          string          `json:"internal_notes" gorm:"type:text"`
	CreatedBy              string          `json:"created_by" gorm:"size:36;not null"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	DeletedAt              *time.Time      `json:"deleted_at" gorm:"index"`

	Customer *Customer        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Device   *Device          `json:"device,omitempty" gorm:"foreignKey:DeviceID"`
	Services []ServiceLine    `json:"services,omitempty" gorm:"foreignKey:RepairOrderID"`
	Parts    []PartAllocation `json:"parts,omitempty" gorm:"foreignKey:RepairOrderID"`
	Invoice  *Invoice         `json:"invoice,omitempty" gorm:"foreignKey:RepairOrderID"`
}

func (RepairOrder) TableName() string {
	return "shop_repair_orders"
}

// CanTransitionTo 是否允许流转到目标状态
func (o *RepairOrder) CanTransitionTo(status string) bool {
	for _, target := range ValidOrderTransitions[o.Status] {
		if target == status {
			return true
		}
	}
	return false
}

// CanBeCancelled 是否允许取消
func (o *RepairOrder) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusWaitingParts:
		return true
	}
	return false
}

// ServiceLineStatus 服务行状态
const (
	LineStatusPending    = "pending"
	LineStatusInProgress = "in_progress"
	LineStatusCompleted  = "completed"
	LineStatusCancelled  = "cancelled"
)

// ServiceLine 工单服务行，同一工单内服务不可重复
type ServiceLine struct {
	ID                string          `json:"id" gorm:"primaryKey;size:36"`
	RepairOrderID     string          `json:"repair_order_id" gorm:"size:36;not null;uniqueIndex:idx_order_service"`
	ServiceID         string          `json:"service_id" gorm:"size:36;not null;uniqueIndex:idx_order_service"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	EstimatedDuration int             `json:"estimated_duration" gorm:"not null;default:0"` // 分钟
	Status            string          `json:"status" gorm:"size:20;not null;default:pending"`
	Notes             string          `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (ServiceLine) TableName() string {
	return "shop_repair_order_services"
}

// PartAllocation 工单配件占用行
type PartAllocation struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	RepairOrderID string          `json:"repair_order_id" gorm:"size:36;not null;index"`
	PartID        string          `json:"part_id" gorm:"size:36;not null;index"`
	QuantityUsed  int             `json:"quantity_used" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (PartAllocation) TableName() string {
	return "shop_repair_order_parts"
}

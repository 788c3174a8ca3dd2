package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartStatus 配件采购状态
const (
	PartStatusOrdered   = "ordered"    // 已下单
	PartStatusInTransit = "in_transit" // 在途
	PartStatusInStock   = "in_stock"   // 已入库
)

// ValidPartTransitions 合法的配件状态流转
var ValidPartTransitions = map[string][]string{
	PartStatusOrdered:   {PartStatusInTransit, PartStatusInStock},
	PartStatusInTransit: {PartStatusInStock},
	PartStatusInStock:   {PartStatusOrdered}, // 补货
}

// Part 配件库存目录项
type Part struct {
	ID                  string          `json:"id" gorm:"primaryKey;size:36"`
	PartNumber          string          `json:"part_number" gorm:"size:64;not null;uniqueIndex"`
	Name                string          `json:"name" gorm:"size:128;not null"`
	Description         string          `json:"description" gorm:"type:text"`
	Category            string          `json:"category" gorm:"size:50"`
	CostPrice           decimal.Decimal `json:"cost_price" gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice        decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null;default:0"`
	QuantityInStock     int             `json:"quantity_in_stock" gorm:"not null;default:0"`
	MinimumStockLevel   int             `json:"minimum_stock_level" gorm:"not null;default:0"`
	Supplier            string          `json:"supplier" gorm:"size:128"`
	IsActive            bool            `json:"is_active" gorm:"not null;default:true"`
	Status              string          `json:"status" gorm:"size:20;not null;default:in_stock"`
	OrderDate           *time.Time      `json:"order_date"`
	ExpectedArrivalDate *time.Time      `json:"expected_arrival_date"`
	ReceivedDate        *time.Time      `json:"received_date"`
	StatusNotes         string          `json:"status_notes" gorm:"size:500"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           *time.Time      `json:"deleted_at" gorm:"index"`
}

func (Part) TableName() string {
	return "shop_parts"
}

// IsLowStock 库存是否低于告警线
func (p *Part) IsLowStock() bool {
	return p.QuantityInStock <= p.MinimumStockLevel
}

// CanTransitionTo 是否允许流转到目标状态
func (p *Part) CanTransitionTo(status string) bool {
	for _, target := range ValidPartTransitions[p.Status] {
		if target == status {
			return true
		}
	}
	return false
}

// MovementType 库存变动类型
const (
	MovementReserve = "RESERVE" // 工单占用出库
	MovementRestore = "RESTORE" // 取消工单回库
	MovementAdjust  = "ADJUST"  // 人工调整
)

// StockMovement 库存变动流水，只追加不修改
type StockMovement struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	PartID        string          `json:"part_id" gorm:"size:36;not null;index"`
	PartNumber    string          `json:"part_number" gorm:"size:64"`
	MovementType  string          `json:"movement_type" gorm:"size:20;not null"`
	Quantity      int             `json:"quantity" gorm:"not null"` // 正=入库，负=出库
	UnitCost      decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2);default:0"`
	ReferenceType string          `json:"reference_type" gorm:"size:20;not null"` // RO, ADJUST
	ReferenceID   string          `json:"reference_id" gorm:"size:36"`
	ReferenceCode string          `json:"reference_code" gorm:"size:50"`
	Notes         string          `json:"notes" gorm:"type:text"`
	CreatedBy     string          `json:"created_by" gorm:"size:36"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (StockMovement) TableName() string {
	return "shop_stock_movements"
}

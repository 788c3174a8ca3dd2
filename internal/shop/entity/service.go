package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service 维修服务目录项
type Service struct {
	ID                string          `json:"id" gorm:"primaryKey;size:36"`
	Name              string          `json:"name" gorm:"size:128;not null"`
	Description       string          `json:"description" gorm:"type:text"`
	Category          string          `json:"category" gorm:"size:50"`
	BasePrice         decimal.Decimal `json:"base_price" gorm:"type:decimal(12,2);not null;default:0"`
	EstimatedDuration int             `json:"estimated_duration" gorm:"not null;default:0"` // 分钟
	IsActive          bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         *time.Time      `json:"deleted_at" gorm:"index"`
}

func (Service) TableName() string {
	return "shop_services"
}

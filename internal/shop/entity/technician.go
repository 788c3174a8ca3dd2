package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Technician 维修技师
type Technician struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	UserID         string          `json:"user_id" gorm:"size:36;not null;uniqueIndex"`
	EmployeeID     string          `json:"employee_id" gorm:"size:50;not null;uniqueIndex"`
	Phone          string          `json:"phone" gorm:"size:32"`
	Specialization string          `json:"specialization" gorm:"size:100"`
	HourlyRate     decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(12,2);default:0"`
	IsActive       bool            `json:"is_active" gorm:"not null;default:true"`
	Notes          string          `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Technician) TableName() string {
	return "shop_technicians"
}

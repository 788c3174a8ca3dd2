package entity

import (
	"time"
)

// Customer 客户
type Customer struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	FirstName string     `json:"first_name" gorm:"size:100;not null"`
	LastName  string     `json:"last_name" gorm:"size:100;not null"`
	Phone     string     `json:"phone" gorm:"size:32"`
	Address   string     `json:"address" gorm:"size:255"`
	City      string     `json:"city" gorm:"size:100"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Devices []Device `json:"devices,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Customer) TableName() string {
	return "shop_customers"
}

// FullName 客户全名
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

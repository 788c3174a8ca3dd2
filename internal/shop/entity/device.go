package entity

import (
	"time"
)

// Device 客户送修设备
type Device struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	CustomerID     string     `json:"customer_id" gorm:"size:36;not null;index"`
	Brand          string     `json:"brand" gorm:"size:100;not null"`
	Model          string     `json:"model" gorm:"size:100;not null"`
	SerialNumber   string     `json:"serial_number" gorm:"size:100"`
	IMEI           string     `json:"imei" gorm:"size:32"`
	Year           int        `json:"year"`
	Color          string     `json:"color" gorm:"size:50"`
	ConditionNotes string     `json:"condition_notes" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at" gorm:"index"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Device) TableName() string {
	return "shop_devices"
}

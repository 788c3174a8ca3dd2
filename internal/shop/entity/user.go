package entity

import (
	"time"
)

// UserRole 用户角色
const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleTechnician = "technician"
)

// User 系统用户
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Name      string     `json:"name" gorm:"size:100;not null"`
	Email     string     `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Role      string     `json:"role" gorm:"size:20;not null;default:staff"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (User) TableName() string {
	return "shop_users"
}

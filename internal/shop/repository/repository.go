package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Customer   *CustomerRepository
	Technician *TechnicianRepository
	Service    *ServiceRepository
	Part       *PartRepository
	Order      *OrderRepository
	Invoice    *InvoiceRepository
	Sequence   *SequenceRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer:   NewCustomerRepository(db),
		Technician: NewTechnicianRepository(db),
		Service:    NewServiceRepository(db),
		Part:       NewPartRepository(db),
		Order:      NewOrderRepository(db),
		Invoice:    NewInvoiceRepository(db),
		Sequence:   NewSequenceRepository(db),
	}
}

package service

import (
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services 业务服务集合
type Services struct {
	Catalog *CatalogService
	Part    *PartService
	Order   *OrderService
	Invoice *InvoiceService
}

// NewServices 创建业务服务集合，rdb 可为 nil（告警缓存退化为直查）
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client) *Services {
	parts := NewPartService(repos.Part, db, rdb)
	return &Services{
		Catalog: NewCatalogService(repos.Customer, repos.Technician, repos.Service),
		Part:    parts,
		Order: NewOrderService(
			repos.Order,
			repos.Customer,
			repos.Service,
			repos.Technician,
			repos.Sequence,
			parts,
			db,
		),
		Invoice: NewInvoiceService(repos.Invoice, repos.Order, repos.Sequence, db),
	}
}

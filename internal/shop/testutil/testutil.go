package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an isolated in-memory database per test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SeedUser creates an active staff user.
func SeedUser(t *testing.T, db *gorm.DB, name string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    uuid.New().String() + "@test.local",
		Role:     entity.RoleStaff,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedTechnician creates an active technician backed by a user.
func SeedTechnician(t *testing.T, db *gorm.DB, name string) *entity.Technician {
	t.Helper()
	user := SeedUser(t, db, name)
	tech := &entity.Technician{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		EmployeeID: "EMP-" + uuid.New().String()[:8],
		IsActive:   true,
	}
	if err := db.Create(tech).Error; err != nil {
		t.Fatalf("seed technician: %v", err)
	}
	return tech
}

// SeedCustomer creates a customer with one device.
func SeedCustomer(t *testing.T, db *gorm.DB) (*entity.Customer, *entity.Device) {
	t.Helper()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Phone:     "0917-000-0000",
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	device := &entity.Device{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Brand:      "Apple",
		Model:      "iPhone 13",
	}
	if err := db.Create(device).Error; err != nil {
		t.Fatalf("seed device: %v", err)
	}
	return customer, device
}

// SeedService creates an active catalog service.
func SeedService(t *testing.T, db *gorm.DB, name string, price float64, duration int) *entity.Service {
	t.Helper()
	svc := &entity.Service{
		ID:                uuid.New().String(),
		Name:              name,
		BasePrice:         decimal.NewFromFloat(price),
		EstimatedDuration: duration,
		IsActive:          true,
	}
	if err := db.Create(svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return svc
}

// SeedPart creates an active part with the given stock.
func SeedPart(t *testing.T, db *gorm.DB, partNumber string, stock, minLevel int) *entity.Part {
	t.Helper()
	part := &entity.Part{
		ID:                uuid.New().String(),
		PartNumber:        partNumber,
		Name:              "Part " + partNumber,
		CostPrice:         decimal.NewFromFloat(10),
		SellingPrice:      decimal.NewFromFloat(25),
		QuantityInStock:   stock,
		MinimumStockLevel: minLevel,
		IsActive:          true,
		Status:            entity.PartStatusInStock,
	}
	if err := db.Create(part).Error; err != nil {
		t.Fatalf("seed part: %v", err)
	}
	return part
}

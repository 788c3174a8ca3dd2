package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&User{},
		&Customer{},
		&Device{},
		&Technician{},
		&Service{},

		// 库存
		&Part{},
		&StockMovement{},

		// 维修工单
		&RepairOrder{},
		&ServiceLine{},
		&PartAllocation{},

		// 财务
		&Invoice{},
		&Payment{},

		// 编号序列
		&Sequence{},
	)
}

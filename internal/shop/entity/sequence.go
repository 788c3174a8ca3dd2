package entity

// Sequence 按周期分段的编号计数器，
// key 形如 RO-2026 / INV-202608。
type Sequence struct {
	Key   string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string {
	return "shop_sequences"
}

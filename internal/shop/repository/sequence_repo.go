package repository

import (
	"context"
	"errors"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository 编号序列仓库。
// 每个周期一行计数器，在行锁下自增，并发创建不会发出重号。
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next 取下一个序号（独立事务）
func (r *SequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := r.NextInTx(tx, key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

// NextInTx 在外层事务内取下一个序号
func (r *SequenceRepository) NextInTx(tx *gorm.DB, key string) (int64, error) {
	var seq entity.Sequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key = ?", key).
		First(&seq).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		seq = entity.Sequence{Key: key, Value: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.Value, nil
	}

	seq.Value++
	if err := tx.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

package repository

import (
	"errors"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// NextTx 在既有事务内事务化取号：对计数器行加锁后自增并返回新值。
// 并发启动不会取到重复序号；随事务回滚，成功提交的序号保持连续。
func (r *CounterRepository) NextTx(tx *gorm.DB, key string) (int64, error) {
	var counter entity.SequenceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key = ?", key).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = entity.SequenceCounter{Key: key}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
			return 0, err
		}
		// 可能被并发创建，重读加锁
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}
	counter.Value++
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// Next 独立事务取号
func (r *CounterRepository) Next(key string) (int64, error) {
	var value int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		v, err := r.NextTx(tx, key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}

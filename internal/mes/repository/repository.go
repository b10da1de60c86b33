package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories MES仓库集合
type Repositories struct {
	Plan       *PlanRepository
	Worker     *WorkerRepository
	Station    *StationRepository
	Assignment *AssignmentRepository
	Stock      *StockRepository
	Counter    *CounterRepository
}

// NewRepositories 创建MES仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Plan:       NewPlanRepository(db),
		Worker:     NewWorkerRepository(db),
		Station:    NewStationRepository(db),
		Assignment: NewAssignmentRepository(db),
		Stock:      NewStockRepository(db),
		Counter:    NewCounterRepository(db),
	}
}

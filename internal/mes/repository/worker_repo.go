package repository

import (
	"errors"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Create(worker *entity.Worker) error {
	return r.db.Create(worker).Error
}

// GetByID 获取工人及其资质、工站绑定、缺勤与个人排班
func (r *WorkerRepository) GetByID(id string) (*entity.Worker, error) {
	var worker entity.Worker
	err := r.db.Preload("Operations").
		Preload("Stations").
		Preload("Absences").
		Preload("Overrides").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&worker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

// ListActive 获取全部在职工人（含子表，排程匹配用）
func (r *WorkerRepository) ListActive() ([]entity.Worker, error) {
	var workers []entity.Worker
	err := r.db.Preload("Operations").
		Preload("Stations").
		Preload("Absences").
		Preload("Overrides").
		Where("status = ? AND deleted_at IS NULL", entity.WorkerStatusActive).
		Order("code").
		Find(&workers).Error
	return workers, err
}

// ListShiftBlocks 获取指定通道的公司级班次时段
func (r *WorkerRepository) ListShiftBlocks(lane string) ([]entity.ShiftBlock, error) {
	var blocks []entity.ShiftBlock
	err := r.db.Where("lane = ?", lane).Order("start_minute").Find(&blocks).Error
	return blocks, err
}

func (r *WorkerRepository) CreateShiftBlock(block *entity.ShiftBlock) error {
	return r.db.Create(block).Error
}

type WorkerListParams struct {
	Lane    string
	Keyword string
	Page    int
	Size    int
}

func (r *WorkerRepository) List(params WorkerListParams) ([]entity.Worker, int64, error) {
	query := r.db.Model(&entity.Worker{}).Where("deleted_at IS NULL")
	if params.Lane != "" {
		query = query.Where("lane = ?", params.Lane)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var workers []entity.Worker
	err := query.Order("code").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&workers).Error
	return workers, total, err
}

package repository

import (
	"errors"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(plan *entity.ProductionPlan) error {
	return r.db.Create(plan).Error
}

// GetByID 获取计划及其节点、物料、工站、依赖边
func (r *PlanRepository) GetByID(id string) (*entity.ProductionPlan, error) {
	var plan entity.ProductionPlan
	err := r.db.Preload("Nodes").
		Preload("Nodes.Materials").
		Preload("Nodes.Stations").
		Preload("Nodes.Dependencies").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) Update(plan *entity.ProductionPlan) error {
	return r.db.Save(plan).Error
}

func (r *PlanRepository) GetNode(id string) (*entity.PlanNode, error) {
	var node entity.PlanNode
	err := r.db.Preload("Materials").Where("id = ?", id).First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// CountOpenNodes 统计计划内未完工节点数（完工级联判定用，事务内调用）
func (r *PlanRepository) CountOpenNodes(tx *gorm.DB, planID string) (int64, error) {
	var count int64
	err := tx.Model(&entity.PlanNode{}).
		Where("plan_id = ? AND status <> ?", planID, entity.NodeStatusCompleted).
		Count(&count).Error
	return count, err
}

// GetStatus 轻量读取计划状态（启动过程中的暂停检查用）
func (r *PlanRepository) GetStatus(planID string) (string, error) {
	var plan entity.ProductionPlan
	err := r.db.Select("status").Where("id = ?", planID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return plan.Status, nil
}

// ListOperations 获取工序主数据（效率因子解析用）
func (r *PlanRepository) ListOperations() ([]entity.Operation, error) {
	var ops []entity.Operation
	err := r.db.Find(&ops).Error
	return ops, err
}

type PlanListParams struct {
	Status  string
	Keyword string
	Page    int
	Size    int
}

func (r *PlanRepository) List(params PlanListParams) ([]entity.ProductionPlan, int64, error) {
	query := r.db.Model(&entity.ProductionPlan{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("plan_code ILIKE ? OR title ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var plans []entity.ProductionPlan
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&plans).Error
	return plans, total, err
}

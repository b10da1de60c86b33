package repository

import (
	"errors"
	"time"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(a *entity.Assignment) error {
	return r.db.Create(a).Error
}

func (r *AssignmentRepository) GetByID(id string) (*entity.Assignment, error) {
	var a entity.Assignment
	err := r.db.Preload("Scraps").Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) Update(a *entity.Assignment) error {
	return r.db.Save(a).Error
}

// ListByPlan 获取计划的全部派工单
func (r *AssignmentRepository) ListByPlan(planID string) ([]entity.Assignment, error) {
	var items []entity.Assignment
	err := r.db.Where("plan_id = ?", planID).Order("worker_id, sequence_number").Find(&items).Error
	return items, err
}

// CountOpenByNode 统计节点未完工派工单数（完工级联判定用，事务内调用）
func (r *AssignmentRepository) CountOpenByNode(tx *gorm.DB, nodeID string) (int64, error) {
	var count int64
	err := tx.Model(&entity.Assignment{}).
		Where("node_id = ? AND status <> ?", nodeID, entity.AssignmentStatusCompleted).
		Count(&count).Error
	return count, err
}

// MaxEstimatedEnd 工人现有派工队列的最晚预计结束时间，
// 恢复启动时据此重算排程游标，不回放历史。
func (r *AssignmentRepository) MaxEstimatedEnd(workerID string) (*time.Time, error) {
	var result struct{ MaxEnd *time.Time }
	err := r.db.Model(&entity.Assignment{}).
		Select("MAX(estimated_end) as max_end").
		Where("worker_id = ? AND status <> ?", workerID, entity.AssignmentStatusCompleted).
		Scan(&result).Error
	return result.MaxEnd, err
}

// AppendHistory 追加状态流转台账，与状态变更同事务提交
func (r *AssignmentRepository) AppendHistory(tx *gorm.DB, h *entity.AssignmentStatusHistory) error {
	return tx.Create(h).Error
}

func (r *AssignmentRepository) ListHistory(assignmentID string) ([]entity.AssignmentStatusHistory, error) {
	var items []entity.AssignmentStatusHistory
	err := r.db.Where("assignment_id = ?", assignmentID).Order("created_at").Find(&items).Error
	return items, err
}

// UpsertScrap 增减报废计数器，数量不允许为负
func (r *AssignmentRepository) UpsertScrap(assignmentID, kind, materialCode string, delta float64) (*entity.AssignmentScrap, error) {
	var scrap entity.AssignmentScrap
	err := r.db.Where("assignment_id = ? AND kind = ? AND material_code = ?",
		assignmentID, kind, materialCode).First(&scrap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		scrap = entity.AssignmentScrap{
			AssignmentID: assignmentID,
			Kind:         kind,
			MaterialCode: materialCode,
		}
	} else if err != nil {
		return nil, err
	}
	if scrap.Quantity+delta < 0 {
		return nil, errors.New("报废数量不能为负")
	}
	scrap.Quantity += delta
	if scrap.ID == "" {
		if err := r.db.Create(&scrap).Error; err != nil {
			return nil, err
		}
	} else if err := r.db.Save(&scrap).Error; err != nil {
		return nil, err
	}
	return &scrap, nil
}

type AssignmentListParams struct {
	PlanID   string
	WorkerID string
	Status   string
	Page     int
	Size     int
}

func (r *AssignmentRepository) List(params AssignmentListParams) ([]entity.Assignment, int64, error) {
	query := r.db.Model(&entity.Assignment{})
	if params.PlanID != "" {
		query = query.Where("plan_id = ?", params.PlanID)
	}
	if params.WorkerID != "" {
		query = query.Where("worker_id = ?", params.WorkerID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.Assignment
	err := query.Order("estimated_start").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&items).Error
	return items, total, err
}

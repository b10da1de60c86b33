package service

import (
	"fmt"
	"time"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExecutionService 派工单执行上报：开工、暂停、恢复、完工、报废。
// 完工的状态事务与记账事务分开提交，记账失败由对账兜底补录。
type ExecutionService struct {
	repos  *repository.Repositories
	db     *gorm.DB
	ledger *LedgerService
	logger *zap.Logger
}

func NewExecutionService(repos *repository.Repositories, db *gorm.DB, ledger *LedgerService, logger *zap.Logger) *ExecutionService {
	return &ExecutionService{
		repos:  repos,
		db:     db,
		ledger: ledger,
		logger: logger,
	}
}

func (s *ExecutionService) GetByID(id string) (*entity.Assignment, error) {
	return s.repos.Assignment.GetByID(id)
}

func (s *ExecutionService) List(params repository.AssignmentListParams) ([]entity.Assignment, int64, error) {
	return s.repos.Assignment.List(params)
}

func (s *ExecutionService) ListHistory(assignmentID string) ([]entity.AssignmentStatusHistory, error) {
	return s.repos.Assignment.ListHistory(assignmentID)
}

// transition 状态流转公共路径：校验前置状态、改状态、记台账
func (s *ExecutionService) transition(tx *gorm.DB, a *entity.Assignment, from []string, to, userID string) error {
	allowed := false
	for _, f := range from {
		if a.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("派工单状态 %s 不允许流转到 %s", a.Status, to)
	}
	prev := a.Status
	a.Status = to
	if err := tx.Save(a).Error; err != nil {
		return fmt.Errorf("更新派工单状态失败: %w", err)
	}
	return s.repos.Assignment.AppendHistory(tx, &entity.AssignmentStatusHistory{
		AssignmentID: a.ID,
		FromStatus:   prev,
		ToStatus:     to,
		ChangedBy:    userID,
	})
}

// Start 开工：派工单转执行中，子工位转使用中，
// 节点首个开工时同步节点状态
func (s *ExecutionService) Start(assignmentID, userID string) (*entity.Assignment, error) {
	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("派工单不存在: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		a.StartedAt = &now
		if err := s.transition(tx, a, []string{entity.AssignmentStatusQueued}, entity.AssignmentStatusInProgress, userID); err != nil {
			return err
		}

		if err := tx.Model(&entity.Substation{}).
			Where("id = ? AND current_assignment_id = ?", a.SubstationID, a.ID).
			Update("status", entity.SubstationStatusInUse).Error; err != nil {
			return fmt.Errorf("更新子工位状态失败: %w", err)
		}

		var node entity.PlanNode
		if err := tx.First(&node, "id = ?", a.NodeID).Error; err != nil {
			return fmt.Errorf("读取节点失败: %w", err)
		}
		if node.Status == entity.NodeStatusQueued || node.Status == entity.NodeStatusPending {
			updates := map[string]interface{}{"status": entity.NodeStatusInProgress}
			if node.StartedAt == nil {
				updates["started_at"] = now
			}
			if err := tx.Model(&entity.PlanNode{}).Where("id = ?", node.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("更新节点状态失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Pause 暂停执行，不释放子工位
func (s *ExecutionService) Pause(assignmentID, userID string) (*entity.Assignment, error) {
	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("派工单不存在: %w", err)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, a, []string{entity.AssignmentStatusInProgress}, entity.AssignmentStatusPaused, userID)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Resume 恢复执行
func (s *ExecutionService) Resume(assignmentID, userID string) (*entity.Assignment, error) {
	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("派工单不存在: %w", err)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, a, []string{entity.AssignmentStatusPaused}, entity.AssignmentStatusInProgress, userID)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CompleteRequest 完工上报
type CompleteRequest struct {
	ActualQty float64 `json:"actual_qty" binding:"required,gte=0"`
	DefectQty float64 `json:"defect_qty" binding:"gte=0"`
	Notes     string  `json:"notes"`
}

// Complete 完工：先提交状态事务（完工、释放子工位、节点与计划汇总），
// 再提交记账事务（实耗、冲销、产出入库）。两个事务之间崩溃
// 留下的缺口由对账补录，所以记账失败只告警不回滚完工。
func (s *ExecutionService) Complete(assignmentID string, req CompleteRequest, userID string) (*entity.Assignment, error) {
	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("派工单不存在: %w", err)
	}
	node, err := s.repos.Plan.GetNode(a.NodeID)
	if err != nil {
		return nil, fmt.Errorf("读取节点失败: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		a.CompletedAt = &now
		a.ActualQty = req.ActualQty
		a.DefectQty = req.DefectQty
		if req.Notes != "" {
			a.Notes = req.Notes
		}
		if err := s.transition(tx, a,
			[]string{entity.AssignmentStatusInProgress, entity.AssignmentStatusPaused},
			entity.AssignmentStatusCompleted, userID); err != nil {
			return err
		}

		// 释放子工位供后续波次复用
		if err := s.repos.Station.ReleaseSubstation(tx, a.SubstationID, a.ID); err != nil {
			return fmt.Errorf("释放子工位失败: %w", err)
		}

		// 节点产量累加；全部派工单完工后节点完工
		open, err := s.repos.Assignment.CountOpenByNode(tx, a.NodeID)
		if err != nil {
			return fmt.Errorf("统计节点派工单失败: %w", err)
		}
		updates := map[string]interface{}{
			"actual_qty": gorm.Expr("actual_qty + ?", req.ActualQty),
		}
		if open == 0 {
			updates["status"] = entity.NodeStatusCompleted
			updates["completed_at"] = now
		}
		if err := tx.Model(&entity.PlanNode{}).Where("id = ?", a.NodeID).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新节点失败: %w", err)
		}

		// 全部节点完工后计划完工
		if open == 0 {
			remaining, err := s.repos.Plan.CountOpenNodes(tx, a.PlanID)
			if err != nil {
				return fmt.Errorf("统计计划节点失败: %w", err)
			}
			if remaining == 0 {
				if err := tx.Model(&entity.ProductionPlan{}).
					Where("id = ?", a.PlanID).
					Update("status", entity.PlanStatusCompleted).Error; err != nil {
					return fmt.Errorf("更新计划状态失败: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inputScrap := make(map[string]float64)
	if scraps, serr := s.listScraps(a.ID); serr == nil {
		for _, sc := range scraps {
			if sc.Kind == entity.ScrapKindInput {
				inputScrap[sc.MaterialCode] += sc.Quantity
			}
		}
	}
	if err := s.ledger.Consume(a, node, inputScrap, userID); err != nil {
		s.logger.Error("完工记账失败，待对账补录",
			zap.String("assignment_id", a.ID),
			zap.String("node_code", node.NodeCode),
			zap.Error(err))
	}
	return a, nil
}

func (s *ExecutionService) listScraps(assignmentID string) ([]entity.AssignmentScrap, error) {
	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	return a.Scraps, nil
}

// ScrapRequest 报废计数增量，负数表示更正
type ScrapRequest struct {
	Kind         string  `json:"kind" binding:"required,oneof=INPUT PRODUCTION"`
	MaterialCode string  `json:"material_code" binding:"required"`
	Delta        float64 `json:"delta" binding:"required"`
}

// ReportScrap 执行期报废计数。只累计数量供完工记账与良率统计，
// 不直接产生库存变动。
func (s *ExecutionService) ReportScrap(assignmentID string, req ScrapRequest, userID string) (*entity.AssignmentScrap, error) {
	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("派工单不存在: %w", err)
	}
	if a.Status != entity.AssignmentStatusInProgress && a.Status != entity.AssignmentStatusPaused {
		return nil, fmt.Errorf("派工单状态 %s 不允许上报报废", a.Status)
	}
	scrap, err := s.repos.Assignment.UpsertScrap(a.ID, req.Kind, req.MaterialCode, req.Delta)
	if err != nil {
		return nil, err
	}
	s.logger.Info("报废上报",
		zap.String("assignment_id", a.ID),
		zap.String("kind", req.Kind),
		zap.String("material_code", req.MaterialCode),
		zap.Float64("delta", req.Delta),
		zap.Float64("total", scrap.Quantity))
	return scrap, nil
}

package service

import (
	"fmt"
	"time"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RepairedMovement 对账补录的台账条目
type RepairedMovement struct {
	AssignmentID string  `json:"assignment_id"`
	MaterialCode string  `json:"material_code"`
	Subtype      string  `json:"subtype"`
	Quantity     float64 `json:"quantity"`
}

// ReconcileResult 一次对账扫描的结果
type ReconcileResult struct {
	ScannedAt    time.Time                       `json:"scanned_at"`
	DryRun       bool                            `json:"dry_run"`
	MissingCount int                             `json:"missing_count"`
	Repaired     []RepairedMovement              `json:"repaired"`
	Conflicts    []repository.AdjustmentConflict `json:"conflicts"`
}

// ReconcileService 对账审计：扫描已完工派工单中预留与冲销不配平的
// 物料，按完工上报数据补录缺失的实耗、冲销和产出入库。
// 补录走唯一索引护栏，多实例并发扫描只有一方真正落库。
type ReconcileService struct {
	repos  *repository.Repositories
	db     *gorm.DB
	logger *zap.Logger
}

func NewReconcileService(repos *repository.Repositories, db *gorm.DB, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{repos: repos, db: db, logger: logger}
}

// Run 执行一次对账扫描。dryRun 只报告不写入。
// 重复冲销的组合不自动修复，进 Conflicts 并以
// ErrReconciliationConflict 上抛等人工复核，补录照常完成。
func (s *ReconcileService) Run(dryRun bool) (*ReconcileResult, error) {
	result := &ReconcileResult{
		ScannedAt: time.Now(),
		DryRun:    dryRun,
	}

	conflicts, err := s.repos.Stock.ListAdjustmentConflicts()
	if err != nil {
		return nil, fmt.Errorf("检出冲销冲突失败: %w", err)
	}
	result.Conflicts = conflicts
	for _, c := range conflicts {
		s.logger.Warn("检出重复冲销，跳过自动修复",
			zap.String("assignment_id", c.AssignmentID),
			zap.String("material_code", c.MaterialCode),
			zap.Int64("count", c.Count))
	}

	missing, err := s.repos.Stock.ListUnreconciledReservations()
	if err != nil {
		return nil, fmt.Errorf("扫描未配平预留失败: %w", err)
	}
	result.MissingCount = len(missing)

	if !dryRun {
		for _, reservation := range missing {
			repaired, err := s.repair(reservation)
			if err != nil {
				s.logger.Error("对账补录失败",
					zap.String("material_code", reservation.MaterialCode),
					zap.Error(err))
				continue
			}
			result.Repaired = append(result.Repaired, repaired...)
		}
	}

	s.logger.Info("对账扫描完成",
		zap.Int("missing", result.MissingCount),
		zap.Int("repaired", len(result.Repaired)),
		zap.Int("conflicts", len(result.Conflicts)))
	if len(result.Conflicts) > 0 {
		return result, fmt.Errorf("检出 %d 组重复冲销: %w", len(result.Conflicts), ErrReconciliationConflict)
	}
	return result, nil
}

// repair 为单条未配平预留补录缺失条目。重算口径与完工记账一致：
// 实耗 = 预留量×产出比 + 投入料报废。补录条目的时间戳取派工单
// 完工时间，保持台账时间线与实际完工对齐。
func (s *ReconcileService) repair(reservation entity.StockMovement) ([]RepairedMovement, error) {
	if reservation.AssignmentID == nil {
		return nil, fmt.Errorf("预留条目缺少派工单关联")
	}
	assignmentID := *reservation.AssignmentID

	a, err := s.repos.Assignment.GetByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("读取派工单 %s 失败: %w", assignmentID, err)
	}
	if a.Status != entity.AssignmentStatusCompleted || a.CompletedAt == nil {
		return nil, fmt.Errorf("派工单 %s 未完工，不补录", assignmentID)
	}
	node, err := s.repos.Plan.GetNode(a.NodeID)
	if err != nil {
		return nil, fmt.Errorf("读取节点失败: %w", err)
	}

	ratio := 0.0
	if node.OutputQty > 0 {
		ratio = a.ActualQty / node.OutputQty
	}
	inputScrap := 0.0
	for _, sc := range a.Scraps {
		if sc.Kind == entity.ScrapKindInput && sc.MaterialCode == reservation.MaterialCode {
			inputScrap += sc.Quantity
		}
	}
	reserved := -reservation.Quantity
	actual := reserved*ratio + inputScrap
	delta := reserved - actual
	stampedAt := *a.CompletedAt

	var repaired []RepairedMovement
	err = s.db.Transaction(func(tx *gorm.DB) error {
		stock, err := s.repos.Stock.GetStockForUpdate(tx, reservation.MaterialCode)
		if err != nil {
			return fmt.Errorf("读取物料 %s 库存失败: %w", reservation.MaterialCode, err)
		}

		inserted, err := s.repos.Stock.CreateMovementIfAbsentTx(tx, &entity.StockMovement{
			MaterialCode: reservation.MaterialCode,
			Quantity:     -actual,
			Subtype:      entity.MovementConsumption,
			AssignmentID: &assignmentID,
			StockBefore:  stock.OnHand,
			StockAfter:   stock.OnHand,
			Notes:        "对账补录",
			CreatedBy:    "reconciler",
			CreatedAt:    stampedAt,
		})
		if err != nil {
			return fmt.Errorf("补录实耗失败: %w", err)
		}
		if inserted {
			repaired = append(repaired, RepairedMovement{
				AssignmentID: assignmentID,
				MaterialCode: reservation.MaterialCode,
				Subtype:      entity.MovementConsumption,
				Quantity:     -actual,
			})
		}

		before := stock.OnHand
		inserted, err = s.repos.Stock.CreateMovementIfAbsentTx(tx, &entity.StockMovement{
			MaterialCode: reservation.MaterialCode,
			Quantity:     delta,
			Subtype:      entity.MovementAdjustment,
			AssignmentID: &assignmentID,
			StockBefore:  before,
			StockAfter:   before + delta,
			Notes:        "对账补录",
			CreatedBy:    "reconciler",
			CreatedAt:    stampedAt,
		})
		if err != nil {
			return fmt.Errorf("补录冲销失败: %w", err)
		}
		if inserted {
			now := time.Now()
			stock.OnHand += delta
			stock.LastMovedAt = &now
			if err := s.repos.Stock.UpdateStock(tx, stock); err != nil {
				return fmt.Errorf("冲销物料 %s 库存失败: %w", reservation.MaterialCode, err)
			}
			repaired = append(repaired, RepairedMovement{
				AssignmentID: assignmentID,
				MaterialCode: reservation.MaterialCode,
				Subtype:      entity.MovementAdjustment,
				Quantity:     delta,
			})
		}

		// 产出入库与实耗同批缺失，一并补录
		if node.OutputMaterialCode != "" && a.ActualQty > 0 {
			outStock, err := s.repos.Stock.GetStockForUpdate(tx, node.OutputMaterialCode)
			if err != nil {
				return fmt.Errorf("读取产出物料 %s 库存失败: %w", node.OutputMaterialCode, err)
			}
			inserted, err = s.repos.Stock.CreateMovementIfAbsentTx(tx, &entity.StockMovement{
				MaterialCode: node.OutputMaterialCode,
				Quantity:     a.ActualQty,
				Subtype:      entity.MovementProductionReceipt,
				AssignmentID: &assignmentID,
				StockBefore:  outStock.OnHand,
				StockAfter:   outStock.OnHand + a.ActualQty,
				Notes:        "对账补录",
				CreatedBy:    "reconciler",
				CreatedAt:    stampedAt,
			})
			if err != nil {
				return fmt.Errorf("补录产出入库失败: %w", err)
			}
			if inserted {
				now := time.Now()
				outStock.OnHand += a.ActualQty
				outStock.LastMovedAt = &now
				if err := s.repos.Stock.UpdateStock(tx, outStock); err != nil {
					return fmt.Errorf("产出物料 %s 入库失败: %w", node.OutputMaterialCode, err)
				}
				repaired = append(repaired, RepairedMovement{
					AssignmentID: assignmentID,
					MaterialCode: node.OutputMaterialCode,
					Subtype:      entity.MovementProductionReceipt,
					Quantity:     a.ActualQty,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repaired, nil
}

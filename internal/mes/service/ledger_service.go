package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"gorm.io/gorm"
)

// LedgerService 物料预留台账。台账只追加不修改：
// 派工时记 WIP 预留（扣减在库），完工时记实耗与差额冲销，
// 在库净变动始终等于实际消耗。
type LedgerService struct {
	stockRepo  *repository.StockRepository
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
}

func NewLedgerService(stockRepo *repository.StockRepository, db *gorm.DB, opts Options) *LedgerService {
	return &LedgerService{
		stockRepo:  stockRepo,
		db:         db,
		maxRetries: opts.LedgerMaxRetries,
		backoff:    opts.LedgerRetryBackoff,
	}
}

// retryable 判断数据库错误是否为可重试的并发冲突
func retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "lock timeout")
}

// withRetry 有界重试执行台账事务，冲突重试耗尽后包装为 ErrLedgerConflict
func (s *LedgerService) withRetry(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoff * time.Duration(attempt))
		}
		err = s.db.Transaction(fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrLedgerConflict, err)
}

// reserveIn 在既有事务内预留WIP物料：行锁读快照、扣减在库、追加台账
func (s *LedgerService) reserveIn(tx *gorm.DB, assignmentID, userID string, materials []entity.NodeMaterial) error {
	now := time.Now()
	for _, m := range materials {
		stock, err := s.stockRepo.GetStockForUpdate(tx, m.MaterialCode)
		if err != nil {
			return fmt.Errorf("读取物料 %s 库存失败: %w", m.MaterialCode, err)
		}
		before := stock.OnHand
		stock.OnHand -= m.Quantity
		stock.LastMovedAt = &now
		if err := s.stockRepo.UpdateStock(tx, stock); err != nil {
			return fmt.Errorf("扣减物料 %s 库存失败: %w", m.MaterialCode, err)
		}
		aid := assignmentID
		movement := &entity.StockMovement{
			MaterialCode: m.MaterialCode,
			Quantity:     -m.Quantity,
			Subtype:      entity.MovementWIPReservation,
			AssignmentID: &aid,
			StockBefore:  before,
			StockAfter:   stock.OnHand,
			CreatedBy:    userID,
		}
		if err := s.stockRepo.CreateMovement(tx, movement); err != nil {
			return fmt.Errorf("写入物料 %s 预留台账失败: %w", m.MaterialCode, err)
		}
	}
	return nil
}

// Consume 完工记账：对每项预留物料记一条实耗（仅记录，不变动在库，
// WIP已在预留时扣减）和一条差额冲销（在库变动 = 预留量 − 实耗量，
// 完全一致时记零冲销）。实耗按产出比例折算并并入投入料报废。
// 最后将实际产出入库。
func (s *LedgerService) Consume(assignment *entity.Assignment, node *entity.PlanNode, inputScrap map[string]float64, userID string) error {
	return s.withRetry(func(tx *gorm.DB) error {
		now := time.Now()
		ratio := 0.0
		if node.OutputQty > 0 {
			ratio = assignment.ActualQty / node.OutputQty
		}

		for _, m := range node.Materials {
			reserved := m.Quantity
			actual := reserved*ratio + inputScrap[m.MaterialCode]

			stock, err := s.stockRepo.GetStockForUpdate(tx, m.MaterialCode)
			if err != nil {
				return fmt.Errorf("读取物料 %s 库存失败: %w", m.MaterialCode, err)
			}

			// 实耗条目：从WIP预留转实耗，在库不变
			aid := assignment.ID
			consumption := &entity.StockMovement{
				MaterialCode: m.MaterialCode,
				Quantity:     -actual,
				Subtype:      entity.MovementConsumption,
				AssignmentID: &aid,
				StockBefore:  stock.OnHand,
				StockAfter:   stock.OnHand,
				CreatedBy:    userID,
			}
			if err := s.stockRepo.CreateMovement(tx, consumption); err != nil {
				return fmt.Errorf("写入物料 %s 实耗台账失败: %w", m.MaterialCode, err)
			}

			// 差额冲销：多预留的返还在库，超耗的补扣
			delta := reserved - actual
			before := stock.OnHand
			stock.OnHand += delta
			stock.LastMovedAt = &now
			if err := s.stockRepo.UpdateStock(tx, stock); err != nil {
				return fmt.Errorf("冲销物料 %s 库存失败: %w", m.MaterialCode, err)
			}
			adjustment := &entity.StockMovement{
				MaterialCode: m.MaterialCode,
				Quantity:     delta,
				Subtype:      entity.MovementAdjustment,
				AssignmentID: &aid,
				StockBefore:  before,
				StockAfter:   stock.OnHand,
				CreatedBy:    userID,
			}
			if err := s.stockRepo.CreateMovement(tx, adjustment); err != nil {
				return fmt.Errorf("写入物料 %s 冲销台账失败: %w", m.MaterialCode, err)
			}
		}

		// 产出入库
		if node.OutputMaterialCode != "" && assignment.ActualQty > 0 {
			stock, err := s.stockRepo.GetStockForUpdate(tx, node.OutputMaterialCode)
			if err != nil {
				return fmt.Errorf("读取产出物料 %s 库存失败: %w", node.OutputMaterialCode, err)
			}
			before := stock.OnHand
			stock.OnHand += assignment.ActualQty
			stock.LastMovedAt = &now
			if err := s.stockRepo.UpdateStock(tx, stock); err != nil {
				return fmt.Errorf("产出物料 %s 入库失败: %w", node.OutputMaterialCode, err)
			}
			aid := assignment.ID
			receipt := &entity.StockMovement{
				MaterialCode: node.OutputMaterialCode,
				Quantity:     assignment.ActualQty,
				Subtype:      entity.MovementProductionReceipt,
				AssignmentID: &aid,
				StockBefore:  before,
				StockAfter:   stock.OnHand,
				CreatedBy:    userID,
			}
			if err := s.stockRepo.CreateMovement(tx, receipt); err != nil {
				return fmt.Errorf("写入产出入库台账失败: %w", err)
			}
		}
		return nil
	})
}

// Receipt 期初/采购入库，测试与库存初始化用
func (s *LedgerService) Receipt(materialCode string, qty float64, notes, userID string) error {
	if qty <= 0 {
		return fmt.Errorf("入库数量必须大于零")
	}
	return s.withRetry(func(tx *gorm.DB) error {
		now := time.Now()
		stock, err := s.stockRepo.GetStockForUpdate(tx, materialCode)
		if err != nil {
			return err
		}
		before := stock.OnHand
		stock.OnHand += qty
		stock.LastMovedAt = &now
		if err := s.stockRepo.UpdateStock(tx, stock); err != nil {
			return err
		}
		return s.stockRepo.CreateMovement(tx, &entity.StockMovement{
			MaterialCode: materialCode,
			Quantity:     qty,
			Subtype:      entity.MovementReceipt,
			StockBefore:  before,
			StockAfter:   stock.OnHand,
			Notes:        notes,
			CreatedBy:    userID,
		})
	})
}

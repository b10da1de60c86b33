package repository

import (
	"errors"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetStockForUpdate 行锁读取物料在库记录（SELECT ... FOR UPDATE），
// 不存在时创建零库存行。必须在事务内调用。
func (r *StockRepository) GetStockForUpdate(tx *gorm.DB, materialCode string) (*entity.MaterialStock, error) {
	var stock entity.MaterialStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("material_code = ?", materialCode).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stock = entity.MaterialStock{MaterialCode: materialCode}
		if err := tx.Create(&stock).Error; err != nil {
			return nil, err
		}
		return &stock, nil
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// UpdateStock 更新在库数量（配合 GetStockForUpdate 在同一事务内使用）
func (r *StockRepository) UpdateStock(tx *gorm.DB, stock *entity.MaterialStock) error {
	return tx.Save(stock).Error
}

// CreateMovement 追加库存移动台账
func (r *StockRepository) CreateMovement(tx *gorm.DB, m *entity.StockMovement) error {
	return tx.Create(m).Error
}

// CreateMovementIfAbsentTx 幂等追加：撞到 (assignment, material, subtype)
// 唯一索引时静默跳过，返回是否真正插入。对账补录的并发护栏，
// 与库存变动同事务提交。
func (r *StockRepository) CreateMovementIfAbsentTx(tx *gorm.DB, m *entity.StockMovement) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *StockRepository) GetStock(materialCode string) (*entity.MaterialStock, error) {
	var stock entity.MaterialStock
	err := r.db.Where("material_code = ?", materialCode).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *StockRepository) ListStocks() ([]entity.MaterialStock, error) {
	var stocks []entity.MaterialStock
	err := r.db.Order("material_code").Find(&stocks).Error
	return stocks, err
}

// ListMovementsByAssignment 获取派工单关联的全部库存移动
func (r *StockRepository) ListMovementsByAssignment(assignmentID string) ([]entity.StockMovement, error) {
	var items []entity.StockMovement
	err := r.db.Where("assignment_id = ?", assignmentID).Order("created_at").Find(&items).Error
	return items, err
}

// ListUnreconciledReservations 扫描已完工派工单中缺少对应
// ADJUSTMENT 条目的 WIP_RESERVATION。
func (r *StockRepository) ListUnreconciledReservations() ([]entity.StockMovement, error) {
	var items []entity.StockMovement
	err := r.db.
		Joins("JOIN mes_assignments a ON a.id = mes_stock_movements.assignment_id").
		Where("mes_stock_movements.subtype = ?", entity.MovementWIPReservation).
		Where("a.status = ?", entity.AssignmentStatusCompleted).
		Where(`NOT EXISTS (
			SELECT 1 FROM mes_stock_movements adj
			WHERE adj.assignment_id = mes_stock_movements.assignment_id
			  AND adj.material_code = mes_stock_movements.material_code
			  AND adj.subtype = ?)`, entity.MovementAdjustment).
		Order("mes_stock_movements.created_at").
		Find(&items).Error
	return items, err
}

// AdjustmentConflict 同一 (派工单, 物料) 存在多条冲销，需人工复核
type AdjustmentConflict struct {
	AssignmentID string `json:"assignment_id"`
	MaterialCode string `json:"material_code"`
	Count        int64  `json:"count"`
}

// ListAdjustmentConflicts 检出重复冲销的 (派工单, 物料) 组合
func (r *StockRepository) ListAdjustmentConflicts() ([]AdjustmentConflict, error) {
	var items []AdjustmentConflict
	err := r.db.Model(&entity.StockMovement{}).
		Select("assignment_id, material_code, COUNT(*) as count").
		Where("subtype = ? AND assignment_id IS NOT NULL", entity.MovementAdjustment).
		Group("assignment_id, material_code").
		Having("COUNT(*) > 1").
		Scan(&items).Error
	return items, err
}

type MovementListParams struct {
	MaterialCode string
	Subtype      string
	AssignmentID string
	Page         int
	Size         int
}

func (r *StockRepository) ListMovements(params MovementListParams) ([]entity.StockMovement, int64, error) {
	query := r.db.Model(&entity.StockMovement{})
	if params.MaterialCode != "" {
		query = query.Where("material_code = ?", params.MaterialCode)
	}
	if params.Subtype != "" {
		query = query.Where("subtype = ?", params.Subtype)
	}
	if params.AssignmentID != "" {
		query = query.Where("assignment_id = ?", params.AssignmentID)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.StockMovement
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&items).Error
	return items, total, err
}

// DB 返回底层db用于事务
func (r *StockRepository) DB() *gorm.DB {
	return r.db
}

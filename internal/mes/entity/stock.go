package entity

import (
	"time"
)

// MovementSubtype 库存移动类型
const (
	MovementWIPReservation    = "WIP_RESERVATION"    // 派工预留（出库方向）
	MovementConsumption       = "CONSUMPTION"        // 实际消耗（记录用，不变动在库）
	MovementAdjustment        = "ADJUSTMENT"         // 预留与实耗的差额冲销
	MovementProductionReceipt = "PRODUCTION_RECEIPT" // 产出入库
	MovementReceipt           = "RECEIPT"            // 采购/期初入库
	MovementIssue             = "ISSUE"              // 其他出库
)

// StockMovement 库存移动台账，只追加不修改。
// (assignment_id, material_code, subtype) 唯一索引同时作为
// 对账补录 insert-if-absent 的并发护栏。
type StockMovement struct {
	ID           string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialCode string  `json:"material_code" gorm:"size:64;not null;index;index:idx_movement_guard,unique"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"` // 正=入，负=出
	Subtype      string  `json:"subtype" gorm:"size:30;not null;index:idx_movement_guard,unique"`
	AssignmentID *string `json:"assignment_id" gorm:"type:uuid;index;index:idx_movement_guard,unique"` // 非派工类移动为空

	StockBefore float64   `json:"stock_before" gorm:"type:decimal(12,4);not null"`
	StockAfter  float64   `json:"stock_after" gorm:"type:decimal(12,4);not null"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedBy   string    `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
}

func (StockMovement) TableName() string {
	return "mes_stock_movements"
}

// MaterialStock 物料在库数量，移动台账的快照来源
type MaterialStock struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialCode string     `json:"material_code" gorm:"size:64;not null;uniqueIndex"`
	MaterialName string     `json:"material_name" gorm:"size:128"`
	OnHand       float64    `json:"on_hand" gorm:"type:decimal(12,4);not null;default:0"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	LastMovedAt  *time.Time `json:"last_moved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (MaterialStock) TableName() string {
	return "mes_material_stocks"
}

// SequenceCounter 事务化取号计数器（工人派工序号、计划编号等），
// 避免并发启动分配到重复序号。
type SequenceCounter struct {
	Key       string    `json:"key" gorm:"primaryKey;size:100"`
	Value     int64     `json:"value" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SequenceCounter) TableName() string {
	return "mes_sequence_counters"
}

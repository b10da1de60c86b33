package entity

import (
	"time"
)

// PlanStatus 生产计划状态
const (
	PlanStatusDraft     = "DRAFT"
	PlanStatusActive    = "ACTIVE"
	PlanStatusPaused    = "PAUSED"
	PlanStatusCompleted = "COMPLETED"
	PlanStatusCancelled = "CANCELLED"
)

// NodeStatus 计划节点状态
const (
	NodeStatusPending    = "PENDING"
	NodeStatusQueued     = "QUEUED"
	NodeStatusInProgress = "IN_PROGRESS"
	NodeStatusPaused     = "PAUSED"
	NodeStatusCompleted  = "COMPLETED"
)

// ProductionPlan 生产计划（报价审批通过后创建）
type ProductionPlan struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PlanCode   string     `json:"plan_code" gorm:"size:50;not null;uniqueIndex"`
	Title      string     `json:"title" gorm:"size:128"`
	Status     string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	LaunchedAt *time.Time `json:"launched_at"`
	PausedAt   *time.Time `json:"paused_at"`
	ResumedAt  *time.Time `json:"resumed_at"`
	Notes      string     `json:"notes" gorm:"type:text"`
	CreatedBy  string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at" gorm:"index"`

	Nodes []PlanNode `json:"nodes,omitempty" gorm:"foreignKey:PlanID"`
}

func (ProductionPlan) TableName() string {
	return "mes_production_plans"
}

// PlanNode 计划节点（工单执行图中的一道生产工序）
type PlanNode struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PlanID             string     `json:"plan_id" gorm:"type:uuid;not null;index"`
	NodeCode           string     `json:"node_code" gorm:"size:50;not null"`
	OperationCode      string     `json:"operation_code" gorm:"size:64;not null"`
	NominalMinutes     float64    `json:"nominal_minutes" gorm:"type:decimal(12,4);not null"`
	OutputMaterialCode string     `json:"output_material_code" gorm:"size:64"`
	OutputQty          float64    `json:"output_qty" gorm:"type:decimal(12,4);not null"`
	ActualQty          float64    `json:"actual_qty" gorm:"type:decimal(12,4);default:0"`
	Status             string     `json:"status" gorm:"size:20;not null;default:PENDING"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Materials    []NodeMaterial   `json:"materials,omitempty" gorm:"foreignKey:NodeID"`
	Stations     []NodeStation    `json:"stations,omitempty" gorm:"foreignKey:NodeID"`
	Dependencies []NodeDependency `json:"dependencies,omitempty" gorm:"foreignKey:NodeID"`
}

func (PlanNode) TableName() string {
	return "mes_plan_nodes"
}

// NodeMaterial 节点投入物料需求（节点计划产量对应的总量）
type NodeMaterial struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	NodeID       string    `json:"node_id" gorm:"type:uuid;not null;index"`
	MaterialCode string    `json:"material_code" gorm:"size:64;not null"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string    `json:"unit" gorm:"size:20;not null;default:pcs"`
	CreatedAt    time.Time `json:"created_at"`
}

func (NodeMaterial) TableName() string {
	return "mes_node_materials"
}

// NodeStation 节点候选工站（priority=1 为首选）
type NodeStation struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	NodeID    string    `json:"node_id" gorm:"type:uuid;not null;index"`
	StationID string    `json:"station_id" gorm:"type:uuid;not null"`
	Priority  int       `json:"priority" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
}

func (NodeStation) TableName() string {
	return "mes_node_stations"
}

// NodeDependency 节点前置依赖边（显式边表，DAG，启动时校验无环）
type NodeDependency struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	NodeID        string    `json:"node_id" gorm:"type:uuid;not null;index:idx_node_dep,unique"`
	PredecessorID string    `json:"predecessor_id" gorm:"type:uuid;not null;index:idx_node_dep,unique"`
	CreatedAt     time.Time `json:"created_at"`
}

func (NodeDependency) TableName() string {
	return "mes_node_dependencies"
}

// Operation 工序主数据
type Operation struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code              string    `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name              string    `json:"name" gorm:"size:128;not null"`
	DefaultEfficiency float64   `json:"default_efficiency" gorm:"type:decimal(6,4);default:1"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Operation) TableName() string {
	return "mes_operations"
}

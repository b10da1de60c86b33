package entity

import (
	"time"
)

// AssignmentStatus 派工单状态
const (
	AssignmentStatusQueued     = "QUEUED"
	AssignmentStatusInProgress = "IN_PROGRESS"
	AssignmentStatusPaused     = "PAUSED"
	AssignmentStatusCompleted  = "COMPLETED"
)

// ScrapKind 报废计数类型
const (
	ScrapKindInput      = "INPUT"      // 投入料报废
	ScrapKindProduction = "PRODUCTION" // 产出报废
)

// Assignment 派工单。SequenceNumber 在同一工人的派工队列内
// 自1起连续递增；EstimatedEnd 不早于 EstimatedStart。
type Assignment struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PlanID         string     `json:"plan_id" gorm:"type:uuid;not null;index"`
	NodeID         string     `json:"node_id" gorm:"type:uuid;not null;index"`
	WorkerID       string     `json:"worker_id" gorm:"type:uuid;not null;index"`
	SubstationID   string     `json:"substation_id" gorm:"type:uuid;not null;index"`
	SequenceNumber int64      `json:"sequence_number" gorm:"not null"`
	EstimatedStart time.Time  `json:"estimated_start" gorm:"not null"`
	EstimatedEnd   time.Time  `json:"estimated_end" gorm:"not null"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	ActualQty      float64    `json:"actual_qty" gorm:"type:decimal(12,4);default:0"`
	DefectQty      float64    `json:"defect_qty" gorm:"type:decimal(12,4);default:0"`
	Status         string     `json:"status" gorm:"size:20;not null;default:QUEUED"`
	Notes          string     `json:"notes" gorm:"type:text"`
	CreatedBy      string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Scraps  []AssignmentScrap         `json:"scraps,omitempty" gorm:"foreignKey:AssignmentID"`
	History []AssignmentStatusHistory `json:"history,omitempty" gorm:"foreignKey:AssignmentID"`
}

func (Assignment) TableName() string {
	return "mes_assignments"
}

// AssignmentScrap 报废计数器（仅质量/良率统计，不直接产生台账变动）
type AssignmentScrap struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AssignmentID string    `json:"assignment_id" gorm:"type:uuid;not null;index:idx_assignment_scrap,unique"`
	Kind         string    `json:"kind" gorm:"size:20;not null;index:idx_assignment_scrap,unique"`
	MaterialCode string    `json:"material_code" gorm:"size:64;not null;index:idx_assignment_scrap,unique"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AssignmentScrap) TableName() string {
	return "mes_assignment_scraps"
}

// AssignmentStatusHistory 状态流转台账，只追加不修改
type AssignmentStatusHistory struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AssignmentID string    `json:"assignment_id" gorm:"type:uuid;not null;index"`
	FromStatus   string    `json:"from_status" gorm:"size:20"`
	ToStatus     string    `json:"to_status" gorm:"size:20;not null"`
	ChangedBy    string    `json:"changed_by" gorm:"size:64"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AssignmentStatusHistory) TableName() string {
	return "mes_assignment_status_history"
}

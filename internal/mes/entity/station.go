package entity

import (
	"time"
)

// SubstationStatus 子工位状态
const (
	SubstationStatusAvailable   = "AVAILABLE"
	SubstationStatusReserved    = "RESERVED"
	SubstationStatusInUse       = "IN_USE"
	SubstationStatusMaintenance = "MAINTENANCE"
)

// Station 工站（物理工位组）
type Station struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Substations []Substation `json:"substations,omitempty" gorm:"foreignKey:StationID"`
}

func (Station) TableName() string {
	return "mes_stations"
}

// Substation 子工位。CurrentAssignmentID/WorkerID 为弱引用，
// 归属关系由 Assignment 持有，此处仅记录当前占用方。
type Substation struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StationID           string    `json:"station_id" gorm:"type:uuid;not null;index"`
	Code                string    `json:"code" gorm:"size:50;not null"`
	Priority            int       `json:"priority" gorm:"not null;default:1"`
	Status              string    `json:"status" gorm:"size:20;not null;default:AVAILABLE"`
	CurrentAssignmentID *string   `json:"current_assignment_id" gorm:"type:uuid"`
	WorkerID            *string   `json:"worker_id" gorm:"type:uuid"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Substation) TableName() string {
	return "mes_substations"
}

package entity

import (
	"time"
)

// WorkerStatus 工人状态
const (
	WorkerStatusActive   = "ACTIVE"
	WorkerStatusInactive = "INACTIVE"
)

// Worker 工人
type Worker struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code       string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name       string     `json:"name" gorm:"size:128;not null"`
	Lane       string     `json:"lane" gorm:"size:20;not null;default:A"`        // 班组/班次通道
	Efficiency float64    `json:"efficiency" gorm:"type:decimal(6,4);default:0"` // 0=使用工序默认效率
	Status     string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at" gorm:"index"`

	Operations []WorkerOperation     `json:"operations,omitempty" gorm:"foreignKey:WorkerID"`
	Stations   []WorkerStation       `json:"stations,omitempty" gorm:"foreignKey:WorkerID"`
	Absences   []WorkerAbsence       `json:"absences,omitempty" gorm:"foreignKey:WorkerID"`
	Overrides  []WorkerShiftOverride `json:"overrides,omitempty" gorm:"foreignKey:WorkerID"`
}

func (Worker) TableName() string {
	return "mes_workers"
}

// WorkerOperation 工人资质工序
type WorkerOperation struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkerID      string    `json:"worker_id" gorm:"type:uuid;not null;index:idx_worker_op,unique"`
	OperationCode string    `json:"operation_code" gorm:"size:64;not null;index:idx_worker_op,unique"`
	CreatedAt     time.Time `json:"created_at"`
}

func (WorkerOperation) TableName() string {
	return "mes_worker_operations"
}

// WorkerStation 工人绑定工站（priority 为工人侧优先级）
type WorkerStation struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkerID  string    `json:"worker_id" gorm:"type:uuid;not null;index:idx_worker_station,unique"`
	StationID string    `json:"station_id" gorm:"type:uuid;not null;index:idx_worker_station,unique"`
	Priority  int       `json:"priority" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
}

func (WorkerStation) TableName() string {
	return "mes_worker_stations"
}

// WorkerAbsence 工人缺勤日期区间（含两端日期）
type WorkerAbsence struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkerID  string    `json:"worker_id" gorm:"type:uuid;not null;index"`
	FromDate  time.Time `json:"from_date" gorm:"type:date;not null"`
	ToDate    time.Time `json:"to_date" gorm:"type:date;not null"`
	Reason    string    `json:"reason" gorm:"size:128"`
	CreatedAt time.Time `json:"created_at"`
}

func (WorkerAbsence) TableName() string {
	return "mes_worker_absences"
}

// WorkerShiftOverride 工人个人排班覆盖（指定日期，分钟自零点计，[start,end)）
type WorkerShiftOverride struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WorkerID    string    `json:"worker_id" gorm:"type:uuid;not null;index"`
	Date        time.Time `json:"date" gorm:"type:date;not null"`
	StartMinute int       `json:"start_minute" gorm:"not null"`
	EndMinute   int       `json:"end_minute" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (WorkerShiftOverride) TableName() string {
	return "mes_worker_shift_overrides"
}

// ShiftBlock 公司级班次时段（按通道，分钟自零点计，[start,end)）
type ShiftBlock struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Lane        string    `json:"lane" gorm:"size:20;not null;index"`
	StartMinute int       `json:"start_minute" gorm:"not null"`
	EndMinute   int       `json:"end_minute" gorm:"not null"`
	Weekdays    string    `json:"weekdays" gorm:"size:20;not null;default:12345"` // 1=周一..7=周日
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ShiftBlock) TableName() string {
	return "mes_shift_blocks"
}

package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有MES表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 主数据
		&Operation{},
		&Worker{},
		&WorkerOperation{},
		&WorkerStation{},
		&WorkerAbsence{},
		&WorkerShiftOverride{},
		&ShiftBlock{},
		&Station{},
		&Substation{},

		// 计划
		&ProductionPlan{},
		&PlanNode{},
		&NodeMaterial{},
		&NodeStation{},
		&NodeDependency{},

		// 派工
		&Assignment{},
		&AssignmentScrap{},
		&AssignmentStatusHistory{},

		// 库存台账
		&MaterialStock{},
		&StockMovement{},
		&SequenceCounter{},
	)
}

package repository

import (
	"errors"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type StationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) Create(station *entity.Station) error {
	return r.db.Create(station).Error
}

func (r *StationRepository) GetByID(id string) (*entity.Station, error) {
	var station entity.Station
	err := r.db.Preload("Substations").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&station).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *StationRepository) List() ([]entity.Station, error) {
	var stations []entity.Station
	err := r.db.Preload("Substations").
		Where("deleted_at IS NULL").Order("code").
		Find(&stations).Error
	return stations, err
}

// ListSubstations 获取工站下全部子工位，按优先级排序
func (r *StationRepository) ListSubstations(stationID string) ([]entity.Substation, error) {
	var subs []entity.Substation
	err := r.db.Where("station_id = ?", stationID).Order("priority, code").Find(&subs).Error
	return subs, err
}

// ListAllSubstations 获取全部子工位（排程占用视图用）
func (r *StationRepository) ListAllSubstations() ([]entity.Substation, error) {
	var subs []entity.Substation
	err := r.db.Order("station_id, priority, code").Find(&subs).Error
	return subs, err
}

func (r *StationRepository) GetSubstation(id string) (*entity.Substation, error) {
	var sub entity.Substation
	err := r.db.Where("id = ?", id).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *StationRepository) CreateSubstation(sub *entity.Substation) error {
	return r.db.Create(sub).Error
}

func (r *StationRepository) UpdateSubstation(sub *entity.Substation) error {
	return r.db.Save(sub).Error
}

// ReserveSubstation 以状态前置条件占用子工位：仅当仍为 AVAILABLE 时生效，
// 返回是否占用成功。与派工单创建同事务提交。
func (r *StationRepository) ReserveSubstation(tx *gorm.DB, subID, assignmentID, workerID string) (bool, error) {
	result := tx.Model(&entity.Substation{}).
		Where("id = ? AND status = ?", subID, entity.SubstationStatusAvailable).
		Updates(map[string]interface{}{
			"status":                entity.SubstationStatusReserved,
			"current_assignment_id": assignmentID,
			"worker_id":             workerID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseSubstation 释放派工单占用的子工位，清除弱引用
func (r *StationRepository) ReleaseSubstation(tx *gorm.DB, subID, assignmentID string) error {
	return tx.Model(&entity.Substation{}).
		Where("id = ? AND current_assignment_id = ?", subID, assignmentID).
		Updates(map[string]interface{}{
			"status":                entity.SubstationStatusAvailable,
			"current_assignment_id": nil,
			"worker_id":             nil,
		}).Error
}

// SetSubstationStatus 更新子工位状态（开工 RESERVED → IN_USE 等）
func (r *StationRepository) SetSubstationStatus(subID, status string) error {
	return r.db.Model(&entity.Substation{}).
		Where("id = ?", subID).
		Update("status", status).Error
}

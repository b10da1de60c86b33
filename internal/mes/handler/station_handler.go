package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
)

// StationHandler 工站与子工位主数据处理器
type StationHandler struct {
	repo *repository.StationRepository
}

func NewStationHandler(repo *repository.StationRepository) *StationHandler {
	return &StationHandler{repo: repo}
}

// List 获取工站列表（含子工位）
func (h *StationHandler) List(c *gin.Context) {
	items, err := h.repo.List()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// Get 获取工站详情
func (h *StationHandler) Get(c *gin.Context) {
	station, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "工站不存在")
		return
	}
	Success(c, station)
}

// CreateStationRequest 创建工站，SubstationCount 按序号生成子工位
type CreateStationRequest struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	SubstationCount int    `json:"substation_count"`
}

// Create 创建工站及子工位
func (h *StationHandler) Create(c *gin.Context) {
	var req CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	station := &entity.Station{
		ID:   uuid.New().String(),
		Code: req.Code,
		Name: req.Name,
	}
	for i := 1; i <= req.SubstationCount; i++ {
		station.Substations = append(station.Substations, entity.Substation{
			ID:        uuid.New().String(),
			StationID: station.ID,
			Code:      fmt.Sprintf("%s-%02d", req.Code, i),
			Priority:  i,
			Status:    entity.SubstationStatusAvailable,
		})
	}
	if err := h.repo.Create(station); err != nil {
		InternalError(c, "创建工站失败: "+err.Error())
		return
	}
	Created(c, station)
}

// ListSubstations 获取工站下子工位
func (h *StationHandler) ListSubstations(c *gin.Context) {
	items, err := h.repo.ListSubstations(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// SetSubstationStatusRequest 人工调整子工位状态（维护/恢复可用）
type SetSubstationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE MAINTENANCE"`
}

// SetSubstationStatus 维护开关：排程只占用 AVAILABLE 的子工位
func (h *StationHandler) SetSubstationStatus(c *gin.Context) {
	var req SetSubstationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	sub, err := h.repo.GetSubstation(c.Param("subId"))
	if err != nil {
		NotFound(c, "子工位不存在")
		return
	}
	if sub.Status == entity.SubstationStatusReserved || sub.Status == entity.SubstationStatusInUse {
		Conflict(c, "子工位被占用中，不允许调整状态")
		return
	}
	if err := h.repo.SetSubstationStatus(sub.ID, req.Status); err != nil {
		InternalError(c, err.Error())
		return
	}
	sub.Status = req.Status
	Success(c, sub)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
)

// WorkerHandler 工人主数据处理器
type WorkerHandler struct {
	repo *repository.WorkerRepository
}

func NewWorkerHandler(repo *repository.WorkerRepository) *WorkerHandler {
	return &WorkerHandler{repo: repo}
}

// List 获取工人列表
func (h *WorkerHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.WorkerListParams{
		Lane:    c.Query("lane"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    pageSize,
	}
	items, total, err := h.repo.List(params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items, "total": total})
}

// Get 获取工人详情（含资质、绑定工站、排班覆盖、缺勤）
func (h *WorkerHandler) Get(c *gin.Context) {
	worker, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "工人不存在")
		return
	}
	Success(c, worker)
}

type workerStationReq struct {
	StationID string `json:"station_id" binding:"required"`
	Priority  int    `json:"priority"`
}

type workerOverrideReq struct {
	Date        string `json:"date" binding:"required"` // 2006-01-02
	StartMinute int    `json:"start_minute" binding:"gte=0"`
	EndMinute   int    `json:"end_minute" binding:"required,gt=0"`
}

type workerAbsenceReq struct {
	FromDate string `json:"from_date" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
	Reason   string `json:"reason"`
}

// CreateWorkerRequest 创建工人
type CreateWorkerRequest struct {
	Code       string              `json:"code" binding:"required"`
	Name       string              `json:"name" binding:"required"`
	Lane       string              `json:"lane"`
	Efficiency float64             `json:"efficiency" binding:"gte=0"`
	Operations []string            `json:"operations"`
	Stations   []workerStationReq  `json:"stations"`
	Overrides  []workerOverrideReq `json:"overrides"`
	Absences   []workerAbsenceReq  `json:"absences"`
}

// Create 创建工人及其资质与排班配置
func (h *WorkerHandler) Create(c *gin.Context) {
	var req CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	lane := req.Lane
	if lane == "" {
		lane = "A"
	}
	worker := &entity.Worker{
		ID:         uuid.New().String(),
		Code:       req.Code,
		Name:       req.Name,
		Lane:       lane,
		Efficiency: req.Efficiency,
		Status:     entity.WorkerStatusActive,
	}
	for _, op := range req.Operations {
		worker.Operations = append(worker.Operations, entity.WorkerOperation{
			ID:            uuid.New().String(),
			WorkerID:      worker.ID,
			OperationCode: op,
		})
	}
	for _, st := range req.Stations {
		priority := st.Priority
		if priority <= 0 {
			priority = 1
		}
		worker.Stations = append(worker.Stations, entity.WorkerStation{
			ID:        uuid.New().String(),
			WorkerID:  worker.ID,
			StationID: st.StationID,
			Priority:  priority,
		})
	}
	for _, ov := range req.Overrides {
		date, err := time.Parse("2006-01-02", ov.Date)
		if err != nil {
			BadRequest(c, "排班覆盖日期格式无效: "+ov.Date)
			return
		}
		worker.Overrides = append(worker.Overrides, entity.WorkerShiftOverride{
			ID:          uuid.New().String(),
			WorkerID:    worker.ID,
			Date:        date,
			StartMinute: ov.StartMinute,
			EndMinute:   ov.EndMinute,
		})
	}
	for _, ab := range req.Absences {
		from, err := time.Parse("2006-01-02", ab.FromDate)
		if err != nil {
			BadRequest(c, "缺勤开始日期格式无效: "+ab.FromDate)
			return
		}
		to, err := time.Parse("2006-01-02", ab.ToDate)
		if err != nil {
			BadRequest(c, "缺勤结束日期格式无效: "+ab.ToDate)
			return
		}
		worker.Absences = append(worker.Absences, entity.WorkerAbsence{
			ID:       uuid.New().String(),
			WorkerID: worker.ID,
			FromDate: from,
			ToDate:   to,
			Reason:   ab.Reason,
		})
	}
	if err := h.repo.Create(worker); err != nil {
		InternalError(c, "创建工人失败: "+err.Error())
		return
	}
	Created(c, worker)
}

// CreateShiftBlockRequest 创建通道班次时段
type CreateShiftBlockRequest struct {
	Lane        string `json:"lane" binding:"required"`
	StartMinute int    `json:"start_minute" binding:"gte=0"`
	EndMinute   int    `json:"end_minute" binding:"required,gt=0"`
	Weekdays    string `json:"weekdays"`
}

// CreateShiftBlock 创建公司级班次时段
func (h *WorkerHandler) CreateShiftBlock(c *gin.Context) {
	var req CreateShiftBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if req.EndMinute <= req.StartMinute || req.EndMinute > 1440 {
		BadRequest(c, "班次时段区间无效")
		return
	}
	weekdays := req.Weekdays
	if weekdays == "" {
		weekdays = "12345"
	}
	block := &entity.ShiftBlock{
		ID:          uuid.New().String(),
		Lane:        req.Lane,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		Weekdays:    weekdays,
	}
	if err := h.repo.CreateShiftBlock(block); err != nil {
		InternalError(c, "创建班次时段失败: "+err.Error())
		return
	}
	Created(c, block)
}

package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/mes/scheduler"
	"github.com/umuxt/burkol-mes/internal/mes/service"
	"github.com/umuxt/burkol-mes/internal/shared/lock"
)

// PlanHandler 生产计划处理器
type PlanHandler struct {
	svc *service.PlanService
}

func NewPlanHandler(svc *service.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// List 获取计划列表
func (h *PlanHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.PlanListParams{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    pageSize,
	}
	items, total, err := h.svc.List(params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items, "total": total})
}

// Get 获取计划详情（含节点、物料、候选工站、依赖边）
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "计划不存在")
		return
	}
	Success(c, plan)
}

// Create 创建计划
func (h *PlanHandler) Create(c *gin.Context) {
	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	plan, err := h.svc.Create(req, GetUserID(c))
	if err != nil {
		if errors.Is(err, scheduler.ErrCycleDetected) {
			BadRequest(c, err.Error())
			return
		}
		if strings.Contains(err.Error(), "重复") || strings.Contains(err.Error(), "不存在") {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	Created(c, plan)
}

// Launch 启动计划排程
func (h *PlanHandler) Launch(c *gin.Context) {
	result, err := h.svc.Launch(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, lock.ErrLockHeld):
			Conflict(c, "计划正在被其他操作占用")
		case errors.Is(err, scheduler.ErrCycleDetected):
			BadRequest(c, err.Error())
		case strings.Contains(err.Error(), "不存在"):
			NotFound(c, err.Error())
		case strings.Contains(err.Error(), "不允许"):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, result)
}

// Pause 暂停计划
func (h *PlanHandler) Pause(c *gin.Context) {
	plan, err := h.svc.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, lock.ErrLockHeld):
			Conflict(c, "计划正在被其他操作占用")
		case strings.Contains(err.Error(), "不存在"):
			NotFound(c, err.Error())
		case strings.Contains(err.Error(), "不允许"):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, plan)
}

// Resume 恢复计划
func (h *PlanHandler) Resume(c *gin.Context) {
	plan, err := h.svc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, lock.ErrLockHeld):
			Conflict(c, "计划正在被其他操作占用")
		case strings.Contains(err.Error(), "不存在"):
			NotFound(c, err.Error())
		case strings.Contains(err.Error(), "不允许"):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, plan)
}

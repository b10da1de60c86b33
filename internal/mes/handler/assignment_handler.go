package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/mes/service"
)

// AssignmentHandler 派工单执行处理器
type AssignmentHandler struct {
	svc *service.ExecutionService
}

func NewAssignmentHandler(svc *service.ExecutionService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// List 获取派工单列表
func (h *AssignmentHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.AssignmentListParams{
		PlanID:   c.Query("plan_id"),
		WorkerID: c.Query("worker_id"),
		Status:   c.Query("status"),
		Page:     page,
		Size:     pageSize,
	}
	items, total, err := h.svc.List(params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items, "total": total})
}

// Get 获取派工单详情（含报废与状态台账）
func (h *AssignmentHandler) Get(c *gin.Context) {
	a, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		NotFound(c, "派工单不存在")
		return
	}
	Success(c, a)
}

// History 获取状态流转台账
func (h *AssignmentHandler) History(c *gin.Context) {
	items, err := h.svc.ListHistory(c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

func respondTransition(c *gin.Context, data interface{}, err error) {
	if err == nil {
		Success(c, data)
		return
	}
	switch {
	case strings.Contains(err.Error(), "不存在"):
		NotFound(c, err.Error())
	case strings.Contains(err.Error(), "不允许"):
		Conflict(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// Start 开工上报
func (h *AssignmentHandler) Start(c *gin.Context) {
	a, err := h.svc.Start(c.Param("id"), GetUserID(c))
	respondTransition(c, a, err)
}

// Pause 暂停上报
func (h *AssignmentHandler) Pause(c *gin.Context) {
	a, err := h.svc.Pause(c.Param("id"), GetUserID(c))
	respondTransition(c, a, err)
}

// Resume 恢复上报
func (h *AssignmentHandler) Resume(c *gin.Context) {
	a, err := h.svc.Resume(c.Param("id"), GetUserID(c))
	respondTransition(c, a, err)
}

// Complete 完工上报
func (h *AssignmentHandler) Complete(c *gin.Context) {
	var req service.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	a, err := h.svc.Complete(c.Param("id"), req, GetUserID(c))
	respondTransition(c, a, err)
}

// Scrap 报废计数上报
func (h *AssignmentHandler) Scrap(c *gin.Context) {
	var req service.ScrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	scrap, err := h.svc.ReportScrap(c.Param("id"), req, GetUserID(c))
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "不存在"):
			NotFound(c, err.Error())
		case strings.Contains(err.Error(), "不允许") || strings.Contains(err.Error(), "负"):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, scrap)
}

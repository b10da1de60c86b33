package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/mes/service"
)

// Handlers 处理器集合
type Handlers struct {
	Plan       *PlanHandler
	Assignment *AssignmentHandler
	Stock      *StockHandler
	Reconcile  *ReconcileHandler
	Worker     *WorkerHandler
	Station    *StationHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Plan:       NewPlanHandler(svc.Plan),
		Assignment: NewAssignmentHandler(svc.Execution),
		Stock:      NewStockHandler(svc.Ledger, repos.Stock),
		Reconcile:  NewReconcileHandler(svc.Reconcile),
		Worker:     NewWorkerHandler(repos.Worker),
		Station:    NewStationHandler(repos.Station),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 状态冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 从上下文获取操作人ID（RequestID中间件注入或请求头透传）
func GetUserID(c *gin.Context) string {
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(string); ok && id != "" {
			return id
		}
	}
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "system"
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

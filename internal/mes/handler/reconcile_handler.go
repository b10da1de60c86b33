package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/umuxt/burkol-mes/internal/mes/service"
)

// ReconcileHandler 对账审计处理器
type ReconcileHandler struct {
	svc *service.ReconcileService
}

func NewReconcileHandler(svc *service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{svc: svc}
}

// Run 触发一次对账扫描，dry_run=true 只报告不补录。
// 检出重复冲销时回 409，扫描结果照常返回供人工复核。
func (h *ReconcileHandler) Run(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"
	result, err := h.svc.Run(dryRun)
	if err != nil {
		if errors.Is(err, service.ErrReconciliationConflict) {
			c.JSON(409, Response{Code: 40900, Message: err.Error(), Data: result})
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, result)
}

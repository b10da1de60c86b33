package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/mes/service"
)

// StockHandler 库存与移动台账处理器
type StockHandler struct {
	ledger    *service.LedgerService
	stockRepo *repository.StockRepository
}

func NewStockHandler(ledger *service.LedgerService, stockRepo *repository.StockRepository) *StockHandler {
	return &StockHandler{ledger: ledger, stockRepo: stockRepo}
}

// ListStocks 获取物料在库列表
func (h *StockHandler) ListStocks(c *gin.Context) {
	items, err := h.stockRepo.ListStocks()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// GetStock 获取单物料在库
func (h *StockHandler) GetStock(c *gin.Context) {
	stock, err := h.stockRepo.GetStock(c.Param("code"))
	if err != nil {
		NotFound(c, "物料库存不存在")
		return
	}
	Success(c, stock)
}

// ListMovements 获取移动台账
func (h *StockHandler) ListMovements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.MovementListParams{
		MaterialCode: c.Query("material_code"),
		Subtype:      c.Query("subtype"),
		AssignmentID: c.Query("assignment_id"),
		Page:         page,
		Size:         pageSize,
	}
	items, total, err := h.stockRepo.ListMovements(params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items, "total": total})
}

// ReceiptRequest 入库上报
type ReceiptRequest struct {
	MaterialCode string  `json:"material_code" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Notes        string  `json:"notes"`
}

// Receipt 期初/采购入库
func (h *StockHandler) Receipt(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if err := h.ledger.Receipt(req.MaterialCode, req.Quantity, req.Notes, GetUserID(c)); err != nil {
		InternalError(c, err.Error())
		return
	}
	stock, err := h.stockRepo.GetStock(req.MaterialCode)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, stock)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	productionapp "github.com/spicemill/stockledger/internal/application/production"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// ProductionStatusHandler serves the production status sheets
type ProductionStatusHandler struct {
	BaseHandler
	service *productionapp.ProductionStatusService
}

// NewProductionStatusHandler creates a new ProductionStatusHandler
func NewProductionStatusHandler(service *productionapp.ProductionStatusService) *ProductionStatusHandler {
	return &ProductionStatusHandler{service: service}
}

func (h *ProductionStatusHandler) sheetKey(c *gin.Context, q productionapp.SheetQuery) (production.SheetKey, bool) {
	date, err := time.Parse(time.DateOnly, q.Date)
	if err != nil {
		h.HandleError(c, shared.NewDomainError(shared.CodeInvalidInput, "Invalid date "+q.Date))
		return production.SheetKey{}, false
	}
	key, err := production.NewSheetKey(date, production.ProcessStage(q.Stage), q.Process)
	if err != nil {
		h.HandleError(c, err)
		return production.SheetKey{}, false
	}
	return key, true
}

// List returns the sheet for ?date=&stage=&process=. An empty sheet starts
// from the closings of the latest earlier sheet.
func (h *ProductionStatusHandler) List(c *gin.Context) {
	var q productionapp.SheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	key, ok := h.sheetKey(c, q)
	if !ok {
		return
	}

	sheet, err := h.service.List(c.Request.Context(), key, q.Policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// SaveBatch saves the rows of one sheet
func (h *ProductionStatusHandler) SaveBatch(c *gin.Context) {
	var req productionapp.SaveProductionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	key, ok := h.sheetKey(c, req.SheetQuery)
	if !ok {
		return
	}

	sheet, err := h.service.SaveBatch(c.Request.Context(), key, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

func (h *ProductionStatusHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	row, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Adjust edits the opening, adjustments or minimum level of one row
func (h *ProductionStatusHandler) Adjust(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req productionapp.AdjustProductionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	row, err := h.service.Adjust(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

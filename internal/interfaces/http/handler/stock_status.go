package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/export"
	"github.com/spicemill/stockledger/internal/interfaces/http/dto"
)

// StockStatusHandler serves the monthly stock status sheet
type StockStatusHandler struct {
	BaseHandler
	service  *stockapp.StockStatusService
	policies *stock.PolicyRegistry
	exporter *export.XLSXExporter
	location *time.Location
	now      func() time.Time
}

// NewStockStatusHandler creates a new StockStatusHandler. A blank date
// means the current month in location.
func NewStockStatusHandler(
	service *stockapp.StockStatusService,
	policies *stock.PolicyRegistry,
	exporter *export.XLSXExporter,
	location *time.Location,
) *StockStatusHandler {
	if location == nil {
		location = time.UTC
	}
	return &StockStatusHandler{
		service:  service,
		policies: policies,
		exporter: exporter,
		location: location,
		now:      time.Now,
	}
}

func (h *StockStatusHandler) period(c *gin.Context, date string) (stock.Period, bool) {
	p, err := parsePeriod(date, h.now().In(h.location))
	if err != nil {
		h.HandleError(c, err)
		return stock.Period{}, false
	}
	return p, true
}

func (h *StockStatusHandler) query(c *gin.Context) (dto.PeriodQuery, stock.Period, bool) {
	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return q, stock.Period{}, false
	}
	p, ok := h.period(c, q.Date)
	return q, p, ok
}

// List returns the stock status sheet
//
// Returns every row of the month with its status and the status counts.
// A month without rows is seeded from the material master, carrying
// each material's previous closing balance forward.
func (h *StockStatusHandler) List(c *gin.Context) {
	q, period, ok := h.query(c)
	if !ok {
		return
	}

	resp, err := h.service.List(c.Request.Context(), period, q.Policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Summary returns the status counts of a month
func (h *StockStatusHandler) Summary(c *gin.Context) {
	q, period, ok := h.query(c)
	if !ok {
		return
	}

	resp, err := h.service.Summary(c.Request.Context(), period, q.Policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Stats returns the inventory widget counts
func (h *StockStatusHandler) Stats(c *gin.Context) {
	_, period, ok := h.query(c)
	if !ok {
		return
	}

	resp, err := h.service.Stats(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *StockStatusHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveBatch saves the whole sheet of a month
//
// Rows with an id update the stored row, rows without one are added.
// Closing balance and status are always recomputed.
func (h *StockStatusHandler) SaveBatch(c *gin.Context) {
	var req stockapp.SaveStockStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	period, ok := h.period(c, req.Date)
	if !ok {
		return
	}

	items, err := h.service.SaveBatch(c.Request.Context(), period, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update edits one stock status row
func (h *StockStatusHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req stockapp.UpdateStockStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Recalculate rebuilds a month's totals from purchases and tasks
func (h *StockStatusHandler) Recalculate(c *gin.Context) {
	period, ok := h.period(c, c.Query("date"))
	if !ok {
		return
	}

	items, err := h.service.Recalculate(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Export downloads a month's sheet as an Excel workbook
func (h *StockStatusHandler) Export(c *gin.Context) {
	q, period, ok := h.query(c)
	if !ok {
		return
	}
	policy, err := h.policies.Get(q.Policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	records, err := h.service.Records(c.Request.Context(), period, policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, period, policy.Name(), records); err != nil {
		h.HandleError(c, shared.WrapDomainError(dto.ErrCodeInternal, "export failed", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.exporter.FileName(period)))
	c.Data(http.StatusOK, h.exporter.ContentType(), buf.Bytes())
}

package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// StockStatusResponse is one row of the stock status sheet.
// Quantities are rounded to two decimals for display.
type StockStatusResponse struct {
	ID         uuid.UUID `json:"id"`
	Date       string    `json:"date"`
	Period     string    `json:"period"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	OpeningBal string    `json:"opening_bal"`
	Purchases  string    `json:"purchases"`
	Utilised   string    `json:"utilised"`
	AdjPlus    string    `json:"adj_plus"`
	ClosingBal string    `json:"closing_bal"`
	MinLevel   string    `json:"min_level"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StockStatusSummaryResponse is the stock status screen payload
type StockStatusSummaryResponse struct {
	Period          string                `json:"period"`
	Policy          string                `json:"policy"`
	Items           []StockStatusResponse `json:"items"`
	TotalItems      int                   `json:"totalItems"`
	NormalCount     int                   `json:"normalCount"`
	LowStockCount   int                   `json:"lowStockCount"`
	CriticalCount   int                   `json:"criticalCount"`
	OutOfStockCount int                   `json:"outOfStockCount"`
}

// StockStatsResponse is the inventory widget payload
type StockStatsResponse struct {
	TotalItems    int `json:"totalItems"`
	LowStock      int `json:"lowStock"`
	CriticalStock int `json:"criticalStock"`
}

// SaveStockStatusItem is one row of a batch save. Rows without an ID are inserted.
type SaveStockStatusItem struct {
	ID         *uuid.UUID      `json:"id"`
	Name       string          `json:"name" binding:"required"`
	Category   string          `json:"category"`
	OpeningBal decimal.Decimal `json:"opening_bal" binding:"maxscale=4"`
	Purchases  decimal.Decimal `json:"purchases" binding:"maxscale=4"`
	Utilised   decimal.Decimal `json:"utilised" binding:"maxscale=4"`
	AdjPlus    decimal.Decimal `json:"adj_plus" binding:"maxscale=4"`
	MinLevel   decimal.Decimal `json:"min_level" binding:"nonneg,maxscale=4"`
}

// SaveStockStatusRequest saves a whole period sheet
type SaveStockStatusRequest struct {
	Date  string                `json:"date" binding:"required"`
	Items []SaveStockStatusItem `json:"items" binding:"required,dive"`
}

// UpdateStockStatusRequest edits the user-maintained inputs of one row.
// Omitted fields are left unchanged.
type UpdateStockStatusRequest struct {
	OpeningBal *decimal.Decimal `json:"opening_bal" binding:"omitempty,maxscale=4"`
	AdjPlus    *decimal.Decimal `json:"adj_plus" binding:"omitempty,maxscale=4"`
	MinLevel   *decimal.Decimal `json:"min_level" binding:"omitempty,nonneg,maxscale=4"`
}

// ToStockStatusResponse converts a record for display
func ToStockStatusResponse(r *stock.StockStatusRecord) StockStatusResponse {
	return StockStatusResponse{
		ID:         r.ID,
		Date:       r.Period.Start().Format(time.DateOnly),
		Period:     r.Period.String(),
		Name:       r.Name,
		Category:   r.Category,
		OpeningBal: r.OpeningBalance.StringFixed(2),
		Purchases:  r.PurchasedQty.StringFixed(2),
		Utilised:   r.UtilisedQty.StringFixed(2),
		AdjPlus:    r.Adjustment.StringFixed(2),
		ClosingBal: r.ClosingBalance.StringFixed(2),
		MinLevel:   r.MinLevel.StringFixed(2),
		Status:     r.Status.String(),
		UpdatedAt:  r.UpdatedAt,
	}
}

// ToSummaryResponse converts a summary for display
func ToSummaryResponse(period stock.Period, policy string, s stock.Summary) StockStatusSummaryResponse {
	items := make([]StockStatusResponse, len(s.Items))
	for i := range s.Items {
		items[i] = ToStockStatusResponse(&s.Items[i])
	}
	return StockStatusSummaryResponse{
		Period:          period.String(),
		Policy:          policy,
		Items:           items,
		TotalItems:      s.TotalItems,
		NormalCount:     s.NormalCount,
		LowStockCount:   s.LowStockCount,
		CriticalCount:   s.CriticalCount,
		OutOfStockCount: s.OutOfStockCount,
	}
}
